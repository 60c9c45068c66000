// file: internal/repositories/points_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"engagehub/internal/database"
	"engagehub/internal/models"

	"go.uber.org/zap"
)

// pointsRepository implements PointsRepository over the points_history,
// volunteer_points and community_rewards tables
type pointsRepository struct {
	*BaseRepository
}

// NewPointsRepository creates a new points repository
func NewPointsRepository(db *database.Manager, logger *zap.Logger) PointsRepository {
	return &pointsRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// AWARD TRANSACTION
// ===============================

// Award applies one ledger award as a single transaction: the immutable
// history row, the atomic total increment and the post-increment rank
// update either all land or none do. A replayed idempotency key fails the
// history insert and surfaces as ErrDuplicate before any total changes.
func (r *pointsRepository) Award(ctx context.Context, award *PointsAward) (*AwardOutcome, error) {
	var outcome AwardOutcome

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO points_history (
				subject_kind, subject_id, points, category,
				description, related_type, related_id, idempotency_key
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			award.SubjectKind, award.SubjectID, award.Points, award.Category,
			award.Description, award.RelatedType, award.RelatedID, award.IdempotencyKey,
		)
		if err != nil {
			return r.MapUniqueViolation(err)
		}

		switch award.SubjectKind {
		case models.SubjectUser:
			return r.applyUserAward(ctx, tx, award, &outcome)
		case models.SubjectCommunity:
			return r.applyCommunityAward(ctx, tx, award, &outcome)
		default:
			return fmt.Errorf("unknown subject kind %q", award.SubjectKind)
		}
	})
	if err != nil {
		return nil, err
	}

	r.GetLogger().Info("Points awarded",
		zap.String("subject_kind", string(award.SubjectKind)),
		zap.Int64("subject_id", award.SubjectID),
		zap.Int64("points", award.Points),
		zap.String("category", string(award.Category)),
		zap.Int64("new_total", outcome.NewTotal),
		zap.Bool("leveled_up", outcome.LeveledUp),
	)

	return &outcome, nil
}

func (r *pointsRepository) applyUserAward(ctx context.Context, tx *sql.Tx, award *PointsAward, outcome *AwardOutcome) error {
	// Increment in place; never a read-modify-write of a cached total.
	err := tx.QueryRowContext(ctx, `
		UPDATE users
		SET points = points + $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND is_active = true
		RETURNING points, level`,
		award.Points, award.SubjectID,
	).Scan(&outcome.NewTotal, &outcome.PreviousLevel)
	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to increment user points: %w", err)
	}

	newRank := award.RankFor(outcome.NewTotal)
	outcome.NewLevel = newRank.Level
	outcome.NewRank = newRank.Label
	outcome.LeveledUp = newRank.Level > outcome.PreviousLevel

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET level = $1, rank = $2 WHERE id = $3`,
		newRank.Level, newRank.Label, award.SubjectID,
	); err != nil {
		return fmt.Errorf("failed to update user rank: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO volunteer_points (user_id, total_points, current_level, current_rank)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			total_points = $2, current_level = $3, current_rank = $4,
			updated_at = CURRENT_TIMESTAMP`,
		award.SubjectID, outcome.NewTotal, newRank.Level, newRank.Label,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert volunteer points: %w", err)
	}

	return nil
}

func (r *pointsRepository) applyCommunityAward(ctx context.Context, tx *sql.Tx, award *PointsAward, outcome *AwardOutcome) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM communities WHERE id = $1)`, award.SubjectID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check community: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO community_rewards AS cr (community_id, total_points, current_level, community_tier)
		VALUES ($1, $2, 1, 'Bronze')
		ON CONFLICT (community_id) DO UPDATE SET
			total_points = cr.total_points + EXCLUDED.total_points,
			updated_at = CURRENT_TIMESTAMP
		RETURNING total_points, current_level`,
		award.SubjectID, award.Points,
	).Scan(&outcome.NewTotal, &outcome.PreviousLevel)
	if err != nil {
		return fmt.Errorf("failed to increment community points: %w", err)
	}

	newTier := award.RankFor(outcome.NewTotal)
	outcome.NewLevel = newTier.Level
	outcome.NewRank = newTier.Label
	outcome.LeveledUp = newTier.Level > outcome.PreviousLevel

	if _, err := tx.ExecContext(ctx, `
		UPDATE community_rewards SET current_level = $1, community_tier = $2
		WHERE community_id = $3`,
		newTier.Level, newTier.Label, award.SubjectID,
	); err != nil {
		return fmt.Errorf("failed to update community tier: %w", err)
	}

	return nil
}

// ===============================
// LEDGER READS
// ===============================

// GetVolunteerPoints returns a user's ledger state. A user with no awards
// yet reads as a zeroed ledger at the first rank.
func (r *pointsRepository) GetVolunteerPoints(ctx context.Context, userID int64) (*models.VolunteerPoints, error) {
	vp := &models.VolunteerPoints{
		UserID:       userID,
		CurrentLevel: 1,
		CurrentRank:  "Beginner",
	}

	err := r.QueryRowContext(ctx, `
		SELECT total_points, current_level, current_rank, updated_at
		FROM volunteer_points WHERE user_id = $1`,
		userID,
	).Scan(&vp.TotalPoints, &vp.CurrentLevel, &vp.CurrentRank, &vp.UpdatedAt)
	if err != nil && !r.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get volunteer points: %w", err)
	}

	breakdown, err := r.loadBreakdown(ctx, models.SubjectUser, userID)
	if err != nil {
		return nil, err
	}
	vp.Breakdown = breakdown

	return vp, nil
}

// GetCommunityRewards returns a community's ledger state plus rolled-up
// metrics.
func (r *pointsRepository) GetCommunityRewards(ctx context.Context, communityID int64) (*models.CommunityRewards, error) {
	cr := &models.CommunityRewards{
		CommunityID:   communityID,
		CurrentLevel:  1,
		CommunityTier: "Bronze",
	}

	err := r.QueryRowContext(ctx, `
		SELECT cr.total_points, cr.current_level, cr.community_tier,
			c.avg_rating, c.total_ratings, c.member_count, c.event_count,
			cr.updated_at
		FROM community_rewards cr
		JOIN communities c ON c.id = cr.community_id
		WHERE cr.community_id = $1`,
		communityID,
	).Scan(
		&cr.TotalPoints, &cr.CurrentLevel, &cr.CommunityTier,
		&cr.AvgRating, &cr.TotalRatings, &cr.MemberCount, &cr.EventCount,
		&cr.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get community rewards: %w", err)
	}

	breakdown, err := r.loadBreakdown(ctx, models.SubjectCommunity, communityID)
	if err != nil {
		return nil, err
	}
	cr.Breakdown = breakdown

	return cr, nil
}

// loadBreakdown derives the per-category totals from the history, which is
// the ledger of record.
func (r *pointsRepository) loadBreakdown(ctx context.Context, kind models.SubjectKind, subjectID int64) (map[string]int64, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(points), 0)
		FROM points_history
		WHERE subject_kind = $1 AND subject_id = $2
		GROUP BY category`,
		kind, subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load points breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]int64)
	for rows.Next() {
		var category string
		var total int64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown row: %w", err)
		}
		breakdown[category] = total
	}
	return breakdown, rows.Err()
}

// GetHistory returns a page of the append-only history, newest first.
func (r *pointsRepository) GetHistory(ctx context.Context, kind models.SubjectKind, subjectID int64, p models.PaginationParams) ([]*models.PointsEntry, error) {
	p.Normalize()

	rows, err := r.QueryContext(ctx, `
		SELECT id, subject_kind, subject_id, points, category, description,
			related_type, related_id, idempotency_key, created_at
		FROM points_history
		WHERE subject_kind = $1 AND subject_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		kind, subjectID, p.Limit, p.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get points history: %w", err)
	}
	defer rows.Close()

	var entries []*models.PointsEntry
	for rows.Next() {
		var e models.PointsEntry
		if err := rows.Scan(
			&e.ID, &e.SubjectKind, &e.SubjectID, &e.Points, &e.Category,
			&e.Description, &e.RelatedType, &e.RelatedID, &e.IdempotencyKey,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// TopUsers returns the points leaderboard.
func (r *pointsRepository) TopUsers(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := r.QueryContext(ctx, `
		SELECT u.id, u.username, u.display_name, u.points, u.level, u.rank
		FROM users u
		WHERE u.is_active = true
		ORDER BY u.points DESC, u.id ASC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	pos := 0
	for rows.Next() {
		pos++
		e := &models.LeaderboardEntry{Rank: pos}
		if err := rows.Scan(&e.UserID, &e.Username, &e.DisplayName, &e.TotalPoints, &e.Level, &e.RankLabel); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
