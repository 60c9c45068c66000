// file: internal/repositories/community_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"engagehub/internal/database"
	"engagehub/internal/models"

	"go.uber.org/zap"
)

// communityRepository implements CommunityRepository
type communityRepository struct {
	*BaseRepository
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *database.Manager, logger *zap.Logger) CommunityRepository {
	return &communityRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// GetByID retrieves a community by id
func (r *communityRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	var c models.Community
	err := r.QueryRowContext(ctx, `
		SELECT id, name, description, created_by, verification_status,
			avg_rating, total_ratings, member_count, event_count,
			created_at, updated_at
		FROM communities WHERE id = $1`,
		id,
	).Scan(
		&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.VerificationStatus,
		&c.AvgRating, &c.TotalRatings, &c.MemberCount, &c.EventCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return &c, nil
}

// GetEvent retrieves an event by id
func (r *communityRepository) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	var e models.Event
	err := r.QueryRowContext(ctx, `
		SELECT id, community_id, created_by, title, description,
			starts_at, ends_at, max_participants, avg_rating, total_ratings,
			created_at, updated_at
		FROM events WHERE id = $1`,
		id,
	).Scan(
		&e.ID, &e.CommunityID, &e.CreatedBy, &e.Title, &e.Description,
		&e.StartsAt, &e.EndsAt, &e.MaxParticipants, &e.AvgRating,
		&e.TotalRatings, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &e, nil
}

// CreateEvent inserts an event and bumps the community's event counter in
// the same transaction.
func (r *communityRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO events (community_id, created_by, title, description,
				starts_at, ends_at, max_participants)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at`,
			event.CommunityID, event.CreatedBy, event.Title, event.Description,
			event.StartsAt, event.EndsAt, event.MaxParticipants,
		).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE communities SET event_count = event_count + 1,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = $1`,
			event.CommunityID,
		); err != nil {
			return fmt.Errorf("failed to bump event count: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.GetLogger().Info("Event created",
		zap.Int64("event_id", event.ID),
		zap.Int64("community_id", event.CommunityID),
	)

	return nil
}

// AddMember records community membership and bumps the member counter. A
// duplicate join surfaces as ErrDuplicate.
func (r *communityRepository) AddMember(ctx context.Context, communityID, userID int64) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO community_members (community_id, user_id)
			VALUES ($1, $2)`,
			communityID, userID,
		)
		if err != nil {
			return r.MapUniqueViolation(err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE communities SET member_count = member_count + 1,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = $1`,
			communityID,
		)
		if err != nil {
			return fmt.Errorf("failed to bump member count: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}

		return nil
	})
}

// IsMember reports community membership.
func (r *communityRepository) IsMember(ctx context.Context, communityID, userID int64) (bool, error) {
	var member bool
	err := r.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM community_members
			WHERE community_id = $1 AND user_id = $2)`,
		communityID, userID,
	).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return member, nil
}
