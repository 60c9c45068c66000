// file: internal/repositories/participation_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"engagehub/internal/database"
	"engagehub/internal/models"

	"go.uber.org/zap"
)

// participationRepository implements ParticipationRepository
type participationRepository struct {
	*BaseRepository
}

// NewParticipationRepository creates a new participation repository
func NewParticipationRepository(db *database.Manager, logger *zap.Logger) ParticipationRepository {
	return &participationRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const participationColumns = `
	id, user_id, event_id, community_id, status, hours_contributed,
	points_earned, rejection_reason, verified_at, verified_by,
	created_at, updated_at`

func scanParticipation(row interface {
	Scan(dest ...interface{}) error
}) (*models.Participation, error) {
	var p models.Participation
	err := row.Scan(
		&p.ID, &p.UserID, &p.EventID, &p.CommunityID, &p.Status,
		&p.HoursContributed, &p.PointsEarned, &p.RejectionReason,
		&p.VerifiedAt, &p.VerifiedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ===============================
// REGISTRATION
// ===============================

// Register creates a fresh registered participation. The capacity check and
// the insert run in one transaction so two racing registrations cannot both
// take the last spot; the partial unique index on active (user, event) pairs
// turns a duplicate registration into ErrDuplicate.
func (r *participationRepository) Register(ctx context.Context, userID, eventID int64, fromWishlist bool) (*models.Participation, error) {
	var participation *models.Participation

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var communityID int64
		var maxParticipants sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT community_id, max_participants FROM events WHERE id = $1 FOR UPDATE`,
			eventID,
		).Scan(&communityID, &maxParticipants)
		if err != nil {
			if r.IsNotFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load event: %w", err)
		}

		if maxParticipants.Valid {
			var active int
			err := tx.QueryRowContext(ctx, `
				SELECT COUNT(*) FROM participations
				WHERE event_id = $1 AND status IN ('registered', 'attended', 'completed')`,
				eventID,
			).Scan(&active)
			if err != nil {
				return fmt.Errorf("failed to count participants: %w", err)
			}
			if int64(active) >= maxParticipants.Int64 {
				return ErrCapacityExceeded
			}
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO participations (user_id, event_id, community_id, status)
			VALUES ($1, $2, $3, 'registered')
			RETURNING`+participationColumns,
			userID, eventID, communityID,
		)
		participation, err = scanParticipation(row)
		if err != nil {
			return r.MapUniqueViolation(err)
		}

		if fromWishlist {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM event_wishlist WHERE user_id = $1 AND event_id = $2`,
				userID, eventID,
			); err != nil {
				return fmt.Errorf("failed to convert wishlist entry: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.GetLogger().Info("Participation registered",
		zap.Int64("participation_id", participation.ID),
		zap.Int64("user_id", userID),
		zap.Int64("event_id", eventID),
	)

	return participation, nil
}

// GetByID retrieves a participation by id
func (r *participationRepository) GetByID(ctx context.Context, id int64) (*models.Participation, error) {
	row := r.QueryRowContext(ctx,
		`SELECT`+participationColumns+` FROM participations WHERE id = $1`, id)

	p, err := scanParticipation(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}
	return p, nil
}

// ===============================
// GUARDED TRANSITIONS
// ===============================

// MarkAttended transitions registered -> attended. The WHERE clause on the
// current status makes the transition at-most-once: a second call matches
// zero rows and reports ErrInvalidTransition.
func (r *participationRepository) MarkAttended(ctx context.Context, id int64, hours float64, points int64, verifiedBy int64) (*models.Participation, error) {
	row := r.QueryRowContext(ctx, `
		UPDATE participations
		SET status = 'attended', hours_contributed = $2, points_earned = $3,
			verified_at = CURRENT_TIMESTAMP, verified_by = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'registered'
		RETURNING`+participationColumns,
		id, hours, points, verifiedBy,
	)

	p, err := scanParticipation(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, r.transitionFailure(ctx, id)
		}
		return nil, fmt.Errorf("failed to mark attended: %w", err)
	}
	return p, nil
}

// RevertAttended undoes an attended transition whose follow-up award failed,
// restoring the registered state.
func (r *participationRepository) RevertAttended(ctx context.Context, id int64) error {
	_, err := r.ExecContext(ctx, `
		UPDATE participations
		SET status = 'registered', hours_contributed = 0, points_earned = 0,
			verified_at = NULL, verified_by = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'attended'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to revert attended participation: %w", err)
	}
	return nil
}

// Reject transitions registered -> rejected with the reviewer's reason.
func (r *participationRepository) Reject(ctx context.Context, id int64, reason string, actorID int64) (*models.Participation, error) {
	row := r.QueryRowContext(ctx, `
		UPDATE participations
		SET status = 'rejected', rejection_reason = $2,
			verified_at = CURRENT_TIMESTAMP, verified_by = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'registered'
		RETURNING`+participationColumns,
		id, reason, actorID,
	)

	p, err := scanParticipation(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, r.transitionFailure(ctx, id)
		}
		return nil, fmt.Errorf("failed to reject participation: %w", err)
	}
	return p, nil
}

// Complete transitions attended -> completed.
func (r *participationRepository) Complete(ctx context.Context, id int64) (*models.Participation, error) {
	row := r.QueryRowContext(ctx, `
		UPDATE participations
		SET status = 'completed', updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'attended'
		RETURNING`+participationColumns,
		id,
	)

	p, err := scanParticipation(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, r.transitionFailure(ctx, id)
		}
		return nil, fmt.Errorf("failed to complete participation: %w", err)
	}
	return p, nil
}

// transitionFailure distinguishes a missing record from a record in the
// wrong state after a guarded update matched no rows.
func (r *participationRepository) transitionFailure(ctx context.Context, id int64) error {
	var exists bool
	if err := r.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM participations WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check participation: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidTransition
}

// ===============================
// LEAVE / CAPACITY / VERIFICATION READS
// ===============================

// Delete removes an active participation entirely (self-service leave).
// Points already awarded are not reversed here.
func (r *participationRepository) Delete(ctx context.Context, userID, eventID int64) (*models.Participation, error) {
	row := r.QueryRowContext(ctx, `
		DELETE FROM participations
		WHERE user_id = $1 AND event_id = $2
			AND status IN ('registered', 'attended', 'completed')
		RETURNING`+participationColumns,
		userID, eventID,
	)

	p, err := scanParticipation(row)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete participation: %w", err)
	}

	r.GetLogger().Info("Participation deleted",
		zap.Int64("user_id", userID),
		zap.Int64("event_id", eventID),
		zap.String("prior_status", p.Status),
	)

	return p, nil
}

// CountActiveForEvent counts registrations that occupy a capacity slot.
func (r *participationRepository) CountActiveForEvent(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM participations
		WHERE event_id = $1 AND status IN ('registered', 'attended', 'completed')`,
		eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active participations: %w", err)
	}
	return count, nil
}

// HasAttended reports whether the user has an attended/completed
// participation for the event, or for any event of the community.
func (r *participationRepository) HasAttended(ctx context.Context, userID int64, entityType models.EntityType, entityID int64) (bool, error) {
	var query string
	switch entityType {
	case models.EntityEvent:
		query = `
			SELECT EXISTS(
				SELECT 1 FROM participations
				WHERE user_id = $1 AND event_id = $2
					AND status IN ('attended', 'completed'))`
	case models.EntityCommunity:
		query = `
			SELECT EXISTS(
				SELECT 1 FROM participations
				WHERE user_id = $1 AND community_id = $2
					AND status IN ('attended', 'completed'))`
	default:
		return false, fmt.Errorf("unknown entity type %q", entityType)
	}

	var attended bool
	if err := r.QueryRowContext(ctx, query, userID, entityID).Scan(&attended); err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return attended, nil
}

// AddToWishlist records interest in an event without registering.
func (r *participationRepository) AddToWishlist(ctx context.Context, userID, eventID int64) error {
	_, err := r.ExecContext(ctx, `
		INSERT INTO event_wishlist (user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING`,
		userID, eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to add wishlist entry: %w", err)
	}
	return nil
}
