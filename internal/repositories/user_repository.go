// file: internal/repositories/user_repository.go
package repositories

import (
	"context"
	"fmt"

	"engagehub/internal/database"
	"engagehub/internal/models"

	"go.uber.org/zap"
)

// userRepository implements UserRepository
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// GetByID retrieves an active user by id
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := r.QueryRowContext(ctx, `
		SELECT id, email, username, display_name, bio, role, is_active,
			points, level, rank, created_at, updated_at
		FROM users
		WHERE id = $1 AND is_active = true`,
		id,
	).Scan(
		&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.Bio, &u.Role,
		&u.IsActive, &u.Points, &u.Level, &u.Rank, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpdateRole changes a user's role
func (r *userRepository) UpdateRole(ctx context.Context, userID int64, role string) error {
	result, err := r.ExecContext(ctx, `
		UPDATE users SET role = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND is_active = true`,
		role, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	r.GetLogger().Info("User role updated",
		zap.Int64("user_id", userID),
		zap.String("role", role),
	)

	return nil
}

// ===============================
// IMPACT METRICS
// ===============================

// GetImpactMetric returns the user's impact counters, creating the zeroed
// row on first access.
func (r *userRepository) GetImpactMetric(ctx context.Context, userID int64) (*models.ImpactMetric, error) {
	var m models.ImpactMetric
	err := r.QueryRowContext(ctx, `
		INSERT INTO impact_metrics (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, events_participated, events_created,
			communities_joined, communities_created, hours_volunteered,
			co2_reduced, trees_planted, people_helped, updated_at`,
		userID,
	).Scan(
		&m.UserID, &m.EventsParticipated, &m.EventsCreated,
		&m.CommunitiesJoined, &m.CommunitiesCreated, &m.HoursVolunteered,
		&m.CO2Reduced, &m.TreesPlanted, &m.PeopleHelped, &m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get impact metrics: %w", err)
	}
	return &m, nil
}

// BumpImpact applies counter increments in place. Zero-valued fields in the
// delta leave their columns untouched.
func (r *userRepository) BumpImpact(ctx context.Context, userID int64, delta ImpactDelta) error {
	_, err := r.ExecContext(ctx, `
		INSERT INTO impact_metrics (
			user_id, events_participated, events_created, communities_joined,
			communities_created, hours_volunteered, co2_reduced, trees_planted,
			people_helped
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			events_participated = impact_metrics.events_participated + EXCLUDED.events_participated,
			events_created = impact_metrics.events_created + EXCLUDED.events_created,
			communities_joined = impact_metrics.communities_joined + EXCLUDED.communities_joined,
			communities_created = impact_metrics.communities_created + EXCLUDED.communities_created,
			hours_volunteered = impact_metrics.hours_volunteered + EXCLUDED.hours_volunteered,
			co2_reduced = impact_metrics.co2_reduced + EXCLUDED.co2_reduced,
			trees_planted = impact_metrics.trees_planted + EXCLUDED.trees_planted,
			people_helped = impact_metrics.people_helped + EXCLUDED.people_helped,
			updated_at = CURRENT_TIMESTAMP`,
		userID, delta.EventsParticipated, delta.EventsCreated,
		delta.CommunitiesJoined, delta.CommunitiesCreated,
		delta.HoursVolunteered, delta.CO2Reduced, delta.TreesPlanted,
		delta.PeopleHelped,
	)
	if err != nil {
		return fmt.Errorf("failed to bump impact metrics: %w", err)
	}
	return nil
}
