// file: internal/services/user_service.go
package services

import (
	"context"

	"engagehub/internal/models"
	"engagehub/internal/repositories"

	"go.uber.org/zap"
)

// userService implements UserService
type userService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetUser retrieves an active user by id.
func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get user", zap.Int64("user_id", id), zap.Error(err))
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", id)
	}
	return user, nil
}

// GetImpactMetrics returns the user's cumulative impact counters, creating
// the zeroed record on first access.
func (s *userService) GetImpactMetrics(ctx context.Context, userID int64) (*models.ImpactMetric, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", userID)
	}

	metrics, err := s.userRepo.GetImpactMetric(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get impact metrics", zap.Int64("user_id", userID), zap.Error(err))
		return nil, NewInternalError("failed to load impact metrics")
	}
	return metrics, nil
}
