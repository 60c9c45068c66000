// file: internal/services/rating_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"engagehub/internal/events"
	"engagehub/internal/models"
	"engagehub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ratingService implements RatingService
type ratingService struct {
	ratingRepo        repositories.RatingRepository
	participationRepo repositories.ParticipationRepository
	communityRepo     repositories.CommunityRepository
	userRepo          repositories.UserRepository
	eventBus          events.EventBus
	validate          *validator.Validate
	logger            *zap.Logger
}

// NewRatingService creates a new rating service
func NewRatingService(
	ratingRepo repositories.RatingRepository,
	participationRepo repositories.ParticipationRepository,
	communityRepo repositories.CommunityRepository,
	userRepo repositories.UserRepository,
	eventBus events.EventBus,
	validate *validator.Validate,
	logger *zap.Logger,
) RatingService {
	return &ratingService{
		ratingRepo:        ratingRepo,
		participationRepo: participationRepo,
		communityRepo:     communityRepo,
		userRepo:          userRepo,
		eventBus:          eventBus,
		validate:          validate,
		logger:            logger,
	}
}

// ===============================
// SUBMISSION
// ===============================

// Submit creates a rating for a community or event. A user rates a given
// entity at most once; the verified-participant flag is computed here and
// never changes afterwards.
func (s *ratingService) Submit(ctx context.Context, userID int64, req *SubmitRatingRequest) (*models.Rating, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid rating request", err)
	}
	if !req.EntityType.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown entity type %q", req.EntityType), nil)
	}

	if err := s.ensureEntityExists(ctx, req.EntityType, req.EntityID); err != nil {
		return nil, err
	}

	verified, err := s.isVerifiedParticipant(ctx, userID, req.EntityType, req.EntityID)
	if err != nil {
		return nil, err
	}

	rating := &models.Rating{
		RatedBy:               userID,
		EntityType:            string(req.EntityType),
		EntityID:              req.EntityID,
		Rating:                req.Rating,
		Review:                req.Review,
		IsVerifiedParticipant: verified,
	}

	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("you have already rated this "+string(req.EntityType), CodeAlreadyRated)
		}
		s.logger.Error("Failed to create rating",
			zap.Int64("user_id", userID),
			zap.String("entity_type", string(req.EntityType)),
			zap.Int64("entity_id", req.EntityID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to submit rating")
	}

	s.recomputeAndPublish(ctx, rating, "created", &userID)

	return rating, nil
}

// Update changes the caller's rating. Only the rater (or an admin) may edit
// it; the verified flag keeps its creation-time value.
func (s *ratingService) Update(ctx context.Context, userID, ratingID int64, req *UpdateRatingRequest) (*models.Rating, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid rating update", err)
	}

	if _, err := s.loadOwnedRating(ctx, userID, ratingID); err != nil {
		return nil, err
	}

	updated, err := s.ratingRepo.Update(ctx, ratingID, req.Rating, req.Review)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, EntityNotFoundError("rating", ratingID)
		}
		return nil, NewInternalError("failed to update rating")
	}

	s.recomputeAndPublish(ctx, updated, "updated", &userID)

	return updated, nil
}

// Delete removes the caller's rating and recomputes the entity aggregate
// from the remaining set.
func (s *ratingService) Delete(ctx context.Context, userID, ratingID int64) error {
	if _, err := s.loadOwnedRating(ctx, userID, ratingID); err != nil {
		return err
	}

	deleted, err := s.ratingRepo.Delete(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("rating", ratingID)
		}
		return NewInternalError("failed to delete rating")
	}

	s.recomputeAndPublish(ctx, deleted, "deleted", &userID)

	return nil
}

// ListForEntity returns a page of ratings for an entity.
func (s *ratingService) ListForEntity(ctx context.Context, entityType models.EntityType, entityID int64, p models.PaginationParams) ([]*models.Rating, error) {
	if !entityType.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown entity type %q", entityType), nil)
	}

	ratings, err := s.ratingRepo.ListForEntity(ctx, entityType, entityID, p)
	if err != nil {
		return nil, NewInternalError("failed to list ratings")
	}
	return ratings, nil
}

// Vote records a helpfulness vote on a rating.
func (s *ratingService) Vote(ctx context.Context, ratingID int64, helpful bool) (*models.Rating, error) {
	rating, err := s.ratingRepo.Vote(ctx, ratingID, helpful)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, EntityNotFoundError("rating", ratingID)
		}
		return nil, NewInternalError("failed to record vote")
	}
	return rating, nil
}

// ===============================
// HELPERS
// ===============================

func (s *ratingService) ensureEntityExists(ctx context.Context, entityType models.EntityType, entityID int64) error {
	switch entityType {
	case models.EntityCommunity:
		community, err := s.communityRepo.GetByID(ctx, entityID)
		if err != nil {
			return NewInternalError("failed to load community")
		}
		if community == nil {
			return EntityNotFoundError("community", entityID)
		}
	case models.EntityEvent:
		event, err := s.communityRepo.GetEvent(ctx, entityID)
		if err != nil {
			return NewInternalError("failed to load event")
		}
		if event == nil {
			return EntityNotFoundError("event", entityID)
		}
	}
	return nil
}

// isVerifiedParticipant holds for event ratings when the user has verified
// attendance, and for community ratings when they attended any of its events
// or are a member.
func (s *ratingService) isVerifiedParticipant(ctx context.Context, userID int64, entityType models.EntityType, entityID int64) (bool, error) {
	attended, err := s.participationRepo.HasAttended(ctx, userID, entityType, entityID)
	if err != nil {
		return false, NewInternalError("failed to check participation")
	}
	if attended || entityType != models.EntityCommunity {
		return attended, nil
	}

	member, err := s.communityRepo.IsMember(ctx, entityID, userID)
	if err != nil {
		return false, NewInternalError("failed to check membership")
	}
	return member, nil
}

func (s *ratingService) loadOwnedRating(ctx context.Context, userID, ratingID int64) (*models.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		return nil, NewInternalError("failed to load rating")
	}
	if rating == nil {
		return nil, EntityNotFoundError("rating", ratingID)
	}

	if rating.RatedBy != userID {
		actor, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, NewInternalError("failed to load user")
		}
		if actor == nil || !actor.IsAdmin() {
			return nil, NewForbiddenError("you can only modify your own rating")
		}
	}
	return rating, nil
}

// recomputeAndPublish refreshes the entity's denormalized aggregate from the
// complete rating set. A failed recompute is logged loudly; the next rating
// mutation repairs the aggregate.
func (s *ratingService) recomputeAndPublish(ctx context.Context, rating *models.Rating, action string, actorID *int64) {
	agg, err := s.ratingRepo.Recompute(ctx, models.EntityType(rating.EntityType), rating.EntityID)
	if err != nil {
		s.logger.Error("Failed to recompute rating aggregate",
			zap.String("entity_type", rating.EntityType),
			zap.Int64("entity_id", rating.EntityID),
			zap.Error(err),
		)
		return
	}

	_ = s.eventBus.PublishAsync(ctx, events.NewRatingChangedEvent(
		rating.ID, rating.EntityType, rating.EntityID, action,
		agg.AvgRating, agg.TotalRatings, actorID,
	))
}
