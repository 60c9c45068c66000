// file: internal/services/community_service.go
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

// communityService implements CommunityService
type communityService struct {
	communityRepo     repositories.CommunityRepository
	participationRepo repositories.ParticipationRepository
	userRepo          repositories.UserRepository
	pointsService     PointsService
	eventBus          events.EventBus
	validate          *validator.Validate
	logger            *zap.Logger
}

// NewCommunityService creates a new community service
func NewCommunityService(
	communityRepo repositories.CommunityRepository,
	participationRepo repositories.ParticipationRepository,
	userRepo repositories.UserRepository,
	pointsService PointsService,
	eventBus events.EventBus,
	validate *validator.Validate,
	logger *zap.Logger,
) CommunityService {
	return &communityService{
		communityRepo:     communityRepo,
		participationRepo: participationRepo,
		userRepo:          userRepo,
		pointsService:     pointsService,
		eventBus:          eventBus,
		validate:          validate,
		logger:            logger,
	}
}

// GetCommunity retrieves a community by id.
func (s *communityService) GetCommunity(ctx context.Context, id int64) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load community")
	}
	if community == nil {
		return nil, EntityNotFoundError("community", id)
	}
	return community, nil
}

// GetEvent retrieves an event with its derived capacity fields.
func (s *communityService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.communityRepo.GetEvent(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load event")
	}
	if event == nil {
		return nil, EntityNotFoundError("event", id)
	}

	active, err := s.participationRepo.CountActiveForEvent(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to count participants")
	}
	event.ComputeCapacity(active)

	return event, nil
}

// Join adds the user to a community and pays the joining award.
func (s *communityService) Join(ctx context.Context, userID, communityID int64) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return NewInternalError("failed to load community")
	}
	if community == nil {
		return EntityNotFoundError("community", communityID)
	}

	if err := s.communityRepo.AddMember(ctx, communityID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return NewConflictError("already a member of this community", "")
		case errors.Is(err, repositories.ErrNotFound):
			return EntityNotFoundError("community", communityID)
		default:
			s.logger.Error("Failed to add community member",
				zap.Int64("community_id", communityID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return NewInternalError("failed to join community")
		}
	}

	s.awardJoin(ctx, userID, communityID)

	return nil
}

func (s *communityService) awardJoin(ctx context.Context, userID, communityID int64) {
	relatedType := "community"
	_, err := s.pointsService.Award(ctx, &AwardPointsRequest{
		SubjectKind:    models.SubjectUser,
		SubjectID:      userID,
		Points:         PointsCommunityJoined,
		Category:       models.CategoryCommunityJoined,
		Description:    fmt.Sprintf("Joined community #%d", communityID),
		RelatedType:    &relatedType,
		RelatedID:      &communityID,
		IdempotencyKey: fmt.Sprintf("join:%d:%d", communityID, userID),
	})
	if err != nil && !HasErrorCode(err, CodeDuplicateAward) {
		s.logger.Warn("Failed to award joining points",
			zap.Int64("user_id", userID),
			zap.Int64("community_id", communityID),
			zap.Error(err),
		)
	}

	if err := s.userRepo.BumpImpact(ctx, userID, repositories.ImpactDelta{
		CommunitiesJoined: 1,
	}); err != nil {
		s.logger.Warn("Failed to bump member impact metrics",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

// CreateEvent creates an event under a community. Only verified communities
// can host events, and only the community creator or staff can create them.
func (s *communityService) CreateEvent(ctx context.Context, userID int64, req *CreateEventRequest) (*models.Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid event request", err)
	}

	community, err := s.communityRepo.GetByID(ctx, req.CommunityID)
	if err != nil {
		return nil, NewInternalError("failed to load community")
	}
	if community == nil {
		return nil, EntityNotFoundError("community", req.CommunityID)
	}
	if community.VerificationStatus != models.VerificationVerified {
		return nil, NewBusinessError(
			"events can only be created under a verified community", CodeNotVerified)
	}

	if community.CreatedBy != userID {
		actor, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, NewInternalError("failed to load user")
		}
		if actor == nil {
			return nil, NewUnauthorizedError("unknown user")
		}
		if actor.Role != models.RoleAdmin && actor.Role != models.RoleModerator {
			return nil, NewForbiddenError("only the community creator or staff can create events")
		}
	}

	event := &models.Event{
		CommunityID:     req.CommunityID,
		CreatedBy:       userID,
		Title:           req.Title,
		Description:     req.Description,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		MaxParticipants: req.MaxParticipants,
	}
	if err := s.communityRepo.CreateEvent(ctx, event); err != nil {
		s.logger.Error("Failed to create event",
			zap.Int64("community_id", req.CommunityID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to create event")
	}

	s.awardEventCreation(ctx, userID, event.ID)

	return event, nil
}

func (s *communityService) awardEventCreation(ctx context.Context, userID, eventID int64) {
	relatedType := "event"
	_, err := s.pointsService.Award(ctx, &AwardPointsRequest{
		SubjectKind:    models.SubjectUser,
		SubjectID:      userID,
		Points:         PointsEventCreation,
		Category:       models.CategoryEventCreation,
		Description:    fmt.Sprintf("Created event #%d", eventID),
		RelatedType:    &relatedType,
		RelatedID:      &eventID,
		IdempotencyKey: fmt.Sprintf("event:%d:created", eventID),
	})
	if err != nil && !HasErrorCode(err, CodeDuplicateAward) {
		s.logger.Warn("Failed to award event creation points",
			zap.Int64("user_id", userID),
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
	}

	if err := s.userRepo.BumpImpact(ctx, userID, repositories.ImpactDelta{
		EventsCreated: 1,
	}); err != nil {
		s.logger.Warn("Failed to bump creator impact metrics",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
