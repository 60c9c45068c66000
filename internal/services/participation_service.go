// file: internal/services/participation_service.go
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

// participationService implements ParticipationService
type participationService struct {
	participationRepo repositories.ParticipationRepository
	communityRepo     repositories.CommunityRepository
	userRepo          repositories.UserRepository
	pointsService     PointsService
	eventBus          events.EventBus
	validate          *validator.Validate
	logger            *zap.Logger
}

// NewParticipationService creates a new participation service
func NewParticipationService(
	participationRepo repositories.ParticipationRepository,
	communityRepo repositories.CommunityRepository,
	userRepo repositories.UserRepository,
	pointsService PointsService,
	eventBus events.EventBus,
	validate *validator.Validate,
	logger *zap.Logger,
) ParticipationService {
	return &participationService{
		participationRepo: participationRepo,
		communityRepo:     communityRepo,
		userRepo:          userRepo,
		pointsService:     pointsService,
		eventBus:          eventBus,
		validate:          validate,
		logger:            logger,
	}
}

// ===============================
// REGISTRATION
// ===============================

// Register enrolls the user in an event. Capacity and the one-active-record
// rule are enforced transactionally by the repository.
func (s *participationService) Register(ctx context.Context, userID int64, req *RegisterParticipationRequest) (*models.Participation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid registration request", err)
	}

	participation, err := s.participationRepo.Register(ctx, userID, req.EventID, req.FromWishlist)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, EntityNotFoundError("event", req.EventID)
		case errors.Is(err, repositories.ErrCapacityExceeded):
			return nil, NewCapacityExceededError(req.EventID)
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, NewConflictError("already registered for this event", CodeAlreadyRegistered)
		default:
			s.logger.Error("Failed to register participation",
				zap.Int64("user_id", userID),
				zap.Int64("event_id", req.EventID),
				zap.Error(err),
			)
			return nil, NewInternalError("failed to register for event")
		}
	}

	_ = s.eventBus.PublishAsync(ctx, events.NewParticipationRegisteredEvent(
		participation.ID, participation.EventID, participation.CommunityID,
		userID, req.FromWishlist,
	))

	return participation, nil
}

// ===============================
// ATTENDANCE VERIFICATION
// ===============================

// VerifyAttendance confirms a registered participant showed up and awards
// the attendance points. The status transition is at-most-once; if the award
// fails afterwards the transition is compensated so a retry can succeed.
func (s *participationService) VerifyAttendance(ctx context.Context, actorID, participationID int64, req *VerifyAttendanceRequest) (*AttendanceResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid attendance request", err)
	}
	if req.Hours < 0 {
		return nil, NewValidationError("hours cannot be negative", nil)
	}

	participation, err := s.participationRepo.GetByID(ctx, participationID)
	if err != nil {
		return nil, NewInternalError("failed to load participation")
	}
	if participation == nil {
		return nil, EntityNotFoundError("participation", participationID)
	}

	if err := s.authorizeOrganizer(ctx, actorID, participation.EventID); err != nil {
		return nil, err
	}

	points := int64(PointsAttendanceBase) + int64(req.Hours*float64(PointsPerHour))

	updated, err := s.participationRepo.MarkAttended(ctx, participationID, req.Hours, points, actorID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, EntityNotFoundError("participation", participationID)
		case errors.Is(err, repositories.ErrInvalidTransition):
			return nil, NewInvalidStateError(
				"attendance can only be verified for a registered participation", "")
		default:
			s.logger.Error("Failed to mark attendance",
				zap.Int64("participation_id", participationID),
				zap.Error(err),
			)
			return nil, NewInternalError("failed to verify attendance")
		}
	}

	award, err := s.awardAttendance(ctx, updated, points, req.Hours)
	if err != nil {
		// Compensate the transition so a later retry can run the whole
		// operation again.
		if revertErr := s.participationRepo.RevertAttended(ctx, participationID); revertErr != nil {
			s.logger.Error("Failed to revert attendance after award failure",
				zap.Int64("participation_id", participationID),
				zap.Error(revertErr),
			)
		}
		return nil, err
	}

	s.bumpAttendanceImpact(ctx, updated.UserID, req.Hours)
	s.mirrorCommunityAward(ctx, updated, points)

	_ = s.eventBus.PublishAsync(ctx, events.NewAttendanceVerifiedEvent(
		updated.ID, updated.EventID, updated.UserID, req.Hours, points, actorID,
	))

	return &AttendanceResult{Participation: updated, Award: award}, nil
}

// awardAttendance routes the attendance points through the ledger. A
// duplicate award means a previous attempt already paid out; that is treated
// as success so compensation does not double back.
func (s *participationService) awardAttendance(ctx context.Context, p *models.Participation, points int64, hours float64) (*AwardResult, error) {
	relatedType := "participation"
	award, err := s.pointsService.Award(ctx, &AwardPointsRequest{
		SubjectKind:    models.SubjectUser,
		SubjectID:      p.UserID,
		Points:         points,
		Category:       models.CategoryEventParticipation,
		Description:    fmt.Sprintf("Attended event #%d (%.1f hours)", p.EventID, hours),
		RelatedType:    &relatedType,
		RelatedID:      &p.ID,
		IdempotencyKey: fmt.Sprintf("participation:%d:attended", p.ID),
	})
	if err != nil {
		if HasErrorCode(err, CodeDuplicateAward) {
			return nil, nil
		}
		return nil, err
	}
	return award, nil
}

func (s *participationService) bumpAttendanceImpact(ctx context.Context, userID int64, hours float64) {
	err := s.userRepo.BumpImpact(ctx, userID, repositories.ImpactDelta{
		EventsParticipated: 1,
		HoursVolunteered:   hours,
	})
	if err != nil {
		s.logger.Warn("Failed to bump impact metrics",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

// mirrorCommunityAward credits the hosting community's ledger with the same
// points. Failure here is logged, not surfaced; the user-side award already
// committed.
func (s *participationService) mirrorCommunityAward(ctx context.Context, p *models.Participation, points int64) {
	relatedType := "participation"
	_, err := s.pointsService.Award(ctx, &AwardPointsRequest{
		SubjectKind:    models.SubjectCommunity,
		SubjectID:      p.CommunityID,
		Points:         points,
		Category:       models.CategoryEventParticipation,
		Description:    fmt.Sprintf("Verified attendance at event #%d", p.EventID),
		RelatedType:    &relatedType,
		RelatedID:      &p.ID,
		IdempotencyKey: fmt.Sprintf("participation:%d:community", p.ID),
	})
	if err != nil && !HasErrorCode(err, CodeDuplicateAward) {
		s.logger.Warn("Failed to mirror award to community ledger",
			zap.Int64("community_id", p.CommunityID),
			zap.Int64("participation_id", p.ID),
			zap.Error(err),
		)
	}
}

// ===============================
// OTHER TRANSITIONS
// ===============================

// Reject declines a registered participation with a mandatory reason.
func (s *participationService) Reject(ctx context.Context, actorID, participationID int64, req *RejectParticipationRequest) (*models.Participation, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("a rejection reason is required", err)
	}

	participation, err := s.participationRepo.GetByID(ctx, participationID)
	if err != nil {
		return nil, NewInternalError("failed to load participation")
	}
	if participation == nil {
		return nil, EntityNotFoundError("participation", participationID)
	}

	if err := s.authorizeOrganizer(ctx, actorID, participation.EventID); err != nil {
		return nil, err
	}

	updated, err := s.participationRepo.Reject(ctx, participationID, req.Reason, actorID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, EntityNotFoundError("participation", participationID)
		case errors.Is(err, repositories.ErrInvalidTransition):
			return nil, NewInvalidStateError(
				"only a registered participation can be rejected", "")
		default:
			return nil, NewInternalError("failed to reject participation")
		}
	}

	_ = s.eventBus.PublishAsync(ctx, events.NewParticipationRejectedEvent(
		updated.ID, updated.EventID, updated.UserID, req.Reason,
	))

	return updated, nil
}

// Complete closes out an attended participation after the event ends.
func (s *participationService) Complete(ctx context.Context, actorID, participationID int64) (*models.Participation, error) {
	participation, err := s.participationRepo.GetByID(ctx, participationID)
	if err != nil {
		return nil, NewInternalError("failed to load participation")
	}
	if participation == nil {
		return nil, EntityNotFoundError("participation", participationID)
	}

	if err := s.authorizeOrganizer(ctx, actorID, participation.EventID); err != nil {
		return nil, err
	}

	updated, err := s.participationRepo.Complete(ctx, participationID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, EntityNotFoundError("participation", participationID)
		case errors.Is(err, repositories.ErrInvalidTransition):
			return nil, NewInvalidStateError(
				"only an attended participation can be completed", "")
		default:
			return nil, NewInternalError("failed to complete participation")
		}
	}

	return updated, nil
}

// Leave removes the caller's participation. Points already earned stay on
// the ledger; the history remains the record of why they were awarded.
func (s *participationService) Leave(ctx context.Context, userID, eventID int64) error {
	_, err := s.participationRepo.Delete(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("no active participation for this event")
		}
		s.logger.Error("Failed to leave event",
			zap.Int64("user_id", userID),
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		return NewInternalError("failed to leave event")
	}
	return nil
}

// AddToWishlist records interest in an event without committing a spot.
func (s *participationService) AddToWishlist(ctx context.Context, userID, eventID int64) error {
	event, err := s.communityRepo.GetEvent(ctx, eventID)
	if err != nil {
		return NewInternalError("failed to load event")
	}
	if event == nil {
		return EntityNotFoundError("event", eventID)
	}

	if err := s.participationRepo.AddToWishlist(ctx, userID, eventID); err != nil {
		return NewInternalError("failed to add event to wishlist")
	}
	return nil
}

// ===============================
// AUTHORIZATION
// ===============================

// authorizeOrganizer allows the event creator, a moderator or an admin to
// act on an event's participations.
func (s *participationService) authorizeOrganizer(ctx context.Context, actorID, eventID int64) error {
	event, err := s.communityRepo.GetEvent(ctx, eventID)
	if err != nil {
		return NewInternalError("failed to load event")
	}
	if event == nil {
		return EntityNotFoundError("event", eventID)
	}

	if event.CreatedBy == actorID {
		return nil
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return NewInternalError("failed to load user")
	}
	if actor == nil {
		return NewUnauthorizedError("unknown user")
	}
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleModerator {
		return NewForbiddenError("only the event organizer or staff can do this")
	}
	return nil
}
