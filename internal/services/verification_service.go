// file: internal/services/verification_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"engagehub/internal/events"
	"engagehub/internal/models"
	"engagehub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ReapplicationCooldown is the wait after a rejected manager application
// before the applicant may apply again.
const ReapplicationCooldown = 30 * 24 * time.Hour

// verificationService implements VerificationService
type verificationService struct {
	verificationRepo repositories.VerificationRepository
	communityRepo    repositories.CommunityRepository
	userRepo         repositories.UserRepository
	pointsService    PointsService
	eventBus         events.EventBus
	validate         *validator.Validate
	logger           *zap.Logger
	now              func() time.Time
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	verificationRepo repositories.VerificationRepository,
	communityRepo repositories.CommunityRepository,
	userRepo repositories.UserRepository,
	pointsService PointsService,
	eventBus events.EventBus,
	validate *validator.Validate,
	logger *zap.Logger,
) VerificationService {
	return &verificationService{
		verificationRepo: verificationRepo,
		communityRepo:    communityRepo,
		userRepo:         userRepo,
		pointsService:    pointsService,
		eventBus:         eventBus,
		validate:         validate,
		logger:           logger,
		now:              time.Now,
	}
}

// ===============================
// MANAGER APPLICATIONS
// ===============================

// SubmitApplication files a community manager application. One pending
// application per applicant; a rejection starts a cooldown before the next
// attempt.
func (s *verificationService) SubmitApplication(ctx context.Context, applicantID int64, req *ApplyForManagerRequest) (*models.CommunityManagerApplication, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid application", err)
	}

	latest, err := s.verificationRepo.LatestApplicationByApplicant(ctx, applicantID)
	if err != nil {
		return nil, NewInternalError("failed to check previous applications")
	}
	if latest != nil {
		switch latest.Status {
		case models.VerificationPending:
			return nil, NewConflictError("you already have a pending application", CodePendingApplication)
		case models.VerificationRejected:
			if latest.ReviewedAt != nil {
				nextAllowed := latest.ReviewedAt.Add(ReapplicationCooldown)
				if s.now().Before(nextAllowed) {
					return nil, NewBusinessError(
						"you must wait before applying again", CodeCooldownActive,
					).WithDetails(map[string]interface{}{
						"next_allowed_at": nextAllowed,
					})
				}
			}
		}
	}

	app := &models.CommunityManagerApplication{
		ApplicantID:   applicantID,
		CommunityName: req.CommunityName,
		Motivation:    req.Motivation,
	}
	if err := s.verificationRepo.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("you already have a pending application", CodePendingApplication)
		}
		s.logger.Error("Failed to create application",
			zap.Int64("applicant_id", applicantID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to submit application")
	}

	return app, nil
}

// GetApplication retrieves an application by id.
func (s *verificationService) GetApplication(ctx context.Context, id int64) (*models.CommunityManagerApplication, error) {
	app, err := s.verificationRepo.GetApplication(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load application")
	}
	if app == nil {
		return nil, EntityNotFoundError("application", id)
	}
	return app, nil
}

// ReviewApplication decides a pending application. Approval atomically
// creates the verified community, promotes the applicant and seeds the
// community ledger; it then pays out the founding award.
func (s *verificationService) ReviewApplication(ctx context.Context, reviewerID, applicationID int64, req *ReviewApplicationRequest) (*models.CommunityManagerApplication, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid review", err)
	}
	if err := s.requireAdmin(ctx, reviewerID); err != nil {
		return nil, err
	}

	var app *models.CommunityManagerApplication
	var decision string

	if req.Approve {
		decision = models.VerificationApproved
		approved, community, err := s.verificationRepo.ApproveApplication(ctx, applicationID, reviewerID, req.Notes)
		if err != nil {
			return nil, s.mapDecisionError(err, applicationID)
		}
		app = approved

		s.awardFounding(ctx, app.ApplicantID, community.ID)
	} else {
		decision = models.VerificationRejected
		rejected, err := s.verificationRepo.RejectApplication(ctx, applicationID, reviewerID, req.Reason)
		if err != nil {
			return nil, s.mapDecisionError(err, applicationID)
		}
		app = rejected
	}

	_ = s.eventBus.PublishAsync(ctx, events.NewApplicationDecidedEvent(
		app.ID, app.ApplicantID, decision, app.CreatedCommunityID, reviewerID,
	))

	return app, nil
}

// awardFounding pays the community-creation award and bumps the founder's
// impact counters. The community itself already exists; failures here are
// logged rather than unwinding the approval.
func (s *verificationService) awardFounding(ctx context.Context, applicantID, communityID int64) {
	relatedType := "community"
	_, err := s.pointsService.Award(ctx, &AwardPointsRequest{
		SubjectKind:    models.SubjectUser,
		SubjectID:      applicantID,
		Points:         PointsCommunityCreated,
		Category:       models.CategoryCommunityCreation,
		Description:    fmt.Sprintf("Founded community #%d", communityID),
		RelatedType:    &relatedType,
		RelatedID:      &communityID,
		IdempotencyKey: fmt.Sprintf("community:%d:founded", communityID),
	})
	if err != nil && !HasErrorCode(err, CodeDuplicateAward) {
		s.logger.Warn("Failed to award founding points",
			zap.Int64("applicant_id", applicantID),
			zap.Int64("community_id", communityID),
			zap.Error(err),
		)
	}

	if err := s.userRepo.BumpImpact(ctx, applicantID, repositories.ImpactDelta{
		CommunitiesCreated: 1,
		CommunitiesJoined:  1,
	}); err != nil {
		s.logger.Warn("Failed to bump founder impact metrics",
			zap.Int64("applicant_id", applicantID),
			zap.Error(err),
		)
	}
}

// ===============================
// COMMUNITY VERIFICATION
// ===============================

// SubmitCommunityVerification asks for admin review of a community. Only the
// community's creator or staff may submit.
func (s *verificationService) SubmitCommunityVerification(ctx context.Context, userID int64, req *SubmitVerificationRequest) (*models.CommunityVerification, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid verification request", err)
	}

	community, err := s.communityRepo.GetByID(ctx, req.CommunityID)
	if err != nil {
		return nil, NewInternalError("failed to load community")
	}
	if community == nil {
		return nil, EntityNotFoundError("community", req.CommunityID)
	}
	if community.VerificationStatus == models.VerificationVerified {
		return nil, NewConflictError("community is already verified", "")
	}

	if community.CreatedBy != userID {
		if err := s.requireAdmin(ctx, userID); err != nil {
			return nil, NewForbiddenError("only the community creator or an admin can request verification")
		}
	}

	verification := &models.CommunityVerification{
		CommunityID: req.CommunityID,
		SubmittedBy: userID,
		Notes:       req.Notes,
	}
	if err := s.verificationRepo.CreateVerification(ctx, verification); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("a verification request is already pending", "")
		}
		return nil, NewInternalError("failed to submit verification request")
	}

	return verification, nil
}

// ReviewCommunityVerification decides a pending verification request.
func (s *verificationService) ReviewCommunityVerification(ctx context.Context, reviewerID, verificationID int64, req *ReviewVerificationRequest) (*models.CommunityVerification, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid review", err)
	}
	if err := s.requireAdmin(ctx, reviewerID); err != nil {
		return nil, err
	}

	verification, err := s.verificationRepo.ReviewVerification(ctx, verificationID, reviewerID, req.Approve, req.Note)
	if err != nil {
		return nil, s.mapDecisionError(err, verificationID)
	}

	decision := models.VerificationRejected
	if req.Approve {
		decision = models.VerificationVerified
	}
	_ = s.eventBus.PublishAsync(ctx, events.NewCommunityVerifiedEvent(
		verification.ID, verification.CommunityID, decision, reviewerID,
	))

	return verification, nil
}

// ===============================
// HELPERS
// ===============================

func (s *verificationService) requireAdmin(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return NewInternalError("failed to load user")
	}
	if user == nil {
		return NewUnauthorizedError("unknown user")
	}
	if !user.IsAdmin() {
		return NewForbiddenError("admin access required")
	}
	return nil
}

// mapDecisionError translates repository sentinels for review operations.
// Decisions are terminal: a second review of the same record is an invalid
// state, never a silent overwrite.
func (s *verificationService) mapDecisionError(err error, id int64) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return EntityNotFoundError("request", id)
	case errors.Is(err, repositories.ErrInvalidTransition):
		return NewInvalidStateError("this request has already been decided", "")
	default:
		s.logger.Error("Review operation failed", zap.Int64("id", id), zap.Error(err))
		return NewInternalError("failed to review request")
	}
}
