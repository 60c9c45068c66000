// file: internal/services/points_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"engagehub/internal/events"
	"engagehub/internal/models"
	"engagehub/internal/rank"
	"engagehub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Standard award amounts. Attendance earns the base plus a per-hour bonus.
const (
	PointsAttendanceBase   = 50
	PointsPerHour          = 10
	PointsEventCreation    = 25
	PointsCommunityJoined  = 10
	PointsCommunityCreated = 100
)

// pointsService implements PointsService
type pointsService struct {
	pointsRepo repositories.PointsRepository
	userRepo   repositories.UserRepository
	eventBus   events.EventBus
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewPointsService creates a new points service
func NewPointsService(
	pointsRepo repositories.PointsRepository,
	userRepo repositories.UserRepository,
	eventBus events.EventBus,
	validate *validator.Validate,
	logger *zap.Logger,
) PointsService {
	return &pointsService{
		pointsRepo: pointsRepo,
		userRepo:   userRepo,
		eventBus:   eventBus,
		validate:   validate,
		logger:     logger,
	}
}

// Award applies one signed delta to a user or community ledger. Negative
// deltas record deductions and decrement the total. Retried requests with
// the same idempotency key succeed at most once; the replay surfaces as a
// conflict without touching any total.
func (s *pointsService) Award(ctx context.Context, req *AwardPointsRequest) (*AwardResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid award request", err)
	}
	if !req.SubjectKind.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown subject kind %q", req.SubjectKind), nil)
	}
	if !req.Category.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown point category %q", req.Category), nil)
	}

	award := &repositories.PointsAward{
		SubjectKind:    req.SubjectKind,
		SubjectID:      req.SubjectID,
		Points:         req.Points,
		Category:       req.Category,
		Description:    req.Description,
		RelatedType:    req.RelatedType,
		RelatedID:      req.RelatedID,
		IdempotencyKey: req.IdempotencyKey,
		RankFor:        rankScaleFor(req.SubjectKind),
	}
	if award.IdempotencyKey == "" {
		award.IdempotencyKey = buildIdempotencyKey(req)
	}

	outcome, err := s.pointsRepo.Award(ctx, award)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, NewConflictError("points already awarded for this action", CodeDuplicateAward)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, EntityNotFoundError(string(req.SubjectKind), req.SubjectID)
		default:
			s.logger.Error("Failed to award points",
				zap.String("subject_kind", string(req.SubjectKind)),
				zap.Int64("subject_id", req.SubjectID),
				zap.Error(err),
			)
			return nil, NewInternalError("failed to award points")
		}
	}

	result := &AwardResult{
		SubjectKind: req.SubjectKind,
		SubjectID:   req.SubjectID,
		Points:      req.Points,
		NewTotal:    outcome.NewTotal,
		NewLevel:    outcome.NewLevel,
		NewRank:     outcome.NewRank,
		LeveledUp:   outcome.LeveledUp,
	}

	s.publishAwardEvents(ctx, req, result)

	return result, nil
}

func (s *pointsService) publishAwardEvents(ctx context.Context, req *AwardPointsRequest, result *AwardResult) {
	var actorID *int64
	if req.SubjectKind == models.SubjectUser {
		actorID = &req.SubjectID
	}

	_ = s.eventBus.PublishAsync(ctx, events.NewPointsAwardedEvent(
		string(req.SubjectKind), req.SubjectID, req.Points,
		string(req.Category), result.NewTotal, actorID,
	))

	if result.LeveledUp {
		_ = s.eventBus.PublishAsync(ctx, events.NewLevelUpEvent(
			string(req.SubjectKind), req.SubjectID,
			result.NewLevel, result.NewRank, result.NewTotal,
		))
	}
}

// GetVolunteerPoints returns a user's ledger view. An existing user with no
// awards yet reads as a zeroed ledger; an unknown user is a not-found.
func (s *pointsService) GetVolunteerPoints(ctx context.Context, userID int64) (*models.VolunteerPoints, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to look up user", zap.Int64("user_id", userID), zap.Error(err))
		return nil, NewInternalError("failed to get volunteer points")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", userID)
	}

	vp, err := s.pointsRepo.GetVolunteerPoints(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get volunteer points", zap.Int64("user_id", userID), zap.Error(err))
		return nil, NewInternalError("failed to get volunteer points")
	}
	return vp, nil
}

// GetCommunityRewards returns a community's ledger view.
func (s *pointsService) GetCommunityRewards(ctx context.Context, communityID int64) (*models.CommunityRewards, error) {
	cr, err := s.pointsRepo.GetCommunityRewards(ctx, communityID)
	if err != nil {
		s.logger.Error("Failed to get community rewards", zap.Int64("community_id", communityID), zap.Error(err))
		return nil, NewInternalError("failed to get community rewards")
	}
	if cr == nil {
		return nil, EntityNotFoundError("community", communityID)
	}
	return cr, nil
}

// GetHistory returns a page of the subject's award history.
func (s *pointsService) GetHistory(ctx context.Context, kind models.SubjectKind, subjectID int64, p models.PaginationParams) ([]*models.PointsEntry, error) {
	if !kind.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown subject kind %q", kind), nil)
	}

	entries, err := s.pointsRepo.GetHistory(ctx, kind, subjectID, p)
	if err != nil {
		s.logger.Error("Failed to get points history", zap.Int64("subject_id", subjectID), zap.Error(err))
		return nil, NewInternalError("failed to get points history")
	}
	return entries, nil
}

// Leaderboard returns the top users by total points.
func (s *pointsService) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	entries, err := s.pointsRepo.TopUsers(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get leaderboard", zap.Error(err))
		return nil, NewInternalError("failed to get leaderboard")
	}
	return entries, nil
}

// ===============================
// HELPERS
// ===============================

// rankScaleFor selects the rank ladder matching the ledger subject.
func rankScaleFor(kind models.SubjectKind) func(int64) rank.Rank {
	if kind == models.SubjectCommunity {
		return rank.ForCommunity
	}
	return rank.ForUser
}

// buildIdempotencyKey derives a stable key for awards tied to a concrete
// source action, so retries of the same action cannot double-award.
func buildIdempotencyKey(req *AwardPointsRequest) string {
	relatedType := "none"
	var relatedID int64
	if req.RelatedType != nil {
		relatedType = *req.RelatedType
	}
	if req.RelatedID != nil {
		relatedID = *req.RelatedID
	}
	return fmt.Sprintf("%s:%d:%s:%s:%d",
		req.SubjectKind, req.SubjectID, req.Category, relatedType, relatedID)
}
