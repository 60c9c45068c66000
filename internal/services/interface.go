// file: internal/services/interface.go
package services

import (
	"context"

	"engagehub/internal/models"
)

// PointsService owns the engagement ledger: explicit awards, ledger reads
// and the leaderboard.
type PointsService interface {
	Award(ctx context.Context, req *AwardPointsRequest) (*AwardResult, error)
	GetVolunteerPoints(ctx context.Context, userID int64) (*models.VolunteerPoints, error)
	GetCommunityRewards(ctx context.Context, communityID int64) (*models.CommunityRewards, error)
	GetHistory(ctx context.Context, kind models.SubjectKind, subjectID int64, p models.PaginationParams) ([]*models.PointsEntry, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// ParticipationService drives the participation state machine and the
// attendance-triggered awards.
type ParticipationService interface {
	Register(ctx context.Context, userID int64, req *RegisterParticipationRequest) (*models.Participation, error)
	VerifyAttendance(ctx context.Context, actorID, participationID int64, req *VerifyAttendanceRequest) (*AttendanceResult, error)
	Reject(ctx context.Context, actorID, participationID int64, req *RejectParticipationRequest) (*models.Participation, error)
	Complete(ctx context.Context, actorID, participationID int64) (*models.Participation, error)
	Leave(ctx context.Context, userID, eventID int64) error
	AddToWishlist(ctx context.Context, userID, eventID int64) error
}

// RatingService owns ratings and keeps the denormalized aggregates on rated
// entities consistent with the full rating set.
type RatingService interface {
	Submit(ctx context.Context, userID int64, req *SubmitRatingRequest) (*models.Rating, error)
	Update(ctx context.Context, userID, ratingID int64, req *UpdateRatingRequest) (*models.Rating, error)
	Delete(ctx context.Context, userID, ratingID int64) error
	ListForEntity(ctx context.Context, entityType models.EntityType, entityID int64, p models.PaginationParams) ([]*models.Rating, error)
	Vote(ctx context.Context, ratingID int64, helpful bool) (*models.Rating, error)
}

// VerificationService runs the two admin-gated workflows: community manager
// applications and community verification requests.
type VerificationService interface {
	SubmitApplication(ctx context.Context, applicantID int64, req *ApplyForManagerRequest) (*models.CommunityManagerApplication, error)
	GetApplication(ctx context.Context, id int64) (*models.CommunityManagerApplication, error)
	ReviewApplication(ctx context.Context, reviewerID, applicationID int64, req *ReviewApplicationRequest) (*models.CommunityManagerApplication, error)

	SubmitCommunityVerification(ctx context.Context, userID int64, req *SubmitVerificationRequest) (*models.CommunityVerification, error)
	ReviewCommunityVerification(ctx context.Context, reviewerID, verificationID int64, req *ReviewVerificationRequest) (*models.CommunityVerification, error)
}

// UserService exposes user profiles and their impact counters.
type UserService interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetImpactMetrics(ctx context.Context, userID int64) (*models.ImpactMetric, error)
}

// CommunityService covers the community-facing operations that feed the
// ledger: joining and event creation.
type CommunityService interface {
	GetCommunity(ctx context.Context, id int64) (*models.Community, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	Join(ctx context.Context, userID, communityID int64) error
	CreateEvent(ctx context.Context, userID int64, req *CreateEventRequest) (*models.Event, error)
}
