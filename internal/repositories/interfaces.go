// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"errors"

	"engagehub/internal/models"
	"engagehub/internal/rank"
)

// Sentinel errors shared by all repositories. Services translate these into
// their structured error taxonomy; repositories never shape HTTP concerns.
var (
	// ErrDuplicate signals a unique-constraint violation (duplicate rating,
	// duplicate active registration, replayed idempotency key, ...).
	ErrDuplicate = errors.New("repositories: duplicate record")

	// ErrCapacityExceeded signals a registration attempt on a full event.
	ErrCapacityExceeded = errors.New("repositories: event capacity exceeded")

	// ErrInvalidTransition signals a guarded status update that matched no
	// row because the record is not in the required state.
	ErrInvalidTransition = errors.New("repositories: invalid status transition")

	// ErrNotFound signals a mutation whose target row does not exist. Read
	// methods return (nil, nil) instead.
	ErrNotFound = errors.New("repositories: record not found")
)

// ImpactDelta describes increments to apply to a user's impact counters.
type ImpactDelta struct {
	EventsParticipated int
	EventsCreated      int
	CommunitiesJoined  int
	CommunitiesCreated int
	HoursVolunteered   float64
	CO2Reduced         float64
	TreesPlanted       int
	PeopleHelped       int
}

// PointsAward is the repository-level description of one ledger award.
// RankFor is injected by the service so the repository can derive the
// post-increment rank inside the same transaction without owning the scale.
type PointsAward struct {
	SubjectKind    models.SubjectKind
	SubjectID      int64
	Points         int64
	Category       models.PointCategory
	Description    string
	RelatedType    *string
	RelatedID      *int64
	IdempotencyKey string
	RankFor        func(int64) rank.Rank
}

// AwardOutcome reports the post-increment ledger state.
type AwardOutcome struct {
	NewTotal      int64
	PreviousLevel int
	NewLevel      int
	NewRank       string
	LeveledUp     bool
}

// UserRepository reads and mutates user records and impact metrics.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateRole(ctx context.Context, userID int64, role string) error
	GetImpactMetric(ctx context.Context, userID int64) (*models.ImpactMetric, error)
	BumpImpact(ctx context.Context, userID int64, delta ImpactDelta) error
}

// PointsRepository owns the append-only points history and the running
// totals derived from it. Award applies the history insert, the atomic total
// increment and the rank update as one transaction.
type PointsRepository interface {
	Award(ctx context.Context, award *PointsAward) (*AwardOutcome, error)
	GetVolunteerPoints(ctx context.Context, userID int64) (*models.VolunteerPoints, error)
	GetCommunityRewards(ctx context.Context, communityID int64) (*models.CommunityRewards, error)
	GetHistory(ctx context.Context, kind models.SubjectKind, subjectID int64, p models.PaginationParams) ([]*models.PointsEntry, error)
	TopUsers(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// ParticipationRepository owns participation rows and their guarded status
// transitions.
type ParticipationRepository interface {
	Register(ctx context.Context, userID, eventID int64, fromWishlist bool) (*models.Participation, error)
	GetByID(ctx context.Context, id int64) (*models.Participation, error)
	MarkAttended(ctx context.Context, id int64, hours float64, points int64, verifiedBy int64) (*models.Participation, error)
	RevertAttended(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, reason string, actorID int64) (*models.Participation, error)
	Complete(ctx context.Context, id int64) (*models.Participation, error)
	Delete(ctx context.Context, userID, eventID int64) (*models.Participation, error)
	CountActiveForEvent(ctx context.Context, eventID int64) (int, error)
	HasAttended(ctx context.Context, userID int64, entityType models.EntityType, entityID int64) (bool, error)
	AddToWishlist(ctx context.Context, userID, eventID int64) error
}

// RatingRepository owns ratings and the write-back of recomputed aggregates
// onto the rated entity.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByID(ctx context.Context, id int64) (*models.Rating, error)
	Update(ctx context.Context, id int64, value int, review *string) (*models.Rating, error)
	Delete(ctx context.Context, id int64) (*models.Rating, error)
	ListForEntity(ctx context.Context, entityType models.EntityType, entityID int64, p models.PaginationParams) ([]*models.Rating, error)
	Recompute(ctx context.Context, entityType models.EntityType, entityID int64) (*models.RatingAggregate, error)
	Vote(ctx context.Context, id int64, helpful bool) (*models.Rating, error)
}

// CommunityRepository reads communities/events and maintains membership.
type CommunityRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Community, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	AddMember(ctx context.Context, communityID, userID int64) error
	IsMember(ctx context.Context, communityID, userID int64) (bool, error)
}

// VerificationRepository owns the two verification workflows. Approval of a
// manager application is a single transaction covering the application
// update, the community creation and the role promotion.
type VerificationRepository interface {
	CreateApplication(ctx context.Context, app *models.CommunityManagerApplication) error
	GetApplication(ctx context.Context, id int64) (*models.CommunityManagerApplication, error)
	LatestApplicationByApplicant(ctx context.Context, applicantID int64) (*models.CommunityManagerApplication, error)
	ApproveApplication(ctx context.Context, id, reviewerID int64, notes *string) (*models.CommunityManagerApplication, *models.Community, error)
	RejectApplication(ctx context.Context, id, reviewerID int64, reason string) (*models.CommunityManagerApplication, error)

	CreateVerification(ctx context.Context, v *models.CommunityVerification) error
	GetVerification(ctx context.Context, id int64) (*models.CommunityVerification, error)
	ReviewVerification(ctx context.Context, id, reviewerID int64, approve bool, note string) (*models.CommunityVerification, error)
}
