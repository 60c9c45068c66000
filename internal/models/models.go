// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// User represents a platform member
type User struct {
	ID       int64  `json:"id" db:"id"`
	Email    string `json:"email" db:"email" validate:"required,email,max=320"`
	Username string `json:"username" db:"username" validate:"required,min=3,max=50,alphanum"`

	DisplayName string  `json:"display_name" db:"display_name"`
	Bio         *string `json:"bio,omitempty" db:"bio" validate:"omitempty,max=1000"`

	// System fields
	Role     string `json:"role" db:"role" validate:"required,oneof=user moderator admin"`
	IsActive bool   `json:"is_active" db:"is_active"`

	// Ledger-owned fields. Points is the running total maintained by the
	// points ledger; Level/Rank are derived from it and never set directly.
	Points int64  `json:"points" db:"points"`
	Level  int    `json:"level" db:"level"`
	Rank   string `json:"rank" db:"rank"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Community represents a volunteer community
type Community struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name" validate:"required,min=3,max=120"`
	Description *string `json:"description,omitempty" db:"description" validate:"omitempty,max=2000"`
	CreatedBy   int64   `json:"created_by" db:"created_by"`

	// Verification gate. Events may only be created under a verified community.
	VerificationStatus string `json:"verification_status" db:"verification_status"`

	// Rating aggregate, recomputed from the full rating set on every mutation.
	AvgRating    float64 `json:"avg_rating" db:"avg_rating"`
	TotalRatings int     `json:"total_ratings" db:"total_ratings"`

	MemberCount int `json:"member_count" db:"member_count"`
	EventCount  int `json:"event_count" db:"event_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Event represents a community event users can attend
type Event struct {
	ID          int64   `json:"id" db:"id"`
	CommunityID int64   `json:"community_id" db:"community_id" validate:"required"`
	CreatedBy   int64   `json:"created_by" db:"created_by"`
	Title       string  `json:"title" db:"title" validate:"required,min=5,max=255"`
	Description *string `json:"description,omitempty" db:"description" validate:"omitempty,max=10000"`

	StartsAt        time.Time `json:"starts_at" db:"starts_at"`
	EndsAt          *time.Time `json:"ends_at,omitempty" db:"ends_at"`
	MaxParticipants *int      `json:"max_participants,omitempty" db:"max_participants" validate:"omitempty,min=1"`

	// Rating aggregate, recomputed from the full rating set on every mutation.
	AvgRating    float64 `json:"avg_rating" db:"avg_rating"`
	TotalRatings int     `json:"total_ratings" db:"total_ratings"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Computed fields (not in DB)
	ParticipantCount int  `json:"participant_count" db:"-"`
	AvailableSpots   *int `json:"available_spots,omitempty" db:"-"`
	IsFull           bool `json:"is_full" db:"-"`
}

// ComputeCapacity fills the derived capacity fields from the active
// participant count. Unlimited events (nil MaxParticipants) are never full.
func (e *Event) ComputeCapacity(activeParticipants int) {
	e.ParticipantCount = activeParticipants
	if e.MaxParticipants == nil {
		e.AvailableSpots = nil
		e.IsFull = false
		return
	}
	avail := *e.MaxParticipants - activeParticipants
	if avail < 0 {
		avail = 0
	}
	e.AvailableSpots = &avail
	e.IsFull = activeParticipants >= *e.MaxParticipants
}

// ===============================
// ENGAGEMENT LEDGER ENTITIES
// ===============================

// VolunteerPoints mirrors a user's ledger state: running total, derived
// level/rank and the per-category breakdown computed from the history.
type VolunteerPoints struct {
	UserID       int64            `json:"user_id" db:"user_id"`
	TotalPoints  int64            `json:"total_points" db:"total_points"`
	CurrentLevel int              `json:"current_level" db:"current_level"`
	CurrentRank  string           `json:"current_rank" db:"current_rank"`
	Breakdown    map[string]int64 `json:"breakdown" db:"-"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// CommunityRewards mirrors VolunteerPoints at community scope.
type CommunityRewards struct {
	CommunityID  int64            `json:"community_id" db:"community_id"`
	TotalPoints  int64            `json:"total_points" db:"total_points"`
	CurrentLevel int              `json:"current_level" db:"current_level"`
	CommunityTier string          `json:"community_tier" db:"community_tier"`
	Breakdown    map[string]int64 `json:"breakdown" db:"-"`
	AvgRating    float64          `json:"avg_rating" db:"avg_rating"`
	TotalRatings int              `json:"total_ratings" db:"total_ratings"`
	MemberCount  int              `json:"member_count" db:"member_count"`
	EventCount   int              `json:"event_count" db:"event_count"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// PointsEntry is one immutable row of the append-only points history. The
// history is the only source of truth for why a total changed.
type PointsEntry struct {
	ID             int64      `json:"id" db:"id"`
	SubjectKind    string     `json:"subject_kind" db:"subject_kind"`
	SubjectID      int64      `json:"subject_id" db:"subject_id"`
	Points         int64      `json:"points" db:"points"`
	Category       string     `json:"category" db:"category"`
	Description    string     `json:"description" db:"description"`
	RelatedType    *string    `json:"related_type,omitempty" db:"related_type"`
	RelatedID      *int64     `json:"related_id,omitempty" db:"related_id"`
	IdempotencyKey string     `json:"idempotency_key" db:"idempotency_key"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// ImpactMetric holds cumulative impact counters, 1:1 with a user.
// Created lazily on first read if absent.
type ImpactMetric struct {
	UserID             int64     `json:"user_id" db:"user_id"`
	EventsParticipated int       `json:"events_participated" db:"events_participated"`
	EventsCreated      int       `json:"events_created" db:"events_created"`
	CommunitiesJoined  int       `json:"communities_joined" db:"communities_joined"`
	CommunitiesCreated int       `json:"communities_created" db:"communities_created"`
	HoursVolunteered   float64   `json:"hours_volunteered" db:"hours_volunteered"`
	CO2Reduced         float64   `json:"co2_reduced" db:"co2_reduced"`
	TreesPlanted       int       `json:"trees_planted" db:"trees_planted"`
	PeopleHelped       int       `json:"people_helped" db:"people_helped"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	TotalPoints int64  `json:"total_points"`
	Level       int    `json:"level"`
	RankLabel   string `json:"rank_label"`
}

// ===============================
// PARTICIPATION
// ===============================

// Participation is the relationship record between one user and one event.
// At most one active row may exist per (user, event) pair; re-registering
// after a leave creates a fresh record.
type Participation struct {
	ID          int64 `json:"id" db:"id"`
	UserID      int64 `json:"user_id" db:"user_id" validate:"required"`
	EventID     int64 `json:"event_id" db:"event_id" validate:"required"`
	CommunityID int64 `json:"community_id" db:"community_id"`

	Status           string     `json:"status" db:"status"`
	HoursContributed float64    `json:"hours_contributed" db:"hours_contributed"`
	PointsEarned     int64      `json:"points_earned" db:"points_earned"`
	RejectionReason  *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	VerifiedBy       *int64     `json:"verified_by,omitempty" db:"verified_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ===============================
// RATINGS
// ===============================

// Rating is a 1-5 review of a community or event. A user may rate a given
// entity at most once.
type Rating struct {
	ID         int64   `json:"id" db:"id"`
	RatedBy    int64   `json:"rated_by" db:"rated_by" validate:"required"`
	EntityType string  `json:"entity_type" db:"entity_type" validate:"required,oneof=community event"`
	EntityID   int64   `json:"entity_id" db:"entity_id" validate:"required"`
	Rating     int     `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Review     *string `json:"review,omitempty" db:"review" validate:"omitempty,max=5000"`

	// Computed once at creation from participation/membership state,
	// immutable afterwards.
	IsVerifiedParticipant bool `json:"is_verified_participant" db:"is_verified_participant"`

	HelpfulCount   int `json:"helpful_count" db:"helpful_count"`
	UnhelpfulCount int `json:"unhelpful_count" db:"unhelpful_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RatingAggregate is the recomputed average/count pair for a rated entity.
type RatingAggregate struct {
	AvgRating    float64 `json:"avg_rating"`
	TotalRatings int     `json:"total_ratings"`
}

// ===============================
// VERIFICATION WORKFLOW
// ===============================

// CommunityVerification tracks the admin-gated verification of a community.
type CommunityVerification struct {
	ID          int64   `json:"id" db:"id"`
	CommunityID int64   `json:"community_id" db:"community_id" validate:"required"`
	SubmittedBy int64   `json:"submitted_by" db:"submitted_by"`
	Status      string  `json:"status" db:"status"`
	Notes       *string `json:"notes,omitempty" db:"notes" validate:"omitempty,max=500"`
	Reason      *string `json:"reason,omitempty" db:"reason"`

	ReviewedBy *int64     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// CommunityManagerApplication tracks a user's request to found and manage a
// new community. Approval creates a verified community and promotes the
// applicant to moderator.
type CommunityManagerApplication struct {
	ID            int64   `json:"id" db:"id"`
	ApplicantID   int64   `json:"applicant_id" db:"applicant_id" validate:"required"`
	CommunityName string  `json:"community_name" db:"community_name" validate:"required,min=3,max=120"`
	Motivation    string  `json:"motivation" db:"motivation" validate:"required,min=20,max=2000"`
	Status        string  `json:"status" db:"status"`
	Notes         *string `json:"notes,omitempty" db:"notes"`
	Reason        *string `json:"reason,omitempty" db:"reason"`

	CreatedCommunityID *int64     `json:"created_community_id,omitempty" db:"created_community_id"`
	ReviewedBy         *int64     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

// ===============================
// PAGINATION
// ===============================

// PaginationParams are the standard list query parameters.
type PaginationParams struct {
	Limit  int `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `json:"offset" validate:"omitempty,min=0"`
}

// Normalize applies default and maximum bounds.
func (p *PaginationParams) Normalize() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
