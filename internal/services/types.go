// file: internal/services/types.go
package services

import (
	"time"

	"engagehub/internal/models"
)

// ===============================
// REQUEST TYPES
// ===============================

// AwardPointsRequest describes one explicit ledger award. Points may be
// negative to record a deduction; zero is rejected.
type AwardPointsRequest struct {
	SubjectKind    models.SubjectKind   `json:"subject_kind" validate:"required"`
	SubjectID      int64                `json:"subject_id" validate:"required,min=1"`
	Points         int64                `json:"points" validate:"required"`
	Category       models.PointCategory `json:"category" validate:"required"`
	Description    string               `json:"description" validate:"required,max=500"`
	RelatedType    *string              `json:"related_type,omitempty"`
	RelatedID      *int64               `json:"related_id,omitempty"`
	IdempotencyKey string               `json:"idempotency_key,omitempty" validate:"omitempty,max=200"`
}

// SubmitRatingRequest creates a new rating for a community or event.
type SubmitRatingRequest struct {
	EntityType models.EntityType `json:"entity_type" validate:"required,oneof=community event"`
	EntityID   int64             `json:"entity_id" validate:"required,min=1"`
	Rating     int               `json:"rating" validate:"required,min=1,max=5"`
	Review     *string           `json:"review,omitempty" validate:"omitempty,max=5000"`
}

// UpdateRatingRequest changes an existing rating's value or review.
type UpdateRatingRequest struct {
	Rating int     `json:"rating" validate:"required,min=1,max=5"`
	Review *string `json:"review,omitempty" validate:"omitempty,max=5000"`
}

// RegisterParticipationRequest registers the caller for an event.
type RegisterParticipationRequest struct {
	EventID      int64 `json:"event_id" validate:"required,min=1"`
	FromWishlist bool  `json:"from_wishlist"`
}

// VerifyAttendanceRequest records verified attendance with hours.
type VerifyAttendanceRequest struct {
	Hours float64 `json:"hours" validate:"min=0,max=1000"`
}

// RejectParticipationRequest rejects a pending registration.
type RejectParticipationRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// ApplyForManagerRequest submits a community manager application.
type ApplyForManagerRequest struct {
	CommunityName string `json:"community_name" validate:"required,min=3,max=120"`
	Motivation    string `json:"motivation" validate:"required,min=20,max=2000"`
}

// ReviewApplicationRequest decides a pending manager application.
type ReviewApplicationRequest struct {
	Approve bool    `json:"approve"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=500"`
	Reason  string  `json:"reason,omitempty" validate:"required_if=Approve false,max=500"`
}

// SubmitVerificationRequest asks for admin verification of a community.
type SubmitVerificationRequest struct {
	CommunityID int64   `json:"community_id" validate:"required,min=1"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ReviewVerificationRequest decides a pending community verification.
type ReviewVerificationRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" validate:"required_if=Approve false,max=500"`
}

// CreateEventRequest creates an event under a verified community.
type CreateEventRequest struct {
	CommunityID     int64      `json:"community_id" validate:"required,min=1"`
	Title           string     `json:"title" validate:"required,min=5,max=255"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=10000"`
	StartsAt        time.Time  `json:"starts_at" validate:"required"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	MaxParticipants *int       `json:"max_participants,omitempty" validate:"omitempty,min=1"`
}

// ===============================
// RESPONSE TYPES
// ===============================

// AwardResult reports the committed ledger state after an award.
type AwardResult struct {
	SubjectKind models.SubjectKind `json:"subject_kind"`
	SubjectID   int64              `json:"subject_id"`
	Points      int64              `json:"points"`
	NewTotal    int64              `json:"new_total"`
	NewLevel    int                `json:"new_level"`
	NewRank     string             `json:"new_rank"`
	LeveledUp   bool               `json:"leveled_up"`
}

// AttendanceResult reports a verified attendance along with the award it
// triggered.
type AttendanceResult struct {
	Participation *models.Participation `json:"participation"`
	Award         *AwardResult          `json:"award"`
}
