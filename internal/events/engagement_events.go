package events

import "time"

// ===============================
// LEDGER EVENTS
// ===============================

// PointsAwardedEvent is emitted after a ledger award commits
type PointsAwardedEvent struct {
	BaseEvent
	SubjectKind string `json:"subject_kind"`
	SubjectID   int64  `json:"subject_id"`
	Points      int64  `json:"points"`
	Category    string `json:"category"`
	NewTotal    int64  `json:"new_total"`
}

// NewPointsAwardedEvent creates a new points awarded event
func NewPointsAwardedEvent(subjectKind string, subjectID, points int64, category string, newTotal int64, actorID *int64) *PointsAwardedEvent {
	return &PointsAwardedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "points.awarded",
			Timestamp: time.Now(),
			UserID:    actorID,
		},
		SubjectKind: subjectKind,
		SubjectID:   subjectID,
		Points:      points,
		Category:    category,
		NewTotal:    newTotal,
	}
}

// LevelUpEvent is emitted when an award pushes a subject across a rank
// threshold
type LevelUpEvent struct {
	BaseEvent
	SubjectKind string `json:"subject_kind"`
	SubjectID   int64  `json:"subject_id"`
	NewLevel    int    `json:"new_level"`
	NewRank     string `json:"new_rank"`
	TotalPoints int64  `json:"total_points"`
}

// NewLevelUpEvent creates a new level up event
func NewLevelUpEvent(subjectKind string, subjectID int64, newLevel int, newRank string, totalPoints int64) *LevelUpEvent {
	return &LevelUpEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "points.level_up",
			Timestamp: time.Now(),
		},
		SubjectKind: subjectKind,
		SubjectID:   subjectID,
		NewLevel:    newLevel,
		NewRank:     newRank,
		TotalPoints: totalPoints,
	}
}

// ===============================
// PARTICIPATION EVENTS
// ===============================

// ParticipationRegisteredEvent is emitted when a user registers for an event
type ParticipationRegisteredEvent struct {
	BaseEvent
	ParticipationID int64 `json:"participation_id"`
	EventID         int64 `json:"event_id"`
	CommunityID     int64 `json:"community_id"`
	FromWishlist    bool  `json:"from_wishlist"`
}

// NewParticipationRegisteredEvent creates a new registration event
func NewParticipationRegisteredEvent(participationID, eventID, communityID, userID int64, fromWishlist bool) *ParticipationRegisteredEvent {
	return &ParticipationRegisteredEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "participation.registered",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		ParticipationID: participationID,
		EventID:         eventID,
		CommunityID:     communityID,
		FromWishlist:    fromWishlist,
	}
}

// AttendanceVerifiedEvent is emitted when an organizer verifies attendance
type AttendanceVerifiedEvent struct {
	BaseEvent
	ParticipationID int64   `json:"participation_id"`
	EventID         int64   `json:"event_id"`
	Hours           float64 `json:"hours"`
	PointsEarned    int64   `json:"points_earned"`
	VerifiedBy      int64   `json:"verified_by"`
}

// NewAttendanceVerifiedEvent creates a new attendance verified event
func NewAttendanceVerifiedEvent(participationID, eventID, userID int64, hours float64, pointsEarned, verifiedBy int64) *AttendanceVerifiedEvent {
	return &AttendanceVerifiedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "participation.attended",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		ParticipationID: participationID,
		EventID:         eventID,
		Hours:           hours,
		PointsEarned:    pointsEarned,
		VerifiedBy:      verifiedBy,
	}
}

// ParticipationRejectedEvent is emitted when an organizer rejects a
// registration
type ParticipationRejectedEvent struct {
	BaseEvent
	ParticipationID int64  `json:"participation_id"`
	EventID         int64  `json:"event_id"`
	Reason          string `json:"reason"`
}

// NewParticipationRejectedEvent creates a new participation rejected event
func NewParticipationRejectedEvent(participationID, eventID, userID int64, reason string) *ParticipationRejectedEvent {
	return &ParticipationRejectedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "participation.rejected",
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		ParticipationID: participationID,
		EventID:         eventID,
		Reason:          reason,
	}
}

// ===============================
// RATING EVENTS
// ===============================

// RatingChangedEvent is emitted whenever a rating is created, updated or
// deleted, carrying the freshly recomputed aggregate
type RatingChangedEvent struct {
	BaseEvent
	RatingID     int64   `json:"rating_id"`
	EntityType   string  `json:"entity_type"`
	EntityID     int64   `json:"entity_id"`
	Action       string  `json:"action"`
	AvgRating    float64 `json:"avg_rating"`
	TotalRatings int     `json:"total_ratings"`
}

// NewRatingChangedEvent creates a new rating changed event
func NewRatingChangedEvent(ratingID int64, entityType string, entityID int64, action string, avgRating float64, totalRatings int, userID *int64) *RatingChangedEvent {
	return &RatingChangedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "rating." + action,
			Timestamp: time.Now(),
			UserID:    userID,
		},
		RatingID:     ratingID,
		EntityType:   entityType,
		EntityID:     entityID,
		Action:       action,
		AvgRating:    avgRating,
		TotalRatings: totalRatings,
	}
}

// ===============================
// VERIFICATION EVENTS
// ===============================

// ApplicationDecidedEvent is emitted when an admin decides a community
// manager application
type ApplicationDecidedEvent struct {
	BaseEvent
	ApplicationID      int64  `json:"application_id"`
	ApplicantID        int64  `json:"applicant_id"`
	Decision           string `json:"decision"`
	CreatedCommunityID *int64 `json:"created_community_id,omitempty"`
}

// NewApplicationDecidedEvent creates a new application decided event
func NewApplicationDecidedEvent(applicationID, applicantID int64, decision string, createdCommunityID *int64, reviewerID int64) *ApplicationDecidedEvent {
	return &ApplicationDecidedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "application.decided",
			Timestamp: time.Now(),
			UserID:    &reviewerID,
		},
		ApplicationID:      applicationID,
		ApplicantID:        applicantID,
		Decision:           decision,
		CreatedCommunityID: createdCommunityID,
	}
}

// CommunityVerifiedEvent is emitted when a community verification request is
// decided
type CommunityVerifiedEvent struct {
	BaseEvent
	VerificationID int64  `json:"verification_id"`
	CommunityID    int64  `json:"community_id"`
	Decision       string `json:"decision"`
}

// NewCommunityVerifiedEvent creates a new community verified event
func NewCommunityVerifiedEvent(verificationID, communityID int64, decision string, reviewerID int64) *CommunityVerifiedEvent {
	return &CommunityVerifiedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: "community.verification_decided",
			Timestamp: time.Now(),
			UserID:    &reviewerID,
		},
		VerificationID: verificationID,
		CommunityID:    communityID,
		Decision:       decision,
	}
}
