// file: internal/models/consts.go
package models

// User roles
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Participation lifecycle statuses
const (
	ParticipationRegistered = "registered"
	ParticipationAttended   = "attended"
	ParticipationCompleted  = "completed"
	ParticipationRejected   = "rejected"
)

// Verification workflow statuses
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// SubjectKind identifies whose ledger an award targets.
type SubjectKind string

const (
	SubjectUser      SubjectKind = "user"
	SubjectCommunity SubjectKind = "community"
)

// Valid reports whether the kind is a known ledger subject.
func (k SubjectKind) Valid() bool {
	return k == SubjectUser || k == SubjectCommunity
}

// EntityType is the closed set of rateable entities. Keeping this a tagged
// type (rather than free-form strings) lets repositories dispatch through an
// explicit lookup table.
type EntityType string

const (
	EntityCommunity EntityType = "community"
	EntityEvent     EntityType = "event"
)

// Valid reports whether the entity type is rateable.
func (t EntityType) Valid() bool {
	return t == EntityCommunity || t == EntityEvent
}

// PointCategory classifies ledger awards.
type PointCategory string

const (
	CategoryEventParticipation PointCategory = "event_participation"
	CategoryEventCreation      PointCategory = "event_creation"
	CategoryCommunityCreation  PointCategory = "community_creation"
	CategoryCommunityJoined    PointCategory = "community_joined"
	CategoryHoursVolunteered   PointCategory = "hours_volunteered"
	CategoryRatings            PointCategory = "ratings"
	CategoryBadges             PointCategory = "badges"
	CategoryOther              PointCategory = "other"
)

var pointCategories = map[PointCategory]bool{
	CategoryEventParticipation: true,
	CategoryEventCreation:      true,
	CategoryCommunityCreation:  true,
	CategoryCommunityJoined:    true,
	CategoryHoursVolunteered:   true,
	CategoryRatings:            true,
	CategoryBadges:             true,
	CategoryOther:              true,
}

// Valid reports whether the category is a known award category.
func (c PointCategory) Valid() bool {
	return pointCategories[c]
}
