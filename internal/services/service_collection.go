// file: internal/services/service_collection.go
package services

import (
	"engagehub/internal/database"
	"engagehub/internal/events"
	"engagehub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Services bundles all service implementations for dependency injection
type Services struct {
	User          UserService
	Points        PointsService
	Participation ParticipationService
	Rating        RatingService
	Verification  VerificationService
	Community     CommunityService
}

// Repositories bundles the repository implementations the services build on
type Repositories struct {
	User          repositories.UserRepository
	Points        repositories.PointsRepository
	Participation repositories.ParticipationRepository
	Rating        repositories.RatingRepository
	Community     repositories.CommunityRepository
	Verification  repositories.VerificationRepository
}

// NewRepositories wires all repositories over one database manager
func NewRepositories(db *database.Manager, logger *zap.Logger) *Repositories {
	return &Repositories{
		User:          repositories.NewUserRepository(db, logger),
		Points:        repositories.NewPointsRepository(db, logger),
		Participation: repositories.NewParticipationRepository(db, logger),
		Rating:        repositories.NewRatingRepository(db, logger),
		Community:     repositories.NewCommunityRepository(db, logger),
		Verification:  repositories.NewVerificationRepository(db, logger),
	}
}

// NewServices wires the full service graph. The points service is
// constructed first because participation, community and verification all
// route their awards through it.
func NewServices(repos *Repositories, eventBus events.EventBus, logger *zap.Logger) *Services {
	validate := validator.New()

	points := NewPointsService(repos.Points, repos.User, eventBus, validate, logger)

	return &Services{
		User:   NewUserService(repos.User, logger),
		Points: points,
		Participation: NewParticipationService(
			repos.Participation, repos.Community, repos.User,
			points, eventBus, validate, logger,
		),
		Rating: NewRatingService(
			repos.Rating, repos.Participation, repos.Community, repos.User,
			eventBus, validate, logger,
		),
		Verification: NewVerificationService(
			repos.Verification, repos.Community, repos.User,
			points, eventBus, validate, logger,
		),
		Community: NewCommunityService(
			repos.Community, repos.Participation, repos.User,
			points, eventBus, validate, logger,
		),
	}
}
