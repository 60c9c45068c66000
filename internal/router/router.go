// file: internal/router/router.go

// Package router assembles the HTTP surface: middleware stack, API routes
// and health endpoints.
package router

import (
	"net/http"

	"engagehub/internal/cache"
	"engagehub/internal/config"
	"engagehub/internal/database"
	"engagehub/internal/handlers/api/v1/communities"
	"engagehub/internal/handlers/api/v1/participations"
	"engagehub/internal/handlers/api/v1/points"
	"engagehub/internal/handlers/api/v1/ratings"
	"engagehub/internal/handlers/api/v1/verifications"
	"engagehub/internal/middleware"
	"engagehub/internal/notifications"
	"engagehub/internal/response"
	"engagehub/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Dependencies carries everything the router needs
type Dependencies struct {
	Config   *config.Config
	Services *services.Services
	Cache    cache.Cache
	DB       *database.Manager
	Hub      *notifications.Hub
	Logger   *zap.Logger
}

// New builds the chi router with the full middleware stack and API routes
func New(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	auth := middleware.NewAuthMiddleware(&deps.Config.Auth, deps.Logger)
	rateLimiter := middleware.NewRateLimiter(&deps.Config.RateLimit, deps.Logger)

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))

	r.Get("/healthz", healthHandler(deps))

	pointsController := points.NewPointsController(deps.Services.Points, deps.Cache, deps.Logger)
	participationController := participations.NewParticipationController(deps.Services.Participation, deps.Logger)
	ratingController := ratings.NewRatingController(deps.Services.Rating, deps.Logger)
	verificationController := verifications.NewVerificationController(deps.Services.Verification, deps.Logger)
	communityController := communities.NewCommunityController(deps.Services.Community, deps.Services.User, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Public reads
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth)
			r.Use(rateLimiter.Limit)

			r.Get("/leaderboard", pointsController.Leaderboard)
			r.Get("/users/{userID}/points", pointsController.GetVolunteerPoints)
			r.Get("/users/{userID}/points/history", pointsController.GetUserHistory)
			r.Get("/users/{id}/impact", communityController.GetImpactMetrics)
			r.Get("/communities/{id}", communityController.GetCommunity)
			r.Get("/communities/{communityID}/rewards", pointsController.GetCommunityRewards)
			r.Get("/communities/{communityID}/rewards/history", pointsController.GetCommunityHistory)
			r.Get("/events/{id}", communityController.GetEvent)
			r.Get("/ratings", ratingController.ListForEntity)
		})

		// Authenticated writes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Use(rateLimiter.Limit)

			r.Post("/participations", participationController.Register)
			r.Post("/participations/{id}/attendance", participationController.VerifyAttendance)
			r.Post("/participations/{id}/rejection", participationController.Reject)
			r.Post("/participations/{id}/completion", participationController.Complete)
			r.Delete("/events/{eventID}/participation", participationController.Leave)
			r.Post("/events/{eventID}/wishlist", participationController.AddToWishlist)

			r.Post("/ratings", ratingController.Submit)
			r.Put("/ratings/{id}", ratingController.Update)
			r.Delete("/ratings/{id}", ratingController.Delete)
			r.Post("/ratings/{id}/votes", ratingController.Vote)

			r.Post("/communities/{id}/members", communityController.Join)
			r.Post("/events", communityController.CreateEvent)

			r.Post("/applications", verificationController.SubmitApplication)
			r.Get("/applications/{id}", verificationController.GetApplication)
			r.Post("/verifications", verificationController.SubmitCommunityVerification)

			r.Get("/ws", deps.Hub.ServeWS)
		})

		// Admin surface
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Use(auth.RequireAdmin)

			r.Post("/points/awards", pointsController.Award)
			r.Post("/applications/{id}/review", verificationController.ReviewApplication)
			r.Post("/verifications/{id}/review", verificationController.ReviewCommunityVerification)
		})
	})

	return r
}

func healthHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}

		if err := deps.DB.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			response.WriteJSON(w, r, http.StatusServiceUnavailable, status)
			return
		}
		if err := deps.Cache.Health(r.Context()); err != nil {
			status["cache"] = err.Error()
		}

		response.WriteJSON(w, r, http.StatusOK, status)
	}
}
