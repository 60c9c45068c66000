// ===============================
// FILE: internal/handlers/api/v1/points/points_controller.go
// ===============================

package points

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"engagehub/internal/cache"
	"engagehub/internal/contextutils"
	"engagehub/internal/models"
	"engagehub/internal/response"
	"engagehub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const leaderboardTTL = time.Minute

// PointsController handles ledger API endpoints
type PointsController struct {
	points services.PointsService
	cache  cache.Cache
	logger *zap.Logger
}

// NewPointsController creates a new points controller
func NewPointsController(points services.PointsService, c cache.Cache, logger *zap.Logger) *PointsController {
	return &PointsController{points: points, cache: c, logger: logger}
}

// Award handles POST /api/v1/points/awards (admin only)
func (c *PointsController) Award(w http.ResponseWriter, r *http.Request) {
	var req services.AwardPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	result, err := c.points.Award(r.Context(), &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	c.logger.Info("Manual points award via API",
		zap.Int64("admin_id", contextutils.GetUserID(r.Context())),
		zap.String("subject_kind", string(req.SubjectKind)),
		zap.Int64("subject_id", req.SubjectID),
	)

	response.WriteJSON(w, r, http.StatusCreated, result)
}

// GetVolunteerPoints handles GET /api/v1/users/{userID}/points
func (c *PointsController) GetVolunteerPoints(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userID")
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid user id")
		return
	}

	vp, err := c.points.GetVolunteerPoints(r.Context(), userID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, vp)
}

// GetCommunityRewards handles GET /api/v1/communities/{communityID}/rewards
func (c *PointsController) GetCommunityRewards(w http.ResponseWriter, r *http.Request) {
	communityID, err := parseID(r, "communityID")
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid community id")
		return
	}

	rewards, err := c.points.GetCommunityRewards(r.Context(), communityID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, rewards)
}

// GetUserHistory handles GET /api/v1/users/{userID}/points/history
func (c *PointsController) GetUserHistory(w http.ResponseWriter, r *http.Request) {
	c.history(w, r, models.SubjectUser, "userID")
}

// GetCommunityHistory handles GET /api/v1/communities/{communityID}/rewards/history
func (c *PointsController) GetCommunityHistory(w http.ResponseWriter, r *http.Request) {
	c.history(w, r, models.SubjectCommunity, "communityID")
}

func (c *PointsController) history(w http.ResponseWriter, r *http.Request, kind models.SubjectKind, param string) {
	subjectID, err := parseID(r, param)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid id")
		return
	}

	entries, err := c.points.GetHistory(r.Context(), kind, subjectID, parsePagination(r))
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, entries)
}

// Leaderboard handles GET /api/v1/leaderboard. The board is recomputed at
// most once per minute per limit; in between it is served from cache.
func (c *PointsController) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	cacheKey := "leaderboard:" + strconv.Itoa(limit)
	var cached []*models.LeaderboardEntry
	if cache.GetJSON(r.Context(), c.cache, cacheKey, &cached) {
		response.WriteJSON(w, r, http.StatusOK, cached)
		return
	}

	entries, err := c.points.Leaderboard(r.Context(), limit)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	if err := cache.SetJSON(r.Context(), c.cache, cacheKey, entries, leaderboardTTL); err != nil {
		c.logger.Warn("Failed to cache leaderboard", zap.Error(err))
	}

	response.WriteJSON(w, r, http.StatusOK, entries)
}

// ===============================
// HELPERS
// ===============================

func parseID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}

func parsePagination(r *http.Request) models.PaginationParams {
	var p models.PaginationParams
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			p.Limit = parsed
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			p.Offset = parsed
		}
	}
	p.Normalize()
	return p
}
