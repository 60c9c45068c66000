// ===============================
// FILE: internal/handlers/api/v1/ratings/ratings_controller.go
// ===============================

package ratings

import (
	"encoding/json"
	"net/http"
	"strconv"

	"engagehub/internal/contextutils"
	"engagehub/internal/models"
	"engagehub/internal/response"
	"engagehub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RatingController handles rating API endpoints
type RatingController struct {
	ratings services.RatingService
	logger  *zap.Logger
}

// NewRatingController creates a new rating controller
func NewRatingController(ratings services.RatingService, logger *zap.Logger) *RatingController {
	return &RatingController{ratings: ratings, logger: logger}
}

// Submit handles POST /api/v1/ratings
func (c *RatingController) Submit(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	rating, err := c.ratings.Submit(r.Context(), contextutils.GetUserID(r.Context()), &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, rating)
}

// Update handles PUT /api/v1/ratings/{id}
func (c *RatingController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid rating id")
		return
	}

	var req services.UpdateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	rating, err := c.ratings.Update(r.Context(), contextutils.GetUserID(r.Context()), id, &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, rating)
}

// Delete handles DELETE /api/v1/ratings/{id}
func (c *RatingController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid rating id")
		return
	}

	if err := c.ratings.Delete(r.Context(), contextutils.GetUserID(r.Context()), id); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListForEntity handles GET /api/v1/ratings?entity_type=...&entity_id=...
func (c *RatingController) ListForEntity(w http.ResponseWriter, r *http.Request) {
	entityType := models.EntityType(r.URL.Query().Get("entity_type"))
	entityID, err := strconv.ParseInt(r.URL.Query().Get("entity_id"), 10, 64)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid entity id")
		return
	}

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

	ratings, err := c.ratings.ListForEntity(r.Context(), entityType, entityID, p)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, ratings)
}

// Vote handles POST /api/v1/ratings/{id}/votes
func (c *RatingController) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid rating id")
		return
	}

	var req struct {
		Helpful bool `json:"helpful"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	rating, err := c.ratings.Vote(r.Context(), id, req.Helpful)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, rating)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
