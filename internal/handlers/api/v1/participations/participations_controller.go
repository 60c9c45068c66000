// ===============================
// FILE: internal/handlers/api/v1/participations/participations_controller.go
// ===============================

package participations

import (
	"encoding/json"
	"net/http"
	"strconv"

	"engagehub/internal/contextutils"
	"engagehub/internal/response"
	"engagehub/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ParticipationController handles participation API endpoints
type ParticipationController struct {
	participations services.ParticipationService
	logger         *zap.Logger
}

// NewParticipationController creates a new participation controller
func NewParticipationController(participations services.ParticipationService, logger *zap.Logger) *ParticipationController {
	return &ParticipationController{participations: participations, logger: logger}
}

// Register handles POST /api/v1/participations
func (c *ParticipationController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterParticipationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	participation, err := c.participations.Register(r.Context(), contextutils.GetUserID(r.Context()), &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, participation)
}

// VerifyAttendance handles POST /api/v1/participations/{id}/attendance
func (c *ParticipationController) VerifyAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid participation id")
		return
	}

	var req services.VerifyAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	result, err := c.participations.VerifyAttendance(r.Context(), contextutils.GetUserID(r.Context()), id, &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, result)
}

// Reject handles POST /api/v1/participations/{id}/rejection
func (c *ParticipationController) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid participation id")
		return
	}

	var req services.RejectParticipationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	participation, err := c.participations.Reject(r.Context(), contextutils.GetUserID(r.Context()), id, &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, participation)
}

// Complete handles POST /api/v1/participations/{id}/completion
func (c *ParticipationController) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid participation id")
		return
	}

	participation, err := c.participations.Complete(r.Context(), contextutils.GetUserID(r.Context()), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, participation)
}

// Leave handles DELETE /api/v1/events/{eventID}/participation
func (c *ParticipationController) Leave(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid event id")
		return
	}

	if err := c.participations.Leave(r.Context(), contextutils.GetUserID(r.Context()), eventID); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "left"})
}

// AddToWishlist handles POST /api/v1/events/{eventID}/wishlist
func (c *ParticipationController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid event id")
		return
	}

	if err := c.participations.AddToWishlist(r.Context(), contextutils.GetUserID(r.Context()), eventID); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, map[string]string{"status": "wishlisted"})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
