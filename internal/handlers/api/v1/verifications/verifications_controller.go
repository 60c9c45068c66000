// ===============================
// FILE: internal/handlers/api/v1/verifications/verifications_controller.go
// ===============================

package verifications

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

// VerificationController handles the application and verification endpoints
type VerificationController struct {
	verifications services.VerificationService
	logger        *zap.Logger
}

// NewVerificationController creates a new verification controller
func NewVerificationController(verifications services.VerificationService, logger *zap.Logger) *VerificationController {
	return &VerificationController{verifications: verifications, logger: logger}
}

// ===============================
// MANAGER APPLICATIONS
// ===============================

// SubmitApplication handles POST /api/v1/applications
func (c *VerificationController) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req services.ApplyForManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	app, err := c.verifications.SubmitApplication(r.Context(), contextutils.GetUserID(r.Context()), &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, app)
}

// GetApplication handles GET /api/v1/applications/{id}
func (c *VerificationController) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid application id")
		return
	}

	app, err := c.verifications.GetApplication(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, app)
}

// ReviewApplication handles POST /api/v1/applications/{id}/review (admin)
func (c *VerificationController) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid application id")
		return
	}

	var req services.ReviewApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	app, err := c.verifications.ReviewApplication(r.Context(), contextutils.GetUserID(r.Context()), id, &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	c.logger.Info("Application reviewed via API",
		zap.Int64("application_id", id),
		zap.Bool("approved", req.Approve),
	)

	response.WriteJSON(w, r, http.StatusOK, app)
}

// ===============================
// COMMUNITY VERIFICATION
// ===============================

// SubmitCommunityVerification handles POST /api/v1/verifications
func (c *VerificationController) SubmitCommunityVerification(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	verification, err := c.verifications.SubmitCommunityVerification(r.Context(), contextutils.GetUserID(r.Context()), &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, verification)
}

// ReviewCommunityVerification handles POST /api/v1/verifications/{id}/review (admin)
func (c *VerificationController) ReviewCommunityVerification(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid verification id")
		return
	}

	var req services.ReviewVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	verification, err := c.verifications.ReviewCommunityVerification(r.Context(), contextutils.GetUserID(r.Context()), id, &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, verification)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
