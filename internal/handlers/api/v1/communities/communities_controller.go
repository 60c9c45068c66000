// ===============================
// FILE: internal/handlers/api/v1/communities/communities_controller.go
// ===============================

package communities

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

// CommunityController handles community and event API endpoints
type CommunityController struct {
	communities services.CommunityService
	users       services.UserService
	logger      *zap.Logger
}

// NewCommunityController creates a new community controller
func NewCommunityController(communities services.CommunityService, users services.UserService, logger *zap.Logger) *CommunityController {
	return &CommunityController{communities: communities, users: users, logger: logger}
}

// GetCommunity handles GET /api/v1/communities/{id}
func (c *CommunityController) GetCommunity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid community id")
		return
	}

	community, err := c.communities.GetCommunity(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, community)
}

// Join handles POST /api/v1/communities/{id}/members
func (c *CommunityController) Join(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid community id")
		return
	}

	if err := c.communities.Join(r.Context(), contextutils.GetUserID(r.Context()), id); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, map[string]string{"status": "joined"})
}

// CreateEvent handles POST /api/v1/events
func (c *CommunityController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req services.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid request body")
		return
	}

	event, err := c.communities.CreateEvent(r.Context(), contextutils.GetUserID(r.Context()), &req)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusCreated, event)
}

// GetEvent handles GET /api/v1/events/{id}
func (c *CommunityController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid event id")
		return
	}

	event, err := c.communities.GetEvent(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, event)
}

// GetImpactMetrics handles GET /api/v1/users/{id}/impact
func (c *CommunityController) GetImpactMetrics(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		response.WriteError(w, r, http.StatusBadRequest, services.TypeValidation, "invalid user id")
		return
	}

	metrics, err := c.users.GetImpactMetrics(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, r, http.StatusOK, metrics)
}

func parseID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}
