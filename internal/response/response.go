// file: internal/response/response.go

// Package response writes the standard JSON envelope used by every API
// endpoint.
package response

import (
	"encoding/json"
	"net/http"

	"engagehub/internal/contextutils"
	"engagehub/internal/services"
)

// Envelope is the uniform response shape
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError carries a machine-readable error to clients
type APIError struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// WriteJSON writes a success envelope
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	write(w, status, &Envelope{
		Success:   true,
		Data:      data,
		RequestID: contextutils.GetRequestID(r.Context()),
	})
}

// WriteError writes a failure envelope with an explicit status and code
func WriteError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	write(w, status, &Envelope{
		Success:   false,
		Error:     &APIError{Type: errType, Message: message},
		RequestID: contextutils.GetRequestID(r.Context()),
	})
}

// WriteServiceError maps a service-layer error onto the wire. Internal
// errors are masked; everything else passes its taxonomy through.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)

	apiErr := &APIError{
		Type:    serviceErr.Type,
		Code:    serviceErr.Code,
		Message: serviceErr.Message,
		Details: serviceErr.Details,
	}
	if serviceErr.Type == services.TypeInternal {
		apiErr.Message = "an internal error occurred"
		apiErr.Details = nil
	}

	write(w, serviceErr.GetStatusCode(), &Envelope{
		Success:   false,
		Error:     apiErr,
		RequestID: contextutils.GetRequestID(r.Context()),
	})
}

func write(w http.ResponseWriter, status int, envelope *Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}
