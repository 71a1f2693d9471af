package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/attendbot/attend-admin/internal/attend"
	"github.com/attendbot/attend-admin/internal/roster"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondBackendError maps a backend client error onto an HTTP response.
// Validation rejections keep the backend's own detail and status; an expired
// authorization comes back as 401 so the SPA drops to the login view;
// transport failures are reported as a bad gateway rather than a server bug.
func respondBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attend.ErrAuthorizationExpired):
		respondError(w, http.StatusUnauthorized, "authorization expired")
	case errors.Is(err, attend.ErrCapacityExceeded):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, roster.ErrAborted):
		respondError(w, http.StatusConflict, err.Error())
	default:
		var ve *attend.ValidationError
		if errors.As(err, &ve) {
			status := ve.Status
			if status < 400 || status > 599 {
				status = http.StatusBadRequest
			}
			respondError(w, status, ve.Error())
			return
		}
		if attend.IsTransport(err) {
			respondError(w, http.StatusBadGateway, "attendance backend unreachable")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
