package handlers

import (
	"net/http"

	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/web/middleware"
)

// DashboardHandler serves the aggregate metrics and the attendance register.
type DashboardHandler struct {
	config *config.Config
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{config: cfg}
}

// Get returns the aggregate attendance metrics.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	dashboard, err := client.GetDashboard()
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}

// Attendance returns the full attendance register.
func (h *DashboardHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	records, err := client.Attendance()
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}
