package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/attendbot/attend-admin/internal/attend"
)

func TestDashboardGet(t *testing.T) {
	backend := setupMockBackendServer(t, map[string]http.HandlerFunc{
		"/dashboard": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"summary": {"total_users": 12, "total_attendance": 340, "today_attendance": 9, "active_users_today": 8, "attendance_rate_today": 66.7},
				"time_metrics": {"weekly_attendance": 52, "monthly_attendance": 198},
				"trend": [{"date": "2026-08-28", "attendance": 9}]
			}`))
		},
	})
	defer backend.Close()

	client := createBackendClient(t, backend)
	handler := NewDashboardHandler(testConfig())

	w := httptest.NewRecorder()
	handler.Get(w, requestWithClient(t, "GET", "/api/v1/dashboard", nil, client))

	assertStatusCode(t, w, http.StatusOK)

	var dash attend.Dashboard
	parseJSONResponse(t, w, &dash)
	if dash.Summary.TotalUsers != 12 {
		t.Errorf("total users = %d, want 12", dash.Summary.TotalUsers)
	}
	if dash.TimeMetrics.MonthlyAttendance != 198 {
		t.Errorf("monthly attendance = %d, want 198", dash.TimeMetrics.MonthlyAttendance)
	}
	if len(dash.Trend) != 1 || dash.Trend[0].Date != "2026-08-28" {
		t.Error("trend should carry the backend's points")
	}
}

func TestDashboardAttendance(t *testing.T) {
	backend := setupMockBackendServer(t, map[string]http.HandlerFunc{
		"/attendance": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":1,"name":"Jana","phone":"+420777111222","check_in":"2026-08-28T08:01:00","check_out":""}]`))
		},
	})
	defer backend.Close()

	client := createBackendClient(t, backend)
	handler := NewDashboardHandler(testConfig())

	w := httptest.NewRecorder()
	handler.Attendance(w, requestWithClient(t, "GET", "/api/v1/attendance", nil, client))

	assertStatusCode(t, w, http.StatusOK)

	var resp struct {
		Records []attend.AttendanceRecord `json:"records"`
	}
	parseJSONResponse(t, w, &resp)
	if len(resp.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(resp.Records))
	}
	if resp.Records[0].Name != "Jana" {
		t.Errorf("name = %s, want Jana", resp.Records[0].Name)
	}
}

func TestDashboardGet_NoClient(t *testing.T) {
	handler := NewDashboardHandler(testConfig())

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/api/v1/dashboard", nil))

	assertStatusCode(t, w, http.StatusInternalServerError)
}
