package attend

// User is one enrolled person as the backend reports it.
type User struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	TelegramID     *int64 `json:"telegram_id"`
	FaceRegistered int    `json:"face_registered"`
}

// AttendanceRecord is one check-in/check-out row joined with its user.
type AttendanceRecord struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// UserAttendanceRecord is one attendance row of a single user, including the
// location the check-in was made from.
type UserAttendanceRecord struct {
	ID       int     `json:"id"`
	CheckIn  string  `json:"check_in"`
	CheckOut string  `json:"check_out"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// DashboardSummary aggregates the headline numbers.
type DashboardSummary struct {
	TotalUsers          int     `json:"total_users"`
	TotalAttendance     int     `json:"total_attendance"`
	TodayAttendance     int     `json:"today_attendance"`
	ActiveUsersToday    int     `json:"active_users_today"`
	AttendanceRateToday float64 `json:"attendance_rate_today"`
}

// DashboardTimeMetrics covers the longer windows.
type DashboardTimeMetrics struct {
	WeeklyAttendance  int `json:"weekly_attendance"`
	MonthlyAttendance int `json:"monthly_attendance"`
}

// TrendPoint is one day of the attendance trend.
type TrendPoint struct {
	Date       string `json:"date"`
	Attendance int    `json:"attendance"`
}

// Dashboard is the full dashboard payload.
type Dashboard struct {
	Summary     DashboardSummary     `json:"summary"`
	TimeMetrics DashboardTimeMetrics `json:"time_metrics"`
	Trend       []TrendPoint         `json:"trend"`
}

// faceListResponse is the backend's face listing shape.
type faceListResponse struct {
	Faces []string `json:"faces"`
}
