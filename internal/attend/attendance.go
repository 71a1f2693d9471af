package attend

// Attendance fetches the full attendance register joined with user details.
func (c *Client) Attendance() ([]AttendanceRecord, error) {
	result, err := doGetJSON[[]AttendanceRecord](c, "attendance")
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GetDashboard fetches the aggregate attendance metrics.
func (c *Client) GetDashboard() (*Dashboard, error) {
	return doGetJSON[Dashboard](c, "dashboard")
}
