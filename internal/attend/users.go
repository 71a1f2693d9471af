package attend

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ListUsers fetches the full roster of enrolled users.
func (c *Client) ListUsers() ([]User, error) {
	result, err := doGetJSON[[]User](c, "users")
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// CreateUser enrolls a new user with up to MaxFaceSlots reference images in a
// single multipart request. The slot cap is enforced here, before any bytes
// go on the wire.
func (c *Client) CreateUser(name, phone string, faces [][]byte) error {
	if name == "" || phone == "" {
		return errors.New("name and phone are required")
	}
	if len(faces) == 0 {
		return errors.New("at least one reference image is required")
	}
	if len(faces) > MaxFaceSlots {
		return ErrCapacityExceeded
	}

	parts := make([]filePart, 0, len(faces))
	for i, data := range faces {
		parts = append(parts, filePart{
			field:    "faces",
			filename: fmt.Sprintf("reference_%d.jpg", i+1),
			data:     data,
		})
	}

	fields := map[string]string{"name": name, "phone": phone}
	return doMultipart(c, http.MethodPost, "users", fields, parts)
}

// DeleteUser removes a user. The backend cascades the deletion to all of the
// user's reference images.
func (c *Client) DeleteUser(id int) error {
	return doDelete(c, "users/"+strconv.Itoa(id))
}

// UserAttendance fetches the attendance history of a single user.
func (c *Client) UserAttendance(id int) ([]UserAttendanceRecord, error) {
	result, err := doGetJSON[[]UserAttendanceRecord](c, "users/"+strconv.Itoa(id)+"/attendance")
	if err != nil {
		return nil, err
	}
	return *result, nil
}
