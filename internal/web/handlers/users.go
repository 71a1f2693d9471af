package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/attendbot/attend-admin/internal/attend"
	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/imaging"
	"github.com/attendbot/attend-admin/internal/roster"
	"github.com/attendbot/attend-admin/internal/web/middleware"
)

// UsersHandler handles roster endpoints: listing, enrollment and deletion of
// users plus their attendance history.
type UsersHandler struct {
	config *config.Config
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(cfg *config.Config) *UsersHandler {
	return &UsersHandler{config: cfg}
}

// urlParamInt parses a chi URL parameter as a positive integer.
func urlParamInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// newManager builds a roster manager over the request's backend client. Image
// URLs are rewritten to point at this server's own face proxy, so the browser
// never needs to reach the upstream origin.
func newManager(client *attend.Client) *roster.Manager {
	return roster.New(&proxyAPI{client})
}

// proxyAPI resolves face locators to this server's proxy routes instead of
// the backend origin.
type proxyAPI struct {
	*attend.Client
}

func (p *proxyAPI) ResolveLocator(locator string) string {
	return "/api/v1" + locator
}

// List returns all enrolled users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	users, err := client.ListUsers()
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// readFaceFile reads and normalizes one uploaded reference image.
func (h *UsersHandler) readFaceFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return imaging.Normalize(data, h.config.Images.MaxEdge)
}

// Create enrolls a new user from a multipart form carrying name, phone and
// up to three reference images. The image cap is checked before anything is
// forwarded to the backend.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(int64(h.config.Web.MaxUploadBytes)); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	name := r.FormValue("name")
	phone := r.FormValue("phone")
	if name == "" || phone == "" {
		respondError(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	headers := r.MultipartForm.File["faces"]
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, "at least one reference image is required")
		return
	}
	if len(headers) > attend.MaxFaceSlots {
		respondError(w, http.StatusBadRequest, attend.ErrCapacityExceeded.Error())
		return
	}

	faces := make([][]byte, 0, len(headers))
	for _, fh := range headers {
		data, err := h.readFaceFile(fh)
		if err != nil {
			respondError(w, http.StatusBadRequest, "could not read image "+fh.Filename)
			return
		}
		faces = append(faces, data)
	}

	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	if err := client.CreateUser(name, phone, faces); err != nil {
		respondBackendError(w, err)
		return
	}

	// Enrollment invalidates the cached roster; hand the fresh list back.
	users, err := newManager(client).RefreshUsers()
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"users": users})
}

// Delete removes a user and everything owned by it. The browser asks the
// operator for confirmation before this request is ever sent.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	manager := newManager(client)
	if err := manager.DeleteUser(id); err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": manager.Users()})
}

// Attendance returns the attendance history of one user.
func (h *UsersHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	records, err := client.UserAttendance(id)
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}
