package handlers

import (
	"io"
	"net/http"

	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/imaging"
	"github.com/attendbot/attend-admin/internal/web/middleware"
)

// FacesHandler handles per-user reference image endpoints. Every mutation is
// answered with the row state re-derived from the backend, so the SPA renders
// exactly what the remote store holds.
type FacesHandler struct {
	config *config.Config
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(cfg *config.Config) *FacesHandler {
	return &FacesHandler{config: cfg}
}

// Row returns the current reference image row for a user. A backend fetch
// failure degrades to an empty row rather than an error, so one broken user
// does not take the roster table down.
func (h *FacesHandler) Row(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	row, err := newManager(client).RefreshSlots(id)
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

// readFace extracts and normalizes the single "face" file of a multipart
// request.
func (h *FacesHandler) readFace(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(int64(h.config.Web.MaxUploadBytes)); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil, false
	}

	file, _, err := r.FormFile("face")
	if err != nil {
		respondError(w, http.StatusBadRequest, "face image is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read image")
		return nil, false
	}

	normalized, err := imaging.Normalize(data, h.config.Images.MaxEdge)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unsupported image format")
		return nil, false
	}
	return normalized, true
}

// Add uploads a new reference image into the next free slot. At capacity the
// manager rejects the call before any request reaches the backend.
func (h *FacesHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	image, ok := h.readFace(w, r)
	if !ok {
		return
	}

	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	manager := newManager(client)
	if err := manager.AddFace(id, image); err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"row":   manager.Row(id),
		"users": manager.Users(),
	})
}

// Replace swaps the image in an occupied slot. The returned row carries a
// fresh cache-busting token, so the browser re-fetches the new bytes even
// though the locator path did not change.
func (h *FacesHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	slot, ok := urlParamInt(r, "slot")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid slot index")
		return
	}

	image, ok := h.readFace(w, r)
	if !ok {
		return
	}

	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	manager := newManager(client)
	if err := manager.ReplaceFace(id, slot, image); err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, manager.Row(id))
}

// Delete removes the reference image at the given slot. Confirmation
// happened in the browser; on success both the row and the user list are
// re-derived.
func (h *FacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	slot, ok := urlParamInt(r, "slot")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid slot index")
		return
	}

	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	manager := newManager(client)
	if err := manager.DeleteFace(id, slot); err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"row":   manager.Row(id),
		"users": manager.Users(),
	})
}

// Image streams the raw reference image at a slot through this server, so
// the SPA never talks to the backend origin directly. Responses are marked
// no-store: cache control lives in the bust token the row URLs carry.
func (h *FacesHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	slot, ok := urlParamInt(r, "slot")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid slot index")
		return
	}

	client := middleware.MustGetClient(r.Context(), w)
	if client == nil {
		return
	}

	body, contentType, err := client.FaceImage(id, slot)
	if err != nil {
		respondBackendError(w, err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
