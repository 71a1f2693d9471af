package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/attendbot/attend-admin/internal/attend"
	"github.com/attendbot/attend-admin/internal/config"
	"github.com/attendbot/attend-admin/internal/web/middleware"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{
			URL: "http://localhost:8000",
		},
		Web: config.WebConfig{
			SessionDurationHours:  24,
			RequestTimeoutSeconds: 60,
			MaxUploadBytes:        10 << 20,
		},
		Images: config.ImagesConfig{
			MaxEdge: 1280,
		},
	}
}

func testSessionManager() *middleware.SessionManager {
	return middleware.NewSessionManager("test-secret", time.Hour, nil)
}

// requestWithClient creates a request with a backend client in context
func requestWithClient(t *testing.T, method, path string, body io.Reader, client *attend.Client) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	ctx := middleware.SetClientInContext(req.Context(), client)
	return req.WithContext(ctx)
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// setupMockBackendServer creates a mock attendance backend for handler tests
func setupMockBackendServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, handler := range handlers {
		mux.HandleFunc(pattern, handler)
	}
	return httptest.NewServer(mux)
}

// createBackendClient creates a backend client connected to a mock server
func createBackendClient(t *testing.T, server *httptest.Server) *attend.Client {
	t.Helper()
	client, err := attend.New(server.URL, attend.NewMemoryCredentialStore("test-token"))
	if err != nil {
		t.Fatalf("failed to create backend client: %v", err)
	}
	return client
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// testJPEG encodes a small solid-color JPEG for upload tests
func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

// multipartBody builds a multipart form with text fields and JPEG file fields
func multipartBody(t *testing.T, fields map[string]string, files map[string][][]byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field %s: %v", name, err)
		}
	}
	for field, contents := range files {
		for i, data := range contents {
			part, err := writer.CreateFormFile(field, "upload.jpg")
			if err != nil {
				t.Fatalf("failed to create file part %d: %v", i, err)
			}
			if _, err := part.Write(data); err != nil {
				t.Fatalf("failed to write file part %d: %v", i, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}
