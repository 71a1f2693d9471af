package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func loginBody(t *testing.T, username, password string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		t.Fatalf("failed to marshal login body: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestAuthLogin_Success(t *testing.T) {
	backend := setupMockBackendServer(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"access_token": "backend-token",
				"token_type":   "bearer",
			})
		},
	})
	defer backend.Close()

	cfg := testConfig()
	cfg.Backend.URL = backend.URL
	sm := testSessionManager()
	handler := NewAuthHandler(cfg, sm)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/v1/auth/login", loginBody(t, "admin", "s3cret"))
	handler.Login(w, r)

	assertStatusCode(t, w, http.StatusOK)

	var resp LoginResponse
	parseJSONResponse(t, w, &resp)
	if !resp.Success {
		t.Error("expected success")
	}
	if resp.SessionID == "" {
		t.Error("expected a session id")
	}

	// The session must carry the backend token.
	session := sm.GetSession(resp.SessionID)
	if session == nil {
		t.Fatal("session not found after login")
		return
	}
	if session.Token != "backend-token" {
		t.Errorf("session token = %s, want backend-token", session.Token)
	}

	// A signed cookie must be set.
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Error("expected a session cookie")
	}
}

func TestAuthLogin_InvalidCredentials(t *testing.T) {
	backend := setupMockBackendServer(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"Incorrect username or password"}`, http.StatusUnauthorized)
		},
	})
	defer backend.Close()

	cfg := testConfig()
	cfg.Backend.URL = backend.URL
	sm := testSessionManager()
	handler := NewAuthHandler(cfg, sm)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/v1/auth/login", loginBody(t, "admin", "wrong"))
	handler.Login(w, r)

	assertStatusCode(t, w, http.StatusUnauthorized)

	var resp LoginResponse
	parseJSONResponse(t, w, &resp)
	if resp.Success {
		t.Error("expected failure")
	}
	if resp.Error != "invalid credentials" {
		t.Errorf("error = %s, want 'invalid credentials'", resp.Error)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("failed login must not set a session cookie")
	}
}

func TestAuthLogin_MissingFields(t *testing.T) {
	handler := NewAuthHandler(testConfig(), testSessionManager())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/v1/auth/login", loginBody(t, "", ""))
	handler.Login(w, r)

	assertStatusCode(t, w, http.StatusBadRequest)
}

func TestAuthLogin_InvalidBody(t *testing.T) {
	handler := NewAuthHandler(testConfig(), testSessionManager())

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString("not json"))
	handler.Login(w, r)

	assertStatusCode(t, w, http.StatusBadRequest)
	assertJSONError(t, w, errInvalidRequestBody)
}

func TestAuthLogout(t *testing.T) {
	sm := testSessionManager()
	handler := NewAuthHandler(testConfig(), sm)

	session, err := sm.CreateSession("backend-token")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	r.AddCookie(&http.Cookie{Name: "attend_admin_session", Value: sm.CookieValue(session)})
	handler.Logout(w, r)

	assertStatusCode(t, w, http.StatusOK)

	if sm.GetSession(session.ID) != nil {
		t.Error("session should be deleted after logout")
	}

	// The cookie must be cleared.
	cookies := w.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge != -1 {
		t.Error("logout should clear the session cookie")
	}
}

func TestAuthStatus(t *testing.T) {
	sm := testSessionManager()
	handler := NewAuthHandler(testConfig(), sm)

	// Anonymous.
	w := httptest.NewRecorder()
	handler.Status(w, httptest.NewRequest("GET", "/api/v1/auth/status", nil))
	assertStatusCode(t, w, http.StatusOK)

	var resp StatusResponse
	parseJSONResponse(t, w, &resp)
	if resp.Authenticated {
		t.Error("expected unauthenticated status")
	}

	// Authenticated.
	session, _ := sm.CreateSession("backend-token")
	w = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/v1/auth/status", nil)
	r.AddCookie(&http.Cookie{Name: "attend_admin_session", Value: sm.CookieValue(session)})
	handler.Status(w, r)

	parseJSONResponse(t, w, &resp)
	if !resp.Authenticated {
		t.Error("expected authenticated status")
	}
	if resp.ExpiresAt == "" {
		t.Error("expected an expiry timestamp")
	}
}
