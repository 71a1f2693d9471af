package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func authedRequest(t *testing.T, sm *SessionManager, method, path string) *http.Request {
	t.Helper()
	session, err := sm.CreateSession("backend-token")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	r := httptest.NewRequest(method, path, nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sm.CookieValue(session)})
	return r
}

func TestRequireAuth_NoSession(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour, nil)

	handler := RequireAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called without a session")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/users", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuth_ValidSession(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour, nil)

	var sawSession *Session
	handler := RequireAuth(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSession = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(t, sm, "GET", "/api/v1/users"))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if sawSession == nil {
		t.Fatal("session missing from handler context")
		return
	}
	if sawSession.Token != "backend-token" {
		t.Errorf("Token = %s, want backend-token", sawSession.Token)
	}
}

func TestGuardPage_AnonymousOnProtectedPage(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour, nil)

	handler := GuardPage(sm, "/login", "/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("protected page should not render for anonymous visitor")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/users", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %s, want /login", loc)
	}
}

func TestGuardPage_AuthenticatedOnLoginPage(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour, nil)

	handler := GuardPage(sm, "/login", "/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("login page should not render for authenticated visitor")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(t, sm, "GET", "/login"))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %s, want /", loc)
	}
}

func TestGuardPage_AllowedStates(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour, nil)

	served := 0
	handler := GuardPage(sm, "/login", "/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.WriteHeader(http.StatusOK)
	}))

	// Anonymous visitor on the login page renders.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/login", nil))
	if w.Code != http.StatusOK {
		t.Errorf("anonymous /login: status = %d, want %d", w.Code, http.StatusOK)
	}

	// Authenticated visitor on a protected page renders.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(t, sm, "GET", "/users"))
	if w.Code != http.StatusOK {
		t.Errorf("authenticated /users: status = %d, want %d", w.Code, http.StatusOK)
	}

	if served != 2 {
		t.Errorf("served = %d, want 2", served)
	}
}

func TestGuardPage_RedirectIsIdempotent(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour, nil)

	handler := GuardPage(sm, "/login", "/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Repeating the same navigation yields the same redirect target.
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/users", nil))
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("attempt %d: Location = %s, want /login", i, loc)
		}
	}
}
