package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookieName = "attend_admin_session"

// Session binds one browser session to the backend bearer token it
// authenticated with.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"` // attendance backend access token
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionRepository persists sessions so a server restart does not log every
// operator out. Optional; a nil repository keeps sessions in memory only.
type SessionRepository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByToken(ctx context.Context, token string) error
}

// SessionManager handles session creation, lookup and cookie signing.
type SessionManager struct {
	secret   []byte
	duration time.Duration
	repo     SessionRepository
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionManager creates a session manager. The secret signs session
// cookies; repo may be nil for memory-only sessions.
func NewSessionManager(secret string, duration time.Duration, repo SessionRepository) *SessionManager {
	// Use a default secret if none provided (for development)
	if secret == "" {
		secret = "attend-admin-dev-secret-change-in-production"
	}
	return &SessionManager{
		secret:   []byte(secret),
		duration: duration,
		repo:     repo,
		sessions: make(map[string]*Session),
	}
}

// CreateSession creates a new session carrying the backend token.
func (sm *SessionManager) CreateSession(token string) (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(sm.duration),
	}

	sm.mu.Lock()
	sm.sessions[session.ID] = session
	sm.mu.Unlock()

	if sm.repo != nil {
		if err := sm.repo.Save(context.Background(), session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// GetSession retrieves a session by ID, falling back to the repository when
// the in-memory map does not have it (fresh process, old cookie).
func (sm *SessionManager) GetSession(sessionID string) *Session {
	sm.mu.RLock()
	session, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()

	if !ok && sm.repo != nil {
		stored, err := sm.repo.Get(context.Background(), sessionID)
		if err != nil || stored == nil {
			return nil
		}
		sm.mu.Lock()
		sm.sessions[sessionID] = stored
		sm.mu.Unlock()
		session = stored
	}
	if session == nil {
		return nil
	}

	if time.Now().After(session.ExpiresAt) {
		go sm.DeleteSession(sessionID)
		return nil
	}
	return session
}

// DeleteSession removes a session from memory and the repository.
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if sm.repo != nil {
		_ = sm.repo.Delete(context.Background(), sessionID)
	}
}

// InvalidateByToken drops every session that carries the given backend
// token. Called when the backend declares the token expired, so no stale
// browser session can keep rendering protected views.
func (sm *SessionManager) InvalidateByToken(token string) {
	sm.mu.Lock()
	for id, s := range sm.sessions {
		if s.Token == token {
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	// Persisted sessions not currently in the map die too, or a restart
	// would resurrect them with the dead token.
	if sm.repo != nil {
		_ = sm.repo.DeleteByToken(context.Background(), token)
	}
}

// SetSessionCookie sets the signed session cookie on the response.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, session *Session) {
	signature := sm.signData(session.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID + "." + signature,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sm.duration.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionFromRequest extracts the session from a request, trying the
// signed cookie first and a bearer header second.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		parts := strings.SplitN(cookie.Value, ".", 2)
		if len(parts) == 2 && sm.verifySignature(parts[0], parts[1]) {
			if session := sm.GetSession(parts[0]); session != nil {
				return session
			}
		}
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		sessionID := strings.TrimPrefix(authHeader, "Bearer ")
		if session := sm.GetSession(sessionID); session != nil {
			return session
		}
	}

	return nil
}

func (sm *SessionManager) signData(data string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

func (sm *SessionManager) verifySignature(data, signature string) bool {
	expected := sm.signData(data)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// CookieValue returns the signed cookie value for a session. Exported for
// handler tests that need to fabricate an authenticated request.
func (sm *SessionManager) CookieValue(session *Session) string {
	return session.ID + "." + sm.signData(session.ID)
}

// SessionData is a helper struct for JSON responses
type SessionData struct {
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"`
}

// MarshalJSON implements json.Marshaler (excludes the backend token)
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(SessionData{
		SessionID: s.ID,
		ExpiresAt: s.ExpiresAt.Format(time.RFC3339),
	})
}
