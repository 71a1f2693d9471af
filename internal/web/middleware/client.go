package middleware

import (
	"context"
	"net/http"

	"github.com/attendbot/attend-admin/internal/attend"
	"github.com/attendbot/attend-admin/internal/config"
)

const clientContextKey contextKey = "attend-client"

// WithBackendClient is middleware that builds an attendance backend client
// carrying the session's bearer token and adds it to the request context.
// When the backend reports the token expired, every session holding it is
// invalidated so the next page load lands on the login view. Should be used
// after RequireAuth.
func WithBackendClient(cfg *config.Config, sm *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r.Context())
			if session == nil || session.Token == "" {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			client, err := attend.New(cfg.Backend.URL, attend.NewMemoryCredentialStore(session.Token))
			if err != nil {
				http.Error(w, `{"error": "failed to reach attendance backend"}`, http.StatusInternalServerError)
				return
			}
			token := session.Token
			client.OnAuthExpired(func() {
				sm.InvalidateByToken(token)
			})

			ctx := context.WithValue(r.Context(), clientContextKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientFromContext retrieves the backend client from the request context.
// Returns nil if no client is available.
func GetClientFromContext(ctx context.Context) *attend.Client {
	client, ok := ctx.Value(clientContextKey).(*attend.Client)
	if !ok {
		return nil
	}
	return client
}

// SetClientInContext adds a backend client to the context. For tests.
func SetClientInContext(ctx context.Context, client *attend.Client) context.Context {
	return context.WithValue(ctx, clientContextKey, client)
}

// MustGetClient retrieves the backend client from context. If not available,
// writes an error response and returns nil; handlers should return
// immediately after receiving nil.
func MustGetClient(ctx context.Context, w http.ResponseWriter) *attend.Client {
	client := GetClientFromContext(ctx)
	if client == nil {
		http.Error(w, `{"error": "backend client not available"}`, http.StatusInternalServerError)
		return nil
	}
	return client
}
