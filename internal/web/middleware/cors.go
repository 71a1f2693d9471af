package middleware

import (
	"net/http"
	"strings"
)

// localhostOrigin reports whether origin points at localhost on any port.
// The admin UI is normally served from this process, but during frontend
// development it runs on a separate dev-server port.
func localhostOrigin(origin string) bool {
	for _, scheme := range []string{"http://localhost", "https://localhost"} {
		if origin == scheme || strings.HasPrefix(origin, scheme+":") {
			return true
		}
	}
	return false
}

// CORS returns middleware granting cross-origin access to the listed origins.
// Sessions ride on credentialed cookies, so the wildcard origin is never
// emitted; localhost is always granted.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	grant := func(origin string) bool {
		if origin == "" {
			return false
		}
		if localhostOrigin(origin) {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if grant(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Requested-With")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
