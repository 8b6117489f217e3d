package session

import (
	"net/http"
	"strings"

	"libris/internal/auth"
)

// RequireRole returns middleware that rejects requests without a valid
// bearer token carrying the given role. Authorization stays in the
// transport layer; the library service never sees tokens.
func RequireRole(sessions *auth.Service, role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := sessions.Verify(token)
			if err != nil {
				http.Error(w, "invalid session", http.StatusUnauthorized)
				return
			}

			if claims.Role != role {
				http.Error(w, "insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireLibrarian gates the mutating librarian-only endpoints.
func RequireLibrarian(sessions *auth.Service) func(http.Handler) http.Handler {
	return RequireRole(sessions, auth.RoleLibrarian)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimPrefix(header, "Bearer ")
}
