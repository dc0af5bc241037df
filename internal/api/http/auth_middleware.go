package httpapi

import (
	"net/http"
	"strings"
)

// requireAuth validates the session token and attaches the user to the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token")
			return
		}
		u, sess, err := s.authSvc.Authenticate(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired session")
			return
		}
		next.ServeHTTP(w, withAuthUser(r, &AuthUser{User: u, SessionID: sess.SessionID}))
	})
}

// requireRole gates a route to users holding one of the given roles.
func (s *Server) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			au := authUserFromContext(r.Context())
			if au == nil {
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			for _, role := range roles {
				if string(au.User.Role) == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
		})
	}
}

// extractToken pulls the session token from the Authorization header or
// the session cookie.
func (s *Server) extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimPrefix(h, "Bearer ")
		}
	}
	if c, err := r.Cookie(s.sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
