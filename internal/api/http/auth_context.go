package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	domainUser "github.com/docvault/docvault/internal/domain/user"
)

type authContextKeyType struct{}

var authContextKey = authContextKeyType{}

// AuthUser is the authenticated principal attached to a request. The full
// user record rides along because transition handlers re-verify the
// password hash for electronic signatures.
type AuthUser struct {
	User      *domainUser.User
	SessionID uuid.UUID
}

func withAuthUser(r *http.Request, au *AuthUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), authContextKey, au))
}

func authUserFromContext(ctx context.Context) *AuthUser {
	au, _ := ctx.Value(authContextKey).(*AuthUser)
	return au
}
