package auth

import (
	"context"

	"github.com/isdelr/expense-tracker-be/internal/models"
)

type contextKey string

const userContextKey = contextKey("authenticatedUser")

// Identity is the authenticated caller attached to a request by the middleware.
type Identity struct {
	UserID string
	Email  string
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, userContextKey, id)
}

// IdentityFromContext returns the identity attached by the middleware, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(userContextKey).(Identity)
	return id, ok && id.UserID != ""
}

func identityOf(user models.User) Identity {
	return Identity{UserID: user.ID, Email: user.Email}
}
