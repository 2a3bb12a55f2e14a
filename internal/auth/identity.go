package auth

import (
	"context"

	"github.com/hongminglow/campuslearn-be/internal/models"
)

// Identity is the authenticated caller as proven by a verified token.
type Identity struct {
	UserID string
	Role   models.Role
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity attached by the auth middleware, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
