package auth

import (
	"context"

	"github.com/primeo/api/internal/models"
)

type ctxKey string

const userCtxKey = ctxKey("user")

// WithUser stores the authenticated user in context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext extracts the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*models.User)
	return u, ok && u != nil
}
