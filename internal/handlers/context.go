package handlers

import (
	"context"

	"github.com/beaconsafety/beacon-server/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

func SetUserInContext(ctx context.Context, user *models.UserProfile) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func GetUserFromContext(ctx context.Context) *models.UserProfile {
	user, _ := ctx.Value(userContextKey).(*models.UserProfile)
	return user
}

// ContextIdentity resolves the acting user from the request context
// populated by the auth middleware.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUserID(ctx context.Context) string {
	user := GetUserFromContext(ctx)
	if user == nil {
		return ""
	}
	return user.ID
}
