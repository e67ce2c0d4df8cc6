package cont

import (
	"context"

	"github.com/pebosi/zammad/entity"
)

type contextKey string

const userKey contextKey = "user"

// PutUser stores the authenticated user on the request context.
func PutUser(ctx context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated user, or nil if the request was not
// authenticated.
func GetUser(ctx context.Context) *entity.UserAuth {
	user, ok := ctx.Value(userKey).(*entity.UserAuth)
	if !ok {
		return nil
	}
	return user
}
