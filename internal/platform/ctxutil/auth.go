package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type authDataKey struct{}

// AuthData is what the auth middleware learned about the caller.
type AuthData struct {
	TokenString string
	UserID      uuid.UUID
}

func WithAuthData(ctx context.Context, ad *AuthData) context.Context {
	return context.WithValue(ctx, authDataKey{}, ad)
}

func GetAuthData(ctx context.Context) *AuthData {
	if ctx == nil {
		return nil
	}
	if ad, ok := ctx.Value(authDataKey{}).(*AuthData); ok {
		return ad
	}
	return nil
}

// UserID returns the authenticated caller, or uuid.Nil when the request is anonymous.
func UserID(ctx context.Context) uuid.UUID {
	if ad := GetAuthData(ctx); ad != nil {
		return ad.UserID
	}
	return uuid.Nil
}
