package shared

import "context"

type contextKey string

const userContextKey contextKey = "current_user"

// Identity carries the authenticated user through the request context.
type Identity struct {
	UserID   int64
	Username string
}

// ContextWithIdentity stores the authenticated identity on the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, userContextKey, id)
}

// IdentityFromContext retrieves the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(userContextKey).(Identity)
	return id, ok
}
