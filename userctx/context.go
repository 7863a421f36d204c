package userctx

import (
	"context"

	"github.com/blogem/contacts/models"
)

// Context key type
type contextKey string

const identityKey contextKey = "identity"
const requestIDKey contextKey = "request_id"

// SetIdentity adds the acting identity to the context
func SetIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the acting identity from the context
func GetIdentity(ctx context.Context) string {
	identity, ok := ctx.Value(identityKey).(string)
	if !ok || identity == "" {
		return models.AnonymousActor
	}
	return identity
}

// SetRequestID adds the request ID to the context
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
