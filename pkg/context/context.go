// Package context carries per-request identity through context.Context so
// repositories and engines can log and stamp without an echo dependency.
package context

import "context"

type contextKey string

const (
	requestIDKey = contextKey("request-id")
	userIDKey    = contextKey("user-id")
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// SetUserID stores the acting admin's id. Review stamps come from here.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
