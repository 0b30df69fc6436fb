package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	staffKey     contextKey = "staff"
	requestIDKey contextKey = "requestID"
)

// UserIDFrom retrieves the authenticated user id from the request context.
// Returns 0 for anonymous requests.
func UserIDFrom(r *http.Request) int64 {
	if v, ok := r.Context().Value(userIDKey).(int64); ok {
		return v
	}
	return 0
}

// IsStaffFrom reports whether the authenticated user carries the staff flag.
func IsStaffFrom(r *http.Request) bool {
	if v, ok := r.Context().Value(staffKey).(bool); ok {
		return v
	}
	return false
}

// ContextWithUser returns a new context carrying the user id and staff flag.
func ContextWithUser(ctx context.Context, userID int64, staff bool) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, staffKey, staff)
}

// RequestIDFrom retrieves the request id from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
