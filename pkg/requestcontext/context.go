// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; services and stores read them without
// importing net/http.
//
//	requestID := requestcontext.RequestID(ctx)
//	officerID := requestcontext.OfficerID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject fixed values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	officerIDKey   struct{}
	requestTimeKey struct{}
)

var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyOfficerID   = officerIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// OfficerID retrieves the authenticated customs officer from the context.
// Returns "" when the request was not authenticated.
func OfficerID(ctx context.Context) string {
	if officerID, ok := ctx.Value(ContextKeyOfficerID).(string); ok {
		return officerID
	}
	return ""
}

// WithOfficerID injects an authenticated officer ID into the context.
func WithOfficerID(ctx context.Context, officerID string) context.Context {
	return context.WithValue(ctx, ContextKeyOfficerID, officerID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
