// Package net carries request scoped ids between middleware and handlers
package net

import (
	"context"

	"afsearch/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keySessionID ctxKey = "search_session_id"

// WithRequest stores the request id where chi looks for it and the search session id,
// and mirrors both on the logger context
func WithRequest(ctx context.Context, reqID, sessionID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if sessionID != "" {
		ctx = context.WithValue(ctx, keySessionID, sessionID)
	}
	if reqID == "" && sessionID == "" {
		return ctx
	}
	return logger.WithRequest(ctx, reqID, sessionID)
}

// RequestID returns the request id on ctx, if any
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// SessionID returns the search session id on ctx, if any
func SessionID(ctx context.Context) string {
	v, _ := ctx.Value(keySessionID).(string)
	return v
}
