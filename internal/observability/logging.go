package observability

import (
	"context"
	"log/slog"
)

// LogContext holds structured logging context information.
type LogContext struct {
	OrgID     string
	MemberID  string
	RequestID string
	Stage     string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithOrgID adds an organization ID to the context.
func WithOrgID(ctx context.Context, orgID string) context.Context {
	lc := extractLogContext(ctx)
	lc.OrgID = orgID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithMemberID adds a member ID to the context.
func WithMemberID(ctx context.Context, memberID string) context.Context {
	lc := extractLogContext(ctx)
	lc.MemberID = memberID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RequestID = requestID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// extractLogContext retrieves or creates a LogContext from the context.
func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// getLogAttrs returns slog attributes from the context's LogContext.
func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.OrgID != "" {
		attrs = append(attrs, slog.String("org.id", lc.OrgID))
	}
	if lc.MemberID != "" {
		attrs = append(attrs, slog.String("member.id", lc.MemberID))
	}
	if lc.RequestID != "" {
		attrs = append(attrs, slog.String("request.id", lc.RequestID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String("stage", lc.Stage))
	}

	return attrs
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	allAttrs := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, slog.LevelInfo, msg, allAttrs...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	allAttrs := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, slog.LevelWarn, msg, allAttrs...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	allAttrs := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, slog.LevelError, msg, allAttrs...)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	allAttrs := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, slog.LevelDebug, msg, allAttrs...)
}
