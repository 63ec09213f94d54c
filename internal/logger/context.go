package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	fieldsKey    ctxKey = "log_fields"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithFields attaches fields that every logger obtained through FromCtx will
// carry, e.g. the order being reconciled. A field replaces an earlier one
// with the same key.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing, _ := ctx.Value(fieldsKey).([]zap.Field)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	for _, f := range existing {
		if !hasKey(fields, f.Key) {
			merged = append(merged, f)
		}
	}
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

func hasKey(fields []zap.Field, key string) bool {
	for _, f := range fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// FromCtx returns logger with request_id and context fields added
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if fields, ok := ctx.Value(fieldsKey).([]zap.Field); ok && len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}
