// Package contextutil carries request-scoped tracing values on a plain
// context.Context so services and repositories never depend on gin.
package contextutil

import (
	"context"

	"go.uber.org/zap"
)

// private key type so values never collide with other packages
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	kioskIDKey   contextKey = "kiosk_id"
	loggerKey    contextKey = "logger"
)

func with[T any](ctx context.Context, key contextKey, v T) context.Context {
	return context.WithValue(ctx, key, v)
}

func get[T any](ctx context.Context, key contextKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return with(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	rid, _ := get[string](ctx, requestIDKey)
	return rid
}

// WithUserID is set by the read-route auth gate.
func WithUserID(ctx context.Context, uid string) context.Context {
	return with(ctx, userIDKey, uid)
}

func GetUserID(ctx context.Context) string {
	uid, _ := get[string](ctx, userIDKey)
	return uid
}

// WithKioskID tags the request with the X-Kiosk-ID of the capturing device.
func WithKioskID(ctx context.Context, kid string) context.Context {
	return with(ctx, kioskIDKey, kid)
}

func GetKioskID(ctx context.Context) string {
	kid, _ := get[string](ctx, kioskIDKey)
	return kid
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return with(ctx, loggerKey, logger)
}

// GetLogger never returns nil: the request logger, else defaultLogger,
// else a no-op logger.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if l, ok := get[*zap.Logger](ctx, loggerKey); ok && l != nil {
		return l
	}
	if defaultLogger != nil {
		return defaultLogger
	}
	return zap.NewNop()
}

type Metadata struct {
	RequestID string
	UserID    string
	KioskID   string
}

func ExtractMetadata(ctx context.Context) Metadata {
	return Metadata{
		RequestID: GetRequestID(ctx),
		UserID:    GetUserID(ctx),
		KioskID:   GetKioskID(ctx),
	}
}

// Fields skips empty values.
func (m Metadata) Fields() []zap.Field {
	fields := make([]zap.Field, 0, 3)
	for _, kv := range [...]struct{ key, val string }{
		{"request_id", m.RequestID},
		{"user_id", m.UserID},
		{"kiosk_id", m.KioskID},
	} {
		if kv.val != "" {
			fields = append(fields, zap.String(kv.key, kv.val))
		}
	}
	return fields
}
