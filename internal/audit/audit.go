package audit

import (
	"context"
	"time"

	"face-attendance/internal/shared/contextutil"

	"go.uber.org/zap"
)

const (
	ActionServerShutdown    = "SERVER_SHUTDOWN"
	ActionAmbiguousIdentity = "AMBIGUOUS_IDENTITY"
)

type Entry struct {
	Action  string
	Message string
	Meta    map[string]any
}

type Logger interface {
	Log(ctx context.Context, entry Entry)
}

type StdoutLogger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewStdoutLogger(logger ...*zap.Logger) *StdoutLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &StdoutLogger{logger: l, now: time.Now}
}

func (l *StdoutLogger) Log(ctx context.Context, entry Entry) {
	fields := []zap.Field{
		zap.String("timestamp", l.now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	}
	fields = append(fields, contextutil.ExtractMetadata(ctx).Fields()...)
	l.logger.Info("audit event", fields...)
}

type nopLogger struct{}

// Nop discards every entry.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Log(context.Context, Entry) {}
