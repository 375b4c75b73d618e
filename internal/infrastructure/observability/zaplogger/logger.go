package zaplogger

import (
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/pkg/logging"
	"go.uber.org/zap"
)

type logger struct{ l *zap.Logger }

// Logger is the zap-backed observability logger; Sync flushes buffered entries.
type Logger interface {
	observability.Logger
	Sync() error
}

// New builds the production JSON logger for service/env and wraps it.
func New(service, env, logFile string, fixed ...observability.Field) (Logger, error) {
	l, err := logging.NewLogger(service, env, logFile)
	if err != nil {
		return nil, err
	}
	if len(fixed) > 0 {
		l = l.With(toZapFields(fixed)...)
	}
	return &logger{l: l}, nil
}

// Wrap adapts an existing zap logger, e.g. zap.NewNop() or an observer core in tests.
func Wrap(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &logger{l: l}
}

func (z *logger) With(fields ...observability.Field) observability.Logger {
	if len(fields) == 0 {
		return &logger{l: z.l}
	}
	return &logger{l: z.l.With(toZapFields(fields)...)}
}

func (z *logger) Debug(msg string, fields ...observability.Field) {
	z.l.Debug(msg, toZapFields(fields)...)
}
func (z *logger) Info(msg string, fields ...observability.Field) {
	z.l.Info(msg, toZapFields(fields)...)
}
func (z *logger) Warn(msg string, fields ...observability.Field) {
	z.l.Warn(msg, toZapFields(fields)...)
}
func (z *logger) Error(msg string, fields ...observability.Field) {
	z.l.Error(msg, toZapFields(fields)...)
}

// Sync flushes any buffered log entries. Safe to call on shutdown.
func (z *logger) Sync() error {
	return z.l.Sync()
}

func toZapFields(fs []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fs))
	for _, f := range fs {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
