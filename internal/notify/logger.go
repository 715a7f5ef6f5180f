package notify

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// zapAdapter routes watermill's internal logging onto zap.
type zapAdapter struct {
	l *zap.Logger
}

// NewLoggerAdapter wraps l for watermill components.
func NewLoggerAdapter(l *zap.Logger) watermill.LoggerAdapter {
	return &zapAdapter{l: l}
}

func (a *zapAdapter) fields(f watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (a *zapAdapter) Error(msg string, err error, f watermill.LogFields) {
	a.l.Error(msg, append(a.fields(f), zap.Error(err))...)
}

func (a *zapAdapter) Info(msg string, f watermill.LogFields)  { a.l.Info(msg, a.fields(f)...) }
func (a *zapAdapter) Debug(msg string, f watermill.LogFields) { a.l.Debug(msg, a.fields(f)...) }

// Trace is chatty per-message logging; folded into debug.
func (a *zapAdapter) Trace(msg string, f watermill.LogFields) { a.l.Debug(msg, a.fields(f)...) }

func (a *zapAdapter) With(f watermill.LogFields) watermill.LoggerAdapter {
	return &zapAdapter{l: a.l.With(a.fields(f)...)}
}
