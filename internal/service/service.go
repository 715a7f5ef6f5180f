package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

var tracer = otel.Tracer("github.com/d60-Lab/feelnote-core/internal/service")

// Notifier delivers best-effort notifications. Implementations must not block
// the caller and never report failures back.
type Notifier interface {
	Notify(ctx context.Context, userID string, typ model.NotificationType, actorID string, payload map[string]any)
}

// NopNotifier drops everything.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, model.NotificationType, string, map[string]any) {}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// pageBounds turns page/pageSize into offset/limit with sane defaults.
func pageBounds(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return (page - 1) * pageSize, pageSize
}
