package testutil

import (
	"context"
	"sync"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

// Sent is one captured notification.
type Sent struct {
	UserID  string
	Type    model.NotificationType
	ActorID string
	Payload map[string]any
}

// NotifyRecorder captures notifications synchronously.
type NotifyRecorder struct {
	mu   sync.Mutex
	Sent []Sent
}

func (r *NotifyRecorder) Notify(_ context.Context, userID string, typ model.NotificationType, actorID string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, Sent{UserID: userID, Type: typ, ActorID: actorID, Payload: payload})
}

// Of returns notifications of one type.
func (r *NotifyRecorder) Of(typ model.NotificationType) []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sent
	for _, s := range r.Sent {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}
