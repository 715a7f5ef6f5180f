// Package notify delivers in-app notifications off the request path.
//
// Producers publish onto an in-process watermill channel; a subscriber
// persists each message. Delivery failures are logged, counted and recorded
// but never surface to the producer.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/feelnote-core/internal/metrics"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
	"github.com/d60-Lab/feelnote-core/pkg/logger"
)

const topic = "notifications"

var ErrNotStarted = errors.New("notify: dispatcher not started")

// Config tunes delivery.
type Config struct {
	Buffer      int
	MaxAttempts int
	RetryDelay  time.Duration
}

// envelope is the wire form of one notification on the channel.
type envelope struct {
	UserID   string                 `json:"user_id"`
	Type     model.NotificationType `json:"type"`
	ActorID  string                 `json:"actor_id,omitempty"`
	Payload  map[string]any         `json:"payload,omitempty"`
	QueuedAt time.Time              `json:"queued_at"`
}

// Dispatcher delivers notifications asynchronously.
type Dispatcher struct {
	repo    repository.NotificationRepository
	cfg     Config
	pubsub  *gochannel.GoChannel
	started atomic.Bool
	wg      sync.WaitGroup
}

func NewDispatcher(repo repository.NotificationRepository, cfg Config) *Dispatcher {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1024
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.Buffer),
	}, NewLoggerAdapter(logger.L().Named("watermill")))
	return &Dispatcher{repo: repo, cfg: cfg, pubsub: pubsub}
}

// Start subscribes the persisting consumer. The returned stop function closes
// the channel and waits for in-flight messages.
func (d *Dispatcher) Start(ctx context.Context) (func(context.Context) error, error) {
	msgs, err := d.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	d.started.Store(true)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for msg := range msgs {
			d.handle(msg)
			msg.Ack()
		}
	}()

	return func(ctx context.Context) error {
		d.started.Store(false)
		if err := d.pubsub.Close(); err != nil {
			return err
		}
		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, nil
}

// Notify enqueues one notification. It never blocks on storage and never fails.
func (d *Dispatcher) Notify(ctx context.Context, userID string, typ model.NotificationType, actorID string, payload map[string]any) {
	if err := d.publish(envelope{UserID: userID, Type: typ, ActorID: actorID, Payload: payload, QueuedAt: time.Now().UTC()}); err != nil {
		metrics.Notifications.WithLabelValues("dropped").Inc()
		logger.Warn("notification dropped",
			zap.String("user_id", userID), zap.String("type", string(typ)), zap.Error(err))
	}
}

func (d *Dispatcher) publish(env envelope) error {
	if !d.started.Load() {
		return ErrNotStarted
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return d.pubsub.Publish(topic, message.NewMessage(watermill.NewUUID(), body))
}

func (d *Dispatcher) handle(msg *message.Message) {
	var env envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		metrics.Notifications.WithLabelValues("malformed").Inc()
		logger.Error("malformed notification message", zap.String("message_id", msg.UUID), zap.Error(err))
		return
	}

	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    env.UserID,
		Type:      env.Type,
		CreatedAt: env.QueuedAt,
	}
	if env.ActorID != "" {
		actor := env.ActorID
		n.ActorID = &actor
	}
	if len(env.Payload) > 0 {
		raw, _ := json.Marshal(env.Payload)
		n.Payload = string(raw)
	}

	var err error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = d.repo.Create(ctx, n)
		cancel()
		if err == nil {
			metrics.Notifications.WithLabelValues("delivered").Inc()
			return
		}
		if attempt < d.cfg.MaxAttempts {
			time.Sleep(d.cfg.RetryDelay * time.Duration(attempt))
		}
	}
	d.fail(n, err)
}

func (d *Dispatcher) fail(n *model.Notification, cause error) {
	metrics.Notifications.WithLabelValues("failed").Inc()
	logger.Error("notification delivery failed",
		zap.String("user_id", n.UserID),
		zap.String("type", string(n.Type)),
		zap.Int("attempts", d.cfg.MaxAttempts),
		zap.Error(cause))
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "notify")
		scope.SetTag("notification_type", string(n.Type))
		sentry.CaptureException(cause)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.repo.RecordFailure(ctx, &model.NotificationFailure{
		ID:        uuid.NewString(),
		UserID:    n.UserID,
		Type:      n.Type,
		Payload:   n.Payload,
		Error:     cause.Error(),
		Attempts:  d.cfg.MaxAttempts,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		logger.Error("record notification failure", zap.Error(err))
	}
}
