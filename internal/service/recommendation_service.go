package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/apperr"
	"github.com/d60-Lab/feelnote-core/internal/metrics"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
)

const MaxRecommendationMessage = 500

// AudiencePolicy decides who a sender may recommend to.
type AudiencePolicy interface {
	Allowed(ctx context.Context, senderID, receiverID string) (bool, error)
}

// FollowAudience allows any receiver connected to the sender by a follow in
// either direction.
type FollowAudience struct {
	Follows repository.FollowRepository
}

func (p FollowAudience) Allowed(ctx context.Context, senderID, receiverID string) (bool, error) {
	return p.Follows.IsConnected(ctx, senderID, receiverID)
}

// OpenAudience allows everyone.
type OpenAudience struct{}

func (OpenAudience) Allowed(context.Context, string, string) (bool, error) { return true, nil }

// RecommendationService runs the pending -> accepted|declined workflow.
type RecommendationService interface {
	Send(ctx context.Context, senderID, receiverID, userContentID string, message *string) (*model.Recommendation, error)
	// Respond is restricted to the receiver. Exactly one concurrent responder wins.
	Respond(ctx context.Context, actorID, recommendationID string, accept bool) (*model.Recommendation, error)
	Cancel(ctx context.Context, senderID, recommendationID string) error
	ListReceived(ctx context.Context, userID string, status model.RecommendationStatus, page, pageSize int) ([]*model.Recommendation, error)
	ListSent(ctx context.Context, userID string, status model.RecommendationStatus, page, pageSize int) ([]*model.Recommendation, error)
}

type recommendationService struct {
	db       *gorm.DB
	recs     repository.RecommendationRepository
	contents repository.UserContentRepository
	audience AudiencePolicy
	ledger   ScoreLedger
	notifier Notifier
	now      func() time.Time
}

func NewRecommendationService(
	db *gorm.DB,
	recs repository.RecommendationRepository,
	contents repository.UserContentRepository,
	audience AudiencePolicy,
	ledger ScoreLedger,
	notifier Notifier,
) RecommendationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if audience == nil {
		audience = OpenAudience{}
	}
	return &recommendationService{
		db:       db,
		recs:     recs,
		contents: contents,
		audience: audience,
		ledger:   ledger,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *recommendationService) Send(ctx context.Context, senderID, receiverID, userContentID string, message *string) (rec *model.Recommendation, err error) {
	const op = "recommendation.send"
	ctx, span := tracer.Start(ctx, "RecommendationService.Send", trace.WithAttributes(
		attribute.String("sender_id", senderID), attribute.String("receiver_id", receiverID)))
	start := time.Now()
	defer func() {
		metrics.ObserveOp(op, start, err)
		endSpan(span, err)
	}()

	if senderID == "" {
		return nil, apperr.Unauthenticated(op)
	}
	receiverID = strings.TrimSpace(receiverID)
	userContentID = strings.TrimSpace(userContentID)
	switch {
	case receiverID == "" || userContentID == "":
		return nil, apperr.Validation(op, "receiver and user content are required")
	case senderID == receiverID:
		return nil, apperr.Validation(op, "cannot recommend to yourself")
	}
	msg, err := normalizeMessage(op, message)
	if err != nil {
		return nil, err
	}

	uc, err := s.contents.Get(ctx, userContentID)
	if err != nil {
		return nil, apperr.FromStorage(op, err)
	}
	if uc.UserID != senderID {
		return nil, apperr.NotFound(op, "user content not found")
	}
	ok, err := s.audience.Allowed(ctx, senderID, receiverID)
	if err != nil {
		return nil, apperr.FromStorage(op, err)
	}
	if !ok {
		return nil, apperr.Validation(op, "receiver is not in your friends or followers")
	}
	dup, err := s.recs.ExistsPending(ctx, senderID, receiverID, userContentID)
	if err != nil {
		return nil, apperr.FromStorage(op, err)
	}
	if dup {
		return nil, apperr.InvalidState(op, "already recommended and still pending")
	}

	rec = &model.Recommendation{
		ID:            uuid.NewString(),
		SenderID:      senderID,
		ReceiverID:    receiverID,
		UserContentID: userContentID,
		Message:       msg,
		Status:        model.RecommendationPending,
		CreatedAt:     s.now(),
	}
	ref := rec.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.recs.WithTx(tx).Create(ctx, rec); err != nil {
			return err
		}
		return s.ledger.ApplyInTx(ctx, tx, ScoreChange{
			UserID: senderID, Type: model.ScoreTypeActivity, Action: ActionRecommendationSend,
			Amount: activityPoints[ActionRecommendationSend], ReferenceID: &ref,
		})
	})
	if apperr.IsUniqueViolation(err) {
		// a concurrent Send won the pending slot
		return nil, apperr.InvalidState(op, "already recommended and still pending")
	}
	if err != nil {
		return nil, apperr.FromStorage(op, err)
	}
	metrics.RecommendationTransitions.WithLabelValues(string(model.RecommendationPending)).Inc()

	s.notifier.Notify(ctx, receiverID, model.NotificationRecommendationReceived, senderID, map[string]any{
		"recommendation_id": rec.ID,
		"user_content_id":   userContentID,
	})
	return rec, nil
}

func normalizeMessage(op string, message *string) (*string, error) {
	if message == nil {
		return nil, nil
	}
	m := strings.TrimSpace(*message)
	if m == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(m) > MaxRecommendationMessage {
		return nil, apperr.Validation(op, "message is too long")
	}
	return &m, nil
}

func (s *recommendationService) Respond(ctx context.Context, actorID, recommendationID string, accept bool) (rec *model.Recommendation, err error) {
	const op = "recommendation.respond"
	ctx, span := tracer.Start(ctx, "RecommendationService.Respond", trace.WithAttributes(
		attribute.String("recommendation_id", recommendationID), attribute.Bool("accept", accept)))
	start := time.Now()
	defer func() {
		metrics.ObserveOp(op, start, err)
		endSpan(span, err)
	}()

	if actorID == "" {
		return nil, apperr.Unauthenticated(op)
	}
	rec, err = s.recs.Get(ctx, recommendationID)
	if err != nil {
		return nil, apperr.FromStorage(op, err)
	}
	if rec.ReceiverID != actorID {
		return nil, apperr.NotFound(op, "recommendation not found")
	}
	if rec.Status.Terminal() {
		return nil, apperr.InvalidState(op, "already responded")
	}

	to := model.RecommendationDeclined
	if accept {
		to = model.RecommendationAccepted
	}
	at := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.recs.WithTx(tx).TransitionFromPending(ctx, rec.ID, actorID, to, at)
		if err != nil {
			return err
		}
		if !ok {
			metrics.RecommendationConflicts.Inc()
			return apperr.InvalidState(op, "already responded")
		}
		if !accept {
			return nil
		}
		ref := rec.ID
		return s.ledger.ApplyInTx(ctx, tx, ScoreChange{
			UserID: rec.SenderID, Type: model.ScoreTypeActivity, Action: ActionRecommendationAccepted,
			Amount: activityPoints[ActionRecommendationAccepted], ReferenceID: &ref,
		})
	})
	if err != nil {
		return nil, apperr.FromStorage(op, err)
	}
	metrics.RecommendationTransitions.WithLabelValues(string(to)).Inc()

	rec.Status = to
	rec.RespondedAt = &at

	typ := model.NotificationRecommendationDeclined
	if accept {
		typ = model.NotificationRecommendationAccepted
	}
	s.notifier.Notify(ctx, rec.SenderID, typ, actorID, map[string]any{
		"recommendation_id": rec.ID,
		"user_content_id":   rec.UserContentID,
	})
	return rec, nil
}

func (s *recommendationService) Cancel(ctx context.Context, senderID, recommendationID string) (err error) {
	const op = "recommendation.cancel"
	ctx, span := tracer.Start(ctx, "RecommendationService.Cancel",
		trace.WithAttributes(attribute.String("recommendation_id", recommendationID)))
	start := time.Now()
	defer func() {
		metrics.ObserveOp(op, start, err)
		endSpan(span, err)
	}()

	if senderID == "" {
		return apperr.Unauthenticated(op)
	}
	rec, err := s.recs.Get(ctx, recommendationID)
	if err != nil {
		return apperr.FromStorage(op, err)
	}
	if rec.SenderID != senderID {
		return apperr.NotFound(op, "recommendation not found")
	}
	if rec.Status.Terminal() {
		return apperr.InvalidState(op, "already responded")
	}
	ok, err := s.recs.DeletePending(ctx, rec.ID, senderID)
	if err != nil {
		return apperr.FromStorage(op, err)
	}
	if !ok {
		metrics.RecommendationConflicts.Inc()
		return apperr.InvalidState(op, "already responded")
	}
	return nil
}

func (s *recommendationService) ListReceived(ctx context.Context, userID string, status model.RecommendationStatus, page, pageSize int) ([]*model.Recommendation, error) {
	return s.list(ctx, "recommendation.list_received", s.recs.ListByReceiver, userID, status, page, pageSize)
}

func (s *recommendationService) ListSent(ctx context.Context, userID string, status model.RecommendationStatus, page, pageSize int) ([]*model.Recommendation, error) {
	return s.list(ctx, "recommendation.list_sent", s.recs.ListBySender, userID, status, page, pageSize)
}

type listFunc func(ctx context.Context, userID string, status model.RecommendationStatus, offset, limit int) ([]*model.Recommendation, error)

func (s *recommendationService) list(ctx context.Context, op string, fn listFunc, userID string, status model.RecommendationStatus, page, pageSize int) ([]*model.Recommendation, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated(op)
	}
	switch status {
	case "", model.RecommendationPending, model.RecommendationAccepted, model.RecommendationDeclined:
	default:
		return nil, apperr.Validation(op, "unknown status "+string(status))
	}
	offset, limit := pageBounds(page, pageSize)
	out, err := fn(ctx, userID, status, offset, limit)
	if err != nil {
		return nil, apperr.FromStorage(op, err)
	}
	return out, nil
}
