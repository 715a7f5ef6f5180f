package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/apperr"
	"github.com/d60-Lab/feelnote-core/internal/metrics"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
)

// Activity actions and their fixed point values.
const (
	ActionContentAdd             = "CONTENT_ADD"
	ActionStatusChange           = "STATUS_CHANGE"
	ActionRatingAdd              = "RATING_ADD"
	ActionReviewWrite            = "REVIEW_WRITE"
	ActionRecordWrite            = "RECORD_WRITE"
	ActionRecommendationSend     = "RECOMMENDATION_SEND"
	ActionRecommendationAccepted = "RECOMMENDATION_ACCEPTED"
	ActionFollowGained           = "FOLLOW_GAINED"
	ActionTitleUnlock            = "TITLE_UNLOCK"
)

var activityPoints = map[string]int{
	ActionContentAdd:             10,
	ActionStatusChange:           2,
	ActionRatingAdd:              3,
	ActionReviewWrite:            15,
	ActionRecordWrite:            5,
	ActionRecommendationSend:     3,
	ActionRecommendationAccepted: 10,
	ActionFollowGained:           1,
}

// selfReported are the actions a client may report for itself. The rest are
// credited only by the recommendation and relation workflows.
var selfReported = map[string]bool{
	ActionContentAdd:   true,
	ActionStatusChange: true,
	ActionRatingAdd:    true,
	ActionReviewWrite:  true,
	ActionRecordWrite:  true,
}

// PointsFor returns the fixed value of an activity action.
func PointsFor(action string) (int, bool) {
	p, ok := activityPoints[action]
	return p, ok
}

// ScoreChange is one ledger append.
type ScoreChange struct {
	UserID      string
	Type        model.ScoreType
	Action      string
	Amount      int
	ReferenceID *string
}

// ScoreLedger appends score events and keeps user_scores in step with them.
type ScoreLedger interface {
	// AddScore appends an activity entry and bumps the user's aggregate.
	// There is no deduplication on referenceID.
	AddScore(ctx context.Context, userID, action string, amount int, referenceID *string) (*model.UserScore, error)
	AddTitleBonus(ctx context.Context, userID, titleID string, amount int) (*model.UserScore, error)
	// RecordActivity credits a self-reported action at its fixed value.
	RecordActivity(ctx context.Context, userID, action string, referenceID *string) (*model.UserScore, error)
	// ApplyInTx appends inside the caller's transaction.
	ApplyInTx(ctx context.Context, tx *gorm.DB, change ScoreChange) error
	GetScore(ctx context.Context, userID string) (*model.UserScore, error)
	History(ctx context.Context, userID string, page, pageSize int) ([]*model.ScoreEntry, error)
	Leaderboard(ctx context.Context, limit int) ([]*model.UserScore, error)
}

type scoreLedger struct {
	db   *gorm.DB
	repo repository.ScoreRepository
	now  func() time.Time
}

func NewScoreLedger(db *gorm.DB, repo repository.ScoreRepository) ScoreLedger {
	return &scoreLedger{db: db, repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (l *scoreLedger) AddScore(ctx context.Context, userID, action string, amount int, referenceID *string) (*model.UserScore, error) {
	return l.apply(ctx, "score.add", ScoreChange{
		UserID: userID, Type: model.ScoreTypeActivity, Action: action, Amount: amount, ReferenceID: referenceID,
	})
}

func (l *scoreLedger) AddTitleBonus(ctx context.Context, userID, titleID string, amount int) (*model.UserScore, error) {
	ref := titleID
	return l.apply(ctx, "score.add_title_bonus", ScoreChange{
		UserID: userID, Type: model.ScoreTypeTitleBonus, Action: ActionTitleUnlock, Amount: amount, ReferenceID: &ref,
	})
}

func (l *scoreLedger) RecordActivity(ctx context.Context, userID, action string, referenceID *string) (*model.UserScore, error) {
	points, ok := PointsFor(action)
	if !ok {
		return nil, apperr.Validation("score.record_activity", "unknown activity action "+action)
	}
	if !selfReported[action] {
		return nil, apperr.Validation("score.record_activity", action+" is awarded by its workflow")
	}
	return l.AddScore(ctx, userID, action, points, referenceID)
}

func (l *scoreLedger) apply(ctx context.Context, op string, change ScoreChange) (score *model.UserScore, err error) {
	ctx, span := tracer.Start(ctx, "ScoreLedger."+op, trace.WithAttributes(
		attribute.String("user_id", change.UserID),
		attribute.String("action", change.Action),
		attribute.Int("amount", change.Amount),
	))
	start := time.Now()
	defer func() {
		metrics.ObserveOp(op, start, err)
		endSpan(span, err)
	}()

	if err := validateChange(op, change); err != nil {
		return nil, err
	}
	if err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return l.ApplyInTx(ctx, tx, change)
	}); err != nil {
		return nil, apperr.FromStorage(op, err)
	}
	return l.GetScore(ctx, change.UserID)
}

// ApplyInTx appends the entry and upserts the aggregate. Both statements run
// on tx, so a failure in either rolls back the pair.
func (l *scoreLedger) ApplyInTx(ctx context.Context, tx *gorm.DB, change ScoreChange) error {
	if err := validateChange("score.apply", change); err != nil {
		return err
	}
	now := l.now()
	repo := l.repo.WithTx(tx)
	entry := &model.ScoreEntry{
		ID:          uuid.NewString(),
		UserID:      change.UserID,
		Type:        change.Type,
		Action:      change.Action,
		Amount:      change.Amount,
		ReferenceID: change.ReferenceID,
		CreatedAt:   now,
	}
	if err := repo.Append(ctx, entry); err != nil {
		return err
	}
	if err := repo.Increment(ctx, change.UserID, change.Type, change.Amount, now); err != nil {
		return err
	}
	metrics.ScoreEntriesTotal.WithLabelValues(string(change.Type), change.Action).Inc()
	return nil
}

func validateChange(op string, c ScoreChange) error {
	switch {
	case strings.TrimSpace(c.UserID) == "":
		return apperr.Validation(op, "user id is required")
	case strings.TrimSpace(c.Action) == "":
		return apperr.Validation(op, "action is required")
	case c.Amount == 0:
		return apperr.Validation(op, "amount must be non-zero")
	case c.Type != model.ScoreTypeActivity && c.Type != model.ScoreTypeTitleBonus:
		return apperr.Validation(op, "unknown score type "+string(c.Type))
	}
	return nil
}

func (l *scoreLedger) GetScore(ctx context.Context, userID string) (*model.UserScore, error) {
	s, err := l.repo.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.UserScore{UserID: userID}, nil
	}
	if err != nil {
		return nil, apperr.FromStorage("score.get", err)
	}
	return s, nil
}

func (l *scoreLedger) History(ctx context.Context, userID string, page, pageSize int) ([]*model.ScoreEntry, error) {
	offset, limit := pageBounds(page, pageSize)
	entries, err := l.repo.ListEntries(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperr.FromStorage("score.history", err)
	}
	return entries, nil
}

func (l *scoreLedger) Leaderboard(ctx context.Context, limit int) ([]*model.UserScore, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows, err := l.repo.Top(ctx, limit)
	if err != nil {
		return nil, apperr.FromStorage("score.leaderboard", err)
	}
	return rows, nil
}
