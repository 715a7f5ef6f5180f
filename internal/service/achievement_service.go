package service

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/achievement"
	"github.com/d60-Lab/feelnote-core/internal/apperr"
	"github.com/d60-Lab/feelnote-core/internal/metrics"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
)

// AchievementService unlocks catalog titles whose rules a user satisfies.
type AchievementService interface {
	// Evaluate returns only titles unlocked by this call, ordered by grade
	// then catalog order. Unchanged stats yield an empty result.
	Evaluate(ctx context.Context, userID string, stats achievement.Stats) ([]model.AchievementTitle, error)
	// EvaluateUser collects stats from the store and evaluates them.
	EvaluateUser(ctx context.Context, userID string) ([]model.AchievementTitle, error)
	Catalog() []model.AchievementTitle
	Unlocked(ctx context.Context, userID string) ([]model.UnlockedTitle, error)
	// SyncCatalog upserts the catalog into the titles table.
	SyncCatalog(ctx context.Context) error
}

type achievementService struct {
	db       *gorm.DB
	catalog  *achievement.Catalog
	titles   repository.TitleRepository
	stats    repository.StatsRepository
	ledger   ScoreLedger
	notifier Notifier
	now      func() time.Time
}

func NewAchievementService(
	db *gorm.DB,
	catalog *achievement.Catalog,
	titles repository.TitleRepository,
	stats repository.StatsRepository,
	ledger ScoreLedger,
	notifier Notifier,
) AchievementService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &achievementService{
		db:       db,
		catalog:  catalog,
		titles:   titles,
		stats:    stats,
		ledger:   ledger,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *achievementService) Evaluate(ctx context.Context, userID string, stats achievement.Stats) (unlocked []model.AchievementTitle, err error) {
	const op = "achievement.evaluate"
	ctx, span := tracer.Start(ctx, "AchievementService.Evaluate", trace.WithAttributes(attribute.String("user_id", userID)))
	start := time.Now()
	defer func() {
		metrics.ObserveOp(op, start, err)
		endSpan(span, err)
	}()

	if userID == "" {
		return nil, apperr.Unauthenticated(op)
	}
	have, err := s.titles.UnlockedIDs(ctx, userID)
	if err != nil {
		return nil, apperr.FromStorage(op, err)
	}

	var candidates []model.AchievementTitle
	for _, t := range s.catalog.Titles() {
		if _, ok := have[t.ID]; ok {
			continue
		}
		if achievement.Satisfied(t, stats) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return []model.AchievementTitle{}, nil
	}

	at := s.now()
	unlocked = make([]model.AchievementTitle, 0, len(candidates))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.titles.WithTx(tx)
		for _, t := range candidates {
			inserted, err := repo.Unlock(ctx, userID, t.ID, at)
			if err != nil {
				return err
			}
			// lost the race to a concurrent evaluator
			if !inserted {
				continue
			}
			if t.BonusScore != 0 {
				ref := t.ID
				if err := s.ledger.ApplyInTx(ctx, tx, ScoreChange{
					UserID: userID, Type: model.ScoreTypeTitleBonus, Action: ActionTitleUnlock,
					Amount: t.BonusScore, ReferenceID: &ref,
				}); err != nil {
					return err
				}
			}
			unlocked = append(unlocked, t)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromStorage(op, err)
	}

	achievement.SortForDisplay(unlocked)
	for _, t := range unlocked {
		metrics.TitlesUnlocked.WithLabelValues(string(t.Grade)).Inc()
		s.notifier.Notify(ctx, userID, model.NotificationTitleUnlocked, "", map[string]any{
			"title_id":    t.ID,
			"title_name":  t.Name,
			"grade":       t.Grade,
			"bonus_score": t.BonusScore,
		})
	}
	return unlocked, nil
}

func (s *achievementService) EvaluateUser(ctx context.Context, userID string) ([]model.AchievementTitle, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("achievement.evaluate_user")
	}
	stats, err := s.collectStats(ctx, userID)
	if err != nil {
		return nil, apperr.FromStorage("achievement.collect_stats", err)
	}
	return s.Evaluate(ctx, userID, stats)
}

// collectStats queries only the stats some catalog rule refers to.
func (s *achievementService) collectStats(ctx context.Context, userID string) (achievement.Stats, error) {
	needed := make(map[achievement.StatKey]struct{})
	for _, t := range s.catalog.Titles() {
		needed[achievement.StatKey(t.RuleStat)] = struct{}{}
	}

	var mu sync.Mutex
	stats := make(achievement.Stats, len(needed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for key := range needed {
		key := key
		g.Go(func() error {
			n, err := s.stats.Count(gctx, userID, string(key))
			if err != nil {
				return err
			}
			mu.Lock()
			stats[key] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *achievementService) Catalog() []model.AchievementTitle {
	out := s.catalog.Titles()
	achievement.SortForDisplay(out)
	return out
}

func (s *achievementService) Unlocked(ctx context.Context, userID string) ([]model.UnlockedTitle, error) {
	if userID == "" {
		return nil, apperr.Unauthenticated("achievement.unlocked")
	}
	out, err := s.titles.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, apperr.FromStorage("achievement.unlocked", err)
	}
	return out, nil
}

func (s *achievementService) SyncCatalog(ctx context.Context) error {
	if err := s.titles.SyncCatalog(ctx, s.catalog.Titles()); err != nil {
		return apperr.FromStorage("achievement.sync_catalog", err)
	}
	return nil
}
