package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/d60-Lab/feelnote-core/internal/apperr"
	"github.com/d60-Lab/feelnote-core/internal/cache"
	"github.com/d60-Lab/feelnote-core/internal/metrics"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
)

// AggregateCounter computes tracker and tag counts from source tables.
// Both calls are pure reads and safe to retry.
type AggregateCounter interface {
	// CountsForContents returns counts only for contents with at least one tracker.
	CountsForContents(ctx context.Context, contentIDs []string) (map[string]model.ContentCounts, error)
	TagCounts(ctx context.Context) ([]model.TagCount, error)
}

type aggregateCounter struct {
	repo repository.CountRepository
}

func NewAggregateCounter(repo repository.CountRepository) AggregateCounter {
	return &aggregateCounter{repo: repo}
}

func (a *aggregateCounter) CountsForContents(ctx context.Context, contentIDs []string) (out map[string]model.ContentCounts, err error) {
	ids := normalizeIDs(contentIDs)
	if len(ids) == 0 {
		return map[string]model.ContentCounts{}, nil
	}

	ctx, span := tracer.Start(ctx, "AggregateCounter.CountsForContents",
		trace.WithAttributes(attribute.Int("contents", len(ids))))
	start := time.Now()
	defer func() {
		metrics.ObserveOp("counter.contents", start, err)
		endSpan(span, err)
	}()

	out, err = a.repo.CountsByContent(ctx, ids)
	if err != nil {
		return nil, apperr.FromStorage("counter.contents", err)
	}
	return out, nil
}

func (a *aggregateCounter) TagCounts(ctx context.Context) (out []model.TagCount, err error) {
	ctx, span := tracer.Start(ctx, "AggregateCounter.TagCounts")
	start := time.Now()
	defer func() {
		metrics.ObserveOp("counter.tags", start, err)
		endSpan(span, err)
	}()

	out, err = a.repo.CelebCountsByTag(ctx)
	if err != nil {
		return nil, apperr.FromStorage("counter.tags", err)
	}
	if out == nil {
		out = []model.TagCount{}
	}
	return out, nil
}

// normalizeIDs trims, drops blanks and collapses duplicates. Output is sorted
// so equal sets produce identical queries.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

const tagCountsKey = "tags"

// CachedCounter puts a Redis read-through cache in front of an AggregateCounter.
// A cache outage degrades to direct reads.
type CachedCounter struct {
	next  AggregateCounter
	cache *cache.Cache
}

func NewCachedCounter(next AggregateCounter, c *cache.Cache) *CachedCounter {
	return &CachedCounter{next: next, cache: c}
}

// CountsForContents reads per-content entries from the cache and loads the
// misses in one grouped query. Contents without trackers are cached as zero
// so they do not keep missing.
func (c *CachedCounter) CountsForContents(ctx context.Context, contentIDs []string) (map[string]model.ContentCounts, error) {
	ids := normalizeIDs(contentIDs)
	out := make(map[string]model.ContentCounts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "content:" + id
	}
	hits := c.cache.GetMany(ctx, keys)

	var missing []string
	for i, id := range ids {
		raw, ok := hits[keys[i]]
		if !ok {
			missing = append(missing, id)
			continue
		}
		var cc model.ContentCounts
		if err := json.Unmarshal(raw, &cc); err != nil {
			missing = append(missing, id)
			continue
		}
		if cc.Total() > 0 {
			out[id] = cc
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	// missing is sorted, so identical bursts share one load
	loaded, err := cache.Collapse(c.cache, "contents:"+strings.Join(missing, ","), func() (map[string]model.ContentCounts, error) {
		rows, err := c.next.CountsForContents(ctx, missing)
		if err != nil {
			return nil, err
		}
		toCache := make(map[string]any, len(missing))
		for _, id := range missing {
			toCache["content:"+id] = rows[id]
		}
		c.cache.SetMany(ctx, toCache)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		if cc := loaded[id]; cc.Total() > 0 {
			out[id] = cc
		}
	}
	return out, nil
}

func (c *CachedCounter) TagCounts(ctx context.Context) ([]model.TagCount, error) {
	return cache.Fetch(ctx, c.cache, tagCountsKey, c.next.TagCounts)
}

// InvalidateContents drops cached counts after a tracker change.
func (c *CachedCounter) InvalidateContents(ctx context.Context, contentIDs ...string) {
	keys := make([]string, 0, len(contentIDs))
	for _, id := range normalizeIDs(contentIDs) {
		keys = append(keys, "content:"+id)
	}
	c.cache.Delete(ctx, keys...)
}

// InvalidateTags drops the cached tag counts.
func (c *CachedCounter) InvalidateTags(ctx context.Context) {
	c.cache.Delete(ctx, tagCountsKey)
}
