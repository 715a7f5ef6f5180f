package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/internal/cache"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
	"github.com/d60-Lab/feelnote-core/internal/testutil"
)

// seedTrackers: c1 tracked by two users and one celeb, c2 by one user, c3 by nobody.
func seedTrackers(t *testing.T, db *gorm.DB) {
	t.Helper()
	testutil.CreateUser(t, db, "u1", model.ProfileTypeUser)
	testutil.CreateUser(t, db, "u2", model.ProfileTypeUser)
	testutil.CreateUser(t, db, "celeb1", model.ProfileTypeCeleb)
	testutil.CreateUser(t, db, "celeb2", model.ProfileTypeCeleb)
	for _, id := range []string{"c1", "c2", "c3"} {
		testutil.CreateContent(t, db, id, model.ContentTypeBook)
	}
	testutil.CreateUserContent(t, db, "u1", "c1")
	testutil.CreateUserContent(t, db, "u2", "c1")
	testutil.CreateUserContent(t, db, "celeb1", "c1")
	testutil.CreateUserContent(t, db, "u1", "c2")
}

func TestCountsForContents_EmptyInputIssuesNoQuery(t *testing.T) {
	db := testutil.DB(t)
	counter := NewAggregateCounter(repository.NewCountRepository(db))
	qc := testutil.CountQueries(t, db)

	for _, in := range [][]string{nil, {}, {"", "  "}} {
		out, err := counter.CountsForContents(context.Background(), in)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.NotNil(t, out)
	}
	assert.Zero(t, qc.Load())
}

func TestCountsForContents_SplitsCelebsAndUsers(t *testing.T) {
	db := testutil.DB(t)
	seedTrackers(t, db)
	counter := NewAggregateCounter(repository.NewCountRepository(db))
	qc := testutil.CountQueries(t, db)

	out, err := counter.CountsForContents(context.Background(), []string{"c1", "c2", "c3", "c1", "missing"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, qc.Load(), "one grouped query")

	assert.Equal(t, map[string]model.ContentCounts{
		"c1": {CelebCount: 1, UserCount: 2},
		"c2": {CelebCount: 0, UserCount: 1},
	}, out)
}

func TestTagCounts_OnlyNonZeroActiveTagsInOrder(t *testing.T) {
	db := testutil.DB(t)
	seedTrackers(t, db)
	tags := []model.Tag{
		{ID: "t-critic", Name: "critic", Color: "#f00", SortOrder: 2, IsActive: true},
		{ID: "t-director", Name: "director", Color: "#0f0", SortOrder: 1, IsActive: true},
		{ID: "t-empty", Name: "empty", SortOrder: 0, IsActive: true},
		{ID: "t-old", Name: "retired", SortOrder: 0, IsActive: true},
	}
	require.NoError(t, db.Create(&tags).Error)
	require.NoError(t, db.Model(&model.Tag{}).Where("id = ?", "t-old").Update("is_active", false).Error)
	require.NoError(t, db.Create(&[]model.CelebTagAssignment{
		{CelebID: "celeb1", TagID: "t-critic"},
		{CelebID: "celeb2", TagID: "t-critic"},
		{CelebID: "celeb1", TagID: "t-director"},
		{CelebID: "celeb1", TagID: "t-old"},
		// ordinary users never count
		{CelebID: "u1", TagID: "t-empty"},
	}).Error)

	counter := NewAggregateCounter(repository.NewCountRepository(db))
	out, err := counter.TagCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "t-director", out[0].TagID)
	assert.EqualValues(t, 1, out[0].Count)
	assert.Equal(t, "t-critic", out[1].TagID)
	assert.EqualValues(t, 2, out[1].Count)
	assert.Equal(t, "#f00", out[1].Color)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachedCounter_ServesRepeatReadsFromRedis(t *testing.T) {
	db := testutil.DB(t)
	seedTrackers(t, db)
	_, rdb := newRedis(t)
	counter := NewCachedCounter(NewAggregateCounter(repository.NewCountRepository(db)), cache.New(rdb, "test-counts", time.Minute))
	ctx := context.Background()

	first, err := counter.CountsForContents(ctx, []string{"c1", "c3"})
	require.NoError(t, err)

	qc := testutil.CountQueries(t, db)
	second, err := counter.CountsForContents(ctx, []string{"c3", "c1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Zero(t, qc.Load())
	assert.NotContains(t, second, "c3")

	// a new id only loads the miss
	_, err = counter.CountsForContents(ctx, []string{"c1", "c2"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, qc.Load())
}

func TestCachedCounter_InvalidateReloads(t *testing.T) {
	db := testutil.DB(t)
	seedTrackers(t, db)
	_, rdb := newRedis(t)
	counter := NewCachedCounter(NewAggregateCounter(repository.NewCountRepository(db)), cache.New(rdb, "test-counts", time.Minute))
	ctx := context.Background()

	_, err := counter.CountsForContents(ctx, []string{"c3"})
	require.NoError(t, err)

	testutil.CreateUserContent(t, db, "u2", "c3")
	counter.InvalidateContents(ctx, "c3")

	out, err := counter.CountsForContents(ctx, []string{"c3"})
	require.NoError(t, err)
	assert.Equal(t, model.ContentCounts{UserCount: 1}, out["c3"])
}

func TestCachedCounter_FallsBackWhenRedisDown(t *testing.T) {
	db := testutil.DB(t)
	seedTrackers(t, db)
	mr, rdb := newRedis(t)
	mr.Close()
	counter := NewCachedCounter(NewAggregateCounter(repository.NewCountRepository(db)), cache.New(rdb, "test-counts", time.Minute))

	out, err := counter.CountsForContents(context.Background(), []string{"c1"})
	require.NoError(t, err)
	assert.Equal(t, model.ContentCounts{CelebCount: 1, UserCount: 2}, out["c1"])

	tags, err := counter.TagCounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tags)
}

// gatedCounter blocks every load until release is closed.
type gatedCounter struct {
	AggregateCounter
	loads   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCounter) CountsForContents(ctx context.Context, ids []string) (map[string]model.ContentCounts, error) {
	if g.loads.Add(1) == 1 {
		close(g.entered)
	}
	<-g.release
	return g.AggregateCounter.CountsForContents(ctx, ids)
}

func TestCachedCounter_CollapsesConcurrentMisses(t *testing.T) {
	db := testutil.DB(t)
	seedTrackers(t, db)
	_, rdb := newRedis(t)
	gated := &gatedCounter{
		AggregateCounter: NewAggregateCounter(repository.NewCountRepository(db)),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	counter := NewCachedCounter(gated, cache.New(rdb, "test-counts", time.Minute))
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	results := make([]map[string]model.ContentCounts, callers)
	call := func(i int) {
		defer wg.Done()
		out, err := counter.CountsForContents(ctx, []string{"c2", "c1"})
		assert.NoError(t, err)
		results[i] = out
	}
	wg.Add(1)
	go call(0)
	<-gated.entered
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go call(i)
	}
	// let the followers reach the in-flight load
	time.Sleep(100 * time.Millisecond)
	close(gated.release)
	wg.Wait()

	assert.EqualValues(t, 1, gated.loads.Load())
	for _, out := range results {
		assert.Equal(t, model.ContentCounts{CelebCount: 1, UserCount: 2}, out["c1"])
	}
}
