// Command cachebench compares direct tracker counts with the Redis-backed
// CachedCounter on a seeded dataset.
//
//	DATABASE_URL=... REDIS_ADDR=localhost:6379 go run ./cmd/cachebench
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/feelnote-core/internal/cache"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
	"github.com/d60-Lab/feelnote-core/internal/service"
	"github.com/d60-Lab/feelnote-core/pkg/database"
)

const (
	userCount    = 5000
	celebCount   = 200
	contentCount = 2000
	perUser      = 20
	requests     = 3000
	batchSize    = 24
)

func main() {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=feelnote_bench port=5432 sslmode=disable"
	}
	db := must(gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}))
	mustDo(db.Exec("DROP TABLE IF EXISTS user_contents, contents, profiles CASCADE").Error)
	mustDo(database.Migrate(db))

	var queries atomic.Int64
	mustDo(db.Callback().Row().Before("gorm:row").Register("bench:count", func(*gorm.DB) { queries.Add(1) }))

	fmt.Println("Setting up test data...")
	contentIDs := seed(db)
	fmt.Printf("Test data ready: %d users, %d celebs, %d contents\n", userCount, celebCount, contentCount)

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	direct := service.NewAggregateCounter(repository.NewCountRepository(db))
	cached := service.NewCachedCounter(direct, cache.New(client, "bench-counts", 10*time.Minute))
	reqs := makeRequests(contentIDs)

	noCache := runScenario(ctx, client, &queries, reqs, false, direct.CountsForContents)
	withCache := runScenario(ctx, client, &queries, reqs, true, cached.CountsForContents)

	fmt.Printf("\nContent tracker counts (%d req x %d ids, PostgreSQL + Redis)\n", requests, batchSize)
	for _, r := range []struct {
		name string
		res  scenarioResult
	}{{"No cache", noCache}, {"Cached counter", withCache}} {
		fmt.Printf("%-16s avg=%v p95=%v p99=%v db_queries=%d cache_keys=%d mem=%s\n",
			r.name, avg(r.res.durations), pct(r.res.durations, 0.95), pct(r.res.durations, 0.99),
			r.res.queries, r.res.cacheKeys, formatBytes(r.res.memoryBytes))
	}
}

func seed(db *gorm.DB) []string {
	users := make([]model.User, 0, userCount+celebCount)
	for i := 0; i < userCount+celebCount; i++ {
		pt := model.ProfileTypeUser
		if i >= userCount {
			pt = model.ProfileTypeCeleb
		}
		users = append(users, model.User{ID: uuid.NewString(), Nickname: fmt.Sprintf("user_%d", i), ProfileType: pt})
	}
	mustDo(db.CreateInBatches(&users, 1000).Error)

	contents := make([]model.Content, contentCount)
	ids := make([]string, contentCount)
	for i := range contents {
		ids[i] = fmt.Sprintf("content-%05d", i)
		contents[i] = model.Content{ID: ids[i], Type: model.ContentTypeBook, Title: ids[i]}
	}
	mustDo(db.CreateInBatches(&contents, 1000).Error)

	// skewed popularity: low ids are tracked far more often
	rnd := rand.New(rand.NewSource(7))
	rows := make([]model.UserContent, 0, len(users)*perUser)
	for _, u := range users {
		seen := map[int]bool{}
		for len(seen) < perUser {
			k := int(math.Abs(rnd.NormFloat64()) * contentCount / 4)
			if k >= contentCount || seen[k] {
				continue
			}
			seen[k] = true
			rows = append(rows, model.UserContent{ID: uuid.NewString(), UserID: u.ID, ContentID: ids[k], Status: model.ContentStatusWant})
		}
	}
	mustDo(db.CreateInBatches(&rows, 2000).Error)
	return ids
}

type scenarioResult struct {
	durations   []time.Duration
	queries     int64
	cacheKeys   int
	memoryBytes int64
}

type countFunc func(context.Context, []string) (map[string]model.ContentCounts, error)

func runScenario(ctx context.Context, client *redis.Client, queries *atomic.Int64, reqs [][]string, warm bool, call countFunc) scenarioResult {
	client.FlushAll(ctx)

	if warm {
		fmt.Print("  Warming cache...")
		for _, r := range reqs {
			must(call(ctx, r))
		}
		fmt.Println(" done")
	}

	queries.Store(0)
	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		must(call(ctx, r))
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "*").Result()
	var memBytes int64
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		memBytes = parseRedisMemory(info)
	}
	return scenarioResult{durations: out, queries: queries.Load(), cacheKeys: len(keys), memoryBytes: memBytes}
}

// parseRedisMemory extracts used_memory from Redis INFO
func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			n, _ := strconv.ParseInt(v, 10, 64)
			return n
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// makeRequests simulates list pages: mostly the popular head, sometimes a deep page.
func makeRequests(ids []string) [][]string {
	rnd := rand.New(rand.NewSource(42))
	out := make([][]string, requests)
	for i := range out {
		start := 0
		if rnd.Float64() > 0.72 {
			start = rnd.Intn(len(ids) - batchSize)
		} else {
			start = rnd.Intn(200)
		}
		out[i] = ids[start : start+batchSize]
	}
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
