// Command scorebench hammers the score ledger with concurrent appends and
// checks that the per-user aggregates still match the ledger afterwards.
//
//	N=20000 CONC=16 USERS=50 go run ./cmd/scorebench
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/feelnote-core/config"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
	"github.com/d60-Lab/feelnote-core/internal/service"
	"github.com/d60-Lab/feelnote-core/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()

	scoreRepo := repository.NewScoreRepository(db)
	ledger := service.NewScoreLedger(db, scoreRepo)
	ctx := context.Background()

	N := envInt("N", 10000)
	CONC := envInt("CONC", 8)
	USERS := envInt("USERS", 20)
	if CONC > N {
		CONC = N
	}

	// a fresh run id keeps repeated runs from mixing with older rows
	run := uuid.NewString()[:8]
	users := make([]string, USERS)
	for i := range users {
		users[i] = fmt.Sprintf("bench-%s-%03d", run, i)
	}

	feed := make(chan int, N)
	for i := 0; i < N; i++ {
		feed <- i
	}
	close(feed)

	var (
		mu      sync.Mutex
		lat     = make([]time.Duration, 0, N)
		failed  int
		wg      sync.WaitGroup
		actions = []string{service.ActionContentAdd, service.ActionRatingAdd, service.ActionReviewWrite}
	)
	t0 := time.Now()
	for w := 0; w < CONC; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range feed {
				user := users[i%len(users)]
				st := time.Now()
				var err error
				if i%10 == 9 {
					_, err = ledger.AddTitleBonus(ctx, user, "bench", 7)
				} else {
					_, err = ledger.RecordActivity(ctx, user, actions[i%len(actions)], nil)
				}
				d := time.Since(st)
				mu.Lock()
				lat = append(lat, d)
				if err != nil {
					failed++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(t0)

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 {
			k = 0
		}
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}

	fmt.Printf("N=%d, CONC=%d, USERS=%d, driver=%s\n", N, CONC, USERS, cfg.Database.Driver)
	fmt.Printf("AddScore total: %v, per op: %v, p50: %v, p95: %v, p99: %v, failed: %d\n",
		total, total/time.Duration(N), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99), failed)

	// invariant check: aggregate == ledger sum, total == activity + bonus
	bad := 0
	for _, u := range users {
		s, err := ledger.GetScore(ctx, u)
		if err != nil {
			fmt.Printf("get %s: %v\n", u, err)
			bad++
			continue
		}
		act := must(scoreRepo.SumEntries(ctx, u, model.ScoreTypeActivity))
		bonus := must(scoreRepo.SumEntries(ctx, u, model.ScoreTypeTitleBonus))
		if int64(s.ActivityScore) != act || int64(s.TitleBonus) != bonus || s.TotalScore != s.ActivityScore+s.TitleBonus {
			fmt.Printf("MISMATCH %s: score=%+v ledger activity=%d bonus=%d\n", u, *s, act, bonus)
			bad++
		}
	}
	if bad > 0 {
		fmt.Printf("invariant check: %d/%d users inconsistent\n", bad, USERS)
		os.Exit(1)
	}
	fmt.Printf("invariant check: %d users consistent\n", USERS)
}
