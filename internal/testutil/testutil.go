// Package testutil provides SQLite-backed fixtures for package tests.
package testutil

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/pkg/database"
)

// DB opens a migrated SQLite database in a temp dir. The pool holds one
// connection so concurrent tests serialise like a single writer.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "feelnote.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, database.Migrate(db))
	return db
}

// QueryCounter counts read round-trips issued through db.
type QueryCounter struct{ n atomic.Int64 }

func (q *QueryCounter) Load() int64 { return q.n.Load() }

// CountQueries registers a query callback on db.
func CountQueries(tb testing.TB, db *gorm.DB) *QueryCounter {
	tb.Helper()
	qc := &QueryCounter{}
	name := "testutil:count_" + uuid.NewString()
	require.NoError(tb, db.Callback().Query().Before("gorm:query").Register(name, func(*gorm.DB) {
		qc.n.Add(1)
	}))
	require.NoError(tb, db.Callback().Row().Before("gorm:row").Register(name, func(*gorm.DB) {
		qc.n.Add(1)
	}))
	require.NoError(tb, db.Callback().Raw().Before("gorm:raw").Register(name, func(*gorm.DB) {
		qc.n.Add(1)
	}))
	return qc
}

func CreateUser(tb testing.TB, db *gorm.DB, id string, pt model.ProfileType) *model.User {
	tb.Helper()
	u := &model.User{ID: id, Nickname: id, ProfileType: pt}
	require.NoError(tb, db.Create(u).Error)
	return u
}

func CreateContent(tb testing.TB, db *gorm.DB, id string, t model.ContentType) *model.Content {
	tb.Helper()
	c := &model.Content{ID: id, Type: t, Title: "title " + id}
	require.NoError(tb, db.Create(c).Error)
	return c
}

// UserContentOpt tweaks a tracking record before insert.
type UserContentOpt func(*model.UserContent)

func WithReview(text string) UserContentOpt {
	return func(uc *model.UserContent) { uc.Review = &text }
}

func WithRating(r float64) UserContentOpt {
	return func(uc *model.UserContent) { uc.Rating = &r }
}

func WithStatus(s model.ContentStatus) UserContentOpt {
	return func(uc *model.UserContent) { uc.Status = s }
}

func CreateUserContent(tb testing.TB, db *gorm.DB, userID, contentID string, opts ...UserContentOpt) *model.UserContent {
	tb.Helper()
	uc := &model.UserContent{ID: uuid.NewString(), UserID: userID, ContentID: contentID, Status: model.ContentStatusWant}
	for _, opt := range opts {
		opt(uc)
	}
	require.NoError(tb, db.Create(uc).Error)
	return uc
}

func CreateFollow(tb testing.TB, db *gorm.DB, followerID, followingID string) {
	tb.Helper()
	require.NoError(tb, db.Create(&model.Follow{ID: uuid.NewString(), FollowerID: followerID, FollowingID: followingID}).Error)
}
