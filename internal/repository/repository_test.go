package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feelnote-core/internal/apperr"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/testutil"
)

func TestScoreRepository_IncrementUpserts(t *testing.T) {
	db := testutil.DB(t)
	repo := NewScoreRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Increment(ctx, "u1", model.ScoreTypeActivity, 10, now))
	require.NoError(t, repo.Increment(ctx, "u1", model.ScoreTypeTitleBonus, 5, now))
	require.NoError(t, repo.Increment(ctx, "u1", model.ScoreTypeActivity, -3, now))

	s, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, s.ActivityScore)
	assert.Equal(t, 5, s.TitleBonus)
	assert.Equal(t, 12, s.TotalScore)

	var rows int64
	require.NoError(t, db.Model(&model.UserScore{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestProjectContentCounts(t *testing.T) {
	out := projectContentCounts([]contentCountRow{
		{ContentID: "a", ProfileType: model.ProfileTypeUser, Cnt: 3},
		{ContentID: "a", ProfileType: model.ProfileTypeCeleb, Cnt: 1},
		{ContentID: "b", ProfileType: model.ProfileTypeCeleb, Cnt: 2},
		{ContentID: "c", ProfileType: model.ProfileTypeUser, Cnt: 0},
	})
	assert.Equal(t, map[string]model.ContentCounts{
		"a": {CelebCount: 1, UserCount: 3},
		"b": {CelebCount: 2},
	}, out)
}

func TestRecommendationRepository_TransitionIsCAS(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRecommendationRepository(db)
	ctx := context.Background()

	rec := &model.Recommendation{ID: uuid.NewString(), SenderID: "a", ReceiverID: "b", UserContentID: "uc", Status: model.RecommendationPending}
	require.NoError(t, repo.Create(ctx, rec))

	ok, err := repo.TransitionFromPending(ctx, rec.ID, "someone-else", model.RecommendationAccepted, time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "only the receiver matches")

	ok, err = repo.TransitionFromPending(ctx, rec.ID, "b", model.RecommendationAccepted, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionFromPending(ctx, rec.ID, "b", model.RecommendationDeclined, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RecommendationAccepted, got.Status)
	assert.NotNil(t, got.RespondedAt)

	deleted, err := repo.DeletePending(ctx, rec.ID, "a")
	require.NoError(t, err)
	assert.False(t, deleted, "answered recommendations cannot be withdrawn")
}

func TestRecommendationRepository_OnePendingPerTriple(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRecommendationRepository(db)
	ctx := context.Background()

	pending := func() *model.Recommendation {
		return &model.Recommendation{ID: uuid.NewString(), SenderID: "a", ReceiverID: "b", UserContentID: "uc", Status: model.RecommendationPending}
	}
	first := pending()
	require.NoError(t, repo.Create(ctx, first))
	err := repo.Create(ctx, pending())
	require.Error(t, err)
	assert.True(t, apperr.IsUniqueViolation(err), "got %v", err)

	ok, err := repo.TransitionFromPending(ctx, first.ID, "b", model.RecommendationDeclined, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	assert.NoError(t, repo.Create(ctx, pending()))
}

func TestTitleRepository_UnlockOnce(t *testing.T) {
	db := testutil.DB(t)
	repo := NewTitleRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SyncCatalog(ctx, []model.AchievementTitle{
		{ID: "t1", Name: "One", Grade: model.GradeCommon, RuleStat: "total_reviews", RuleThreshold: 1},
	}))
	// re-sync updates in place
	require.NoError(t, repo.SyncCatalog(ctx, []model.AchievementTitle{
		{ID: "t1", Name: "Renamed", Grade: model.GradeRare, RuleStat: "total_reviews", RuleThreshold: 1},
	}))

	first, err := repo.Unlock(ctx, "u1", "t1", time.Now())
	require.NoError(t, err)
	assert.True(t, first)
	again, err := repo.Unlock(ctx, "u1", "t1", time.Now())
	require.NoError(t, err)
	assert.False(t, again)

	ids, err := repo.UnlockedIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, ids, "t1")

	list, err := repo.ListUnlocked(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)
	assert.Equal(t, model.GradeRare, list[0].Grade)
}

func TestFollowRepository(t *testing.T) {
	db := testutil.DB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.Create(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, created)

	for _, pair := range [][2]string{{"a", "b"}, {"b", "a"}} {
		ok, err := repo.IsConnected(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := repo.Exists(ctx, "b", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := repo.Delete(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, removed)

	testutil.CreateUser(t, db, "b", model.ProfileTypeUser)
	ok, err = repo.ProfileExists(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ProfileExists(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatsRepository_Count(t *testing.T) {
	db := testutil.DB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()

	testutil.CreateContent(t, db, "b1", model.ContentTypeBook)
	testutil.CreateContent(t, db, "b2", model.ContentTypeBook)
	testutil.CreateContent(t, db, "g1", model.ContentTypeGame)
	testutil.CreateUserContent(t, db, "u1", "b1", testutil.WithReview("x"), testutil.WithRating(4.5))
	testutil.CreateUserContent(t, db, "u1", "b2", testutil.WithStatus(model.ContentStatusFinished), testutil.WithReview(""))
	testutil.CreateUserContent(t, db, "u1", "g1")
	testutil.CreateFollow(t, db, "u2", "u1")

	want := map[string]int64{
		"total_contents":    3,
		"finished_contents": 1,
		"total_reviews":     1,
		"total_ratings":     1,
		"books":             2,
		"games":             1,
		"music":             0,
		"follower_count":    1,
		"following_count":   0,
	}
	for stat, n := range want {
		got, err := repo.Count(ctx, "u1", stat)
		require.NoError(t, err, stat)
		assert.Equal(t, n, got, stat)
	}

	_, err := repo.Count(ctx, "u1", "karma")
	assert.Error(t, err)
}
