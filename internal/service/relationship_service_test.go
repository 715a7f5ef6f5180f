package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feelnote-core/internal/apperr"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
	"github.com/d60-Lab/feelnote-core/internal/testutil"
)

func TestFollow_IdempotentAndCredited(t *testing.T) {
	db := testutil.DB(t)
	ledger := NewScoreLedger(db, repository.NewScoreRepository(db))
	rec := &testutil.NotifyRecorder{}
	svc := NewRelationshipService(db, repository.NewFollowRepository(db), ledger, rec)
	ctx := context.Background()
	testutil.CreateUser(t, db, "u1", model.ProfileTypeUser)
	testutil.CreateUser(t, db, "u2", model.ProfileTypeUser)

	require.NoError(t, svc.Follow(ctx, "u1", "u2"))
	require.NoError(t, svc.Follow(ctx, "u1", "u2"))

	s, err := ledger.GetScore(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, s.ActivityScore)
	assert.Len(t, rec.Of(model.NotificationFollow), 1)

	following, err := svc.ListFollowing(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, following)

	followers, err := svc.ListFollowers(ctx, "u2", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, followers)

	ok, err := svc.IsConnected(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Unfollow(ctx, "u1", "u2"))
	ok, err = svc.IsConnected(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollow_Self(t *testing.T) {
	db := testutil.DB(t)
	svc := NewRelationshipService(db, repository.NewFollowRepository(db),
		NewScoreLedger(db, repository.NewScoreRepository(db)), nil)

	err := svc.Follow(context.Background(), "u1", "u1")
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	assert.ErrorIs(t, err, ErrFollowSelf)
}

func TestFollow_UnknownTarget(t *testing.T) {
	db := testutil.DB(t)
	ledger := NewScoreLedger(db, repository.NewScoreRepository(db))
	rec := &testutil.NotifyRecorder{}
	svc := NewRelationshipService(db, repository.NewFollowRepository(db), ledger, rec)
	ctx := context.Background()
	testutil.CreateUser(t, db, "u1", model.ProfileTypeUser)

	err := svc.Follow(ctx, "u1", "ghost")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	var scores int64
	require.NoError(t, db.Model(&model.UserScore{}).Count(&scores).Error)
	assert.Zero(t, scores)
	following, err := svc.ListFollowing(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, following)
	assert.Empty(t, rec.Of(model.NotificationFollow))
}
