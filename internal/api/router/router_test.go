package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/feelnote-core/config"
	"github.com/d60-Lab/feelnote-core/internal/achievement"
	"github.com/d60-Lab/feelnote-core/internal/api/handler"
	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/internal/repository"
	"github.com/d60-Lab/feelnote-core/internal/service"
	"github.com/d60-Lab/feelnote-core/internal/testutil"
)

const secret = "router-test-secret-router-test-secret"

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
}

func newTestServer(t *testing.T, health HealthCheck) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)

	catalog, err := achievement.Load("")
	require.NoError(t, err)

	follows := repository.NewFollowRepository(db)
	ledger := service.NewScoreLedger(db, repository.NewScoreRepository(db))
	counter := service.NewAggregateCounter(repository.NewCountRepository(db))
	recs := service.NewRecommendationService(db,
		repository.NewRecommendationRepository(db),
		repository.NewUserContentRepository(db),
		service.FollowAudience{Follows: follows}, ledger, nil)
	ach := service.NewAchievementService(db, catalog,
		repository.NewTitleRepository(db), repository.NewStatsRepository(db), ledger, nil)
	require.NoError(t, ach.SyncCatalog(context.Background()))
	rel := service.NewRelationshipService(db, follows, ledger, nil)

	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: secret}}
	h := handler.NewHandler(ledger, counter, recs, ach, rel)
	return &testServer{t: t, db: db, engine: New(cfg, h, health)}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func (s *testServer) do(method, path, userID string, body any) (int, apiResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(s.t, userID))
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func TestScores(t *testing.T) {
	s := newTestServer(t, nil)

	code, _ := s.do(http.MethodGet, "/api/v1/scores/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp := s.do(http.MethodPost, "/api/v1/scores/activities", "u1", map[string]any{"action": "CONTENT_ADD"})
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, resp = s.do(http.MethodGet, "/api/v1/scores/me", "u1", nil)
	require.Equal(t, http.StatusOK, code)
	var score model.UserScore
	require.NoError(t, json.Unmarshal(resp.Data, &score))
	assert.Equal(t, 10, score.ActivityScore)
	assert.Equal(t, 10, score.TotalScore)

	code, resp = s.do(http.MethodPost, "/api/v1/scores/activities", "u1", map[string]any{"action": "FREE_POINTS"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", resp.Error)

	code, resp = s.do(http.MethodPost, "/api/v1/scores/activities", "u1", map[string]any{"action": "RECOMMENDATION_ACCEPTED"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", resp.Error)

	code, _ = s.do(http.MethodGet, "/api/v1/scores/leaderboard?limit=5", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRecommendationFlow(t *testing.T) {
	s := newTestServer(t, nil)
	testutil.CreateUser(t, s.db, "alice", model.ProfileTypeUser)
	testutil.CreateUser(t, s.db, "bob", model.ProfileTypeUser)
	testutil.CreateContent(t, s.db, "c1", model.ContentTypeGame)
	uc := testutil.CreateUserContent(t, s.db, "alice", "c1")

	code, resp := s.do(http.MethodPost, "/api/v1/recommendations", "alice",
		map[string]any{"receiver_id": "bob", "user_content_id": uc.ID})
	assert.Equal(t, http.StatusBadRequest, code, "bob is not connected yet")
	assert.Equal(t, "validation", resp.Error)

	code, _ = s.do(http.MethodPost, "/api/v1/relations/follow", "bob", map[string]any{"user_id": "alice"})
	require.Equal(t, http.StatusOK, code)

	code, resp = s.do(http.MethodPost, "/api/v1/recommendations", "alice",
		map[string]any{"receiver_id": "bob", "user_content_id": uc.ID, "message": "try it"})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var rec model.Recommendation
	require.NoError(t, json.Unmarshal(resp.Data, &rec))

	code, _ = s.do(http.MethodPost, "/api/v1/recommendations/"+rec.ID+"/respond", "alice", map[string]any{"accept": true})
	assert.Equal(t, http.StatusNotFound, code, "sender cannot respond")

	code, resp = s.do(http.MethodPost, "/api/v1/recommendations/"+rec.ID+"/respond", "bob", map[string]any{"accept": false})
	require.Equal(t, http.StatusOK, code, resp.Message)

	code, resp = s.do(http.MethodPost, "/api/v1/recommendations/"+rec.ID+"/respond", "bob", map[string]any{"accept": true})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "invalid_state", resp.Error)

	code, resp = s.do(http.MethodGet, "/api/v1/recommendations/received?status=declined", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		List []model.Recommendation `json:"list"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	require.Len(t, page.List, 1)
	assert.Equal(t, rec.ID, page.List[0].ID)

	code, _ = s.do(http.MethodPost, "/api/v1/recommendations/"+rec.ID+"/respond", "bob", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code, "accept is required")
}

func TestCountsAndAchievements(t *testing.T) {
	s := newTestServer(t, nil)
	testutil.CreateUser(t, s.db, "u1", model.ProfileTypeUser)
	testutil.CreateUser(t, s.db, "star", model.ProfileTypeCeleb)
	testutil.CreateContent(t, s.db, "c1", model.ContentTypeMusic)
	testutil.CreateUserContent(t, s.db, "u1", "c1", testutil.WithReview("nice"))
	testutil.CreateUserContent(t, s.db, "star", "c1")

	code, resp := s.do(http.MethodPost, "/api/v1/contents/counts", "", map[string]any{"content_ids": []string{"c1", "c2"}})
	require.Equal(t, http.StatusOK, code)
	var counts map[string]model.ContentCounts
	require.NoError(t, json.Unmarshal(resp.Data, &counts))
	assert.Equal(t, map[string]model.ContentCounts{"c1": {CelebCount: 1, UserCount: 1}}, counts)

	code, resp = s.do(http.MethodPost, "/api/v1/achievements/evaluate", "u1", nil)
	require.Equal(t, http.StatusOK, code)
	var unlocked []model.AchievementTitle
	require.NoError(t, json.Unmarshal(resp.Data, &unlocked))
	require.Len(t, unlocked, 2)
	assert.Equal(t, "first_record", unlocked[0].ID)

	code, resp = s.do(http.MethodPost, "/api/v1/achievements/evaluate", "u1", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &unlocked))
	assert.Empty(t, unlocked)

	code, resp = s.do(http.MethodGet, "/api/v1/achievements/me", "u1", nil)
	require.Equal(t, http.StatusOK, code)
	var mine []model.UnlockedTitle
	require.NoError(t, json.Unmarshal(resp.Data, &mine))
	assert.Len(t, mine, 2)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, func(context.Context) error { return nil })
	code, _ := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)

	s = newTestServer(t, func(context.Context) error { return errors.New("db gone") })
	code, resp := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "db gone", resp.Error)
}
