package router

import (
	"context"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/feelnote-core/config"
	_ "github.com/d60-Lab/feelnote-core/docs"
	"github.com/d60-Lab/feelnote-core/internal/api/handler"
	"github.com/d60-Lab/feelnote-core/internal/api/middleware"
	"github.com/d60-Lab/feelnote-core/pkg/response"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// New builds the gin engine with middleware and all /api/v1 routes.
func New(cfg *config.Config, h *handler.Handler, health HealthCheck) *gin.Engine {
	r := gin.New()
	r.Use(
		sentrygin.New(sentrygin.Options{Repanic: true}),
		gin.Recovery(),
		middleware.Metrics(),
		middleware.Logger(),
		gzip.Gzip(gzip.DefaultCompression),
	)
	if cfg.Telemetry.Enabled {
		name := cfg.Telemetry.ServiceName
		if name == "" {
			name = "feelnote-core"
		}
		r.Use(otelgin.Middleware(name))
	}

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if health != nil {
			if err := health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, response.Response{Code: http.StatusServiceUnavailable, Message: "unhealthy", Error: err.Error()})
				return
			}
		}
		response.Success(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		limit = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware()
	}

	v1 := r.Group("/api/v1")

	public := v1.Group("", limit)
	{
		public.GET("/scores/leaderboard", h.Leaderboard)
		public.POST("/contents/counts", h.ContentCounts)
		public.GET("/tags/counts", h.TagCounts)
		public.GET("/achievements", h.ListTitles)
		public.GET("/relations/:user_id/following", h.ListFollowing)
		public.GET("/relations/:user_id/followers", h.ListFollowers)
	}

	authed := v1.Group("", middleware.Auth(cfg.Auth.JWTSecret, cfg.Auth.Audience), limit)
	{
		authed.GET("/scores/me", h.MyScore)
		authed.GET("/scores/me/history", h.MyScoreHistory)
		authed.POST("/scores/activities", h.RecordActivity)

		authed.POST("/recommendations", h.SendRecommendation)
		authed.GET("/recommendations/received", h.ListReceivedRecommendations)
		authed.GET("/recommendations/sent", h.ListSentRecommendations)
		authed.POST("/recommendations/:id/respond", h.RespondRecommendation)
		authed.DELETE("/recommendations/:id", h.CancelRecommendation)

		authed.GET("/achievements/me", h.MyTitles)
		authed.POST("/achievements/evaluate", h.EvaluateTitles)

		authed.POST("/relations/follow", h.Follow)
		authed.POST("/relations/unfollow", h.Unfollow)
	}
	return r
}
