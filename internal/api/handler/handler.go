package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feelnote-core/internal/api/middleware"
	"github.com/d60-Lab/feelnote-core/internal/service"
)

// Handler 聚合各业务服务的 HTTP 接口
type Handler struct {
	scores       service.ScoreLedger
	counter      service.AggregateCounter
	recService   service.RecommendationService
	achievements service.AchievementService
	relService   service.RelationshipService
}

func NewHandler(
	scores service.ScoreLedger,
	counter service.AggregateCounter,
	recService service.RecommendationService,
	achievements service.AchievementService,
	relService service.RelationshipService,
) *Handler {
	return &Handler{
		scores:       scores,
		counter:      counter,
		recService:   recService,
		achievements: achievements,
		relService:   relService,
	}
}

func currentUser(c *gin.Context) string { return middleware.UserID(c) }

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	return page, pageSize
}
