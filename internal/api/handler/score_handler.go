package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feelnote-core/pkg/response"
)

type activityRequest struct {
	Action      string  `json:"action" binding:"required"`
	ReferenceID *string `json:"reference_id"`
}

// MyScore 当前用户积分
// @Summary 查询我的积分
// @Tags 积分
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.UserScore}
// @Failure 401 {object} response.Response
// @Router /api/v1/scores/me [get]
func (h *Handler) MyScore(c *gin.Context) {
	s, err := h.scores.GetScore(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, s)
}

// MyScoreHistory 积分流水
// @Summary 查询积分流水
// @Tags 积分
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/scores/me/history [get]
func (h *Handler) MyScoreHistory(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.scores.History(c.Request.Context(), currentUser(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// Leaderboard 积分排行
// @Summary 积分排行榜
// @Tags 积分
// @Produce json
// @Param limit query int false "数量" default(20)
// @Success 200 {object} response.Response{data=[]model.UserScore}
// @Router /api/v1/scores/leaderboard [get]
func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.scores.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// RecordActivity 记录客户端自报的活动积分（固定分值）
// @Summary 记录活动积分
// @Tags 积分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body activityRequest true "活动"
// @Success 200 {object} response.Response{data=model.UserScore}
// @Failure 400 {object} response.Response
// @Router /api/v1/scores/activities [post]
func (h *Handler) RecordActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s, err := h.scores.RecordActivity(c.Request.Context(), currentUser(c), req.Action, req.ReferenceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, s)
}
