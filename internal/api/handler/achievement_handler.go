package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feelnote-core/pkg/response"
)

// ListTitles 称号目录
// @Summary 称号目录
// @Tags 称号
// @Produce json
// @Success 200 {object} response.Response{data=[]model.AchievementTitle}
// @Router /api/v1/achievements [get]
func (h *Handler) ListTitles(c *gin.Context) {
	response.Success(c, h.achievements.Catalog())
}

// MyTitles 已解锁称号
// @Summary 我的称号
// @Tags 称号
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.UnlockedTitle}
// @Router /api/v1/achievements/me [get]
func (h *Handler) MyTitles(c *gin.Context) {
	list, err := h.achievements.Unlocked(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// EvaluateTitles 检查并解锁称号，只返回本次新解锁的
// @Summary 检查称号解锁
// @Tags 称号
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.AchievementTitle}
// @Router /api/v1/achievements/evaluate [post]
func (h *Handler) EvaluateTitles(c *gin.Context) {
	unlocked, err := h.achievements.EvaluateUser(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, unlocked)
}
