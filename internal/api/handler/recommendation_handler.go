package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feelnote-core/internal/model"
	"github.com/d60-Lab/feelnote-core/pkg/response"
)

type sendRecommendationRequest struct {
	ReceiverID    string  `json:"receiver_id" binding:"required"`
	UserContentID string  `json:"user_content_id" binding:"required"`
	Message       *string `json:"message"`
}

type respondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// SendRecommendation 发送推荐
// @Summary 推荐内容给好友
// @Tags 推荐
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body sendRecommendationRequest true "推荐信息"
// @Success 201 {object} response.Response{data=model.Recommendation}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/recommendations [post]
func (h *Handler) SendRecommendation(c *gin.Context) {
	var req sendRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rec, err := h.recService.Send(c.Request.Context(), currentUser(c), req.ReceiverID, req.UserContentID, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// RespondRecommendation 接受/拒绝推荐
// @Summary 处理收到的推荐
// @Tags 推荐
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "推荐ID"
// @Param request body respondRequest true "是否接受"
// @Success 200 {object} response.Response{data=model.Recommendation}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/recommendations/{id}/respond [post]
func (h *Handler) RespondRecommendation(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rec, err := h.recService.Respond(c.Request.Context(), currentUser(c), c.Param("id"), *req.Accept)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rec)
}

// CancelRecommendation 撤回推荐
// @Summary 撤回未处理的推荐
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Param id path string true "推荐ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/recommendations/{id} [delete]
func (h *Handler) CancelRecommendation(c *gin.Context) {
	if err := h.recService.Cancel(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListReceivedRecommendations 收到的推荐
// @Summary 收到的推荐
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending/accepted/declined"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/recommendations/received [get]
func (h *Handler) ListReceivedRecommendations(c *gin.Context) {
	page, pageSize := pageParams(c)
	status := model.RecommendationStatus(c.Query("status"))
	list, err := h.recService.ListReceived(c.Request.Context(), currentUser(c), status, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// ListSentRecommendations 发出的推荐
// @Summary 发出的推荐
// @Tags 推荐
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending/accepted/declined"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/recommendations/sent [get]
func (h *Handler) ListSentRecommendations(c *gin.Context) {
	page, pageSize := pageParams(c)
	status := model.RecommendationStatus(c.Query("status"))
	list, err := h.recService.ListSent(c.Request.Context(), currentUser(c), status, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
