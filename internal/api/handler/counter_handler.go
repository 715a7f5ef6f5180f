package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feelnote-core/pkg/response"
)

type contentCountsRequest struct {
	ContentIDs []string `json:"content_ids" binding:"max=200"`
}

// ContentCounts 内容追踪人数（名人/普通用户）
// @Summary 批量查询内容追踪人数
// @Tags 统计
// @Accept json
// @Produce json
// @Param request body contentCountsRequest true "内容ID列表"
// @Success 200 {object} response.Response{data=map[string]model.ContentCounts}
// @Failure 400 {object} response.Response
// @Router /api/v1/contents/counts [post]
func (h *Handler) ContentCounts(c *gin.Context) {
	var req contentCountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	counts, err := h.counter.CountsForContents(c.Request.Context(), req.ContentIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, counts)
}

// TagCounts 标签名人数
// @Summary 各标签名人数
// @Tags 统计
// @Produce json
// @Success 200 {object} response.Response{data=[]model.TagCount}
// @Router /api/v1/tags/counts [get]
func (h *Handler) TagCounts(c *gin.Context) {
	tags, err := h.counter.TagCounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tags)
}
