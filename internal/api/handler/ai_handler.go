package handler

import (
	"github.com/gin-gonic/gin"

	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/service"
	"cloud-deploy/pkg/responses"
	"cloud-deploy/pkg/utils"
)

type AIHandler struct {
	aiService service.AIService
}

func NewAIHandler(aiService service.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// Recommend AI部署建议
func (h *AIHandler) Recommend(c *gin.Context) {
	var req dto.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, 400, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.aiService.Recommend(c.Request.Context(), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, resp)
}
