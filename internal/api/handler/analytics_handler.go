package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cloud-deploy/internal/service"
	"cloud-deploy/pkg/responses"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// Summary 全局统计汇总
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.analyticsService.Summary()
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, summary)
}

// Traffic 流量趋势
func (h *AnalyticsHandler) Traffic(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	points, err := h.analyticsService.Traffic(c.Request.Context(), days)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, points)
}

// Performance 部署成功率与耗时
func (h *AnalyticsHandler) Performance(c *gin.Context) {
	metrics, err := h.analyticsService.Performance()
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, metrics)
}
