package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cloud-deploy/internal/service"
	"cloud-deploy/pkg/responses"
)

type MonitoringHandler struct {
	monitoringService service.MonitoringService
}

func NewMonitoringHandler(monitoringService service.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		monitoringService: monitoringService,
	}
}

// SystemMetrics 系统指标快照
func (h *MonitoringHandler) SystemMetrics(c *gin.Context) {
	metrics, err := h.monitoringService.SystemMetrics(c.Request.Context())
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, metrics)
}

// DeploymentLogs 查询部署运行日志
func (h *MonitoringHandler) DeploymentLogs(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		responses.Error(c, err)
		return
	}

	logs, err := h.monitoringService.DeploymentLogs(id)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, logs)
}

// LiveUpdates 实时指标
func (h *MonitoringHandler) LiveUpdates(c *gin.Context) {
	updates, err := h.monitoringService.LiveUpdates(c.Request.Context())
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, updates)
}

// Errors 最近错误日志
func (h *MonitoringHandler) Errors(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.monitoringService.Errors(limit)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, entries)
}
