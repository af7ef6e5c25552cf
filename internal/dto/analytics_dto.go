package dto

import "time"

// AnalyticsSummary 分析汇总
type AnalyticsSummary struct {
	TotalUsers          int64            `json:"total_users"`
	TotalDeployments    int64            `json:"total_deployments"`
	TotalDomains        int64            `json:"total_domains"`
	DeploymentsByStatus map[string]int64 `json:"deployments_by_status"`
}

// TrafficPoint 流量数据点
type TrafficPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// PerformanceMetrics 性能指标
type PerformanceMetrics struct {
	CompletedDeployments int64   `json:"completed_deployments"`
	FailedDeployments    int64   `json:"failed_deployments"`
	SuccessRate          float64 `json:"success_rate"`
	AvgDurationSeconds   float64 `json:"avg_duration_seconds"`
}

// SystemMetrics 系统指标快照
type SystemMetrics struct {
	CPUUsage    string    `json:"cpu_usage"`
	MemoryUsage string    `json:"memory_usage"`
	DiskUsage   string    `json:"disk_usage"`
	Timestamp   time.Time `json:"timestamp"`
}
