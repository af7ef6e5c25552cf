package model

import "time"

// LogEntry 运行日志/指标记录
// 监控与分析接口的查询来源, 由定时任务按保留期清理
type LogEntry struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Level        string    `gorm:"size:10;not null;index" json:"level"`
	Message      string    `gorm:"type:text;not null" json:"message"`
	DeploymentID *int64    `gorm:"column:deployment_id;index" json:"deployment_id,omitempty"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime;index" json:"timestamp"`
}

// TableName 指定表名
func (LogEntry) TableName() string {
	return "logs"
}
