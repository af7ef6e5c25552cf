package model

import (
	"gorm.io/datatypes"
)

const DeploymentTableName = "deployments"

// Deployment 部署记录
// 一次部署尝试对应一行, 只在用户显式删除时移除
type Deployment struct {
	BaseModel

	ProjectName   string `gorm:"size:100;not null" json:"project_name"`
	UserID        int64  `gorm:"column:user_id;not null;index" json:"user_id"`
	RepositoryURL string `gorm:"size:255;not null" json:"repository_url"`
	Branch        string `gorm:"size:100;not null;default:main" json:"branch"`

	// 状态追踪
	Status      string  `gorm:"size:20;not null;default:Pending" json:"deployment_status"`
	DeployedURL *string `gorm:"size:255" json:"deployed_url"`
	Logs        *string `gorm:"type:text" json:"logs"`

	// 目标配置(hosted_zone_id/domain/target等透传参数)
	TargetConfig datatypes.JSONMap `gorm:"type:json" json:"target_config"`

	// 已供应资源, 供回滚使用
	InstanceID    *string `gorm:"size:64" json:"instance_id,omitempty"`
	BucketName    *string `gorm:"size:100" json:"bucket_name,omitempty"`
	DNSRecordName *string `gorm:"column:dns_record_name;size:255" json:"dns_record_name,omitempty"`
}

// TableName 指定表名
func (Deployment) TableName() string {
	return DeploymentTableName
}

// AppendLog 追加部署日志
func (d *Deployment) AppendLog(line string) {
	if d.Logs == nil || *d.Logs == "" {
		d.Logs = &line
		return
	}
	combined := *d.Logs + "\n" + line
	d.Logs = &combined
}
