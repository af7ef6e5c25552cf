package dto

// CreateDeploymentRequest 创建部署请求
// 校验为穷举式: 所有缺失/非法字段一次性返回
type CreateDeploymentRequest struct {
	ProjectName   string                 `json:"project_name" binding:"required,max=100"`
	RepositoryURL string                 `json:"repository_url" binding:"required,url,max=255"`
	Branch        string                 `json:"branch" binding:"omitempty,max=100"`
	Target        string                 `json:"target" binding:"omitempty,oneof=aws local"`
	TargetConfig  map[string]interface{} `json:"target_config"`

	// 由认证中间件注入, 不经请求体
	UserID int64 `json:"-"`
}

// RollbackResponse 回滚结果
type RollbackResponse struct {
	DeploymentID int64    `json:"deployment_id"`
	TornDown     []string `json:"torn_down"`
	Failures     []string `json:"failures,omitempty"`
}
