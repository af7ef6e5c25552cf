package constants

// DeploymentStatus 部署状态
const (
	DeploymentStatusPending    = "Pending"
	DeploymentStatusInProgress = "In Progress"
	DeploymentStatusCompleted  = "Completed"
	DeploymentStatusFailed     = "Failed"
)

// deploymentTransitions 部署状态流转表
// Pending/InProgress 均可直接失败, 终态不再流转
var deploymentTransitions = map[string][]string{
	DeploymentStatusPending:    {DeploymentStatusInProgress, DeploymentStatusFailed},
	DeploymentStatusInProgress: {DeploymentStatusCompleted, DeploymentStatusFailed},
	DeploymentStatusCompleted:  {},
	DeploymentStatusFailed:     {},
}

// CanTransition 校验部署状态流转是否合法
func CanTransition(from, to string) bool {
	for _, next := range deploymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DeployTarget 部署目标
const (
	DeployTargetAWS   = "aws"
	DeployTargetLocal = "local"
)

// NotifyType 通知类型
const (
	NotifyTypeEmail = "email"
	NotifyTypeSlack = "slack"
)

// 日志级别(LogEntry)
const (
	LogLevelInfo  = "INFO"
	LogLevelError = "ERROR"
)

// JWT 相关
const (
	JWTTypeAccess = "access"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
)

// Context Key
const (
	ContextKeyUser     = "user"
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
)
