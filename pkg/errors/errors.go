package errors

import "fmt"

// 错误码
const (
	CodeSuccess          = 200
	CodeBadRequest       = 400
	CodeUnauthorized     = 401
	CodeForbidden        = 403
	CodeNotFound         = 404
	CodeConflict         = 409
	CodeInternalError    = 500
	CodePersistenceError = 501
	CodeProviderError    = 502
	CodeValidationError  = 503
	CodeStateError       = 504
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus 错误码对应的HTTP状态码
// 校验错误归入400, 状态流转错误归入409, 持久化/供应商错误归入500
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidationError:
		return 400
	case CodeStateError:
		return 409
	case CodePersistenceError, CodeProviderError:
		return 500
	}
	if e.Code >= 400 && e.Code < 600 {
		return e.Code
	}
	return 500
}

// New 创建新错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 预定义错误
var (
	ErrBadRequest       = New(CodeBadRequest, "请求参数错误")
	ErrUnauthorized     = New(CodeUnauthorized, "未授权")
	ErrForbidden        = New(CodeForbidden, "禁止访问")
	ErrNotFound         = New(CodeNotFound, "资源不存在")
	ErrConflict         = New(CodeConflict, "资源冲突")
	ErrInternalError    = New(CodeInternalError, "内部服务器错误")
	ErrPersistenceError = New(CodePersistenceError, "数据库错误")
	ErrProviderError    = New(CodeProviderError, "云服务调用失败")
	ErrValidationError  = New(CodeValidationError, "数据验证失败")
	ErrStateTransition  = New(CodeStateError, "非法的状态流转")

	// 具体业务错误
	ErrInvalidParams      = New(CodeBadRequest, "请求参数错误")
	ErrInvalidCredentials = New(CodeUnauthorized, "用户名或密码错误")
	ErrUserNotFound       = New(CodeNotFound, "用户不存在")
	ErrUserExists         = New(CodeConflict, "用户名或邮箱已存在")
	ErrInvalidToken       = New(CodeUnauthorized, "无效的Token")
	ErrTokenExpired       = New(CodeUnauthorized, "Token已过期")
	ErrRecordNotFound     = New(CodeNotFound, "记录不存在")
	ErrRecordExists       = New(CodeConflict, "记录已存在")
	ErrDomainRegistered   = New(CodeConflict, "域名已注册")
	ErrZoneNotFound       = New(CodeNotFound, "Hosted Zone不存在")
)
