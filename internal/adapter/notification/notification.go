package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"cloud-deploy/internal/pkg/config"
)

// NotificationType 通知类型
type NotificationType string

const (
	NotifyDeployStart   NotificationType = "deploy_start"   // 部署开始
	NotifyDeploySuccess NotificationType = "deploy_success" // 部署成功
	NotifyDeployFailed  NotificationType = "deploy_failed"  // 部署失败
	NotifyDomainCreated NotificationType = "domain_created" // 域名注册成功
	NotifyReminder      NotificationType = "reminder"       // 定时提醒
)

// NotificationMessage 通知消息
type NotificationMessage struct {
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	Recipient string                 `json:"recipient,omitempty"` // 邮件收件人, 为空时使用默认收件人
	Timestamp time.Time              `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"` // 额外信息
}

// Notifier 通知器接口
type Notifier interface {
	// Send 发送通知
	Send(ctx context.Context, msg *NotificationMessage) error

	// SendDeploymentNotification 发送部署结果通知
	SendDeploymentNotification(ctx context.Context, deploymentID int64, projectName string, notifyType NotificationType, message string) error
}

// ============= 邮件通知适配器 =============

// EmailNotifier SMTP邮件通知器
type EmailNotifier struct {
	cfg     *config.SMTPConfig
	enabled bool
	logger  *zap.Logger
}

// NewEmailNotifier 创建邮件通知器
func NewEmailNotifier(cfg *config.SMTPConfig, enabled bool, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:     cfg,
		enabled: enabled,
		logger:  logger,
	}
}

// Send 发送邮件通知
func (n *EmailNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	if !n.enabled {
		n.logger.Debug("通知已禁用,跳过发送")
		return nil
	}

	if n.cfg.Host == "" {
		n.logger.Warn("SMTP服务器未配置")
		return nil
	}

	recipient := msg.Recipient
	if recipient == "" {
		recipient = n.cfg.Sender
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		n.cfg.Sender, recipient, msg.Title, msg.Content)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.Sender, []string{recipient}, []byte(body)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	n.logger.Info("邮件通知发送成功",
		zap.String("type", string(msg.Type)),
		zap.String("recipient", recipient))

	return nil
}

// SendDeploymentNotification 发送部署结果邮件
func (n *EmailNotifier) SendDeploymentNotification(ctx context.Context, deploymentID int64, projectName string, notifyType NotificationType, message string) error {
	return n.Send(ctx, buildDeploymentMessage(deploymentID, projectName, notifyType, message))
}

// ============= Slack 通知适配器 =============

// SlackNotifier Slack Webhook通知器
type SlackNotifier struct {
	webhookURL string
	channel    string
	enabled    bool
	logger     *zap.Logger
	client     *http.Client
}

// NewSlackNotifier 创建Slack通知器
func NewSlackNotifier(cfg *config.SlackConfig, enabled bool, logger *zap.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    enabled,
		logger:     logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send 发送通知
func (n *SlackNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	if !n.enabled {
		n.logger.Debug("通知已禁用,跳过发送")
		return nil
	}

	if n.webhookURL == "" {
		n.logger.Warn("Slack Webhook URL未配置")
		return nil
	}

	slackMsg := n.buildSlackMessage(msg)

	jsonData, err := json.Marshal(slackMsg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack API返回错误状态码: %d", resp.StatusCode)
	}

	n.logger.Info("Slack通知发送成功",
		zap.String("type", string(msg.Type)),
		zap.String("title", msg.Title))

	return nil
}

// SendDeploymentNotification 发送部署结果通知
func (n *SlackNotifier) SendDeploymentNotification(ctx context.Context, deploymentID int64, projectName string, notifyType NotificationType, message string) error {
	return n.Send(ctx, buildDeploymentMessage(deploymentID, projectName, notifyType, message))
}

// buildSlackMessage 构建Slack消息格式
func (n *SlackNotifier) buildSlackMessage(msg *NotificationMessage) map[string]interface{} {
	color := "#cccccc"
	if c, ok := msg.Extra["color"].(string); ok {
		color = c
	}

	payload := map[string]interface{}{
		"attachments": []interface{}{
			map[string]interface{}{
				"color": color,
				"title": msg.Title,
				"text":  msg.Content,
				"ts":    msg.Timestamp.Unix(),
			},
		},
	}
	if n.channel != "" {
		payload["channel"] = n.channel
	}
	return payload
}

// ============= 多通知器 =============

// MultiNotifier 多通知器(支持同时发送到多个渠道)
type MultiNotifier struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewMultiNotifier 创建多通知器
func NewMultiNotifier(logger *zap.Logger, notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		notifiers: notifiers,
		logger:    logger,
	}
}

// Send 发送到所有通知器
func (m *MultiNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, msg); err != nil {
			m.logger.Error("发送通知失败", zap.Error(err))
			lastErr = err
			// 继续发送其他通知器
		}
	}
	return lastErr
}

// SendDeploymentNotification 发送部署结果通知到所有通知器
func (m *MultiNotifier) SendDeploymentNotification(ctx context.Context, deploymentID int64, projectName string, notifyType NotificationType, message string) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.SendDeploymentNotification(ctx, deploymentID, projectName, notifyType, message); err != nil {
			m.logger.Error("发送部署通知失败", zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// ============= 日志通知器(仅记录日志,不发送实际通知) =============

// LogNotifier 日志通知器
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

// Send 记录通知到日志
func (n *LogNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	n.logger.Info("📢 通知",
		zap.String("type", string(msg.Type)),
		zap.String("title", msg.Title),
		zap.String("content", msg.Content),
		zap.Any("extra", msg.Extra))
	return nil
}

// SendDeploymentNotification 记录部署通知到日志
func (n *LogNotifier) SendDeploymentNotification(ctx context.Context, deploymentID int64, projectName string, notifyType NotificationType, message string) error {
	n.logger.Info("📢 部署通知",
		zap.String("type", string(notifyType)),
		zap.Int64("deployment_id", deploymentID),
		zap.String("project_name", projectName),
		zap.String("message", message))
	return nil
}

// buildDeploymentMessage 组装部署通知消息
func buildDeploymentMessage(deploymentID int64, projectName string, notifyType NotificationType, message string) *NotificationMessage {
	var title, color string

	switch notifyType {
	case NotifyDeployStart:
		title = "🚀 部署开始"
		color = "#2196f3"
	case NotifyDeploySuccess:
		title = "✅ 部署成功"
		color = "#4caf50"
	case NotifyDeployFailed:
		title = "❌ 部署失败"
		color = "#f44336"
	case NotifyDomainCreated:
		title = "🌐 域名注册成功"
		color = "#4caf50"
	default:
		title = "📢 部署通知"
		color = "#cccccc"
	}

	content := fmt.Sprintf("**项目**: %s\n**部署ID**: %d\n**消息**: %s", projectName, deploymentID, message)

	return &NotificationMessage{
		Type:      notifyType,
		Title:     title,
		Content:   content,
		Timestamp: time.Now(),
		Extra: map[string]interface{}{
			"deployment_id": deploymentID,
			"project_name":  projectName,
			"color":         color,
		},
	}
}
