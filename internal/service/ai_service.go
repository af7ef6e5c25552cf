package service

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/pkg/config"
	"cloud-deploy/internal/pkg/logger"
)

// fallbackReply AI服务不可用时的兜底回复
const fallbackReply = "抱歉, AI助手暂时不可用, 请稍后重试。"

// ChatClient AI对话客户端, 便于测试替换
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService interface {
	Recommend(ctx context.Context, req *dto.RecommendRequest) (*dto.RecommendResponse, error)
}

type aiService struct {
	client ChatClient
	cfg    *config.OpenAIConfig
}

func NewAIService(cfg *config.OpenAIConfig) AIService {
	return &aiService{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
	}
}

// NewAIServiceWithClient 注入自定义客户端, 测试用
func NewAIServiceWithClient(client ChatClient, cfg *config.OpenAIConfig) AIService {
	return &aiService{
		client: client,
		cfg:    cfg,
	}
}

// Recommend 基于用户输入生成部署建议
// 调用失败时降级为兜底回复, 不向调用方返回错误
func (s *aiService) Recommend(ctx context.Context, req *dto.RecommendRequest) (*dto.RecommendResponse, error) {
	prompt := fmt.Sprintf("Provide recommendations based on: %s.", req.Input)
	if req.Context != "" {
		prompt = fmt.Sprintf("%s Context: %s", prompt, req.Context)
	}

	model := s.cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		logger.Warn("AI推荐调用失败", zap.Error(err))
		return &dto.RecommendResponse{Recommendations: fallbackReply}, nil
	}

	if len(resp.Choices) == 0 {
		return &dto.RecommendResponse{Recommendations: fallbackReply}, nil
	}

	return &dto.RecommendResponse{
		Recommendations: resp.Choices[0].Message.Content,
	}, nil
}
