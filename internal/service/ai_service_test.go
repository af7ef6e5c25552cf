package service

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-deploy/internal/dto"
	"cloud-deploy/internal/pkg/config"
)

type fakeChatClient struct {
	reply   string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (c *fakeChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.lastReq = req
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: c.reply}},
		},
	}, nil
}

func TestRecommend(t *testing.T) {
	client := &fakeChatClient{reply: "use a t3.small instance"}
	svc := NewAIServiceWithClient(client, &config.OpenAIConfig{Model: "gpt-4", MaxTokens: 256})

	resp, err := svc.Recommend(context.Background(), &dto.RecommendRequest{
		Input:   "static site",
		Context: "low traffic",
	})
	require.NoError(t, err)

	assert.Equal(t, "use a t3.small instance", resp.Recommendations)
	assert.Equal(t, "gpt-4", client.lastReq.Model)
	require.Len(t, client.lastReq.Messages, 1)
	assert.Contains(t, client.lastReq.Messages[0].Content, "static site")
	assert.Contains(t, client.lastReq.Messages[0].Content, "low traffic")
}

func TestRecommend_Fallback(t *testing.T) {
	client := &fakeChatClient{err: errors.New("rate limited")}
	svc := NewAIServiceWithClient(client, &config.OpenAIConfig{})

	// 上游失败不返回错误, 降级为兜底回复
	resp, err := svc.Recommend(context.Background(), &dto.RecommendRequest{Input: "static site"})
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, resp.Recommendations)
}
