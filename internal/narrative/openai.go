package narrative

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIGenerator struct {
	client    ChatCompleter
	model     string
	maxTokens int
}

func NewOpenAIGenerator(apiKey, model string, maxTokens int) *OpenAIGenerator {
	return newOpenAIGenerator(openai.NewClient(apiKey), model, maxTokens)
}

func newOpenAIGenerator(client ChatCompleter, model string, maxTokens int) *OpenAIGenerator {
	if strings.TrimSpace(model) == "" {
		model = openai.GPT4
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}
	return &OpenAIGenerator{client: client, model: model, maxTokens: maxTokens}
}

func (o *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
		Temperature: 0.3,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyNarrative
	}
	text := cleanText(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyNarrative
	}
	return text, nil
}
