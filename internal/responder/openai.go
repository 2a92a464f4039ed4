package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel      = openai.GPT3Dot5Turbo
	defaultMaxTokens  = 400
	defaultTemp       = 0.4
	maxHistoryEntries = 20
)

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}

// OpenAI answers through any OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client *openai.Client
	config Config
}

func NewOpenAI(config Config) *OpenAI {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = defaultTemp
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = defaultSystemPrompt
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (p *OpenAI) Reply(ctx context.Context, history []model.ChatMessageItem) (chat.Reply, error) {
	if wantsHuman(history) {
		return chat.Reply{NeedsAgent: true, Reason: "visitor asked for a person"}, nil
	}

	req := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    p.convertHistory(history),
		MaxTokens:   p.config.MaxTokens,
		Temperature: float32(p.config.Temperature),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return chat.Reply{}, errors.New("no response from model")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if strings.Contains(content, HandoffMarker) {
		return chat.Reply{
			Content:    strings.TrimSpace(strings.ReplaceAll(content, HandoffMarker, "")),
			NeedsAgent: true,
			Reason:     "assistant requested an agent",
		}, nil
	}
	if content == "" {
		return chat.Reply{}, errors.New("empty response from model")
	}

	return chat.Reply{Content: content}, nil
}

func (p *OpenAI) convertHistory(history []model.ChatMessageItem) []openai.ChatCompletionMessage {
	if len(history) > maxHistoryEntries {
		history = history[len(history)-maxHistoryEntries:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: p.config.SystemPrompt,
	})

	for _, msg := range history {
		switch msg.Role {
		case model.ChatRoleUser:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: msg.Content})
		case model.ChatRoleAssistant, model.ChatRoleAgent:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: msg.Content})
		}
	}
	return messages
}
