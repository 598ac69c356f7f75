package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type openaiChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAILLMClient implements LLMClient over the OpenAI chat API. This
// is the default refinement backend.
type OpenAILLMClient struct {
	api     openaiChatAPI
	modelID string
}

// NewOpenAILLMClient creates an OpenAI-backed client.
func NewOpenAILLMClient(apiKey, modelID string) (*OpenAILLMClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("dialogue: openai api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gpt-4o-mini"
	}
	return &OpenAILLMClient{
		api:     openai.NewClient(apiKey),
		modelID: modelID,
	}, nil
}

// Complete sends a completion request to OpenAI and maps the response.
func (c *OpenAILLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	model := req.Model
	if strings.TrimSpace(model) == "" {
		model = c.modelID
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.System)+len(req.Messages))
	for _, sys := range req.System {
		if strings.TrimSpace(sys) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sys,
		})
	}
	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case ChatRoleSystem:
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: content,
			})
		case ChatRoleUser:
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: content,
			})
		case ChatRoleAssistant:
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			})
		default:
			return LLMResponse{}, fmt.Errorf("dialogue: unsupported role %q", msg.Role)
		}
	}
	if len(messages) == 0 {
		return LLMResponse{}, errors.New("dialogue: openai requires at least one message")
	}

	out, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   int(req.MaxTokens),
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("dialogue: openai completion failed: %w", err)
	}
	if len(out.Choices) == 0 {
		return LLMResponse{}, errors.New("dialogue: openai returned no choices")
	}

	choice := out.Choices[0]
	return LLMResponse{
		Text:       strings.TrimSpace(choice.Message.Content),
		StopReason: string(choice.FinishReason),
		Usage: TokenUsage{
			InputTokens:  int32(out.Usage.PromptTokens),
			OutputTokens: int32(out.Usage.CompletionTokens),
			TotalTokens:  int32(out.Usage.TotalTokens),
		},
	}, nil
}
