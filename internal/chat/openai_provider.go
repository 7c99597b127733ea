package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"

	"cookingsecret/internal/config"
	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

var errEmptyCompletion = errors.New("provider returned no choices")

// OpenAIProvider sends chat turns to an OpenAI-compatible endpoint behind a
// circuit breaker.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	cb     *gobreaker.CircuitBreaker[string]
	logger logger.Logger
}

func NewOpenAIProvider(cfg config.ChatConfig, logger logger.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	p := &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}

	p.cb = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "chat-provider",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Chat provider circuit changed state", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	logger.Info("Chat provider initialized", map[string]interface{}{"model": cfg.Model})
	return p, nil
}

func (p *OpenAIProvider) Send(ctx context.Context, systemPrompt string, history []*domain.ChatMessage, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	return p.cb.Execute(func() (string, error) {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    p.model,
			Messages: messages,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errEmptyCompletion
		}
		return resp.Choices[0].Message.Content, nil
	})
}
