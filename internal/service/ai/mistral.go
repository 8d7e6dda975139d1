package ai

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/contrario/internal/config"
	"github.com/zhouzirui/contrario/internal/model/chat"
)

// MistralService talks to Mistral's OpenAI-compatible chat completions API.
type MistralService struct {
	client    *openai.Client
	model     string
	maxTokens int
}

var _ Generator = (*MistralService)(nil)

// NewMistralService builds the generator from configuration.
func NewMistralService(cfg config.AIConfig) (*MistralService, error) {
	if !cfg.MistralEnabled() {
		return nil, errors.New("mistral api key or model missing")
	}

	clientConfig := openai.DefaultConfig(cfg.MistralAPIKey)
	if cfg.MistralBaseURL != "" {
		clientConfig.BaseURL = cfg.MistralBaseURL
	}

	return &MistralService{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.MistralModel,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Generate sends the persona prompt as a single chat completion.
func (s *MistralService) Generate(ctx context.Context, req Request) (string, error) {
	p := BuildPrompt(req)

	messages := make([]openai.ChatCompletionMessage, 0, len(p.Turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: p.System,
	})
	for _, turn := range p.Turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == chat.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: req.Persona.Params.Temperature,
		TopP:        req.Persona.Params.TopP,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	log.Debug().
		Str("provider", string(config.ProviderMistral)).
		Str("session", req.SessionID).
		Str("persona", string(req.Persona.ID)).
		Int("length", len(content)).
		Msg("generated response")
	return content, nil
}

// NewGenerator picks the provider named by cfg. It returns (nil, nil) when no
// provider is configured so the service can still start and report the
// missing key per request.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderMistral:
		svc, err := NewMistralService(cfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case config.ProviderArk:
		svc, err := NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, nil
	}
}
