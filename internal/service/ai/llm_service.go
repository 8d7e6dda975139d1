package ai

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/contrario/internal/config"
	"github.com/zhouzirui/contrario/internal/model/chat"
)

// Generator produces one assistant reply for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Service runs persona conversations through an eino chain backed by an Ark
// chat model.
type Service struct {
	chain     compose.Runnable[map[string]any, *schema.Message]
	maxTokens int
}

var _ Generator = (*Service)(nil)

// NewService creates the Ark-backed generator.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat model")
	}
	return NewServiceWithModel(ctx, chatModel, cfg.MaxTokens)
}

// NewServiceWithModel compiles the prompt chain around an existing model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel, maxTokens int) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile chat chain")
	}

	return &Service{
		chain:     runnable,
		maxTokens: maxTokens,
	}, nil
}

// Generate renders the persona prompt and invokes the chain with the
// persona's sampling parameters.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	p := BuildPrompt(req)
	input := map[string]any{
		"system":  p.System,
		"history": toSchemaMessages(p.Turns),
	}

	opts := []model.Option{
		model.WithTemperature(req.Persona.Params.Temperature),
		model.WithTopP(req.Persona.Params.TopP),
	}
	if s.maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(s.maxTokens))
	}

	response, err := s.chain.Invoke(ctx, input, compose.WithChatModelOption(opts...))
	if err != nil {
		return "", errors.Wrap(err, "failed to run AI chain")
	}
	if response == nil {
		return "", errors.New("chat model returned no message")
	}

	log.Debug().
		Str("provider", string(config.ProviderArk)).
		Str("session", req.SessionID).
		Str("persona", string(req.Persona.ID)).
		Int("length", len(response.Content)).
		Msg("generated response")
	return response.Content, nil
}

func toSchemaMessages(turns []chat.Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return messages
}
