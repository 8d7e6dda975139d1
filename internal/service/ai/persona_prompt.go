package ai

import (
	"fmt"

	"github.com/zhouzirui/contrario/internal/model/chat"
	"github.com/zhouzirui/contrario/internal/model/persona"
)

// Request is everything a provider needs to produce one reply.
type Request struct {
	SessionID   string
	Persona     persona.Persona
	History     []chat.Turn
	UserMessage string
}

// Prompt is a provider-neutral rendering of a Request: the system prompt
// followed by the few-shot examples, the history window and the new user turn.
type Prompt struct {
	System string
	Turns  []chat.Turn
}

// BuildPrompt assembles the messages sent to the model.
func BuildPrompt(req Request) Prompt {
	turns := make([]chat.Turn, 0, len(req.Persona.Examples)+len(req.History)+1)
	turns = append(turns, req.Persona.Examples...)
	turns = append(turns, req.History...)
	turns = append(turns, chat.UserTurn(req.UserMessage))

	return Prompt{
		System: BuildSystemPrompt(req.Persona),
		Turns:  turns,
	}
}

// BuildSystemPrompt returns the persona's prompt, or a minimal stand-in for
// personas that carry only display data.
func BuildSystemPrompt(p persona.Persona) string {
	if p.SystemPrompt != "" {
		return p.SystemPrompt
	}

	name := p.Name
	if name == "" {
		name = string(p.ID)
	}
	if p.Description == "" {
		return fmt.Sprintf("Sei %s. Resta sempre nel personaggio.", name)
	}
	return fmt.Sprintf("Sei %s (%s). Resta sempre nel personaggio.", name, p.Description)
}
