package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zhouzirui/contrario/internal/model/chat"
	"github.com/zhouzirui/contrario/internal/model/persona"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Service keeps conversation transcripts in memory, keyed by the
// client-chosen session id.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
}

// NewService bootstraps the in-memory chat service.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
}

// EnsureSession returns the session with the given id, creating it bound to
// personaID on first use. An existing session keeps its original persona.
func (s *Service) EnsureSession(_ context.Context, sessionID string, personaID persona.ID) (chat.Session, error) {
	if sessionID == "" {
		return chat.Session{}, ErrSessionRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		return session, nil
	}

	session := chat.Session{
		ID:        sessionID,
		PersonaID: string(personaID),
		CreatedAt: time.Now().UTC(),
	}
	s.sessions[sessionID] = session
	s.messages[sessionID] = make([]chat.Message, 0, 16)
	return session, nil
}

// AppendExchange records a user message and the assistant reply in order.
func (s *Service) AppendExchange(_ context.Context, sessionID, userMessage, reply string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	now := time.Now().UTC()
	s.messages[sessionID] = append(s.messages[sessionID],
		chat.Message{ID: uuid.NewString(), SessionID: sessionID, Role: chat.RoleUser, Content: userMessage, CreatedAt: now},
		chat.Message{ID: uuid.NewString(), SessionID: sessionID, Role: chat.RoleAssistant, Content: reply, CreatedAt: now},
	)
	return nil
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// LoadWindow returns at most limit of the most recent messages as turns.
// A non-positive limit returns the whole transcript.
func (s *Service) LoadWindow(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	messages, err := s.LoadTranscript(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	turns := make([]chat.Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, msg.Turn())
	}
	return turns, nil
}
