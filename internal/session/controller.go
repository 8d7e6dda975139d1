// Package session owns the client-side state of one conversation: the session
// token, the selected persona, the ordered turns and the in-flight flag.
//
// A Controller admits at most one outstanding request. Submissions made while
// a request is outstanding are dropped, not queued. Every dispatch is tagged
// with the session id current at send time; a reply that resolves after the
// persona (and therefore the session) changed is discarded.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/contrario/internal/client"
	"github.com/zhouzirui/contrario/internal/model/chat"
	"github.com/zhouzirui/contrario/internal/model/persona"
	"github.com/zhouzirui/contrario/pkg/api"
)

// ErrorMarker prefixes assistant turns synthesized from a failed dispatch.
const ErrorMarker = "❌ Error: "

// Dispatcher performs one chat round trip.
type Dispatcher interface {
	Chat(ctx context.Context, req api.ChatRequest) (string, error)
}

var _ Dispatcher = (*client.Client)(nil)

// Session is a snapshot of the conversation state.
type Session struct {
	ID      string
	Persona persona.ID
	Turns   []chat.Turn
}

// Controller is safe for concurrent use.
type Controller struct {
	dispatcher Dispatcher
	newID      func() string
	logger     zerolog.Logger

	mu           sync.Mutex
	current      Session
	inFlight     bool
	selectorOpen bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithIDGenerator replaces the session token generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		c.newID = fn
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithPersona sets the persona of the initial session.
func WithPersona(id persona.ID) Option {
	return func(c *Controller) {
		c.current.Persona = id
	}
}

// New creates a controller with a fresh session bound to persona.Default
// unless WithPersona says otherwise.
func New(dispatcher Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		dispatcher: dispatcher,
		newID:      uuid.NewString,
		logger:     zerolog.Nop(),
		current:    Session{Persona: persona.Default},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current.ID = c.newID()
	return c
}

// SelectPersona replaces the session: new token, no turns, selector closed.
// An outstanding request is not cancelled; its reply will be discarded.
func (c *Controller) SelectPersona(id persona.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.current.ID
	c.current = Session{
		ID:      c.newID(),
		Persona: id,
	}
	c.selectorOpen = false

	c.logger.Debug().
		Str("previous_session", previous).
		Str("session", c.current.ID).
		Str("persona", string(id)).
		Bool("in_flight", c.inFlight).
		Msg("persona selected")
}

// Submit sends text as the next user turn and blocks until the reply, or a
// synthesized error turn, has been handled. It returns false without side
// effects when text is blank or another request is in flight.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logger.Debug().Msg("submit dropped: request in flight")
		return false
	}
	c.current.Turns = append(c.current.Turns, chat.UserTurn(text))
	c.inFlight = true
	req := api.ChatRequest{
		Message:   text,
		SessionID: c.current.ID,
		Persona:   string(c.current.Persona),
	}
	c.mu.Unlock()

	c.dispatch(ctx, req)
	return true
}

func (c *Controller) dispatch(ctx context.Context, req api.ChatRequest) {
	var reply string
	var err error

	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.inFlight = false

		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("session", req.SessionID).Msg("dispatch panicked")
			c.appendLocked(req.SessionID, chat.AssistantTurn(ErrorMarker+"unexpected failure"))
			return
		}

		turn := chat.AssistantTurn(reply)
		if err != nil {
			c.logger.Warn().Err(err).Str("session", req.SessionID).Msg("chat request failed")
			turn = chat.AssistantTurn(ErrorMarker + Describe(err))
		}
		c.appendLocked(req.SessionID, turn)
	}()

	reply, err = c.dispatcher.Chat(ctx, req)
}

// appendLocked adds turn only if tag still names the current session.
func (c *Controller) appendLocked(tag string, turn chat.Turn) {
	if c.current.ID != tag {
		c.logger.Info().
			Str("stale_session", tag).
			Str("session", c.current.ID).
			Msg("discarding reply for replaced session")
		return
	}
	c.current.Turns = append(c.current.Turns, turn)
}

// Describe renders a dispatch error for display. Client errors already carry
// the service detail, else the HTTP status text, else the transport text.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Session{
		ID:      c.current.ID,
		Persona: c.current.Persona,
		Turns:   append([]chat.Turn(nil), c.current.Turns...),
	}
}

// Turns returns a copy of the turn sequence.
func (c *Controller) Turns() []chat.Turn {
	return c.Snapshot().Turns
}

// SessionID returns the current session token.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.ID
}

// Persona returns the persona of the current session.
func (c *Controller) Persona() persona.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Persona
}

// InFlight reports whether a request is outstanding.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// OpenSelector marks the persona selector as open.
func (c *Controller) OpenSelector() {
	c.mu.Lock()
	c.selectorOpen = true
	c.mu.Unlock()
}

// CloseSelector closes the persona selector without changing the session.
func (c *Controller) CloseSelector() {
	c.mu.Lock()
	c.selectorOpen = false
	c.mu.Unlock()
}

// SelectorOpen reports whether the persona selector is open.
func (c *Controller) SelectorOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectorOpen
}
