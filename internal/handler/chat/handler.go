package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/contrario/internal/model/persona"
	aiService "github.com/zhouzirui/contrario/internal/service/ai"
	chatService "github.com/zhouzirui/contrario/internal/service/chat"
	"github.com/zhouzirui/contrario/pkg/api"
	"github.com/zhouzirui/contrario/pkg/utils"
)

// DetailMissingKey is reported when no language model provider is configured.
const DetailMissingKey = "API Key mancante"

// Handler serves the chat endpoint.
type Handler struct {
	chatSvc      *chatService.Service
	generator    aiService.Generator
	personaStore persona.Store
	historyLimit int
}

// New creates the chat handler. generator may be nil, in which case every
// chat request fails with DetailMissingKey.
func New(chatSvc *chatService.Service, generator aiService.Generator, personaStore persona.Store, historyLimit int) *Handler {
	return &Handler{
		chatSvc:      chatSvc,
		generator:    generator,
		personaStore: personaStore,
		historyLimit: historyLimit,
	}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post(api.ChatPath, h.handleChat)
}

type chatPayload struct {
	Message   *string `json:"message"`
	SessionID *string `json:"session_id"`
	Persona   string  `json:"persona"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if payload.Message == nil {
		utils.RespondError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}
	if payload.SessionID == nil || *payload.SessionID == "" {
		utils.RespondError(w, http.StatusUnprocessableEntity, "session_id is required")
		return
	}

	if h.generator == nil {
		utils.RespondError(w, http.StatusInternalServerError, DetailMissingKey)
		return
	}

	ctx := r.Context()
	sessionID := *payload.SessionID
	message := *payload.Message
	selected := h.personaStore.Resolve(persona.ID(payload.Persona))

	logger := log.With().
		Str("request_id", chimw.GetReqID(ctx)).
		Str("session", sessionID).
		Str("persona", string(selected.ID)).
		Logger()

	session, err := h.chatSvc.EnsureSession(ctx, sessionID, selected.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open session")
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// The requested persona wins; clients switching persona also switch session.
	if session.PersonaID != string(selected.ID) {
		logger.Warn().Str("bound_persona", session.PersonaID).Msg("session reused with a different persona")
	}

	history, err := h.chatSvc.LoadWindow(ctx, sessionID, h.historyLimit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load history")
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	reply, err := h.generator.Generate(ctx, aiService.Request{
		SessionID:   sessionID,
		Persona:     selected,
		History:     history,
		UserMessage: message,
	})
	if err != nil {
		logger.Error().Err(err).Msg("generation failed")
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.chatSvc.AppendExchange(ctx, sessionID, message, reply); err != nil {
		logger.Error().Err(err).Msg("failed to record exchange")
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, api.ChatResponse{Response: &reply})
}
