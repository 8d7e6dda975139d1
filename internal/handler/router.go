package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/contrario/internal/handler/chat"
	"github.com/zhouzirui/contrario/internal/handler/persona"
	middlewarePkg "github.com/zhouzirui/contrario/internal/middleware"
	personaModel "github.com/zhouzirui/contrario/internal/model/persona"
	aiService "github.com/zhouzirui/contrario/internal/service/ai"
	chatService "github.com/zhouzirui/contrario/internal/service/chat"
	"github.com/zhouzirui/contrario/pkg/utils"
)

// Options carries the router dependencies.
type Options struct {
	Personas     personaModel.Store
	Chat         *chatService.Service
	Generator    aiService.Generator
	HistoryLimit int
	Logger       zerolog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(opts.Personas)
	chatHandler := chat.New(opts.Chat, opts.Generator, opts.Personas, opts.HistoryLimit)

	chatHandler.RegisterRoutes(r)
	personaHandler.RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"llmReady": opts.Generator != nil,
		})
	})

	return r
}
