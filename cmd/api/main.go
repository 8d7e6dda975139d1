package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/contrario/internal/config"
	"github.com/zhouzirui/contrario/internal/handler"
	"github.com/zhouzirui/contrario/internal/logging"
	"github.com/zhouzirui/contrario/internal/model/persona"
	"github.com/zhouzirui/contrario/internal/service/ai"
	"github.com/zhouzirui/contrario/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(os.Stderr, cfg.LogLevel, false)
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file, using process environment only")
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	chatService := chat.NewService()

	generator, err := ai.NewGenerator(ctx, cfg.AI)
	switch {
	case err != nil:
		logger.Warn().Err(err).Str("provider", string(cfg.AI.Provider)).Msg("failed to initialize LLM provider, chat requests will fail")
		generator = nil
	case generator == nil:
		logger.Warn().Msg("no LLM credentials configured (MISTRAL_API_KEY or ARK_*), chat requests will fail")
	default:
		logger.Info().Str("provider", string(cfg.AI.Provider)).Msg("LLM provider initialized")
	}

	router := handler.NewRouter(handler.Options{
		Personas:     personaStore,
		Chat:         chatService,
		Generator:    generator,
		HistoryLimit: cfg.AI.HistoryLimit,
		Logger:       logger,
	})

	startServer(ctx, logger, cfg.Server, router)
}

func startServer(ctx context.Context, logger zerolog.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("chat backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
