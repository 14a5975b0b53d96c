package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"recipebook/internal/api"
	"recipebook/internal/config"
	"recipebook/internal/images"
	"recipebook/internal/kitchen"
	"recipebook/internal/platform/gemini"
	"recipebook/internal/platform/localllm"
	"recipebook/internal/platform/openaiimage"
	"recipebook/internal/providers"
	"recipebook/internal/recipe"
)

// memoryCacheSize bounds the in-process text cache used without a database.
const memoryCacheSize = 1024

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.json"
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load configuration", "path", path, "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()
	if provider == nil {
		logger.Warn("no LLM provider configured, generation endpoints will fail", "provider", cfg.LLMProvider)
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	imageStore, err := images.NewStore(cfg.ImageDir, cfg.MaxImages, logger)
	if err != nil {
		return err
	}

	service := kitchen.NewService(provider, store, logger)
	handler := api.NewHandler(service, imageStore, cfg.PublicURL, logger)
	handler.Generator = newImageGenerator(cfg)
	if handler.Generator == nil {
		logger.Info("image generation disabled, set OPENAI_API_KEY to enable it")
	}

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           newRouter(cfg, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("recipe API listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info("server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}

func newRouter(cfg config.Config, handler *api.Handler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.Register(r)
	return r
}

// newProvider returns the configured LLM provider. A Gemini provider without
// an API key yields a nil provider so the server can still report its health.
func newProvider(ctx context.Context, cfg config.Config) (providers.Provider, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderLocal:
		return localllm.NewClient(cfg.LocalLLMURL, cfg.LocalLLMModel, cfg.LocalLLMAPIKey), func() {}, nil
	default:
		if cfg.GeminiAPIKey == "" {
			return nil, func() {}, nil
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating gemini client: %w", err)
		}
		return client, func() { closeQuietly(client) }, nil
	}
}

// newStore returns a Postgres store when a database URL is configured and
// an in-memory store otherwise.
func newStore(cfg config.Config) (recipe.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		return recipe.NewMemoryStore(memoryCacheSize), func() {}, nil
	}
	dbStore, err := recipe.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating postgres store: %w", err)
	}
	return dbStore, func() { closeQuietly(dbStore) }, nil
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Error("failed to close resource", "err", err)
	}
}

// newImageGenerator returns the recipe picture generator, or nil when no
// OpenAI key is configured.
func newImageGenerator(cfg config.Config) images.Generator {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	return openaiimage.NewClient(cfg.OpenAIAPIKey, cfg.ImageModel)
}
