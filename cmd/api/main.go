// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/autodocx/relay-api/internal/cache"
	"github.com/autodocx/relay-api/internal/config"
	"github.com/autodocx/relay-api/internal/handler"
	"github.com/autodocx/relay-api/internal/langflow"
	"github.com/autodocx/relay-api/internal/llm"
	"github.com/autodocx/relay-api/internal/middleware"
	natsclient "github.com/autodocx/relay-api/internal/nats"
	"github.com/autodocx/relay-api/internal/service"
	"github.com/autodocx/relay-api/internal/source"
	"github.com/autodocx/relay-api/internal/store"
	"github.com/autodocx/relay-api/pkg/logger"
	"github.com/autodocx/relay-api/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, FilePath: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "autodocx-relay", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Transcript persistence
	transcripts, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open transcript stores", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := transcripts.Close(); err != nil {
			log.Warn("failed to close transcript stores", zap.Error(err))
		}
	}()

	// Chat relay
	flow := langflow.New(langflow.Config{
		URL:     cfg.LangflowURL,
		Token:   cfg.LangflowToken,
		Secret:  cfg.LangflowSecret,
		Timeout: cfg.ChatTimeout,
	})
	if !cfg.ChatConfigured() {
		log.Warn("LANGFLOW_TOKEN or LANGFLOW_SECRET not set, chat requests will fail")
	}

	// Summarizer relay
	var generator llm.Client
	generator, err = llm.NewClient(llm.Provider(cfg.SummarizerProvider), summarizerOptions(cfg))
	if err != nil {
		log.Warn("summarizer provider unavailable, summarize requests will fail",
			zap.String("provider", cfg.SummarizerProvider),
			zap.Error(err),
		)
		generator = nil
	}

	summaries, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	fetcher := source.NewFetcher(cfg.SourceFetchTimeout)

	// Initialize services
	chatSvc := service.NewChatService(flow, transcripts, log, service.WithPersistTimeout(cfg.PersistTimeout))
	summarySvc := service.NewSummaryService(generator, fetcher, summaries, service.SummaryConfig{
		Timeout:  cfg.SummaryTimeout,
		CacheTTL: cfg.SummaryCacheTTL,
	}, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{"transcripts": transcripts}, log)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	summarizeHandler := handler.NewSummarizeHandler(summarySvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.AuthEnabled() {
			r.Use(middleware.Auth(cfg.SupabaseJWTSecret))
		}
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)
		r.Post("/summarize", summarizeHandler.Summarize)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// openStores builds the transcript sinks: Postgres when DATABASE_URL is set,
// memory otherwise, plus a JetStream mirror when NATS_URL is set.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store.Multi, error) {
	var stores []store.Store

	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		stores = append(stores, pg)
		log.Info("persisting transcripts to postgres")
	} else {
		stores = append(stores, store.NewMemoryStore())
		log.Warn("DATABASE_URL not set, transcripts are kept in memory only")
	}

	if cfg.NATSURL != "" {
		nc, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			Name:     cfg.NATSClientName,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			store.NewMulti(stores...).Close()
			return nil, fmt.Errorf("nats: %w", err)
		}

		stream := natsclient.NewTranscriptStream(nc)
		if err := stream.EnsureStream(ctx); err != nil {
			stream.Close()
			store.NewMulti(stores...).Close()
			return nil, fmt.Errorf("nats stream: %w", err)
		}
		stores = append(stores, stream)
		log.Info("mirroring transcripts to JetStream", zap.String("stream", natsclient.StreamName))
	}

	return store.NewMulti(stores...), nil
}

// openCache returns the summary cache and a function releasing it.
func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.Cache, func()) {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err == nil {
			log.Info("caching summaries in redis")
			return rc, func() { rc.Close() }
		}
		log.Warn("redis unavailable, caching summaries in memory", zap.Error(err))
	}
	return cache.NewMemory(cfg.SummaryCacheTTL, 10*time.Minute), func() {}
}

// summarizerOptions picks the credentials for the configured provider.
// Model and base URL overrides apply to Gemini only.
func summarizerOptions(cfg *config.Config) llm.Options {
	switch llm.Provider(cfg.SummarizerProvider) {
	case llm.ProviderOpenAI:
		return llm.Options{APIKey: cfg.OpenAIAPIKey}
	case llm.ProviderAnthropic:
		return llm.Options{APIKey: cfg.AnthropicAPIKey}
	default:
		return llm.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		}
	}
}
