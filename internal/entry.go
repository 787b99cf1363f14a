// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/seywald/marque/internal/api"
	"github.com/seywald/marque/internal/datastore"
	"github.com/seywald/marque/internal/history"
	"github.com/seywald/marque/internal/linkservice"
	"github.com/seywald/marque/internal/pagecache"
	"github.com/seywald/marque/internal/sse"
	"github.com/seywald/marque/internal/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("datastore", cfg.Resource.Datastore),
		slog.String("history", cfg.History.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize page cache invalidator.
	var cache pagecache.Invalidator = pagecache.Noop{}
	if cfg.Resource.PageCache != "" {
		cache = pagecache.NewDir(cfg.Resource.PageCache, logger)
	}

	// Initialize datastore and load the collection. The server process
	// holds the owner view; per-request visibility is enforced by the
	// API layer.
	ds, err := datastore.NewFile(cfg.Resource.Datastore)
	if err != nil {
		return fmt.Errorf("init datastore: %w", err)
	}
	links, err := store.New(ds, store.Options{
		IsOwner:         true,
		HidePublicLinks: cfg.Privacy.HidePublicLinks,
		Cache:           cache,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	// Initialize the history audit log.
	hist, err := history.Open(cfg.History.Path, cfg.History.Retention())
	if err != nil {
		return fmt.Errorf("init history: %w", err)
	}
	defer hist.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build link service and router.
	svc := linkservice.NewService(links, hist, broker, logger)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api/v1.
	r.Mount("/api/v1", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the collection when the datastore file changes on disk.
	g.Go(func() error {
		return links.Watch(gCtx, logger, func() {
			broker.Publish(sse.Event{Type: "store.reloaded", Data: struct{}{}})
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
