package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/time/rate"

	"github.com/baxromumarov/recipe-hunter/internal/api"
	"github.com/baxromumarov/recipe-hunter/internal/config"
	"github.com/baxromumarov/recipe-hunter/internal/content"
	"github.com/baxromumarov/recipe-hunter/internal/core"
	"github.com/baxromumarov/recipe-hunter/internal/httpx"
	"github.com/baxromumarov/recipe-hunter/internal/store"
)

var version = "dev"

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	book, err := store.Open(cfg.DatabaseURL, cfg.BookFile)
	if err != nil {
		slog.Error("failed to open cooking book", "error", err)
		os.Exit(1)
	}
	defer book.Close()

	fetcher := httpx.NewFetcher(cfg.Fetcher, httpx.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		HostRate:  rate.Limit(cfg.HostRatePerSecond),
	})
	kitchen := core.NewKitchenService(content.NewExtractor(fetcher), book)

	srv := api.NewServer(kitchen, api.WithAPIToken(cfg.APIToken), api.WithVersion(version))
	if cfg.APIToken == "" {
		slog.Warn("API_TOKEN not set, recipe imports are unauthenticated")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "port", cfg.Port, "fetcher", cfg.Fetcher, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
