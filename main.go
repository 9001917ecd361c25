package main

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bodul/wordgrid/words"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	norm, err := words.ParseLocale(cfg.Locale)
	if err != nil {
		return fmt.Errorf("invalid LOCALE %q: %w", cfg.Locale, err)
	}

	shutdownTracing, err := setupTracing(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("flush traces", "err", err)
		}
	}()
	if cfg.OTelEnabled && cfg.OTelEndpoint != "" {
		log.Info("tracing enabled", "endpoint", cfg.OTelEndpoint)
	}

	var suggester WordSuggester
	if cfg.ProjectID != "" {
		gemini, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("init gemini: %w", err)
		}
		defer gemini.Close()
		suggester = gemini
		log.Info("gemini client ready", "project", cfg.ProjectID, "model", gemini.Model())
	} else {
		log.Info("GCP_PROJECT_ID not set, themed puzzles disabled")
	}

	store := NewStore()
	builder := NewBuilder(norm, cfg.Filler, log)

	if cfg.PresetsFile != "" {
		presets, err := LoadPresets(cfg.PresetsFile)
		if err != nil {
			return fmt.Errorf("load presets: %w", err)
		}
		for _, p := range presets {
			g, err := p.Build(builder)
			if err != nil {
				log.Warn("skip preset", "name", p.Name, "err", err)
				continue
			}
			store.SaveGrid(g)
			log.Info("preset ready", "name", p.Name, "kind", g.Kind, "id", g.ID, "seed", g.Seed)
		}
	}

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: otelhttp.NewHandler(NewServer(store, builder, suggester, log), serviceName),
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server started", "addr", "http://localhost:"+cfg.Port, "locale", norm.Tag().String())
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
