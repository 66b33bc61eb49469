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

	"github.com/dgallion1/riostats/internal/api"
	"github.com/dgallion1/riostats/internal/catalog"
	"github.com/dgallion1/riostats/internal/config"
	"github.com/dgallion1/riostats/internal/lookup"
	"github.com/dgallion1/riostats/internal/metrics"
	"github.com/dgallion1/riostats/internal/render"
)

func main() {
	cfg := config.Load()

	level, _ := cfg.SlogLevel()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		var cfgErr *catalog.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Error("invalid catalog", "label", cfgErr.Key, "reason", cfgErr.Reason)
		} else {
			log.Error("load catalog", "path", cfg.CatalogPath, "error", err)
		}
		os.Exit(1)
	}

	renderer, closeRenderer := newRenderer(cfg, log)
	defer closeRenderer()

	m := metrics.New()
	svc := lookup.NewService(lookup.Options{
		Renderer:      renderer,
		RendererName:  cfg.Renderer,
		Catalog:       cat,
		Metrics:       m,
		Stats:         render.NewLatencyStats(cfg.StatsWindow),
		MaxConcurrent: cfg.MaxConcurrentRenders,
		Timeout:       cfg.RenderTimeout,
		Log:           log,
	})

	srv := api.NewServer(svc, m, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RenderTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting riostats",
		"port", cfg.Port,
		"renderer", cfg.Renderer,
		"labels", len(cat.Labels()),
		"max_concurrent_renders", cfg.MaxConcurrentRenders,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

func newRenderer(cfg config.Config, log *slog.Logger) (render.Renderer, func()) {
	switch cfg.Renderer {
	case config.RendererHTTP:
		return render.NewHTTP(render.HTTPOptions{
			BaseURL:   cfg.BaseURL,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.RenderTimeout,
			Scope:     cfg.ScopeSelector,
		}, log), func() {}
	case config.RendererSnapshot:
		return &render.Snapshot{Dir: cfg.SnapshotDir, Scope: cfg.ScopeSelector}, func() {}
	default:
		c := render.NewChrome(render.ChromeOptions{
			ExecPath:     cfg.ChromePath,
			Headless:     cfg.ChromeHeadless,
			NoSandbox:    cfg.ChromeNoSandbox,
			UserAgent:    cfg.UserAgent,
			BaseURL:      cfg.BaseURL,
			WaitSelector: cfg.WaitSelector,
			Scope:        cfg.ScopeSelector,
		}, log)
		return c, c.Close
	}
}
