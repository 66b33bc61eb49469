package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/riostats/internal/catalog"
	"github.com/dgallion1/riostats/internal/extract"
	"github.com/dgallion1/riostats/internal/metrics"
	"github.com/dgallion1/riostats/internal/render"
)

// Options wires a Service.
type Options struct {
	Renderer      render.Renderer
	RendererName  string // metrics label
	Catalog       *catalog.Catalog
	Metrics       *metrics.Metrics
	Stats         *render.LatencyStats
	MaxConcurrent int
	Timeout       time.Duration
	Log           *slog.Logger
}

// Service renders a character profile and resolves the catalog against it.
type Service struct {
	renderer render.Renderer
	name     string
	catalog  *catalog.Catalog
	resolver *extract.Resolver
	metrics  *metrics.Metrics
	stats    *render.LatencyStats
	log      *slog.Logger
	timeout  time.Duration
	sem      chan struct{}
}

func NewService(opts Options) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Stats == nil {
		opts.Stats = render.NewLatencyStats(time.Hour)
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.RendererName == "" {
		opts.RendererName = "custom"
	}
	return &Service{
		renderer: opts.Renderer,
		name:     opts.RendererName,
		catalog:  opts.Catalog,
		resolver: extract.NewResolver(opts.Log),
		metrics:  opts.Metrics,
		stats:    opts.Stats,
		log:      opts.Log,
		timeout:  opts.Timeout,
		sem:      make(chan struct{}, opts.MaxConcurrent),
	}
}

// Lookup renders req and extracts every catalog label. A render failure is
// returned as *render.Error and the extraction engine is not run.
func (s *Service) Lookup(ctx context.Context, req render.Request) (extract.Result, error) {
	log := s.log.With("region", req.Region, "realm", req.Realm, "name", req.Name, "season", req.Season)

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		s.metrics.Lookups.WithLabelValues(metrics.OutcomeRenderError).Inc()
		return extract.Result{}, &render.Error{URL: req.ProfileURL(""), Err: fmt.Errorf("waiting for render slot: %w", ctx.Err())}
	}
	s.metrics.RendersActive.Inc()

	renderCtx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	tree, err := s.renderer.Render(renderCtx, req)
	elapsed := time.Since(start)
	cancel()

	s.metrics.RendersActive.Dec()
	<-s.sem

	s.stats.Record(elapsed, err != nil)
	s.metrics.ObserveRender(s.name, elapsed)

	if err != nil {
		s.metrics.Lookups.WithLabelValues(metrics.OutcomeRenderError).Inc()
		log.Warn("render failed", "duration_ms", elapsed.Milliseconds(), "error", err)
		var renderErr *render.Error
		if !errors.As(err, &renderErr) {
			err = &render.Error{URL: req.ProfileURL(""), Err: err}
		}
		return extract.Result{}, err
	}

	res := s.resolver.Resolve(tree, s.catalog)
	for _, r := range res.Resolutions() {
		s.metrics.Labels.WithLabelValues(r.Key, r.Source).Inc()
	}
	s.metrics.Lookups.WithLabelValues(metrics.OutcomeOK).Inc()
	log.Info("character resolved",
		"duration_ms", elapsed.Milliseconds(),
		"labels_found", res.Found(),
		"labels_total", len(res.Keys()),
	)
	return res, nil
}

// Stats returns the render latency tracker.
func (s *Service) Stats() *render.LatencyStats {
	return s.stats
}

// Catalog returns the catalog used for extraction.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}
