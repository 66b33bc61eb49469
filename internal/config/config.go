package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Renderer names accepted in RENDERER.
const (
	RendererChrome   = "chrome"
	RendererHTTP     = "http"
	RendererSnapshot = "snapshot"
)

type Config struct {
	Port string

	// Label catalog; empty uses the built-in one.
	CatalogPath string

	// Page rendering
	Renderer        string
	ChromePath      string
	ChromeHeadless  bool
	ChromeNoSandbox bool
	WaitSelector    string
	ScopeSelector   string
	RenderTimeout   time.Duration
	BaseURL         string
	UserAgent       string
	SnapshotDir     string

	MaxConcurrentRenders int

	// Request defaults
	DefaultRegion string
	DefaultSeason string

	// Rolling window for /api/stats/render
	StatsWindow time.Duration

	LogLevel string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "3000"),

		CatalogPath: os.Getenv("CATALOG_PATH"),

		Renderer:        strings.ToLower(envOr("RENDERER", RendererChrome)),
		ChromePath:      os.Getenv("CHROME_PATH"),
		ChromeHeadless:  envBool("CHROME_HEADLESS", true),
		ChromeNoSandbox: envBool("CHROME_NO_SANDBOX", true),
		WaitSelector:    os.Getenv("WAIT_SELECTOR"),
		ScopeSelector:   os.Getenv("SCOPE_SELECTOR"),
		RenderTimeout:   envDuration("RENDER_TIMEOUT", 60*time.Second),
		BaseURL:         envOr("BASE_URL", "https://raider.io"),
		UserAgent:       envOr("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
		SnapshotDir:     os.Getenv("SNAPSHOT_DIR"),

		MaxConcurrentRenders: envInt("MAX_CONCURRENT_RENDERS", 2),

		DefaultRegion: envOr("DEFAULT_REGION", "eu"),
		DefaultSeason: envOr("DEFAULT_SEASON", "season-tww-3"),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		LogLevel: strings.ToLower(envOr("LOG_LEVEL", "info")),
	}

	if cfg.MaxConcurrentRenders <= 0 {
		cfg.MaxConcurrentRenders = 2
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 60 * time.Second
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.Renderer {
	case RendererChrome, RendererHTTP:
		if c.BaseURL == "" {
			return fmt.Errorf("BASE_URL is required for renderer %q", c.Renderer)
		}
	case RendererSnapshot:
		if c.SnapshotDir == "" {
			return fmt.Errorf("SNAPSHOT_DIR is required for renderer %q", c.Renderer)
		}
	default:
		return fmt.Errorf("RENDERER must be one of chrome, http, snapshot; got %q", c.Renderer)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
