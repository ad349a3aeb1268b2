// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/internal/analyze"
	"github.com/law-makers/storelens/internal/cache"
	"github.com/law-makers/storelens/internal/competitors"
	"github.com/law-makers/storelens/internal/config"
	"github.com/law-makers/storelens/internal/extract"
	"github.com/law-makers/storelens/internal/fetch"
	"github.com/law-makers/storelens/internal/proxy"
	"github.com/law-makers/storelens/internal/ratelimit"
	"github.com/law-makers/storelens/internal/retry"
	"github.com/law-makers/storelens/internal/server"
	"github.com/law-makers/storelens/internal/store"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	Cache    *cache.MemoryCache
	Limiter  *ratelimit.HostLimiter
	Proxies  *proxy.Pool
	Fetcher  *fetch.Fetcher
	Analyzer *analyze.Analyzer

	storeMu   sync.Mutex
	store     *store.Store
	startTime time.Time
}

// Options adjust what New builds beyond the config.
type Options struct {
	// Headers are sent with every storefront request.
	Headers http.Header
}

// New creates and initializes a new Application with all dependencies.
//
// The database is not opened here; commands that persist profiles call Store.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := ConfigureLogging(cfg)

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Dur("ttl", cfg.CacheTTL).
		Msg("Page cache initialized")

	limiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	var proxies *proxy.Pool
	if len(cfg.Proxies) > 0 {
		proxies = proxy.NewPool(cfg.Proxies)
		logger.Debug().Int("proxies", proxies.Len()).Msg("Proxy rotation enabled")
	}

	var renderer fetch.Renderer
	if cfg.RenderHome {
		chromeOpts := fetch.ChromeOptions{
			ExecPath:  cfg.ChromePath,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.RenderTimeout,
			Headers:   opts.Headers,
		}
		if len(cfg.Proxies) > 0 {
			chromeOpts.Proxy = cfg.Proxies[0]
		}
		renderer = fetch.NewChromeRenderer(chromeOpts)
		logger.Debug().Msg("Headless rendering enabled for home pages")
	}

	fetcher := fetch.New(fetch.Options{
		Timeout:         cfg.HTTPTimeout,
		MaxConnsPerHost: cfg.MaxConnsPerHost,
		UserAgent:       cfg.UserAgent,
		Headers:         opts.Headers,
		Retry: retry.Config{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryDelay,
			Strategy:   retry.Linear,
		},
		Limiter:  limiter,
		Cache:    memCache,
		CacheTTL: cfg.CacheTTL,
		Proxies:  proxies,
		Renderer: renderer,
	})
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Int("max_retries", cfg.MaxRetries).
		Msg("Fetcher initialized")

	analyzer := analyze.New(fetcher, extract.New(), competitors.New(), analyze.Options{
		RenderHome:      cfg.RenderHome,
		CompetitorLimit: cfg.CompetitorLimit,
		MaxBulkURLs:     cfg.BulkMaxURLs,
		MaxCompareURLs:  cfg.CompareMaxURLs,
	})

	app := &Application{
		Config:    cfg,
		Logger:    &logger,
		Cache:     memCache,
		Limiter:   limiter,
		Proxies:   proxies,
		Fetcher:   fetcher,
		Analyzer:  analyzer,
		startTime: time.Now(),
	}

	logger.Debug().Msg("Application initialized successfully")
	return app, nil
}

// ConfigureLogging sets the global zerolog level and output from cfg and
// returns a timestamped logger writing to the same place.
func ConfigureLogging(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stderr
	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return log.Logger
}

// Store opens the database on first use and returns it.
func (a *Application) Store(ctx context.Context) (*store.Store, error) {
	a.storeMu.Lock()
	defer a.storeMu.Unlock()

	if a.store != nil {
		return a.store, nil
	}
	s, err := store.Open(ctx, a.Config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.Config.DatabasePath, err)
	}
	a.Logger.Debug().Str("path", a.Config.DatabasePath).Msg("Database opened")
	a.store = s
	return s, nil
}

// Server builds the HTTP API over the analyzer and the database.
func (a *Application) Server(ctx context.Context, addr string) (*server.Server, error) {
	s, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	if addr == "" {
		addr = a.Config.ListenAddr
	}
	return server.New(a.Analyzer, s, server.Options{
		Addr:            addr,
		BulkConcurrency: a.Config.BulkConcurrency,
		RequestTimeout:  a.Config.HTTPTimeout,
		RenderEnabled:   a.Fetcher.CanRender(),
		ShutdownTimeout: config.DefaultShutdownTimeout,
	}), nil
}

// Close gracefully shuts down the application and all its resources.
//
// The fetcher (and its headless browser, if one was started) is closed first,
// then the cache and finally the database. Errors are logged and the first
// one is returned.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	var firstErr error
	if a.Fetcher != nil {
		if err := a.Fetcher.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing fetcher")
			firstErr = err
		}
	}

	if a.Cache != nil {
		st := a.Cache.Stats()
		a.Logger.Debug().Uint64("hits", st.Hits).Uint64("misses", st.Misses).Msg("Page cache stats")
		a.Cache.Close()
	}

	a.storeMu.Lock()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing database")
			if firstErr == nil {
				firstErr = err
			}
		}
		a.store = nil
	}
	a.storeMu.Unlock()

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return firstErr
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
