// Package server exposes the analysis pipeline and the stored profiles over
// a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/internal/analyze"
	"github.com/law-makers/storelens/internal/store"
	"github.com/law-makers/storelens/pkg/models"
)

const (
	DefaultShutdownTimeout = 10 * time.Second
	TrendingWindow         = 100
	TrendingTop            = 10
)

// Analyzer is what the API needs from analyze.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (*models.StoreProfile, error)
	Bulk(ctx context.Context, urls []string, concurrency int, progress func(analyze.BulkItem)) (*analyze.BulkResult, error)
	Compare(ctx context.Context, urls []string) (*analyze.CompareResult, error)
	QuickCheck(ctx context.Context, url string) (*analyze.QuickCheckResult, error)
	Competitors(url string, limit int) ([]models.Competitor, error)
	Limits() (bulk, compare int)
}

// Store is what the API needs from store.Store.
type Store interface {
	Save(ctx context.Context, p *models.StoreProfile) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.StoreProfile, error)
	List(ctx context.Context, skip, limit int) ([]store.BrandSummary, error)
	DeleteByID(ctx context.Context, id int64) error
	Trending(ctx context.Context, recent, top int) (*store.Trends, error)
	Ping(ctx context.Context) error
}

// Options configure a Server.
type Options struct {
	Addr            string
	BulkConcurrency int
	RequestTimeout  time.Duration
	RenderEnabled   bool
	ShutdownTimeout time.Duration
}

// Server serves the API.
type Server struct {
	analyzer Analyzer
	store    Store
	opts     Options
	router   chi.Router
}

// New builds a Server and its routes.
func New(a Analyzer, s Store, opts Options) *Server {
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = analyze.DefaultBulkConcurrency
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	srv := &Server{analyzer: a, store: s, opts: opts}
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/bulk", s.handleBulk)
		r.Post("/compare", s.handleCompare)
		r.Get("/quick-check", s.handleQuickCheck)
		r.Get("/competitors", s.handleCompetitors)

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", s.handleListBrands)
			r.Get("/{id}", s.handleGetBrand)
			r.Delete("/{id}", s.handleDeleteBrand)
			r.Post("/{id}/refresh", s.handleRefreshBrand)
		})

		r.Get("/insights/trending", s.handleTrending)
		r.Get("/status", s.handleStatus)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.opts.Addr).Msg("API listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
