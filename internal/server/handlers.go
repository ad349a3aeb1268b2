package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/storelens/internal/apperr"
	"github.com/law-makers/storelens/internal/fetch"
	"github.com/law-makers/storelens/internal/reqctx"
	"github.com/law-makers/storelens/pkg/models"
)

type analyzeRequest struct {
	URL  string `json:"url"`
	Save *bool  `json:"save_to_database"`
}

type analyzeResponse struct {
	Success bool                 `json:"success"`
	BrandID int64                `json:"brand_id,omitempty"`
	Saved   bool                 `json:"saved_to_database"`
	Profile *models.StoreProfile `json:"profile"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	// A single analysis always reads the live store; only batches share cached pages.
	p, err := s.analyzer.Analyze(fetch.WithoutCache(r.Context()), req.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := analyzeResponse{Success: true, Profile: p}
	if req.Save == nil || *req.Save {
		id, err := s.store.Save(r.Context(), p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.BrandID, resp.Saved = id, true
	}
	writeJSON(w, http.StatusOK, resp)
}

type bulkRequest struct {
	URLs          []string `json:"urls"`
	Save          *bool    `json:"save_to_database"`
	MaxConcurrent int      `json:"max_concurrent"`
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	concurrency := req.MaxConcurrent
	if concurrency <= 0 || concurrency > s.opts.BulkConcurrency {
		concurrency = s.opts.BulkConcurrency
	}

	res, err := s.analyzer.Bulk(r.Context(), req.URLs, concurrency, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Save == nil || *req.Save {
		for _, it := range res.Results {
			if it.Profile == nil {
				continue
			}
			if _, err := s.store.Save(r.Context(), it.Profile); err != nil {
				log.Warn().Str("request_id", reqctx.ID(r.Context())).Str("url", it.URL).Err(err).Msg("Failed to save bulk result")
			}
		}
	}
	writeJSON(w, http.StatusOK, res)
}

type compareRequest struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.analyzer.Compare(r.Context(), req.URLs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleQuickCheck(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyzer.QuickCheck(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	list, err := s.analyzer.Competitors(u, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":         u,
		"competitors": list,
		"total":       len(list),
	})
}

func (s *Server) handleListBrands(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	brands, err := s.store.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"brands": brands,
		"skip":   skip,
		"limit":  limit,
	})
}

func (s *Server) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.DeleteByID(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": id})
}

func (s *Server) handleRefreshBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	old, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.analyzer.Analyze(fetch.WithoutCache(r.Context()), old.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	newID, err := s.store.Save(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Success: true, BrandID: newID, Saved: true, Profile: p})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	tr, err := s.store.Trending(r.Context(), TrendingWindow, TrendingTop)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	maxBulk, maxCompare := s.analyzer.Limits()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "operational",
		"last_check": time.Now().UTC(),
		"capabilities": map[string]bool{
			"single_analysis":      true,
			"bulk_analysis":        true,
			"store_comparison":     true,
			"database_integration": true,
			"headless_rendering":   s.opts.RenderEnabled,
		},
		"limits": map[string]int{
			"max_bulk_urls":       maxBulk,
			"max_comparison_urls": maxCompare,
			"timeout_seconds":     int(s.opts.RequestTimeout / time.Second),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, r, apperr.New(apperr.CodeStorage, "database unavailable", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
