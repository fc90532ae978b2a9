package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pmallet/valuecheck/internal/models"
	"github.com/pmallet/valuecheck/internal/resolver"
	"github.com/pmallet/valuecheck/internal/scoring"
)

// parseProfile reads the profile name and writes a 400 on failure.
// An empty name selects the value profile.
func parseProfile(w http.ResponseWriter, name string) (scoring.ProfileType, bool) {
	if name == "" {
		return scoring.ProfileValue, true
	}
	profile, err := scoring.ParseProfileType(name)
	if err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid profile: %v", err))
		return "", false
	}
	return profile, true
}

// writeResolveError maps resolver failures onto HTTP status codes.
func writeResolveError(w http.ResponseWriter, err error) {
	var resErr *resolver.ResolutionError
	if errors.As(err, &resErr) {
		WriteError(w, http.StatusBadGateway, resErr.Error())
		return
	}
	WriteError(w, http.StatusBadRequest, err.Error())
}

// scoredResolution is the payload for one resolved and scored ticker.
func scoredResolution(ticker string, res *models.Resolution, score *models.ScoreResult, profile scoring.ProfileType) map[string]interface{} {
	return map[string]interface{}{
		"ticker":     ticker,
		"data":       res.Data,
		"source":     res.Source,
		"from_cache": res.FromCache,
		"stale":      res.Stale,
		"profile":    profile,
		"score":      score,
	}
}

// handleStockGet handles GET /api/stocks/{ticker}?profile=value.
func (s *Server) handleStockGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := PathParam(r, "/api/stocks/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	profile, ok := parseProfile(w, r.URL.Query().Get("profile"))
	if !ok {
		return
	}

	res, err := s.app.Resolver.Resolve(r.Context(), ticker)
	if err != nil {
		writeResolveError(w, err)
		return
	}

	score, err := s.app.Scorer.Score(res.Data.Ratios, profile)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Scoring error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, scoredResolution(res.Data.Ticker, res, score, profile))
}

// handleStockBatch handles POST /api/stocks/batch.
func (s *Server) handleStockBatch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Tickers []string `json:"tickers"`
		Profile string   `json:"profile"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Tickers) == 0 {
		WriteError(w, http.StatusBadRequest, "At least one ticker is required")
		return
	}

	profile, ok := parseProfile(w, req.Profile)
	if !ok {
		return
	}

	results, err := s.app.Resolver.ResolveBatch(r.Context(), req.Tickers)
	if err != nil {
		var sizeErr *resolver.BatchSizeError
		if errors.As(err, &sizeErr) {
			WriteError(w, http.StatusBadRequest, sizeErr.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Batch error: %v", err))
		return
	}

	out := make([]map[string]interface{}, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			out = append(out, map[string]interface{}{
				"ticker": result.Ticker,
				"error":  result.Err.Error(),
			})
			continue
		}

		score, scoreErr := s.app.Scorer.Score(result.Resolution.Data.Ratios, profile)
		if scoreErr != nil {
			out = append(out, map[string]interface{}{
				"ticker": result.Ticker,
				"error":  scoreErr.Error(),
			})
			continue
		}
		out = append(out, scoredResolution(result.Ticker, result.Resolution, score, profile))
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": out,
	})
}

// handleScore handles POST /api/score: scoring caller-supplied ratios
// without touching the cache or providers.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Ratios  models.RatioValues `json:"ratios"`
		Profile string             `json:"profile"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	profile, ok := parseProfile(w, req.Profile)
	if !ok {
		return
	}

	score, err := s.app.Scorer.Score(req.Ratios, profile)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Scoring error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"source":  models.SourceManual,
		"profile": profile,
		"score":   score,
	})
}

// handleProfiles handles GET /api/profiles: the scoring profile catalog.
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	profiles := make(map[string]scoring.Profile)
	for _, t := range scoring.ProfileTypes() {
		if p, err := scoring.GetProfile(t); err == nil {
			profiles[string(t)] = p
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
	})
}

// handleCacheInvalidate handles DELETE /api/cache/{ticker}.
func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	ticker := PathParam(r, "/api/cache/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}
	ticker = resolver.NormalizeTicker(ticker)

	if err := s.app.Cache.Invalidate(r.Context(), ticker); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Invalidate error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "invalidated",
		"ticker": ticker,
	})
}

// handleCacheClear handles DELETE /api/cache.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := s.app.Cache.Clear(r.Context()); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Clear error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "cleared",
	})
}
