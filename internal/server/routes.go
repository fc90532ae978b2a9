package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/pmallet/valuecheck/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Stocks
	mux.HandleFunc("/api/stocks/batch", s.handleStockBatch)
	mux.HandleFunc("/api/stocks/", s.handleStockGet)

	// Scoring
	mux.HandleFunc("/api/score", s.handleScore)
	mux.HandleFunc("/api/profiles", s.handleProfiles)

	// Cache administration
	mux.HandleFunc("/api/cache/", s.handleCacheInvalidate)
	mux.HandleFunc("/api/cache", s.handleCacheClear)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(s.app.StartupTime).Round(time.Second).String(),
		"providers": len(s.app.Providers),
		"storage":   s.app.Config.Storage.Backend,
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.Build,
		"commit":     common.GitCommit,
		"go_version": runtime.Version(),
	})
}
