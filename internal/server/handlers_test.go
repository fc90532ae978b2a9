package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pmallet/valuecheck/internal/app"
	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/models"
	"github.com/pmallet/valuecheck/internal/resolver"
	"github.com/pmallet/valuecheck/internal/scoring"
	"github.com/pmallet/valuecheck/internal/storage/memory"
)

// newTestServer builds a server over a memory cache with no providers:
// resolutions succeed only via seeded cache entries.
func newTestServer(t *testing.T) (*Server, *memory.Cache) {
	t.Helper()

	logger := common.NewSilentLogger()
	cache := memory.NewCache()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "memory"

	a := &app.App{
		Config:      cfg,
		Logger:      logger,
		Cache:       cache,
		Resolver:    resolver.NewService(cache, nil, cfg.Resolver, logger),
		Scorer:      scoring.NewService(logger),
		StartupTime: time.Now(),
	}

	return NewServer(a), cache
}

func seedCache(t *testing.T, cache *memory.Cache, ticker string, ratios models.RatioValues) {
	t.Helper()
	snapshot := models.RatioSnapshot{
		Ticker: ticker,
		Ratios: ratios,
		AsOf:   time.Now(),
	}
	if _, err := cache.Put(context.Background(), ticker, snapshot, models.SourceFMP, time.Hour, 0); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestHandleVersion(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/version", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["version"] == "" {
		t.Error("version missing from response")
	}
}

func TestHandleStockGet_CachedExcellent(t *testing.T) {
	srv, cache := newTestServer(t)
	seedCache(t, cache, "AAPL", models.RatioValues{
		models.RatioPE:            10,
		models.RatioPB:            1,
		models.RatioDividendYield: 4,
		models.RatioDebtToEquity:  0.5,
		models.RatioROE:           15,
	})

	rec := doRequest(srv, http.MethodGet, "/api/stocks/aapl?profile=value", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Ticker    string             `json:"ticker"`
		FromCache bool               `json:"from_cache"`
		Stale     bool               `json:"stale"`
		Profile   string             `json:"profile"`
		Score     models.ScoreResult `json:"score"`
	}
	decodeBody(t, rec, &body)

	if body.Ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", body.Ticker)
	}
	if !body.FromCache || body.Stale {
		t.Errorf("FromCache=%v Stale=%v, want cached fresh", body.FromCache, body.Stale)
	}
	if body.Score.Score != 100 {
		t.Errorf("score = %.1f, want 100 for all-excellent ratios", body.Score.Score)
	}
	if body.Score.Verdict != models.VerdictOpportunite {
		t.Errorf("verdict = %q", body.Score.Verdict)
	}
}

func TestHandleStockGet_InvalidProfile(t *testing.T) {
	srv, cache := newTestServer(t)
	seedCache(t, cache, "AAPL", models.RatioValues{models.RatioPE: 10})

	rec := doRequest(srv, http.MethodGet, "/api/stocks/AAPL?profile=yolo", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleStockGet_Unresolvable(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/stocks/GHOST", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502 when all sources fail", rec.Code)
	}
}

func TestHandleStockBatch_Oversized(t *testing.T) {
	srv, _ := newTestServer(t)

	tickers := make([]string, 11)
	for i := range tickers {
		tickers[i] = "T" + string(rune('A'+i))
	}
	payload, _ := json.Marshal(map[string]interface{}{"tickers": tickers})

	rec := doRequest(srv, http.MethodPost, "/api/stocks/batch", string(payload))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for oversized batch", rec.Code)
	}
}

func TestHandleStockBatch_MixedResults(t *testing.T) {
	srv, cache := newTestServer(t)
	seedCache(t, cache, "AAPL", models.RatioValues{models.RatioPE: 15})

	rec := doRequest(srv, http.MethodPost, "/api/stocks/batch",
		`{"tickers": ["aapl", "GHOST"], "profile": "value"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Results []map[string]interface{} `json:"results"`
	}
	decodeBody(t, rec, &body)

	if len(body.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(body.Results))
	}
	if body.Results[0]["ticker"] != "AAPL" || body.Results[0]["error"] != nil {
		t.Errorf("position 0 = %v, want scored AAPL", body.Results[0])
	}
	if body.Results[1]["error"] == nil {
		t.Errorf("position 1 = %v, want per-ticker failure", body.Results[1])
	}
}

func TestHandleScore_Manual(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/score",
		`{"ratios": {"PE": 10, "PB": 1, "DividendYield": 4, "DebtToEquity": 0.5, "ROE": 15}, "profile": "value"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Source string             `json:"source"`
		Score  models.ScoreResult `json:"score"`
	}
	decodeBody(t, rec, &body)

	if body.Source != string(models.SourceManual) {
		t.Errorf("source = %q, want manual", body.Source)
	}
	if body.Score.Score != 100 {
		t.Errorf("score = %.1f, want 100", body.Score.Score)
	}
}

func TestHandleScore_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/score", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleProfiles(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/profiles", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Profiles map[string]scoring.Profile `json:"profiles"`
	}
	decodeBody(t, rec, &body)

	for _, name := range []string{"value", "growth", "dividend"} {
		if _, ok := body.Profiles[name]; !ok {
			t.Errorf("profile %s missing from catalog", name)
		}
	}
}

func TestHandleCacheInvalidate(t *testing.T) {
	srv, cache := newTestServer(t)
	seedCache(t, cache, "AAPL", models.RatioValues{models.RatioPE: 15})

	rec := doRequest(srv, http.MethodDelete, "/api/cache/aapl", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	entry, err := cache.Get(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("cache read: %v", err)
	}
	if entry != nil {
		t.Error("entry still present after invalidation")
	}
}

func TestHandleCacheClear(t *testing.T) {
	srv, cache := newTestServer(t)
	seedCache(t, cache, "AAPL", models.RatioValues{models.RatioPE: 15})
	seedCache(t, cache, "MSFT", models.RatioValues{models.RatioPE: 25})

	rec := doRequest(srv, http.MethodDelete, "/api/cache", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if cache.Len() != 0 {
		t.Errorf("cache still holds %d entries after clear", cache.Len())
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodOptions, "/api/stocks/AAPL", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 for preflight", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS headers missing")
	}
}

func TestCorrelationIDPropagation(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "req-42" {
		t.Errorf("correlation id = %q, want req-42", got)
	}
}
