// Package fmp provides a Financial Modeling Prep client, the primary
// ratio data source.
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/interfaces"
	"github.com/pmallet/valuecheck/internal/models"
)

const (
	DefaultBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
	DefaultTTL       = 24 * time.Hour
)

// Client implements the RatioProvider interface against FMP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	ttl        time.Duration
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTTL sets the cache TTL for snapshots from this provider
func WithTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// NewClient creates a new FMP client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		ttl:     DefaultTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name identifies this provider in cache provenance.
func (c *Client) Name() models.DataSource { return models.SourceFMP }

// TTL is how long FMP snapshots stay fresh in cache.
func (c *Client) TTL() time.Duration { return c.ttl }

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("FMP API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// ratiosResponse mirrors the /ratios-ttm payload. Pointer fields
// distinguish "absent" from zero; FMP omits ratios it cannot compute.
type ratiosResponse struct {
	PERatioTTM        *float64 `json:"peRatioTTM"`
	PriceToBookTTM    *float64 `json:"priceToBookRatioTTM"`
	PriceToSalesTTM   *float64 `json:"priceToSalesRatioTTM"`
	PEGRatioTTM       *float64 `json:"pegRatioTTM"`
	DividendYieldTTM  *float64 `json:"dividendYielTTM"` // sic, FMP field name
	DebtToEquityTTM   *float64 `json:"debtEquityRatioTTM"`
	ReturnOnEquityTTM *float64 `json:"returnOnEquityTTM"`
	PayoutRatioTTM    *float64 `json:"payoutRatioTTM"`
}

// profileResponse mirrors the /profile payload fields we keep.
type profileResponse struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Currency    string  `json:"currency"`
	Price       float64 `json:"price"`
}

// FetchRatios retrieves current TTM ratios for a ticker, plus company
// metadata from the profile endpoint (best effort).
func (c *Client) FetchRatios(ctx context.Context, ticker string) (*models.RatioSnapshot, error) {
	var ratios []ratiosResponse
	if err := c.get(ctx, fmt.Sprintf("/ratios-ttm/%s", url.PathEscape(ticker)), nil, &ratios); err != nil {
		return nil, err
	}
	if len(ratios) == 0 {
		return nil, &APIError{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("no ratio data for ticker %s", ticker),
			Endpoint:   "/ratios-ttm",
		}
	}

	r := ratios[0]
	values := models.RatioValues{}
	setIf(values, models.RatioPE, r.PERatioTTM, 1)
	setIf(values, models.RatioPB, r.PriceToBookTTM, 1)
	setIf(values, models.RatioPS, r.PriceToSalesTTM, 1)
	setIf(values, models.RatioPEG, r.PEGRatioTTM, 1)
	setIf(values, models.RatioDividendYield, r.DividendYieldTTM, 100) // fraction → percent
	setIf(values, models.RatioDebtToEquity, r.DebtToEquityTTM, 1)
	setIf(values, models.RatioROE, r.ReturnOnEquityTTM, 100) // fraction → percent
	setIf(values, models.RatioPayoutRatio, r.PayoutRatioTTM, 100)

	snapshot := &models.RatioSnapshot{
		Ticker: ticker,
		Ratios: values,
		AsOf:   time.Now(),
	}

	// Profile metadata is cosmetic; a failure here does not fail the fetch.
	var profiles []profileResponse
	if err := c.get(ctx, fmt.Sprintf("/profile/%s", url.PathEscape(ticker)), nil, &profiles); err == nil && len(profiles) > 0 {
		snapshot.Name = profiles[0].CompanyName
		snapshot.Currency = profiles[0].Currency
		snapshot.Price = profiles[0].Price
	} else if err != nil {
		c.logger.Debug().Str("ticker", ticker).Err(err).Msg("FMP profile lookup failed")
	}

	return snapshot, nil
}

// setIf records a ratio only when the provider supplied it.
func setIf(values models.RatioValues, name string, v *float64, scale float64) {
	if v == nil {
		return
	}
	values[name] = *v * scale
}

// Ensure Client implements RatioProvider
var _ interfaces.RatioProvider = (*Client)(nil)
