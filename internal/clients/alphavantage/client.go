// Package alphavantage provides an Alpha Vantage client, the secondary
// ratio data source.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/interfaces"
	"github.com/pmallet/valuecheck/internal/models"
)

const (
	DefaultBaseURL   = "https://www.alphavantage.co"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 1 // requests per second — free tier is tightly limited
	DefaultTTL       = 24 * time.Hour
)

// flexFloat handles Alpha Vantage numeric fields, which arrive as strings
// and may be "None", "-" or empty. A nil pointer after decoding means the
// field was absent or not a number.
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.value = &num
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal %s into float64", string(data))
	}
	if s == "" || s == "None" || s == "-" || s == "N/A" {
		return nil
	}
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil // unparseable value treated as absent, not fatal
	}
	f.value = &num
	return nil
}

// Client implements the RatioProvider interface against Alpha Vantage.
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
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
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

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		logger:  common.NewSilentLogger(),
		ttl:     DefaultTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name identifies this provider in cache provenance.
func (c *Client) Name() models.DataSource { return models.SourceAlphaVantage }

// TTL is how long Alpha Vantage snapshots stay fresh in cache.
func (c *Client) TTL() time.Duration { return c.ttl }

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d)", e.Message, e.StatusCode)
}

// overviewResponse mirrors the OVERVIEW function payload fields we keep.
type overviewResponse struct {
	Symbol         string    `json:"Symbol"`
	Name           string    `json:"Name"`
	Currency       string    `json:"Currency"`
	PERatio        flexFloat `json:"PERatio"`
	PriceToBook    flexFloat `json:"PriceToBookRatio"`
	PriceToSales   flexFloat `json:"PriceToSalesRatioTTM"`
	PEGRatio       flexFloat `json:"PEGRatio"`
	DividendYield  flexFloat `json:"DividendYield"`
	ReturnOnEquity flexFloat `json:"ReturnOnEquityTTM"`
	PayoutRatio    flexFloat `json:"PayoutRatio"`
	QRevenueGrowth flexFloat `json:"QuarterlyRevenueGrowthYOY"`
	ErrorMessage   string    `json:"Error Message"`
	Note           string    `json:"Note"` // rate-limit notice
	Information    string    `json:"Information"`
}

// FetchRatios retrieves fundamentals via the OVERVIEW function.
func (c *Client) FetchRatios(ctx context.Context, ticker string) (*models.RatioSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("function", "OVERVIEW")
	params.Set("symbol", ticker)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("ticker", ticker).Msg("Alpha Vantage OVERVIEW request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var overview overviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&overview); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// Alpha Vantage signals errors inside a 200 body.
	switch {
	case overview.ErrorMessage != "":
		return nil, &APIError{StatusCode: resp.StatusCode, Message: overview.ErrorMessage}
	case overview.Note != "":
		return nil, &APIError{StatusCode: http.StatusTooManyRequests, Message: overview.Note}
	case overview.Symbol == "":
		msg := overview.Information
		if msg == "" {
			msg = fmt.Sprintf("no overview data for ticker %s", ticker)
		}
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: msg}
	}

	values := models.RatioValues{}
	setIf(values, models.RatioPE, overview.PERatio.value, 1)
	setIf(values, models.RatioPB, overview.PriceToBook.value, 1)
	setIf(values, models.RatioPS, overview.PriceToSales.value, 1)
	setIf(values, models.RatioPEG, overview.PEGRatio.value, 1)
	setIf(values, models.RatioDividendYield, overview.DividendYield.value, 100) // fraction → percent
	setIf(values, models.RatioROE, overview.ReturnOnEquity.value, 100)
	setIf(values, models.RatioPayoutRatio, overview.PayoutRatio.value, 100)
	setIf(values, models.RatioRevenueGrowth, overview.QRevenueGrowth.value, 100)

	return &models.RatioSnapshot{
		Ticker:   ticker,
		Name:     overview.Name,
		Currency: overview.Currency,
		Ratios:   values,
		AsOf:     time.Now(),
	}, nil
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
