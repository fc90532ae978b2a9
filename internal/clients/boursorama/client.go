// Package boursorama scrapes valuation figures from Boursorama quote
// pages. It is the tertiary, last-resort ratio source: no API key, fewer
// ratios, and a markup dependency — kept behind the same RatioProvider
// capability as the API clients.
package boursorama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/pmallet/valuecheck/internal/common"
	"github.com/pmallet/valuecheck/internal/interfaces"
	"github.com/pmallet/valuecheck/internal/models"
)

const (
	DefaultBaseURL   = "https://www.boursorama.com"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 1 // requests per second — be polite to the site
	DefaultTTL       = 6 * time.Hour

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Client implements the RatioProvider interface by scraping quote pages.
type Client struct {
	baseURL    string
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

// NewClient creates a new Boursorama scraping client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
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
func (c *Client) Name() models.DataSource { return models.SourceBoursorama }

// TTL is how long scraped snapshots stay fresh in cache. Shorter than the
// API providers because scraped figures are the least reliable.
func (c *Client) TTL() time.Duration { return c.ttl }

// ScrapeError reports a failed or unusable page fetch.
type ScrapeError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("Boursorama scrape error: %s (status: %d, url: %s)", e.Message, e.StatusCode, e.URL)
}

// labelRatios maps the French labels of the key-figures table onto ratio
// names. Labels are matched case-insensitively after trimming.
var labelRatios = map[string]string{
	"per":              models.RatioPE,
	"prix / actif net": models.RatioPB,
	"rendement":        models.RatioDividendYield,
}

// FetchRatios scrapes the quote page for a ticker. Boursorama exposes
// fewer ratios than the API providers; missing ones are simply absent
// from the snapshot, which the scorer treats as neutral.
func (c *Client) FetchRatios(ctx context.Context, ticker string) (*models.RatioSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	pageURL := fmt.Sprintf("%s/cours/%s/", c.baseURL, url.PathEscape(strings.ToLower(ticker)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")

	c.logger.Debug().Str("url", pageURL).Msg("Boursorama scrape request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ScrapeError{
			StatusCode: resp.StatusCode,
			Message:    "unexpected status",
			URL:        pageURL,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	values := models.RatioValues{}

	// Key figures appear as label/value pairs in the instrument info lists.
	doc.Find("li.c-list-info__item").Each(func(_ int, s *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(s.Find(".c-list-info__heading").First().Text()))
		name, ok := labelRatios[label]
		if !ok {
			return
		}
		raw := s.Find(".c-list-info__value").First().Text()
		if v, err := ParseFrenchNumber(raw); err == nil {
			values[name] = v
		}
	})

	if len(values) == 0 {
		return nil, &ScrapeError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("no ratio figures found for ticker %s", ticker),
			URL:        pageURL,
		}
	}

	snapshot := &models.RatioSnapshot{
		Ticker: ticker,
		Name:   strings.TrimSpace(doc.Find("a.c-faceplate__company-link").First().Text()),
		Ratios: values,
		AsOf:   time.Now(),
	}

	if priceText := doc.Find("span.c-instrument--last").First().Text(); priceText != "" {
		if price, err := ParseFrenchNumber(priceText); err == nil {
			snapshot.Price = price
		}
	}
	if cur := strings.TrimSpace(doc.Find("span.c-faceplate__price-currency").First().Text()); cur != "" {
		snapshot.Currency = cur
	}

	return snapshot, nil
}

// ParseFrenchNumber parses figures as rendered on French market pages:
// comma decimal separator, space (or NBSP) thousand grouping, optional
// "%" or currency suffix. Returns an error for non-numeric text ("N/A").
func ParseFrenchNumber(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSuffix(cleaned, "€")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	if cleaned == "" || cleaned == "-" || strings.EqualFold(cleaned, "n/a") || strings.EqualFold(cleaned, "nd") {
		return 0, fmt.Errorf("no numeric value in %q", s)
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as number: %w", s, err)
	}
	return v, nil
}

// Ensure Client implements RatioProvider
var _ interfaces.RatioProvider = (*Client)(nil)
