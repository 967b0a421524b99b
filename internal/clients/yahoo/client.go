// Package yahoo provides a client for the Yahoo Finance public API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/models"
)

const (
	DefaultChartURL  = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultSearchURL = "https://query1.finance.yahoo.com/v1/finance/search"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the MarketDataClient interface against Yahoo Finance.
type Client struct {
	chartURL   string
	searchURL  string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithChartURL sets the chart API base URL
func WithChartURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.chartURL = strings.TrimRight(baseURL, "/")
	}
}

// WithSearchURL sets the search API URL
func WithSearchURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.searchURL = strings.TrimRight(baseURL, "/")
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

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		chartURL:  DefaultChartURL,
		searchURL: DefaultSearchURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "yahoo",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
		},
	})

	return c
}

// APIError represents a provider error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsRateLimited reports whether the provider rejected the request for quota.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// get performs a rate-limited, circuit-broken GET with retries on
// transient failures. result is decoded from the JSON response body.
func (c *Client) get(ctx context.Context, rawURL string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	op := func() error {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.doOnce(ctx, rawURL, result)
		})
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			// Breaker is open; retrying inside this call won't help.
			return backoff.Permanent(err)
		}
		if apiErr, ok := err.(*APIError); ok {
			// 4xx responses other than 429 won't improve on retry.
			if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && !apiErr.IsRateLimited() {
				return backoff.Permanent(err)
			}
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(op, policy)
}

func (c *Client) doOnce(ctx context.Context, rawURL string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	c.logger.Debug().Str("url", rawURL).Msg("Yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   rawURL,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// chartResponse is the Yahoo chart API envelope.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency  string `json:"currency"`
				Symbol    string `json:"symbol"`
				ShortName string `json:"shortName"`
				LongName  string `json:"longName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetDailyHistory retrieves daily adjusted-close history for a ticker.
func (c *Client) GetDailyHistory(ctx context.Context, ticker string, from time.Time) (*models.ProviderHistory, error) {
	return c.fetchChart(ctx, ticker, from)
}

// FxSymbol builds the Yahoo symbol for a currency pair. Yahoo quotes
// "<BASE><QUOTE>=X" as quote-currency units per one base unit, which is
// exactly the rate r with amountBase = amountQuote / r.
func FxSymbol(baseCurrency, quoteCurrency string) string {
	return strings.ToUpper(baseCurrency) + strings.ToUpper(quoteCurrency) + "=X"
}

// GetFxHistory retrieves the daily rate history for a currency pair.
func (c *Client) GetFxHistory(ctx context.Context, baseCurrency, quoteCurrency string, from time.Time) (*models.ProviderHistory, error) {
	return c.fetchChart(ctx, FxSymbol(baseCurrency, quoteCurrency), from)
}

func (c *Client) fetchChart(ctx context.Context, symbol string, from time.Time) (*models.ProviderHistory, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	if from.IsZero() {
		params.Set("range", "max")
	} else {
		params.Set("period1", fmt.Sprintf("%d", from.Unix()))
		params.Set("period2", fmt.Sprintf("%d", time.Now().Unix()))
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.chartURL, url.PathEscape(symbol), params.Encode())

	var chart chartResponse
	if err := c.get(ctx, reqURL, &chart); err != nil {
		return nil, err
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart: no data for %s", symbol)
	}

	result := chart.Chart.Result[0]

	// Prefer adjusted close; FX charts only carry raw close.
	var values []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		values = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		values = result.Indicators.Quote[0].Close
	}

	history := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(values) || values[i] == nil || *values[i] <= 0 {
			continue // null bars on holidays, halted days
		}
		history = append(history, models.PricePoint{
			Date:     models.DateOnly(time.Unix(ts, 0).UTC()),
			AdjClose: *values[i],
		})
	}

	name := result.Meta.ShortName
	if name == "" {
		name = result.Meta.LongName
	}

	return &models.ProviderHistory{
		Currency:  strings.ToUpper(result.Meta.Currency),
		ShortName: name,
		History:   history,
	}, nil
}
