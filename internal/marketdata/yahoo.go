package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/guttosm/stockreturn/internal/domain/models"
	"github.com/guttosm/stockreturn/internal/logger"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultYahooBaseURL is the public chart endpoint.
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

	// DefaultHTTPTimeout caps a single HTTP exchange; the caller's context usually ends first.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRateLimit is the default outbound budget (requests per second).
	DefaultRateLimit = 5

	yahooName  = "yahoo"
	userAgent  = "Mozilla/5.0"
	maxErrBody = 512
)

// YahooProvider implements Provider using the Yahoo Finance chart API.
type YahooProvider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	log        zerolog.Logger
}

// YahooOption configures the YahooProvider.
type YahooOption func(*YahooProvider)

// WithBaseURL sets a custom chart endpoint (tests point it at httptest servers).
func WithBaseURL(baseURL string) YahooOption {
	return func(p *YahooProvider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) YahooOption {
	return func(p *YahooProvider) {
		p.httpClient = c
	}
}

// WithRateLimit sets the outbound requests-per-second budget.
func WithRateLimit(requestsPerSecond int) YahooOption {
	return func(p *YahooProvider) {
		if requestsPerSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithMaxRetries enables bounded retries of transport failures (0 disables them).
func WithMaxRetries(n int) YahooOption {
	return func(p *YahooProvider) {
		if n >= 0 {
			p.maxRetries = n
		}
	}
}

// NewYahooProvider creates a provider with sane defaults.
func NewYahooProvider(opts ...YahooOption) *YahooProvider {
	p := &YahooProvider{
		baseURL:    DefaultYahooBaseURL,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		log:        logger.Component("marketdata.yahoo"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *YahooProvider) Name() string { return yahooName }

// yahooChart is the subset of the chart payload we rely on.
// Closes are pointers because Yahoo reports null for non-trading rows.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
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

// FetchDailyCloses queries period1/period2 as Unix seconds with a daily interval.
func (p *YahooProvider) FetchDailyCloses(ctx context.Context, q models.PriceQuery) ([]models.Quote, error) {
	var quotes []models.Quote
	op := func() error {
		var err error
		quotes, err = p.fetchOnce(ctx, q)
		return err
	}
	if err := retry(ctx, p.maxRetries, op); err != nil {
		return nil, typed(yahooName, q.Symbol, err)
	}
	return quotes, nil
}

func (p *YahooProvider) fetchOnce(ctx context.Context, q models.PriceQuery) ([]models.Quote, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(unavailable(yahooName, q.Symbol, err))
	}

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(q.Start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(q.End.Unix(), 10))
	params.Set("interval", "1d")
	reqURL := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(q.Symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(unavailable(yahooName, q.Symbol, fmt.Errorf("build request: %w", err)))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	p.log.Debug().
		Str("symbol", q.Symbol).
		Time("start", q.Start).
		Time("end", q.End).
		Msg("yahoo chart request")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(unavailable(yahooName, q.Symbol, ctx.Err()))
		}
		// transport failures are the only retryable kind
		return nil, unavailable(yahooName, q.Symbol, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(yahooName, q.Symbol, fmt.Errorf("read body: %w", err))
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(&models.NoDataError{Symbol: q.Symbol, Reason: chartErrorText(chart, decodeErr, "symbol not found")})
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, unavailable(yahooName, q.Symbol, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, backoff.Permanent(unavailable(yahooName, q.Symbol, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body))))
	}

	if decodeErr != nil {
		return nil, backoff.Permanent(unavailable(yahooName, q.Symbol, fmt.Errorf("decode json: %w", decodeErr)))
	}
	if chart.Chart.Error != nil {
		if strings.EqualFold(chart.Chart.Error.Code, "Not Found") {
			return nil, backoff.Permanent(&models.NoDataError{Symbol: q.Symbol, Reason: chart.Chart.Error.Description})
		}
		return nil, backoff.Permanent(unavailable(yahooName, q.Symbol, fmt.Errorf("api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, backoff.Permanent(&models.NoDataError{Symbol: q.Symbol, Reason: "no chart result"})
	}

	result := chart.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	if len(closes) > len(result.Timestamp) {
		return nil, backoff.Permanent(unavailable(yahooName, q.Symbol, fmt.Errorf("malformed payload: %d closes for %d timestamps", len(closes), len(result.Timestamp))))
	}

	quotes := make([]models.Quote, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		var c *float64
		if i < len(closes) {
			c = closes[i]
		}
		quotes = append(quotes, models.Quote{Time: time.Unix(ts, 0).UTC(), Close: c})
	}
	return quotes, nil
}

func chartErrorText(chart yahooChart, decodeErr error, fallback string) string {
	if decodeErr == nil && chart.Chart.Error != nil && chart.Chart.Error.Description != "" {
		return chart.Chart.Error.Description
	}
	return fallback
}

func truncate(b []byte) string {
	if len(b) > maxErrBody {
		return string(b[:maxErrBody]) + "..."
	}
	return string(b)
}
