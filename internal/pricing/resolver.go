// Package pricing turns raw provider rows into a single usable closing price.
//
// Markets are closed on weekends and holidays, so a calendar date rarely maps to a
// trading row. The Resolver queries a window instead and picks one close from it:
// the first close on or after the date for historical prices, the last close of the
// trailing day for current prices.
package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
	"github.com/guttosm/stockreturn/internal/marketdata"
)

const (
	// HistoricalWindow is how far past the requested date the first trading close is searched.
	HistoricalWindow = 7 * 24 * time.Hour
	// CurrentWindow is the trailing window searched for the most recent close.
	CurrentWindow = 24 * time.Hour
)

// Resolver selects closing prices from a marketdata.Provider.
// It holds no state besides the provider and never retries or caches.
type Resolver struct {
	provider marketdata.Provider
}

// NewResolver creates a Resolver backed by provider.
func NewResolver(provider marketdata.Provider) *Resolver {
	return &Resolver{provider: provider}
}

// ProviderName reports the name of the underlying provider.
func (r *Resolver) ProviderName() string { return r.provider.Name() }

// HistoricalPrice returns the first close on or after date within HistoricalWindow.
// The date is truncated to midnight UTC.
func (r *Resolver) HistoricalPrice(ctx context.Context, symbol string, date time.Time) (float64, error) {
	if date.IsZero() {
		return 0, &models.ValidationError{Field: "date", Message: "date is required"}
	}
	start := startOfDay(date)
	s, err := r.series(ctx, symbol, start, start.Add(HistoricalWindow))
	if err != nil {
		return 0, err
	}
	p, ok := s.First()
	if !ok {
		return 0, &models.NoDataError{Symbol: s.Symbol, Reason: "no trading day within 7 days of " + start.Format(models.DateLayout)}
	}
	return p.Close, nil
}

// CurrentPrice returns the last close within CurrentWindow ending at now.
func (r *Resolver) CurrentPrice(ctx context.Context, symbol string, now time.Time) (float64, error) {
	quote, err := r.CurrentQuote(ctx, symbol, now)
	if err != nil {
		return 0, err
	}
	return quote.CurrentPrice, nil
}

// CurrentQuote is CurrentPrice plus the timestamp of the selected close.
func (r *Resolver) CurrentQuote(ctx context.Context, symbol string, now time.Time) (*models.StockQuote, error) {
	if now.IsZero() {
		return nil, &models.ValidationError{Field: "date", Message: "evaluation time is required"}
	}
	s, err := r.series(ctx, symbol, now.Add(-CurrentWindow), now)
	if err != nil {
		return nil, err
	}
	p, ok := s.Last()
	if !ok {
		return nil, &models.NoDataError{Symbol: s.Symbol, Reason: "unable to get current price"}
	}
	return &models.StockQuote{Symbol: s.Symbol, CurrentPrice: p.Close, Timestamp: p.Time}, nil
}

// series fetches [start, end] and drops null closes. An empty series is a NoDataError.
func (r *Resolver) series(ctx context.Context, symbol string, start, end time.Time) (models.PriceSeries, error) {
	q, err := models.NewPriceQuery(symbol, start, end)
	if err != nil {
		return models.PriceSeries{}, err
	}

	quotes, err := r.provider.FetchDailyCloses(ctx, q)
	if err != nil {
		return models.PriceSeries{}, classify(r.provider.Name(), q.Symbol, err)
	}

	s := models.NewPriceSeries(q.Symbol, quotes)
	if s.Empty() {
		return s, &models.NoDataError{Symbol: q.Symbol, Reason: "no closes between " + q.Start.Format(time.RFC3339) + " and " + q.End.Format(time.RFC3339)}
	}
	return s, nil
}

func classify(provider, symbol string, err error) error {
	var noData *models.NoDataError
	var upstream *models.UpstreamUnavailableError
	if errors.As(err, &noData) || errors.As(err, &upstream) {
		return err
	}
	return &models.UpstreamUnavailableError{
		Provider: provider,
		Symbol:   symbol,
		Timeout:  errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled),
		Err:      err,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
