// Package marketdata fetches daily closing prices from an upstream source.
//
// Every source implements Provider. Callers only see the two failure kinds of
// the domain: *models.NoDataError when the source has nothing for the symbol and
// window, and *models.UpstreamUnavailableError for transport, status, timeout or
// payload problems.
package marketdata

import (
	"context"
	"errors"

	"github.com/guttosm/stockreturn/internal/domain/models"
)

// Provider returns the raw daily rows of a symbol over [q.Start, q.End].
// Rows may carry a nil close; filtering and ordering belong to the caller.
type Provider interface {
	FetchDailyCloses(ctx context.Context, q models.PriceQuery) ([]models.Quote, error)
	Name() string
}

// unavailable wraps err as an UpstreamUnavailableError, flagging context timeouts.
func unavailable(provider, symbol string, err error) error {
	return &models.UpstreamUnavailableError{
		Provider: provider,
		Symbol:   symbol,
		Timeout:  errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled),
		Err:      err,
	}
}

// typed passes domain errors through and classifies anything else
// (for example a context error surfaced by the backoff loop) as unavailability.
func typed(provider, symbol string, err error) error {
	var noData *models.NoDataError
	var upstream *models.UpstreamUnavailableError
	if errors.As(err, &noData) || errors.As(err, &upstream) {
		return err
	}
	return unavailable(provider, symbol, err)
}
