package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
)

// Observer receives one observation per provider call. *metrics.Recorder implements it.
type Observer interface {
	ObserveUpstream(provider, outcome string, elapsed time.Duration)
}

type instrumented struct {
	next Provider
	obs  Observer
}

// Instrument decorates p so that every call is reported to obs.
func Instrument(p Provider, obs Observer) Provider {
	if obs == nil {
		return p
	}
	return &instrumented{next: p, obs: obs}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) FetchDailyCloses(ctx context.Context, q models.PriceQuery) ([]models.Quote, error) {
	start := time.Now()
	quotes, err := i.next.FetchDailyCloses(ctx, q)
	i.obs.ObserveUpstream(i.next.Name(), Outcome(err), time.Since(start))
	return quotes, err
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	var noData *models.NoDataError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &noData):
		return "no_data"
	default:
		return "unavailable"
	}
}
