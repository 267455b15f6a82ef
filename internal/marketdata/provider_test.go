package marketdata

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
)

type fakeRepo struct {
	rows []models.Quote
	err  error

	gotSymbol string
}

func (f *fakeRepo) InsertClosesBatch(context.Context, []models.DailyClose) error { return nil }
func (f *fakeRepo) GetDailyCloses(_ context.Context, symbol string, _, _ time.Time) ([]models.Quote, error) {
	f.gotSymbol = symbol
	return f.rows, f.err
}
func (f *fakeRepo) HasIngestionForFile(context.Context, string) (bool, error)      { return false, nil }
func (f *fakeRepo) UpsertIngestionLog(context.Context, string, string, int) error { return nil }
func (f *fakeRepo) DeleteClosesBySymbol(context.Context, string) error            { return nil }

func TestPostgresProvider(t *testing.T) {
	v := 101.5
	cases := []struct {
		name     string
		repo     *fakeRepo
		wantRows int
		check    func(t *testing.T, err error)
	}{
		{name: "rows", repo: &fakeRepo{rows: []models.Quote{{Time: time.Now(), Close: &v}}}, wantRows: 1},
		{name: "empty is no data", repo: &fakeRepo{}, check: func(t *testing.T, err error) {
			var nd *models.NoDataError
			if !errors.As(err, &nd) {
				t.Fatalf("expected NoDataError, got %v", err)
			}
		}},
		{name: "db failure is unavailable", repo: &fakeRepo{err: errors.New("conn refused")}, check: func(t *testing.T, err error) {
			var up *models.UpstreamUnavailableError
			if !errors.As(err, &up) || up.Provider != "postgres" {
				t.Fatalf("expected postgres UpstreamUnavailableError, got %v", err)
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPostgresProvider(tc.repo)
			rows, err := p.FetchDailyCloses(context.Background(), newQuery(t, "msft"))
			if tc.check != nil {
				tc.check(t, err)
				return
			}
			if err != nil || len(rows) != tc.wantRows {
				t.Fatalf("rows=%d err=%v", len(rows), err)
			}
			if tc.repo.gotSymbol != "MSFT" {
				t.Fatalf("repository queried with %q", tc.repo.gotSymbol)
			}
		})
	}
}

type stubProvider struct{ err error }

func (s stubProvider) Name() string { return "stub" }
func (s stubProvider) FetchDailyCloses(context.Context, models.PriceQuery) ([]models.Quote, error) {
	return nil, s.err
}

type recordingObserver struct{ outcomes []string }

func (r *recordingObserver) ObserveUpstream(provider, outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, provider+":"+outcome)
}

func TestInstrument_ReportsOutcome(t *testing.T) {
	obs := &recordingObserver{}
	errs := []error{
		nil,
		fmt.Errorf("wrapped: %w", &models.NoDataError{Symbol: "X"}),
		&models.UpstreamUnavailableError{Provider: "stub"},
	}
	for _, e := range errs {
		p := Instrument(stubProvider{err: e}, obs)
		_, _ = p.FetchDailyCloses(context.Background(), models.PriceQuery{})
		if p.Name() != "stub" {
			t.Fatalf("decorator must keep the provider name")
		}
	}
	want := []string{"stub:ok", "stub:no_data", "stub:unavailable"}
	for i := range want {
		if obs.outcomes[i] != want[i] {
			t.Fatalf("outcomes=%v, want %v", obs.outcomes, want)
		}
	}
}

func TestInstrument_NilObserver(t *testing.T) {
	p := stubProvider{}
	if got := Instrument(p, nil); got != Provider(p) {
		t.Fatalf("nil observer should return the provider unchanged")
	}
}

func TestTyped_WrapsContextErrors(t *testing.T) {
	err := typed("yahoo", "AAPL", context.DeadlineExceeded)
	var up *models.UpstreamUnavailableError
	if !errors.As(err, &up) || !up.Timeout {
		t.Fatalf("expected timeout UpstreamUnavailableError, got %v", err)
	}
	nd := &models.NoDataError{Symbol: "AAPL"}
	if typed("yahoo", "AAPL", nd) != error(nd) {
		t.Fatalf("domain errors must pass through")
	}
}
