package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
	"github.com/guttosm/stockreturn/internal/pricing"
)

var fixedNow = time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func f(v float64) *float64 { return &v }

// scriptedProvider answers historical (7-day) and current (1-day) windows differently.
type scriptedProvider struct {
	historical []models.Quote
	current    []models.Quote
	histErr    error
	curErr     error
	// barrier, when set, blocks each call until both lookups are in flight.
	barrier *sync.WaitGroup
	// block makes every call wait for ctx to end.
	block bool
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) FetchDailyCloses(ctx context.Context, q models.PriceQuery) ([]models.Quote, error) {
	if p.barrier != nil {
		p.barrier.Done()
		done := make(chan struct{})
		go func() { p.barrier.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			return nil, errors.New("lookups did not overlap")
		}
	}
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if q.End.Sub(q.Start) == pricing.HistoricalWindow {
		return p.historical, p.histErr
	}
	return p.current, p.curErr
}

func newService(p *scriptedProvider, timeout time.Duration) InvestmentService {
	return NewInvestmentService(pricing.NewResolver(p), timeout, WithClock(clock))
}

func validRequest() models.InvestmentRequest {
	return models.InvestmentRequest{Symbol: " aapl ", InvestmentDate: time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), Amount: 1000}
}

func TestCalculate_Success(t *testing.T) {
	p := &scriptedProvider{
		historical: []models.Quote{{Time: time.Date(2023, 3, 15, 13, 30, 0, 0, time.UTC), Close: f(150)}},
		current:    []models.Quote{{Time: fixedNow.Add(-6 * time.Hour), Close: f(180)}, {Time: fixedNow, Close: nil}},
	}
	res, err := newService(p, time.Second).Calculate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Symbol != "AAPL" || res.HistoricalPrice != 150 || res.CurrentPrice != 180 {
		t.Fatalf("unexpected result %+v", res)
	}
	if math.Abs(res.CurrentValue-1200) > 1e-9 || math.Abs(res.ReturnPercentage-20) > 1e-9 {
		t.Fatalf("unexpected metrics %+v", res)
	}
	if res.YearsHeld <= 1 || res.YearsHeld >= 1.01 {
		t.Fatalf("unexpected years held %v", res.YearsHeld)
	}
}

func TestCalculate_LookupsRunConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	p := &scriptedProvider{
		historical: []models.Quote{{Time: time.Date(2023, 3, 15, 13, 30, 0, 0, time.UTC), Close: f(50)}},
		current:    []models.Quote{{Time: fixedNow.Add(-time.Hour), Close: f(50)}},
		barrier:    &wg,
	}
	res, err := newService(p, 5*time.Second).Calculate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.TotalReturn != 0 || res.AnnualizedReturn != 0 {
		t.Fatalf("flat price should give zero returns, got %+v", res)
	}
}

func TestCalculate_FailsAtomically(t *testing.T) {
	cases := []struct {
		name  string
		p     *scriptedProvider
		check func(t *testing.T, err error)
	}{
		{
			name: "unknown symbol",
			p: &scriptedProvider{
				histErr: &models.NoDataError{Symbol: "ZZZZZNOTREAL", Reason: "symbol not found"},
				curErr:  &models.NoDataError{Symbol: "ZZZZZNOTREAL", Reason: "symbol not found"},
			},
			check: func(t *testing.T, err error) {
				var nd *models.NoDataError
				if !errors.As(err, &nd) {
					t.Fatalf("expected NoDataError, got %v", err)
				}
			},
		},
		{
			name: "current price missing",
			p: &scriptedProvider{
				historical: []models.Quote{{Time: time.Date(2023, 3, 15, 13, 30, 0, 0, time.UTC), Close: f(150)}},
				current:    []models.Quote{{Time: fixedNow, Close: nil}},
			},
			check: func(t *testing.T, err error) {
				var nd *models.NoDataError
				if !errors.As(err, &nd) {
					t.Fatalf("expected NoDataError, got %v", err)
				}
			},
		},
		{
			name: "upstream failure",
			p: &scriptedProvider{
				historical: []models.Quote{{Time: time.Date(2023, 3, 15, 13, 30, 0, 0, time.UTC), Close: f(150)}},
				curErr:     &models.UpstreamUnavailableError{Provider: "scripted", Symbol: "AAPL", Err: errors.New("502")},
			},
			check: func(t *testing.T, err error) {
				var up *models.UpstreamUnavailableError
				if !errors.As(err, &up) {
					t.Fatalf("expected UpstreamUnavailableError, got %v", err)
				}
			},
		},
		{
			name: "timeout",
			p:    &scriptedProvider{block: true},
			check: func(t *testing.T, err error) {
				var up *models.UpstreamUnavailableError
				if !errors.As(err, &up) || !up.Timeout {
					t.Fatalf("expected timed out UpstreamUnavailableError, got %v", err)
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := newService(tc.p, 50*time.Millisecond).Calculate(context.Background(), validRequest())
			if res != nil {
				t.Fatalf("expected no partial result, got %+v", res)
			}
			tc.check(t, err)
		})
	}
}

func TestCalculate_RejectsBeforeLookup(t *testing.T) {
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name       string
		req        models.InvestmentRequest
		wantMsg    string
		degenerate bool
	}{
		{name: "missing symbol", req: models.InvestmentRequest{InvestmentDate: today.AddDate(-1, 0, 0), Amount: 10}, wantMsg: msgMissingFields},
		{name: "missing date", req: models.InvestmentRequest{Symbol: "AAPL", Amount: 10}, wantMsg: msgMissingFields},
		{name: "missing amount", req: models.InvestmentRequest{Symbol: "AAPL", InvestmentDate: today.AddDate(-1, 0, 0)}, wantMsg: msgMissingFields},
		{name: "negative amount", req: models.InvestmentRequest{Symbol: "AAPL", InvestmentDate: today.AddDate(-1, 0, 0), Amount: -1}, wantMsg: "invalid amount: " + msgAmount},
		{name: "future date", req: models.InvestmentRequest{Symbol: "AAPL", InvestmentDate: today.AddDate(0, 0, 1), Amount: 10}, wantMsg: "invalid date: " + msgFutureDate},
		{name: "today", req: models.InvestmentRequest{Symbol: "AAPL", InvestmentDate: today, Amount: 10}, degenerate: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &scriptedProvider{histErr: errors.New("must not be called"), curErr: errors.New("must not be called")}
			_, err := newService(p, time.Second).Calculate(context.Background(), tc.req)
			if tc.degenerate {
				var de *models.DegenerateInputError
				if !errors.As(err, &de) {
					t.Fatalf("expected DegenerateInputError, got %v", err)
				}
				return
			}
			var ve *models.ValidationError
			if !errors.As(err, &ve) || err.Error() != tc.wantMsg {
				t.Fatalf("expected ValidationError %q, got %v", tc.wantMsg, err)
			}
		})
	}
}

func TestStockInfo(t *testing.T) {
	stamp := fixedNow.Add(-6 * time.Hour)
	p := &scriptedProvider{current: []models.Quote{{Time: stamp, Close: f(172.62)}}}
	svc := newService(p, time.Second)

	quote, err := svc.StockInfo(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if quote.Symbol != "AAPL" || quote.CurrentPrice != 172.62 || !quote.Timestamp.Equal(stamp) {
		t.Fatalf("unexpected quote %+v", quote)
	}

	var ve *models.ValidationError
	if _, err := svc.StockInfo(context.Background(), " "); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestNewInvestmentService_DefaultClockAndNoTimeout(t *testing.T) {
	p := &scriptedProvider{current: []models.Quote{{Time: time.Now().Add(-time.Hour), Close: f(1)}}}
	svc := NewInvestmentService(pricing.NewResolver(p), 0, WithClock(nil))
	if _, err := svc.StockInfo(context.Background(), "AAPL"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
