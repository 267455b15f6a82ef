package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
)

const eps = 1e-9

var (
	invested = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	// exactly two Julian years later
	evaluated = invested.Add(time.Duration(2*DaysPerYear*24) * time.Hour)
)

func request(amount float64) models.InvestmentRequest {
	return models.InvestmentRequest{Symbol: "AAPL", InvestmentDate: invested, Amount: amount}
}

func near(a, b float64) bool { return math.Abs(a-b) <= eps*math.Max(1, math.Abs(b)) }

func TestCompute_Scenarios(t *testing.T) {
	cases := []struct {
		name                                 string
		amount, historical, current          float64
		shares, value, ret, pct, annualized float64
	}{
		{
			name: "AAPL gain", amount: 1000, historical: 150, current: 180,
			shares: 1000.0 / 150, value: 1200, ret: 200, pct: 20, annualized: (math.Sqrt(1.2) - 1) * 100,
		},
		{
			name: "flat price", amount: 1000, historical: 50, current: 50,
			shares: 20, value: 1000, ret: 0, pct: 0, annualized: 0,
		},
		{
			name: "total loss", amount: 250, historical: 10, current: 0,
			shares: 25, value: 0, ret: -250, pct: -100, annualized: -100,
		},
		{
			name: "doubling", amount: 500, historical: 25, current: 50,
			shares: 20, value: 1000, ret: 500, pct: 100, annualized: (math.Sqrt2 - 1) * 100,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Compute(request(tc.amount), tc.historical, tc.current, evaluated)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			checks := []struct {
				field     string
				got, want float64
			}{
				{"shares", res.SharesPurchased, tc.shares},
				{"value", res.CurrentValue, tc.value},
				{"totalReturn", res.TotalReturn, tc.ret},
				{"returnPercentage", res.ReturnPercentage, tc.pct},
				{"annualized", res.AnnualizedReturn, tc.annualized},
				{"yearsHeld", res.YearsHeld, 2},
			}
			for _, c := range checks {
				if !near(c.got, c.want) {
					t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
				}
			}
			if res.Symbol != "AAPL" || !res.InvestmentDate.Equal(invested) || res.OriginalAmount != tc.amount {
				t.Errorf("request fields not echoed: %+v", res)
			}
		})
	}
}

func TestCompute_Properties(t *testing.T) {
	amounts := []float64{0.01, 1, 999.99, 1e6}
	prices := []float64{0.0001, 1, 42.5, 3000}
	for _, amount := range amounts {
		for _, hp := range prices {
			for _, cp := range append([]float64{0}, prices...) {
				res, err := Compute(request(amount), hp, cp, evaluated)
				if err != nil {
					t.Fatalf("Compute(%v,%v,%v): %v", amount, hp, cp, err)
				}
				if !near(res.SharesPurchased*hp, amount) {
					t.Fatalf("shares*historical=%v, want %v", res.SharesPurchased*hp, amount)
				}
				if res.TotalReturn != res.CurrentValue-amount {
					t.Fatalf("totalReturn identity broken: %v != %v-%v", res.TotalReturn, res.CurrentValue, amount)
				}
				if cp == hp && (res.TotalReturn != 0 || res.ReturnPercentage != 0) {
					t.Fatalf("equal prices must give zero return, got %v / %v", res.TotalReturn, res.ReturnPercentage)
				}
				if cp == 0 && (res.CurrentValue != 0 || res.TotalReturn != -amount || res.ReturnPercentage != -100 || res.AnnualizedReturn != -100) {
					t.Fatalf("zero price must be a total loss: %+v", res)
				}
			}
		}
	}
}

func TestCompute_ZeroPriceAnnualizedIndependentOfYears(t *testing.T) {
	for _, d := range []time.Duration{time.Hour, 24 * time.Hour, 10 * 365 * 24 * time.Hour} {
		res, err := Compute(request(100), 10, 0, invested.Add(d))
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if res.AnnualizedReturn != -100 {
			t.Fatalf("held %v: annualized=%v, want -100", d, res.AnnualizedReturn)
		}
	}
}

func TestCompute_ReturnPercentageMonotonic(t *testing.T) {
	prev := math.Inf(-1)
	for cp := 0.0; cp <= 400; cp += 0.5 {
		res, err := Compute(request(1000), 150, cp, evaluated)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if !(res.ReturnPercentage > prev) {
			t.Fatalf("returnPercentage not strictly increasing at %v: %v <= %v", cp, res.ReturnPercentage, prev)
		}
		prev = res.ReturnPercentage
	}
}

func TestCompute_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name       string
		req        models.InvestmentRequest
		hp, cp     float64
		eval       time.Time
		degenerate bool
	}{
		{name: "same instant", req: request(1000), hp: 150, cp: 180, eval: invested, degenerate: true},
		{name: "future investment", req: request(1000), hp: 150, cp: 180, eval: invested.Add(-time.Hour), degenerate: true},
		{name: "zero historical", req: request(1000), hp: 0, cp: 180, eval: evaluated, degenerate: true},
		{name: "negative historical", req: request(1000), hp: -1, cp: 180, eval: evaluated, degenerate: true},
		{name: "zero amount", req: request(0), hp: 150, cp: 180, eval: evaluated},
		{name: "negative amount", req: request(-5), hp: 150, cp: 180, eval: evaluated},
		{name: "negative current", req: request(1000), hp: 150, cp: -1, eval: evaluated},
		{name: "nan amount", req: request(math.NaN()), hp: 150, cp: 180, eval: evaluated},
		{name: "inf current", req: request(1000), hp: 150, cp: math.Inf(1), eval: evaluated},
		{name: "zero evaluation time", req: request(1000), hp: 150, cp: 180, eval: time.Time{}},
		{name: "annualized overflow", req: request(1000), hp: 1, cp: 100, eval: invested.Add(time.Hour), degenerate: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Compute(tc.req, tc.hp, tc.cp, tc.eval)
			if res != nil {
				t.Fatalf("expected no result, got %+v", res)
			}
			var de *models.DegenerateInputError
			var ve *models.ValidationError
			if tc.degenerate && !errors.As(err, &de) {
				t.Fatalf("expected DegenerateInputError, got %T %v", err, err)
			}
			if !tc.degenerate && !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T %v", err, err)
			}
		})
	}
}

func TestYearsHeld(t *testing.T) {
	cases := []struct {
		name     string
		from, to time.Time
		want     float64
	}{
		{name: "one calendar year", from: invested, to: invested.AddDate(0, 0, 365), want: 365 / DaysPerYear},
		{name: "half day", from: invested, to: invested.Add(12 * time.Hour), want: 0.5 / DaysPerYear},
		{
			name: "longer than a time.Duration",
			from: time.Date(1600, 1, 3, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			// 154935 days between the two dates
			want: 154935 / DaysPerYear,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := YearsHeld(tc.from, tc.to); !near(got, tc.want) {
				t.Fatalf("YearsHeld=%v, want %v", got, tc.want)
			}
		})
	}
}
