package dto

import (
	"math"
	"testing"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
)

func TestFormatFixed(t *testing.T) {
	cases := []struct {
		v      float64
		places int32
		want   string
	}{
		{1000.0 / 150.0, SharePlaces, "6.6667"},
		{1200.0000000000002, MoneyPlaces, "1200.00"},
		{20, MoneyPlaces, "20.00"},
		{0, MoneyPlaces, "0.00"},
		{-100, MoneyPlaces, "-100.00"},
		{2.345, MoneyPlaces, "2.35"},
		{math.Inf(1), MoneyPlaces, "Infinity"},
		{math.Inf(-1), MoneyPlaces, "-Infinity"},
		{math.NaN(), MoneyPlaces, "NaN"},
	}
	for _, tc := range cases {
		if got := FormatFixed(tc.v, tc.places); got != tc.want {
			t.Fatalf("FormatFixed(%v,%d)=%q, want %q", tc.v, tc.places, got, tc.want)
		}
	}
}

func TestFormatParse_RoundTripWithinRounding(t *testing.T) {
	values := []float64{0, 1.005, 6.666666666, 1234.56789, -98.7654321, 1e-5, 180.125, 1 / 3.0}
	for _, places := range []int32{MoneyPlaces, SharePlaces} {
		tol := 0.5*math.Pow10(-int(places)) + 1e-9
		for _, v := range values {
			s := FormatFixed(v, places)
			back, err := ParseFixed(s)
			if err != nil {
				t.Fatalf("ParseFixed(%q): %v", s, err)
			}
			if math.Abs(back-v) > tol {
				t.Fatalf("round trip of %v at %d places gave %v (delta %v > %v)", v, places, back, math.Abs(back-v), tol)
			}
			// formatting again must be stable
			if again := FormatFixed(back, places); again != s {
				t.Fatalf("re-format %q -> %q", s, again)
			}
		}
	}
}

func TestParseFixed_Invalid(t *testing.T) {
	if _, err := ParseFixed("12,50"); err == nil {
		t.Fatalf("expected parse error")
	}
	if v, err := ParseFixed("Infinity"); err != nil || !math.IsInf(v, 1) {
		t.Fatalf("Infinity not parsed: %v %v", v, err)
	}
}

func TestNewCalculateResponse(t *testing.T) {
	r := &models.InvestmentResult{
		Symbol:           "AAPL",
		InvestmentDate:   time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		OriginalAmount:   1000,
		HistoricalPrice:  150,
		CurrentPrice:     180,
		SharesPurchased:  1000.0 / 150.0,
		CurrentValue:     1000.0 / 150.0 * 180,
		TotalReturn:      1000.0/150.0*180 - 1000,
		ReturnPercentage: 20,
		AnnualizedReturn: 3.7137,
		YearsHeld:        5.0021,
	}
	got := NewCalculateResponse(r)
	want := CalculateResponse{
		Symbol:           "AAPL",
		InvestmentDate:   "2020-01-02",
		OriginalAmount:   1000,
		HistoricalPrice:  "150.00",
		CurrentPrice:     "180.00",
		SharesPurchased:  "6.6667",
		CurrentValue:     "1200.00",
		TotalReturn:      "200.00",
		ReturnPercentage: "20.00",
		AnnualizedReturn: "3.71",
		YearsHeld:        "5.00",
	}
	if got != want {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestNewStockInfoResponse(t *testing.T) {
	ts := time.Date(2025, 1, 2, 15, 4, 5, 0, time.FixedZone("X", 3600))
	got := NewStockInfoResponse(&models.StockQuote{Symbol: "MSFT", CurrentPrice: 412.345, Timestamp: ts})
	if got.Symbol != "MSFT" || got.CurrentPrice != "412.35" || got.Timestamp != "2025-01-02T14:04:05Z" {
		t.Fatalf("unexpected %+v", got)
	}
}
