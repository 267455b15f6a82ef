package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Quote is one raw row returned by a market-data provider.
// Close is nil for rows the provider reports without a closing price
// (non-trading days inside the requested window).
type Quote struct {
	Time  time.Time
	Close *float64
}

// PricePoint is a daily closing price that is known to be present.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// PriceSeries is the ordered set of valid closes for one symbol over a queried range.
//
// Invariants:
//   - Points never contain a missing close.
//   - Points are sorted by Time ascending.
//   - Points may be empty when the provider has no data for the range.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// NewPriceSeries drops null closes and orders the remaining rows by time.
func NewPriceSeries(symbol string, quotes []Quote) PriceSeries {
	points := make([]PricePoint, 0, len(quotes))
	for _, q := range quotes {
		if q.Close == nil {
			continue
		}
		points = append(points, PricePoint{Time: q.Time, Close: *q.Close})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return PriceSeries{Symbol: symbol, Points: points}
}

// Empty reports whether the series holds no valid close.
func (s PriceSeries) Empty() bool { return len(s.Points) == 0 }

// First returns the earliest close in the series.
func (s PriceSeries) First() (PricePoint, bool) {
	if s.Empty() {
		return PricePoint{}, false
	}
	return s.Points[0], true
}

// Last returns the most recent close in the series.
func (s PriceSeries) Last() (PricePoint, bool) {
	if s.Empty() {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// PriceQuery asks a provider for daily closes of Symbol within [Start, End].
type PriceQuery struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// NormalizeSymbol trims and upper-cases a ticker. Tickers are case-insensitive.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NewPriceQuery builds a normalized query and checks its invariants.
func NewPriceQuery(symbol string, start, end time.Time) (PriceQuery, error) {
	q := PriceQuery{Symbol: NormalizeSymbol(symbol), Start: start, End: end}
	if err := q.Validate(); err != nil {
		return PriceQuery{}, err
	}
	return q, nil
}

// Validate enforces a non-empty symbol and Start <= End.
func (q PriceQuery) Validate() error {
	if q.Symbol == "" {
		return &ValidationError{Field: "symbol", Message: "symbol is required"}
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return &ValidationError{Field: "date", Message: "query range must have both bounds"}
	}
	if q.Start.After(q.End) {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("range start %s is after end %s", q.Start.Format(time.RFC3339), q.End.Format(time.RFC3339))}
	}
	return nil
}

// StockQuote is the latest known price of a symbol, served by the info endpoint.
type StockQuote struct {
	Symbol       string
	CurrentPrice float64
	Timestamp    time.Time
}
