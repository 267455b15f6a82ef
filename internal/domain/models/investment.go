package models

import "time"

// DateLayout is the ISO calendar date accepted for investment dates.
const DateLayout = "2006-01-02"

// InvestmentRequest is the sole external input of a return calculation.
// It is treated as immutable once accepted.
//
// Fields:
//   - Symbol: ticker, normalized to upper case.
//   - InvestmentDate: calendar date at midnight UTC.
//   - Amount: dollars invested, strictly positive.
type InvestmentRequest struct {
	Symbol         string
	InvestmentDate time.Time
	Amount         float64
}

// InvestmentResult holds every metric derived for one request at full float precision.
// Rounding to fixed decimals is a presentation concern handled by the dto package.
//
// The result is recomputed for each request and never cached or persisted.
type InvestmentResult struct {
	Symbol           string
	InvestmentDate   time.Time
	OriginalAmount   float64
	HistoricalPrice  float64
	CurrentPrice     float64
	SharesPurchased  float64
	CurrentValue     float64
	TotalReturn      float64
	ReturnPercentage float64
	AnnualizedReturn float64 // percent
	YearsHeld        float64
}
