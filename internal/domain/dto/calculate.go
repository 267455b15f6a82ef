package dto

import (
	"math"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
	"github.com/shopspring/decimal"
)

const (
	// MoneyPlaces is the number of decimals used for prices, amounts and percentages.
	MoneyPlaces = 2
	// SharePlaces is the number of decimals used for share counts.
	SharePlaces = 4
)

// CalculateRequest is the body of POST /api/v1/stocks/calculate.
type CalculateRequest struct {
	Symbol string  `json:"symbol" binding:"required" example:"AAPL"`
	Date   string  `json:"date" binding:"required,datetime=2006-01-02" example:"2020-01-02"`
	Amount float64 `json:"amount" binding:"required,gt=0" example:"1000"`
}

// CalculateResponse mirrors models.InvestmentResult with every metric rendered
// as a fixed-decimal string. OriginalAmount stays numeric.
type CalculateResponse struct {
	Symbol           string  `json:"symbol" example:"AAPL"`
	InvestmentDate   string  `json:"investmentDate" example:"2020-01-02"`
	OriginalAmount   float64 `json:"originalAmount" example:"1000"`
	HistoricalPrice  string  `json:"historicalPrice" example:"150.00"`
	CurrentPrice     string  `json:"currentPrice" example:"180.00"`
	SharesPurchased  string  `json:"sharesPurchased" example:"6.6667"`
	CurrentValue     string  `json:"currentValue" example:"1200.00"`
	TotalReturn      string  `json:"totalReturn" example:"200.00"`
	ReturnPercentage string  `json:"returnPercentage" example:"20.00"`
	AnnualizedReturn string  `json:"annualizedReturn" example:"3.71"`
	YearsHeld        string  `json:"yearsHeld" example:"5.00"`
}

// NewCalculateResponse renders a result for the wire. Only the final fields are rounded.
func NewCalculateResponse(r *models.InvestmentResult) CalculateResponse {
	return CalculateResponse{
		Symbol:           r.Symbol,
		InvestmentDate:   r.InvestmentDate.Format(models.DateLayout),
		OriginalAmount:   r.OriginalAmount,
		HistoricalPrice:  FormatFixed(r.HistoricalPrice, MoneyPlaces),
		CurrentPrice:     FormatFixed(r.CurrentPrice, MoneyPlaces),
		SharesPurchased:  FormatFixed(r.SharesPurchased, SharePlaces),
		CurrentValue:     FormatFixed(r.CurrentValue, MoneyPlaces),
		TotalReturn:      FormatFixed(r.TotalReturn, MoneyPlaces),
		ReturnPercentage: FormatFixed(r.ReturnPercentage, MoneyPlaces),
		AnnualizedReturn: FormatFixed(r.AnnualizedReturn, MoneyPlaces),
		YearsHeld:        FormatFixed(r.YearsHeld, MoneyPlaces),
	}
}

// StockInfoResponse is the body of GET /api/v1/stocks/info/:symbol.
type StockInfoResponse struct {
	Symbol       string `json:"symbol" example:"AAPL"`
	CurrentPrice string `json:"currentPrice" example:"180.00"`
	Timestamp    string `json:"timestamp" example:"2025-01-02T15:04:05Z"`
}

// NewStockInfoResponse renders a quote for the wire.
func NewStockInfoResponse(q *models.StockQuote) StockInfoResponse {
	return StockInfoResponse{
		Symbol:       q.Symbol,
		CurrentPrice: FormatFixed(q.CurrentPrice, MoneyPlaces),
		Timestamp:    q.Timestamp.UTC().Format(time.RFC3339),
	}
}

// FormatFixed rounds v half away from zero to the given number of decimals.
// Non-finite values are spelled the way a browser would print them.
func FormatFixed(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// ParseFixed reads back a value produced by FormatFixed.
func ParseFixed(s string) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ParseDate parses an ISO calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(models.DateLayout, s)
}
