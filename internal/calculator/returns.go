// Package calculator derives investment metrics from two prices and two instants.
// It performs no I/O and keeps full float64 precision; rounding is left to the caller.
package calculator

import (
	"fmt"
	"math"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
)

// DaysPerYear converts elapsed days to years, leap years included.
const DaysPerYear = 365.25

// Compute derives an InvestmentResult.
//
// Errors:
//   - *models.ValidationError: amount <= 0, negative current price, or a non-finite input.
//   - *models.DegenerateInputError: historical price <= 0, or an investment date that is
//     not strictly before evaluationTime, or a holding period so short that the
//     annualized return is not finite.
//
// A current price of zero is valid and yields an annualized return of -100%.
func Compute(req models.InvestmentRequest, historicalPrice, currentPrice float64, evaluationTime time.Time) (*models.InvestmentResult, error) {
	if err := checkInputs(req, historicalPrice, currentPrice, evaluationTime); err != nil {
		return nil, err
	}

	// growth is exactly 1 when both prices are equal.
	growth := currentPrice / historicalPrice
	shares := req.Amount / historicalPrice
	value := req.Amount * growth
	totalReturn := value - req.Amount
	years := YearsHeld(req.InvestmentDate, evaluationTime)
	annualized := (math.Pow(growth, 1/years) - 1) * 100
	if math.IsInf(annualized, 0) || math.IsNaN(annualized) {
		return nil, &models.DegenerateInputError{Reason: fmt.Sprintf(
			"annualized return overflows for a holding period of %.6f years", years,
		)}
	}

	return &models.InvestmentResult{
		Symbol:           req.Symbol,
		InvestmentDate:   req.InvestmentDate,
		OriginalAmount:   req.Amount,
		HistoricalPrice:  historicalPrice,
		CurrentPrice:     currentPrice,
		SharesPurchased:  shares,
		CurrentValue:     value,
		TotalReturn:      totalReturn,
		ReturnPercentage: totalReturn / req.Amount * 100,
		AnnualizedReturn: annualized,
		YearsHeld:        years,
	}, nil
}

const secondsPerDay = 24 * 60 * 60

// YearsHeld is the elapsed time between from and to in years of DaysPerYear days.
// It works on Unix seconds, so spans beyond time.Duration's ~292 years stay exact.
func YearsHeld(from, to time.Time) float64 {
	seconds := float64(to.Unix()-from.Unix()) + float64(to.Nanosecond()-from.Nanosecond())/1e9
	return seconds / secondsPerDay / DaysPerYear
}

func checkInputs(req models.InvestmentRequest, historicalPrice, currentPrice float64, evaluationTime time.Time) error {
	for _, v := range []struct {
		field string
		value float64
	}{
		{"amount", req.Amount},
		{"historicalPrice", historicalPrice},
		{"currentPrice", currentPrice},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return &models.ValidationError{Field: v.field, Message: fmt.Sprintf("must be a finite number, got %v", v.value)}
		}
	}
	if req.Amount <= 0 {
		return &models.ValidationError{Field: "amount", Message: "Investment amount must be greater than 0"}
	}
	if currentPrice < 0 {
		return &models.ValidationError{Field: "currentPrice", Message: "must not be negative"}
	}
	if historicalPrice <= 0 {
		return &models.DegenerateInputError{Reason: fmt.Sprintf("historical price %v is not positive", historicalPrice)}
	}
	if req.InvestmentDate.IsZero() || evaluationTime.IsZero() {
		return &models.ValidationError{Field: "date", Message: "investment date and evaluation time are required"}
	}
	if !req.InvestmentDate.Before(evaluationTime) {
		return &models.DegenerateInputError{Reason: fmt.Sprintf(
			"investment date %s is not before evaluation time %s",
			req.InvestmentDate.Format(time.RFC3339), evaluationTime.Format(time.RFC3339),
		)}
	}
	return nil
}
