package service

import (
	"context"
	"math"
	"time"

	"github.com/guttosm/stockreturn/internal/calculator"
	"github.com/guttosm/stockreturn/internal/domain/models"
	"github.com/guttosm/stockreturn/internal/logger"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	msgMissingFields = "Missing required fields: symbol, date, and amount are required"
	msgAmount        = "Investment amount must be greater than 0"
	msgFutureDate    = "Investment date cannot be in the future"
)

// InvestmentService defines business logic for investment-return calculations.
type InvestmentService interface {
	Calculate(ctx context.Context, req models.InvestmentRequest) (*models.InvestmentResult, error)
	StockInfo(ctx context.Context, symbol string) (*models.StockQuote, error)
}

// PriceResolver is the subset of *pricing.Resolver used by the service.
type PriceResolver interface {
	HistoricalPrice(ctx context.Context, symbol string, date time.Time) (float64, error)
	CurrentPrice(ctx context.Context, symbol string, now time.Time) (float64, error)
	CurrentQuote(ctx context.Context, symbol string, now time.Time) (*models.StockQuote, error)
}

// Option customizes an investment service.
type Option func(*investmentService)

// WithClock replaces time.Now as the source of the evaluation time.
func WithClock(now func() time.Time) Option {
	return func(s *investmentService) {
		if now != nil {
			s.now = now
		}
	}
}

type investmentService struct {
	resolver PriceResolver
	timeout  time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewInvestmentService builds the service. timeout bounds both price lookups of a
// request together; zero leaves the caller's context untouched.
func NewInvestmentService(resolver PriceResolver, timeout time.Duration, opts ...Option) InvestmentService {
	s := &investmentService{
		resolver: resolver,
		timeout:  timeout,
		now:      time.Now,
		log:      logger.Component("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate validates req against the evaluation time, resolves the historical and
// current prices concurrently and derives the result. Either both prices resolve
// and a full result is returned, or the first failure is returned unchanged.
func (s *investmentService) Calculate(ctx context.Context, req models.InvestmentRequest) (*models.InvestmentResult, error) {
	now := s.now().UTC()
	accepted, err := accept(req, now)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var historical, current float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		historical, err = s.resolver.HistoricalPrice(gctx, accepted.Symbol, accepted.InvestmentDate)
		return err
	})
	g.Go(func() error {
		var err error
		current, err = s.resolver.CurrentPrice(gctx, accepted.Symbol, now)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Debug().Err(err).Str("symbol", accepted.Symbol).Msg("price lookup failed")
		return nil, err
	}

	res, err := calculator.Compute(accepted, historical, current, now)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("symbol", res.Symbol).
		Float64("historical_price", historical).
		Float64("current_price", current).
		Float64("years_held", res.YearsHeld).
		Msg("investment return computed")
	return res, nil
}

// StockInfo returns the most recent close of symbol.
func (s *investmentService) StockInfo(ctx context.Context, symbol string) (*models.StockQuote, error) {
	sym := models.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, &models.ValidationError{Field: "symbol", Message: "symbol is required"}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.resolver.CurrentQuote(ctx, sym, s.now().UTC())
}

func (s *investmentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// accept normalizes req and checks it against now. The investment date is reduced
// to its UTC calendar day; a date after today is a ValidationError and today itself
// is a DegenerateInputError because no time has elapsed to annualize over.
func accept(req models.InvestmentRequest, now time.Time) (models.InvestmentRequest, error) {
	sym := models.NormalizeSymbol(req.Symbol)
	if sym == "" || req.InvestmentDate.IsZero() || req.Amount == 0 {
		return req, &models.ValidationError{Message: msgMissingFields}
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount < 0 {
		return req, &models.ValidationError{Field: "amount", Message: msgAmount}
	}

	date := dayOf(req.InvestmentDate)
	today := dayOf(now)
	switch {
	case date.After(today):
		return req, &models.ValidationError{Field: "date", Message: msgFutureDate}
	case date.Equal(today):
		return req, &models.DegenerateInputError{Reason: "investment date " + date.Format(models.DateLayout) + " is today; no time has elapsed"}
	}

	return models.InvestmentRequest{Symbol: sym, InvestmentDate: date, Amount: req.Amount}, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

