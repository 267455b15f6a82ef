package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/stockreturn/internal/domain/dto"
	"github.com/guttosm/stockreturn/internal/domain/models"
	"github.com/guttosm/stockreturn/internal/middleware"
	"github.com/guttosm/stockreturn/internal/service"
)

const (
	msgCalculationFailed = "Unable to calculate investment returns. Please check the stock symbol and date."
	msgUpstream          = "Market data provider is unavailable. Please try again later."
	msgDegenerate        = "Investment date must be before today"
	msgSymbolNotFound    = "Stock symbol not found or invalid"
)

// CalculationCounter counts calculation outcomes. *metrics.Recorder implements it.
type CalculationCounter interface {
	CountCalculation(outcome string)
}

// Handler provides HTTP handlers for the stock endpoints.
//
// Responsibilities:
//   - Bind and validate the JSON body
//   - Delegate to the investment service
//   - Map typed domain errors to status codes and user-facing messages
//   - Render results as fixed-decimal response DTOs
type Handler struct {
	svc     service.InvestmentService
	counter CalculationCounter
}

// NewHandler constructs a new Handler instance. counter may be nil.
func NewHandler(svc service.InvestmentService, counter CalculationCounter) *Handler {
	return &Handler{svc: svc, counter: counter}
}

// Calculate handles POST /api/v1/stocks/calculate requests.
//
// Responses:
//   - 200 OK: CalculateResponse with every metric as a fixed-decimal string.
//   - 400 Bad Request: missing fields, non-positive amount, bad or future date, or today's date.
//   - 404 Not Found: no price data for the symbol and date.
//   - 500 Internal Server Error: market data provider unavailable or timed out.
//
// Calculate godoc
// @Summary      Calculate investment return
// @Description  Computes shares purchased, current value, total, percentage and annualized return of a past investment
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CalculateRequest   true  "Investment"
// @Success      200      {object}  dto.CalculateResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse      "Bad Request"
// @Failure      404      {object}  dto.ErrorResponse      "Not Found"
// @Failure      500      {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/stocks/calculate [post]
func (h *Handler) Calculate(c *gin.Context) {
	// ─── Bind and validate body ───────────────────────────────
	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.count("invalid")
		middleware.AbortWithError(c, http.StatusBadRequest, bindingMessage(err), err)
		return
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		h.count("invalid")
		middleware.AbortWithError(c, http.StatusBadRequest, msgInvalidDate, err)
		return
	}

	// ─── Query service (with request context) ─────────────────
	res, err := h.svc.Calculate(c.Request.Context(), models.InvestmentRequest{
		Symbol:         req.Symbol,
		InvestmentDate: date,
		Amount:         req.Amount,
	})
	if err != nil {
		status, msg := statusFor(err)
		h.count(outcomeFor(err))
		middleware.AbortWithError(c, status, msg, err)
		return
	}

	h.count("ok")
	c.JSON(http.StatusOK, dto.NewCalculateResponse(res))
}

// StockInfo handles GET /api/v1/stocks/info/:symbol requests.
//
// Responses:
//   - 200 OK: latest close of the symbol.
//   - 404 Not Found: unknown symbol or no recent close.
//   - 500 Internal Server Error: market data provider unavailable or timed out.
//
// StockInfo godoc
// @Summary      Get current stock price
// @Description  Returns the most recent close of a symbol; used by the form to validate tickers
// @Tags         stocks
// @Produce      json
// @Param        symbol  path      string  true  "Stock ticker" example(AAPL)
// @Success      200     {object}  dto.StockInfoResponse  "Success"
// @Failure      404     {object}  dto.ErrorResponse      "Not Found"
// @Failure      500     {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/stocks/info/{symbol} [get]
func (h *Handler) StockInfo(c *gin.Context) {
	quote, err := h.svc.StockInfo(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		var upstream *models.UpstreamUnavailableError
		if errors.As(err, &upstream) {
			middleware.AbortWithError(c, http.StatusInternalServerError, msgUpstream, err)
			return
		}
		middleware.AbortWithError(c, http.StatusNotFound, msgSymbolNotFound, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStockInfoResponse(quote))
}

func (h *Handler) count(outcome string) {
	if h.counter != nil {
		h.counter.CountCalculation(outcome)
	}
}

// statusFor maps a service error to its HTTP status and user-facing message.
func statusFor(err error) (int, string) {
	var (
		validation *models.ValidationError
		degenerate *models.DegenerateInputError
		noData     *models.NoDataError
		upstream   *models.UpstreamUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &degenerate):
		return http.StatusBadRequest, msgDegenerate
	case errors.As(err, &noData):
		return http.StatusNotFound, msgCalculationFailed
	case errors.As(err, &upstream):
		return http.StatusInternalServerError, msgUpstream
	default:
		return http.StatusInternalServerError, msgCalculationFailed
	}
}

func outcomeFor(err error) string {
	switch status, _ := statusFor(err); status {
	case http.StatusBadRequest:
		return "invalid"
	case http.StatusNotFound:
		return "no_data"
	default:
		return "unavailable"
	}
}
