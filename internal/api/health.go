package api

import "github.com/gin-gonic/gin"

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe (depends on the price source's backing store, if any).
type HealthHandler struct {
	provider string       // Name of the configured market data provider
	ping     func() error // Checks the backing store; nil when there is none
}

// NewHealthHandler constructs a HealthHandler.
//
// Parameters:
//   - provider (string): reported in both probes.
//   - ping (func() error): typically db.Ping for the postgres provider; nil for
//     the Yahoo provider, whose reachability is only known per request.
func NewHealthHandler(provider string, ping func() error) *HealthHandler {
	return &HealthHandler{provider: provider, ping: ping}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: Returns 200 OK if ping succeeds, 503 otherwise.
func (h *HealthHandler) Register(r *gin.Engine) {
	// Liveness probe (just checks if the service is up)
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "provider": h.provider})
	})

	// Readiness probe (checks the backing store)
	// @Summary      Readiness probe
	// @Description  Returns ready if the price source's backing store is reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Failure      503  {object}  map[string]string
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		if h.ping != nil {
			if err := h.ping(); err != nil {
				c.JSON(503, gin.H{"status": "degraded", "provider": h.provider, "error": err.Error()})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ready", "provider": h.provider})
	})
}
