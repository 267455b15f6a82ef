package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/stockreturn/internal/domain/dto"
)

// AbortWithError stops the chain and writes the standard error envelope.
// err, when non-nil, is also attached to the context so RequestLogger can report it.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}

// ErrorHandler renders errors attached with c.Error when the handler wrote nothing.
// A dto.ErrorResponse keeps its own message; anything else becomes a 500.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	last := c.Errors.Last().Err
	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	if resp, ok := last.(dto.ErrorResponse); ok {
		c.JSON(status, resp)
		return
	}
	c.JSON(status, dto.NewErrorResponse("Internal server error", last))
}
