package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/etchedheadplate/spimex-scraper/internal/domain/dto"
	"github.com/etchedheadplate/spimex-scraper/internal/logger"
)

// ErrorHandler turns errors attached to the Gin context into a JSON 500
// response after the handler chain has run. Handlers that already wrote a
// response are left alone.
var ErrorHandler gin.HandlerFunc = func(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	logger.L().Error().Err(err).Msg("unhandled request error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
}

// AbortWithError writes a standardized JSON error response with the given
// status and stops the handler chain.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		logger.L().Warn().Int("status", status).Err(err).Msg(message)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
