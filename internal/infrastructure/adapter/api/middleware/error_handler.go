package middleware

import (
	"net/http"

	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// ErrorHandler recovers from panics and renders errors that handlers
// attached with c.Error but did not write themselves
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"error":      err,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": GetRequestID(c),
					"user_agent": c.Request.UserAgent(),
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Code:    domainerr.ErrorCode(domainerr.ErrInternalServer),
					Message: "Internal server error",
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := dto.HTTPStatus(err)
		message := ""
		if status == http.StatusInternalServerError {
			logger.Error("Request failed", map[string]any{
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"request_id": GetRequestID(c),
				"error":      err.Error(),
			})
			message = "Internal server error"
		}
		c.JSON(status, dto.NewErrorResponse(err, message))
	}
}
