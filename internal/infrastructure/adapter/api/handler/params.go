package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive numeric path parameter. An unparseable id is
// reported as notFound so callers cannot distinguish it from a missing row.
func parseIDParam(c *gin.Context, name string, notFound error) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, notFound
	}
	return id, nil
}

// abortWithError hands err to the ErrorHandler middleware for rendering
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
