package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/huxiangculture/platform/pkg/apperror"
)

// idParam parses a numeric path parameter. A non-numeric id can never match a
// stored row, so it reports not-found rather than a validation error.
func idParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s: %w", name, apperror.ErrNotFound)
	}
	return uint(id), nil
}
