package response

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/huxiangculture/platform/internal/dto"
	"github.com/huxiangculture/platform/pkg/apperror"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uint, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return 0, apperror.ErrUnauthorized
	}

	userID, err := strconv.ParseUint(userIDStr.(string), 10, 64)
	if err != nil {
		return 0, apperror.ErrUnauthorized
	}

	return uint(userID), nil
}

// GetOptionalUserID returns the caller's user ID if a valid token was
// presented, or nil on anonymous requests.
func GetOptionalUserID(c *gin.Context) *uint {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// Error writes a standardized error response
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"success": false, "message": err.Error()})
}

// OK writes a success envelope with a data payload
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes a 201 envelope with a message and data payload
func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

// Message writes a success envelope carrying only a message
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// Paginated writes a success envelope with data and pagination metadata
func Paginated(c *gin.Context, data any, meta dto.Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": meta})
}
