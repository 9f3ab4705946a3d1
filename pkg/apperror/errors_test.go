package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("post not found: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("invalid credentials: %w", ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("no permission: %w", ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("title is required: %w", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("username taken: %w", ErrConflict), http.StatusConflict},
		{fmt.Errorf("slow down: %w", ErrRateLimitExceeded), http.StatusTooManyRequests},
		{errors.New("database exploded"), http.StatusInternalServerError},
		{New(http.StatusTeapot, "custom", nil), http.StatusTeapot},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, MapErrorToStatus(tt.err), "error: %v", tt.err)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	wrapped := New(http.StatusBadGateway, "upstream failed", ErrInternal)
	assert.True(t, errors.Is(wrapped, ErrInternal))
	assert.Equal(t, http.StatusBadGateway, MapErrorToStatus(wrapped))
}
