package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"marketplace/core/apperr"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"NotFound", apperr.NotFound("listing %s not found", "x"), 404},
		{"InvalidState", apperr.InvalidState("Cannot update archived listing"), 400},
		{"Validation", apperr.Validation("quantity must be at least 1"), 400},
		{"PermissionDenied", apperr.PermissionDenied("not allowed"), 403},
		{"Plain", errors.New("db down"), 500},
		{"Wrapped", fmt.Errorf("outer: %w", apperr.NotFound("gone")), 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Status(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Invalid buy order", apperr.PublicMessage(apperr.InvalidState("Invalid buy order")))
	assert.Equal(t, "internal server error", apperr.PublicMessage(errors.New("dial tcp: refused")))

	wrapped := apperr.Wrap(apperr.KindValidation, errors.New("bad scheme"), "Invalid photo")
	assert.Equal(t, "Invalid photo", apperr.PublicMessage(wrapped))
	assert.Contains(t, wrapped.Error(), "bad scheme")
}

func TestIs(t *testing.T) {
	assert.True(t, apperr.Is(apperr.Validation("x"), apperr.KindValidation))
	assert.False(t, apperr.Is(nil, apperr.KindInternal))
	assert.False(t, apperr.Is(apperr.Validation("x"), apperr.KindNotFound))
}
