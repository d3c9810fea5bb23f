package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	inErrors "github.com/latienda/backend/internal/errors"
)

func TestErrorStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"revoked token", inErrors.ErrTokenRevoked, http.StatusUnauthorized},
		{"password mismatch", inErrors.ErrPasswordMismatch, http.StatusUnauthorized},
		{"order not found", inErrors.ErrOrderNotFound, http.StatusNotFound},
		{"no active cart", inErrors.ErrNoActiveCart, http.StatusNotFound},
		{"empty cart", inErrors.ErrEmptyCart, http.StatusConflict},
		{"active cart exists", inErrors.ErrActiveCartExists, http.StatusConflict},
		{"invalid order state", inErrors.ErrInvalidOrderState, http.StatusConflict},
		{
			"insufficient stock",
			&inErrors.InsufficientStockError{
				ProductID:   uuid.New(),
				ProductName: "candle",
				Available:   1,
				Requested:   3,
			},
			http.StatusConflict,
		},
		{"payment declined", inErrors.ErrPaymentDeclined, http.StatusPaymentRequired},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped sentinel",
			fmt.Errorf("failed finding order with error=%w", inErrors.ErrOrderNotFound),
			http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorStatusCode(tt.err))
		})
	}
}
