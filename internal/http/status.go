package http

import (
	"errors"
	"net/http"

	inErrors "github.com/latienda/backend/internal/errors"
)

// ErrorStatusCode maps domain errors onto HTTP status codes. Unknown errors
// are treated as internal failures so their details never leak to clients.
func ErrorStatusCode(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrEmptyAuth),
		errors.Is(err, inErrors.ErrTokenInvalid),
		errors.Is(err, inErrors.ErrTokenRevoked),
		errors.Is(err, inErrors.ErrPasswordMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, inErrors.ErrUserNotFound),
		errors.Is(err, inErrors.ErrNoActiveCart),
		errors.Is(err, inErrors.ErrCartNotFound),
		errors.Is(err, inErrors.ErrCartItemNotFound),
		errors.Is(err, inErrors.ErrProductNotFound),
		errors.Is(err, inErrors.ErrCategoryNotFound),
		errors.Is(err, inErrors.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrUserExists),
		errors.Is(err, inErrors.ErrActiveCartExists),
		errors.Is(err, inErrors.ErrEmptyCart),
		errors.Is(err, inErrors.ErrCartConflict),
		errors.Is(err, inErrors.ErrProductUnavailable),
		errors.Is(err, inErrors.ErrProductReferenced),
		errors.Is(err, inErrors.ErrCategoryReferenced),
		errors.Is(err, inErrors.ErrInvalidOrderState),
		errors.Is(err, inErrors.ErrOrderNumberCollision),
		inErrors.IsInsufficientStock(err):
		return http.StatusConflict
	case errors.Is(err, inErrors.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
