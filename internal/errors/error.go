package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEmptyAuth        = errors.New("missing authorization")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrPasswordMismatch = errors.New("password mismatch")

	ErrNoActiveCart     = errors.New("user has no active cart")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrActiveCartExists = errors.New("user already has an active cart")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartConflict     = errors.New("cart changed during checkout")

	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not active")
	ErrProductReferenced  = errors.New("product is referenced by cart or order items")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryReferenced = errors.New("category still has products")

	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNumberCollision = errors.New("order number already exists")
	ErrInvalidOrderState    = errors.New("invalid order state transition")

	ErrPaymentDeclined = errors.New("payment declined")

	ErrStorageFailure = errors.New("storage failure")
)

// InsufficientStockError reports which product lacked stock and by how much,
// so the caller can surface an actionable message.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %q: available=%d requested=%d",
		e.ProductName,
		e.Available,
		e.Requested,
	)
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
