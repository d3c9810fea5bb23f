package request

import (
	"github.com/google/uuid"
)

type AddCartItem struct {
	ProductID uuid.UUID `validate:"required"     json:"product_id"`
	Quantity  int32     `validate:"required,gt=0" json:"quantity"`
}

type UpdateCartItem struct {
	Quantity int32 `validate:"required,gt=0" json:"quantity"`
}
