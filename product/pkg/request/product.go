package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProduct struct {
	CategoryID  uuid.UUID       `validate:"required"        json:"category_id"`
	Name        string          `validate:"required,min=2"  json:"name"`
	Description string          `validate:"max=1000"        json:"description"`
	Price       decimal.Decimal `validate:"required"        json:"price"`
	Stock       int32           `validate:"gte=0"           json:"stock"`
}

type UpdateProduct struct {
	CategoryID  uuid.UUID       `validate:"required"        json:"category_id"`
	Name        string          `validate:"required,min=2"  json:"name"`
	Description string          `validate:"max=1000"        json:"description"`
	Price       decimal.Decimal `validate:"required"        json:"price"`
	Stock       int32           `validate:"gte=0"           json:"stock"`
	IsActive    bool            `json:"is_active"`
}

type FindProducts struct {
	Name       string `json:"name"`
	MinPrice   string `json:"min_price"`
	MaxPrice   string `json:"max_price"`
	ActiveOnly bool   `json:"active_only"`
	Limit      int32  `validate:"gte=0,lte=100" json:"limit"`
	Offset     int32  `validate:"gte=0"         json:"offset"`
}
