package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Password  string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type Product struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	Stock       int32
	IsActive    bool
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	IsActive  bool
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
	AddedAt   pgtype.Timestamptz
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	OrderNumber     string
	Status          OrderStatus
	Total           pgtype.Numeric
	ShippingAddress string
	PaymentNote     string
	Notes           string
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   pgtype.Numeric
	Subtotal    pgtype.Numeric
	CreatedAt   pgtype.Timestamptz
}

// FindActiveCartByUserIdRow carries the cart header plus its items joined with a
// snapshot of each referenced product, aggregated into a JSON document.
type FindActiveCartByUserIdRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	IsActive  bool
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
	CartItems []byte
}

type FindOrderByIdRow struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	OrderNumber     string
	Status          OrderStatus
	Total           pgtype.Numeric
	ShippingAddress string
	PaymentNote     string
	Notes           string
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
	OrderItems      []byte
}
