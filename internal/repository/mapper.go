package repository

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	cartResponse "github.com/latienda/backend/cart/pkg/response"
	categoryResponse "github.com/latienda/backend/category/pkg/response"
	orderResponse "github.com/latienda/backend/order/pkg/response"
	productResponse "github.com/latienda/backend/product/pkg/response"
	userResponse "github.com/latienda/backend/user/pkg/response"
)

func (u User) Response() userResponse.User {
	return userResponse.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Time,
		UpdatedAt: u.UpdatedAt.Time,
	}
}

func (c Category) Response() categoryResponse.Category {
	return categoryResponse.Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.Time,
		UpdatedAt:   c.UpdatedAt.Time,
	}
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       DecimalFromNumeric(p.Price),
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func (f FindActiveCartByUserIdRow) Response() (cartResponse.Cart, error) {
	cartItems := []cartResponse.CartItem{}
	err := json.Unmarshal(f.CartItems, &cartItems)
	if err != nil {
		return cartResponse.Cart{}, err
	}
	total := decimal.Zero
	for i, item := range cartItems {
		subtotal := item.ProductPrice.Mul(decimal.NewFromInt32(item.Quantity))
		cartItems[i].Subtotal = subtotal
		total = total.Add(subtotal)
	}
	return cartResponse.Cart{
		ID:        f.ID,
		UserID:    f.UserID,
		IsActive:  f.IsActive,
		CartItems: cartItems,
		Total:     total,
		CreatedAt: f.CreatedAt.Time,
		UpdatedAt: f.UpdatedAt.Time,
	}, nil
}

func (o Order) Response() orderResponse.Order {
	return orderResponse.Order{
		ID:              o.ID,
		UserID:          o.UserID,
		OrderNumber:     o.OrderNumber,
		Status:          string(o.Status),
		Total:           DecimalFromNumeric(o.Total),
		ShippingAddress: o.ShippingAddress,
		PaymentNote:     o.PaymentNote,
		Notes:           o.Notes,
		OrderItems:      []orderResponse.OrderItem{},
		CreatedAt:       o.CreatedAt.Time,
		UpdatedAt:       o.UpdatedAt.Time,
	}
}

func (f FindOrderByIdRow) Response() (orderResponse.Order, error) {
	orderItems := []orderResponse.OrderItem{}
	err := json.Unmarshal(f.OrderItems, &orderItems)
	if err != nil {
		return orderResponse.Order{}, err
	}
	return orderResponse.Order{
		ID:              f.ID,
		UserID:          f.UserID,
		OrderNumber:     f.OrderNumber,
		Status:          string(f.Status),
		Total:           DecimalFromNumeric(f.Total),
		ShippingAddress: f.ShippingAddress,
		PaymentNote:     f.PaymentNote,
		Notes:           f.Notes,
		OrderItems:      orderItems,
		CreatedAt:       f.CreatedAt.Time,
		UpdatedAt:       f.UpdatedAt.Time,
	}, nil
}
