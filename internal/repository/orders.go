package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertOrder = `
INSERT INTO orders (user_id, order_number, status, total, shipping_address, payment_note, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, order_number, status, total, shipping_address, payment_note, notes, created_at, updated_at
`

type InsertOrderParams struct {
	UserID          uuid.UUID
	OrderNumber     string
	Status          OrderStatus
	Total           pgtype.Numeric
	ShippingAddress string
	PaymentNote     string
	Notes           string
}

func (q *Queries) InsertOrder(c context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(
		c,
		insertOrder,
		arg.UserID,
		arg.OrderNumber,
		arg.Status,
		arg.Total,
		arg.ShippingAddress,
		arg.PaymentNote,
		arg.Notes,
	)
	return scanOrder(row)
}

const insertOrderItem = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5, $6)
`

type InsertOrderItemParams struct {
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   pgtype.Numeric
	Subtotal    pgtype.Numeric
}

func (q *Queries) InsertOrderItems(c context.Context, args []InsertOrderItemParams) (int64, error) {
	var inserted int64
	for _, arg := range args {
		tag, err := q.db.Exec(
			c,
			insertOrderItem,
			arg.OrderID,
			arg.ProductID,
			arg.ProductName,
			arg.Quantity,
			arg.UnitPrice,
			arg.Subtotal,
		)
		if err != nil {
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

const findOrderById = `
SELECT o.id,
       o.user_id,
       o.order_number,
       o.status,
       o.total,
       o.shipping_address,
       o.payment_note,
       o.notes,
       o.created_at,
       o.updated_at,
       COALESCE(
           json_agg(
               json_build_object(
                   'id', oi.id,
                   'product_id', oi.product_id,
                   'product_name', oi.product_name,
                   'quantity', oi.quantity,
                   'unit_price', oi.unit_price,
                   'subtotal', oi.subtotal
               )
               ORDER BY oi.created_at
           ) FILTER (WHERE oi.id IS NOT NULL),
           '[]'
       ) AS order_items
FROM orders o
LEFT JOIN order_items oi ON oi.order_id = o.id
WHERE o.id = $1
GROUP BY o.id
`

func (q *Queries) FindOrderById(c context.Context, id uuid.UUID) (FindOrderByIdRow, error) {
	row := q.db.QueryRow(c, findOrderById, id)
	var r FindOrderByIdRow
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.OrderNumber,
		&r.Status,
		&r.Total,
		&r.ShippingAddress,
		&r.PaymentNote,
		&r.Notes,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.OrderItems,
	)
	return r, err
}

const findOrderByIdForUpdate = `
SELECT id, user_id, order_number, status, total, shipping_address, payment_note, notes, created_at, updated_at
FROM orders
WHERE id = $1
FOR UPDATE
`

// FindOrderByIdForUpdate locks the order row so concurrent status transitions
// serialize instead of both reading the same prior state.
func (q *Queries) FindOrderByIdForUpdate(c context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(c, findOrderByIdForUpdate, id))
}

const findOrderItemsByOrderId = `
SELECT id, order_id, product_id, product_name, quantity, unit_price, subtotal, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at
`

func (q *Queries) FindOrderItemsByOrderId(c context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(c, findOrderItemsByOrderId, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const findOrders = `
SELECT id, user_id, order_number, status, total, shipping_address, payment_note, notes, created_at, updated_at
FROM orders
WHERE user_id = $1
  AND ($2::text = '' OR status = $2::order_status)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

type FindOrdersParams struct {
	UserID uuid.UUID
	Status string
	Limit  int32
	Offset int32
}

func (q *Queries) FindOrders(c context.Context, arg FindOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(c, findOrders, arg.UserID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING id, user_id, order_number, status, total, shipping_address, payment_note, notes, created_at, updated_at
`

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status OrderStatus
}

func (q *Queries) UpdateOrderStatus(c context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(c, updateOrderStatus, arg.ID, arg.Status))
}

const updateOrderPaymentNote = `
UPDATE orders
SET payment_note = $2, updated_at = now()
WHERE id = $1
`

type UpdateOrderPaymentNoteParams struct {
	ID          uuid.UUID
	PaymentNote string
}

func (q *Queries) UpdateOrderPaymentNote(c context.Context, arg UpdateOrderPaymentNoteParams) error {
	_, err := q.db.Exec(c, updateOrderPaymentNote, arg.ID, arg.PaymentNote)
	return err
}

const updateOrderInfo = `
UPDATE orders
SET shipping_address = $2, notes = $3, updated_at = now()
WHERE id = $1
RETURNING id, user_id, order_number, status, total, shipping_address, payment_note, notes, created_at, updated_at
`

type UpdateOrderInfoParams struct {
	ID              uuid.UUID
	ShippingAddress string
	Notes           string
}

func (q *Queries) UpdateOrderInfo(c context.Context, arg UpdateOrderInfoParams) (Order, error) {
	return scanOrder(q.db.QueryRow(c, updateOrderInfo, arg.ID, arg.ShippingAddress, arg.Notes))
}

func scanOrder(row interface{ Scan(dest ...interface{}) error }) (Order, error) {
	var order Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Status,
		&order.Total,
		&order.ShippingAddress,
		&order.PaymentNote,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	return order, err
}
