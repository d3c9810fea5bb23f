package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertCart = `
INSERT INTO carts (user_id, is_active)
VALUES ($1, TRUE)
RETURNING id, user_id, is_active, created_at, updated_at
`

func (q *Queries) InsertCart(c context.Context, userID uuid.UUID) (Cart, error) {
	row := q.db.QueryRow(c, insertCart, userID)
	var cart Cart
	err := row.Scan(&cart.ID, &cart.UserID, &cart.IsActive, &cart.CreatedAt, &cart.UpdatedAt)
	return cart, err
}

// findActiveCartByUserId loads the cart header together with its items and a
// snapshot of each referenced product's current name, price, stock and active
// flag, so the caller validates against current state rather than a stale copy.
const findActiveCartByUserId = `
SELECT c.id,
       c.user_id,
       c.is_active,
       c.created_at,
       c.updated_at,
       COALESCE(
           json_agg(
               json_build_object(
                   'id', ci.id,
                   'product_id', ci.product_id,
                   'quantity', ci.quantity,
                   'unit_price', ci.unit_price,
                   'product_name', p.name,
                   'product_price', p.price,
                   'product_stock', p.stock,
                   'product_is_active', p.is_active
               )
               ORDER BY ci.added_at
           ) FILTER (WHERE ci.id IS NOT NULL),
           '[]'
       ) AS cart_items
FROM carts c
LEFT JOIN cart_items ci ON ci.cart_id = c.id
LEFT JOIN products p ON p.id = ci.product_id
WHERE c.user_id = $1 AND c.is_active
GROUP BY c.id
`

func (q *Queries) FindActiveCartByUserId(
	c context.Context,
	userID uuid.UUID,
) (FindActiveCartByUserIdRow, error) {
	row := q.db.QueryRow(c, findActiveCartByUserId, userID)
	var r FindActiveCartByUserIdRow
	err := row.Scan(&r.ID, &r.UserID, &r.IsActive, &r.CreatedAt, &r.UpdatedAt, &r.CartItems)
	return r, err
}

const findActiveCartByUserIdForUpdate = `
SELECT id, user_id, is_active, created_at, updated_at
FROM carts
WHERE user_id = $1 AND is_active
FOR UPDATE
`

// FindActiveCartByUserIdForUpdate locks the active cart row so concurrent
// checkouts of the same cart serialize on it.
func (q *Queries) FindActiveCartByUserIdForUpdate(
	c context.Context,
	userID uuid.UUID,
) (Cart, error) {
	row := q.db.QueryRow(c, findActiveCartByUserIdForUpdate, userID)
	var cart Cart
	err := row.Scan(&cart.ID, &cart.UserID, &cart.IsActive, &cart.CreatedAt, &cart.UpdatedAt)
	return cart, err
}

const findCartById = `
SELECT id, user_id, is_active, created_at, updated_at
FROM carts
WHERE id = $1
`

func (q *Queries) FindCartById(c context.Context, id uuid.UUID) (Cart, error) {
	row := q.db.QueryRow(c, findCartById, id)
	var cart Cart
	err := row.Scan(&cart.ID, &cart.UserID, &cart.IsActive, &cart.CreatedAt, &cart.UpdatedAt)
	return cart, err
}

const deactivateCart = `
UPDATE carts
SET is_active = FALSE, updated_at = now()
WHERE id = $1
`

func (q *Queries) DeactivateCart(c context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(c, deactivateCart, id)
	return err
}

const deleteCartItems = `
DELETE FROM cart_items
WHERE cart_id = $1
`

func (q *Queries) DeleteCartItems(c context.Context, cartID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartItems, cartID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// upsertCartItem merges quantity on the (cart_id, product_id) uniqueness
// invariant: adding a product already present increases quantity instead of
// duplicating the row.
const upsertCartItem = `
INSERT INTO cart_items (cart_id, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
              unit_price = EXCLUDED.unit_price
RETURNING id, cart_id, product_id, quantity, unit_price, added_at
`

type UpsertCartItemParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
}

func (q *Queries) UpsertCartItem(c context.Context, arg UpsertCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(c, upsertCartItem, arg.CartID, arg.ProductID, arg.Quantity, arg.UnitPrice)
	return scanCartItem(row)
}

const findCartItemById = `
SELECT id, cart_id, product_id, quantity, unit_price, added_at
FROM cart_items
WHERE id = $1 AND cart_id = $2
`

type FindCartItemByIdParams struct {
	ID     uuid.UUID
	CartID uuid.UUID
}

func (q *Queries) FindCartItemById(c context.Context, arg FindCartItemByIdParams) (CartItem, error) {
	return scanCartItem(q.db.QueryRow(c, findCartItemById, arg.ID, arg.CartID))
}

const updateCartItemQuantity = `
UPDATE cart_items
SET quantity = $3
WHERE id = $1 AND cart_id = $2
RETURNING id, cart_id, product_id, quantity, unit_price, added_at
`

type UpdateCartItemQuantityParams struct {
	ID       uuid.UUID
	CartID   uuid.UUID
	Quantity int32
}

func (q *Queries) UpdateCartItemQuantity(
	c context.Context,
	arg UpdateCartItemQuantityParams,
) (CartItem, error) {
	row := q.db.QueryRow(c, updateCartItemQuantity, arg.ID, arg.CartID, arg.Quantity)
	return scanCartItem(row)
}

const deleteCartItem = `
DELETE FROM cart_items
WHERE id = $1 AND cart_id = $2
`

type DeleteCartItemParams struct {
	ID     uuid.UUID
	CartID uuid.UUID
}

func (q *Queries) DeleteCartItem(c context.Context, arg DeleteCartItemParams) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartItem, arg.ID, arg.CartID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanCartItem(row interface{ Scan(dest ...interface{}) error }) (CartItem, error) {
	var item CartItem
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitPrice,
		&item.AddedAt,
	)
	return item, err
}
