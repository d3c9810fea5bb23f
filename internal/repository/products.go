package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertProduct = `
INSERT INTO products (category_id, name, description, price, stock, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, category_id, name, description, price, stock, is_active, created_at, updated_at
`

type InsertProductParams struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	Stock       int32
	IsActive    bool
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(
		c,
		insertProduct,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Stock,
		arg.IsActive,
	)
	return scanProduct(row)
}

const findProductById = `
SELECT id, category_id, name, description, price, stock, is_active, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(c, findProductById, id))
}

const findProducts = `
SELECT id, category_id, name, description, price, stock, is_active, created_at, updated_at
FROM products
WHERE ($1::text = '' OR name ILIKE '%' || $1 || '%')
  AND ($2::numeric IS NULL OR price >= $2)
  AND ($3::numeric IS NULL OR price <= $3)
  AND (NOT $4::bool OR is_active)
ORDER BY name
LIMIT $5 OFFSET $6
`

type FindProductsParams struct {
	Name       string
	MinPrice   pgtype.Numeric
	MaxPrice   pgtype.Numeric
	ActiveOnly bool
	Limit      int32
	Offset     int32
}

func (q *Queries) FindProducts(c context.Context, arg FindProductsParams) ([]Product, error) {
	rows, err := q.db.Query(
		c,
		findProducts,
		arg.Name,
		arg.MinPrice,
		arg.MaxPrice,
		arg.ActiveOnly,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const updateProduct = `
UPDATE products
SET category_id = $2,
    name = $3,
    description = $4,
    price = $5,
    stock = $6,
    is_active = $7,
    updated_at = now()
WHERE id = $1
RETURNING id, category_id, name, description, price, stock, is_active, created_at, updated_at
`

type UpdateProductParams struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	Stock       int32
	IsActive    bool
}

func (q *Queries) UpdateProduct(c context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(
		c,
		updateProduct,
		arg.ID,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Stock,
		arg.IsActive,
	)
	return scanProduct(row)
}

const deleteProduct = `
DELETE FROM products
WHERE id = $1
`

func (q *Queries) DeleteProduct(c context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// decrementStockIfAvailable is a relative, conditional adjustment so two
// concurrent checkouts cannot both pass the stock check when only one can be
// satisfied. Zero affected rows means the stock was insufficient.
const decrementStockIfAvailable = `
UPDATE products
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock >= $2
`

type DecrementStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) DecrementStockIfAvailable(
	c context.Context,
	arg DecrementStockParams,
) (int64, error) {
	tag, err := q.db.Exec(c, decrementStockIfAvailable, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const incrementStock = `
UPDATE products
SET stock = stock + $2, updated_at = now()
WHERE id = $1
`

type IncrementStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) IncrementStock(c context.Context, arg IncrementStockParams) error {
	_, err := q.db.Exec(c, incrementStock, arg.ID, arg.Quantity)
	return err
}

func scanProduct(row interface{ Scan(dest ...interface{}) error }) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
