package repository

import (
	"context"

	"github.com/google/uuid"
)

const insertCategory = `
INSERT INTO categories (name, description)
VALUES ($1, $2)
RETURNING id, name, description, created_at, updated_at
`

type InsertCategoryParams struct {
	Name        string
	Description string
}

func (q *Queries) InsertCategory(c context.Context, arg InsertCategoryParams) (Category, error) {
	row := q.db.QueryRow(c, insertCategory, arg.Name, arg.Description)
	var cat Category
	err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt, &cat.UpdatedAt)
	return cat, err
}

const findCategories = `
SELECT id, name, description, created_at, updated_at
FROM categories
ORDER BY name
`

func (q *Queries) FindCategories(c context.Context) ([]Category, error) {
	rows, err := q.db.Query(c, findCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []Category{}
	for rows.Next() {
		var cat Category
		err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt, &cat.UpdatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

const findCategoryById = `
SELECT id, name, description, created_at, updated_at
FROM categories
WHERE id = $1
`

func (q *Queries) FindCategoryById(c context.Context, id uuid.UUID) (Category, error) {
	row := q.db.QueryRow(c, findCategoryById, id)
	var cat Category
	err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt, &cat.UpdatedAt)
	return cat, err
}

const updateCategory = `
UPDATE categories
SET name = $2, description = $3, updated_at = now()
WHERE id = $1
RETURNING id, name, description, created_at, updated_at
`

type UpdateCategoryParams struct {
	ID          uuid.UUID
	Name        string
	Description string
}

func (q *Queries) UpdateCategory(c context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRow(c, updateCategory, arg.ID, arg.Name, arg.Description)
	var cat Category
	err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt, &cat.UpdatedAt)
	return cat, err
}

const deleteCategory = `
DELETE FROM categories
WHERE id = $1
`

func (q *Queries) DeleteCategory(c context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
