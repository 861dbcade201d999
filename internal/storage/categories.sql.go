package storage

import "context"

const categoryColumns = `id, name, kind, description, icon, is_active, created_at`

func scanCategory(s interface{ Scan(...interface{}) error }) (Category, error) {
	var c Category
	err := s.Scan(&c.ID, &c.Name, &c.Kind, &c.Description, &c.Icon, &c.IsActive, &c.CreatedAt)
	return c, err
}

const createCategory = `
INSERT INTO categories (name, kind, description, icon, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	Name        string
	Kind        string
	Description string
	Icon        string
	IsActive    int64
	CreatedAt   string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory,
		arg.Name, arg.Kind, arg.Description, arg.Icon, arg.IsActive, arg.CreatedAt)
	return scanCategory(row)
}

const insertCategoryIfAbsent = `
INSERT INTO categories (name, kind, description, icon, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (name, kind) DO NOTHING
`

// InsertCategoryIfAbsent returns the number of rows inserted (0 or 1).
func (q *Queries) InsertCategoryIfAbsent(ctx context.Context, arg CreateCategoryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertCategoryIfAbsent,
		arg.Name, arg.Kind, arg.Description, arg.Icon, arg.IsActive, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getCategory = `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
}

const listCategories = `
SELECT ` + categoryColumns + ` FROM categories
WHERE (? = '' OR kind = ?)
  AND (? = 0 OR is_active = 1)
ORDER BY kind, name
`

type ListCategoriesParams struct {
	Kind       string // empty for all kinds
	ActiveOnly bool
}

func (q *Queries) ListCategories(ctx context.Context, arg ListCategoriesParams) ([]Category, error) {
	activeOnly := 0
	if arg.ActiveOnly {
		activeOnly = 1
	}
	rows, err := q.db.QueryContext(ctx, listCategories, arg.Kind, arg.Kind, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setCategoryActive = `UPDATE categories SET is_active = ? WHERE id = ?`

func (q *Queries) SetCategoryActive(ctx context.Context, id int64, active bool) (int64, error) {
	v := 0
	if active {
		v = 1
	}
	res, err := q.db.ExecContext(ctx, setCategoryActive, v, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countTransactionsByCategory = `SELECT COUNT(*) FROM transactions WHERE category_id = ?`

func (q *Queries) CountTransactionsByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTransactionsByCategory, categoryID).Scan(&n)
	return n, err
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
