package storage

import (
	"context"
	"database/sql"
)

const createTransaction = `
INSERT INTO transactions (user_id, title, amount_cents, kind, category_id, description, date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateTransactionParams struct {
	UserID      string
	Title       string
	AmountCents int64
	Kind        string
	CategoryID  sql.NullInt64
	Description string
	Date        string
	CreatedAt   string
	UpdatedAt   string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID, arg.Title, arg.AmountCents, arg.Kind, arg.CategoryID,
		arg.Description, arg.Date, arg.CreatedAt, arg.UpdatedAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

// user_id is part of the filter and never part of the SET list.
const updateTransaction = `
UPDATE transactions
SET title = ?, amount_cents = ?, kind = ?, category_id = ?, description = ?, date = ?, updated_at = ?
WHERE id = ? AND user_id = ?
`

type UpdateTransactionParams struct {
	ID          int64
	UserID      string
	Title       string
	AmountCents int64
	Kind        string
	CategoryID  sql.NullInt64
	Description string
	Date        string
	UpdatedAt   string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Title, arg.AmountCents, arg.Kind, arg.CategoryID, arg.Description, arg.Date, arg.UpdatedAt,
		arg.ID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const transactionSelect = `
SELECT t.id, t.user_id, t.title, t.amount_cents, t.kind, t.category_id, t.description,
       t.date, t.created_at, t.updated_at,
       c.name, c.kind, c.icon, c.is_active
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
`

type TransactionRow struct {
	Transaction
	CategoryName   sql.NullString
	CategoryKind   sql.NullString
	CategoryIcon   sql.NullString
	CategoryActive sql.NullInt64
}

func scanTransactionRow(s interface{ Scan(...interface{}) error }) (TransactionRow, error) {
	var r TransactionRow
	err := s.Scan(&r.ID, &r.UserID, &r.Title, &r.AmountCents, &r.Kind, &r.CategoryID, &r.Description,
		&r.Date, &r.CreatedAt, &r.UpdatedAt,
		&r.CategoryName, &r.CategoryKind, &r.CategoryIcon, &r.CategoryActive)
	return r, err
}

const getTransaction = transactionSelect + `WHERE t.id = ? AND t.user_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64, userID string) (TransactionRow, error) {
	return scanTransactionRow(q.db.QueryRowContext(ctx, getTransaction, id, userID))
}

// Empty strings and zero ids mean "no filter"; LIMIT -1 means no limit.
const listTransactionsWhere = `
WHERE t.user_id = ?
  AND (? = '' OR t.kind = ?)
  AND (? = 0 OR t.category_id = ?)
  AND (? = '' OR t.date >= ?)
  AND (? = '' OR t.date <= ?)
`

const listTransactions = transactionSelect + listTransactionsWhere + `
ORDER BY t.date DESC, t.created_at DESC, t.id DESC
LIMIT ?
`

const listTransactionsChronological = transactionSelect + listTransactionsWhere + `
ORDER BY t.date ASC, t.created_at ASC, t.id ASC
LIMIT ?
`

type ListTransactionsParams struct {
	UserID     string
	Kind       string
	CategoryID int64
	DateFrom   string
	DateTo     string
	Limit      int64
	Ascending  bool
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]TransactionRow, error) {
	limit := arg.Limit
	if limit <= 0 {
		limit = -1
	}
	query := listTransactions
	if arg.Ascending {
		query = listTransactionsChronological
	}
	rows, err := q.db.QueryContext(ctx, query,
		arg.UserID,
		arg.Kind, arg.Kind,
		arg.CategoryID, arg.CategoryID,
		arg.DateFrom, arg.DateFrom,
		arg.DateTo, arg.DateTo,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TransactionRow
	for rows.Next() {
		r, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
