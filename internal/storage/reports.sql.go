package storage

import "context"

const filterClause = `
WHERE t.user_id = ?
  AND (? = '' OR t.kind = ?)
  AND (? = 0 OR t.category_id = ?)
  AND (? = '' OR t.date >= ?)
  AND (? = '' OR t.date <= ?)
`

// AggregateParams mirrors ListTransactionsParams without paging.
type AggregateParams struct {
	UserID     string
	Kind       string
	CategoryID int64
	DateFrom   string
	DateTo     string
}

func (a AggregateParams) args() []interface{} {
	return []interface{}{
		a.UserID,
		a.Kind, a.Kind,
		a.CategoryID, a.CategoryID,
		a.DateFrom, a.DateFrom,
		a.DateTo, a.DateTo,
	}
}

const sumByKind = `
SELECT t.kind, COALESCE(SUM(t.amount_cents), 0)
FROM transactions t` + filterClause + `
GROUP BY t.kind
`

type SumByKindRow struct {
	Kind       string
	TotalCents int64
}

func (q *Queries) SumByKind(ctx context.Context, arg AggregateParams) ([]SumByKindRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByKind, arg.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SumByKindRow
	for rows.Next() {
		var r SumByKindRow
		if err := rows.Scan(&r.Kind, &r.TotalCents); err != nil {
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

const sumByCategory = `
SELECT c.id, c.name, c.icon, c.kind, SUM(t.amount_cents) AS total_cents, COUNT(t.id)
FROM transactions t
JOIN categories c ON c.id = t.category_id` + filterClause + `
GROUP BY c.id, c.name, c.icon, c.kind
ORDER BY total_cents DESC, c.name ASC
`

type SumByCategoryRow struct {
	CategoryID int64
	Name       string
	Icon       string
	Kind       string
	TotalCents int64
	Count      int64
}

func (q *Queries) SumByCategory(ctx context.Context, arg AggregateParams) ([]SumByCategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByCategory, arg.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SumByCategoryRow
	for rows.Next() {
		var r SumByCategoryRow
		if err := rows.Scan(&r.CategoryID, &r.Name, &r.Icon, &r.Kind, &r.TotalCents, &r.Count); err != nil {
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

const sumByMonth = `
SELECT substr(t.date, 1, 7) AS month, t.kind, SUM(t.amount_cents)
FROM transactions t` + filterClause + `
GROUP BY month, t.kind
ORDER BY month
`

type SumByMonthRow struct {
	Month      string // YYYY-MM
	Kind       string
	TotalCents int64
}

func (q *Queries) SumByMonth(ctx context.Context, arg AggregateParams) ([]SumByMonthRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByMonth, arg.args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SumByMonthRow
	for rows.Next() {
		var r SumByMonthRow
		if err := rows.Scan(&r.Month, &r.Kind, &r.TotalCents); err != nil {
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
