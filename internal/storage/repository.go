package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moneytracker/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timestampLayout is fixed width so that text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

// dsn enables foreign keys on every pooled connection, which a one-off
// PRAGMA statement would not.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping backs the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().UTC().Format(timestampLayout)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func parseDay(s string) time.Time {
	t, _ := core.ParseDate(s)
	return t
}

// Users

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = parseTimestamp(r.timestamp())
	}
	err := r.queries.CreateUser(ctx, CreateUserParams{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC().Format(timestampLayout),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	u, err := r.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return toCoreUser(u), nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	u, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrNotFound
		}
		return core.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return toCoreUser(u), nil
}

func toCoreUser(u User) core.User {
	return core.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    parseTimestamp(u.CreatedAt),
	}
}

// Categories

func categoryParams(c core.Category, createdAt string) CreateCategoryParams {
	active := int64(0)
	if c.Active {
		active = 1
	}
	return CreateCategoryParams{
		Name:        c.Name,
		Kind:        string(c.Kind),
		Description: c.Description,
		Icon:        c.Icon,
		IsActive:    active,
		CreatedAt:   createdAt,
	}
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row, err := r.queries.CreateCategory(ctx, categoryParams(c, r.timestamp()))
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.ErrDuplicateCategory
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category created", "id", row.ID, "name", row.Name, "kind", row.Kind)
	return toCoreCategory(row), nil
}

// EnsureCategory inserts c unless a category with the same name and kind
// exists. It reports whether a row was created.
func (r *SQLiteRepository) EnsureCategory(ctx context.Context, c core.Category) (bool, error) {
	n, err := r.queries.InsertCategoryIfAbsent(ctx, categoryParams(c, r.timestamp()))
	if err != nil {
		return false, fmt.Errorf("ensure category %q: %w", c.Name, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, core.ErrNotFound
		}
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return toCoreCategory(row), nil
}

// ListCategories returns categories ordered by kind then name. A nil kind
// lists both kinds.
func (r *SQLiteRepository) ListCategories(ctx context.Context, kind *core.Kind, activeOnly bool) ([]core.Category, error) {
	params := ListCategoriesParams{ActiveOnly: activeOnly}
	if kind != nil {
		params.Kind = string(*kind)
	}
	rows, err := r.queries.ListCategories(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = toCoreCategory(row)
	}
	return out, nil
}

func (r *SQLiteRepository) SetCategoryActive(ctx context.Context, id int64, active bool) error {
	n, err := r.queries.SetCategoryActive(ctx, id, active)
	if err != nil {
		return fmt.Errorf("set category active: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CountTransactionsByCategory(ctx context.Context, id int64) (int64, error) {
	n, err := r.queries.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count transactions by category: %w", err)
	}
	return n, nil
}

// DeleteCategoryIfUnused counts referencing transactions and deletes the
// category only when there are none, inside one database transaction. The
// returned count is the number of blocking transactions.
func (r *SQLiteRepository) DeleteCategoryIfUnused(ctx context.Context, id int64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if _, err := q.GetCategory(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, core.ErrNotFound
		}
		return 0, fmt.Errorf("get category: %w", err)
	}

	count, err := q.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count transactions by category: %w", err)
	}
	if count > 0 {
		return count, nil
	}

	if _, err := q.DeleteCategory(ctx, id); err != nil {
		if isForeignKeyViolation(err) {
			n, _ := q.CountTransactionsByCategory(ctx, id)
			return max(n, 1), nil
		}
		return 0, fmt.Errorf("delete category: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	slog.InfoContext(ctx, "Category deleted", "id", id)
	return 0, nil
}

func toCoreCategory(c Category) core.Category {
	return core.Category{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        core.Kind(c.Kind),
		Description: c.Description,
		Icon:        c.Icon,
		Active:      c.IsActive != 0,
		CreatedAt:   parseTimestamp(c.CreatedAt),
	}
}

// Transactions

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	ts := r.timestamp()
	id, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		UserID:      t.UserID,
		Title:       t.Title,
		AmountCents: t.Amount.Cents(),
		Kind:        string(t.Kind),
		CategoryID:  nullID(t.CategoryID),
		Description: t.Description,
		Date:        core.FormatDate(t.Date),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"title", t.Title,
		"amount_cents", t.Amount.Cents(),
		"kind", t.Kind,
		"date", core.FormatDate(t.Date))

	return r.GetTransaction(ctx, t.UserID, id)
}

// UpdateTransaction overwrites the mutable fields of a transaction owned by
// t.UserID. Ownership never changes.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	n, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		AmountCents: t.Amount.Cents(),
		Kind:        string(t.Kind),
		CategoryID:  nullID(t.CategoryID),
		Description: t.Description,
		Date:        core.FormatDate(t.Date),
		UpdatedAt:   r.timestamp(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return r.GetTransaction(ctx, t.UserID, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID string, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return toCoreTransaction(row), nil
}

// ListTransactions returns the user's transactions newest first, or oldest
// first when f.Chronological is set.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f core.TransactionFilter) ([]core.Transaction, error) {
	p := aggregateParams(userID, f)
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		UserID:     p.UserID,
		Kind:       p.Kind,
		CategoryID: p.CategoryID,
		DateFrom:   p.DateFrom,
		DateTo:     p.DateTo,
		Limit:      int64(f.Limit),
		Ascending:  f.Chronological,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = toCoreTransaction(row)
	}
	return out, nil
}

func toCoreTransaction(r TransactionRow) core.Transaction {
	t := core.Transaction{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Amount:      core.MoneyFromCents(r.AmountCents),
		Kind:        core.Kind(r.Kind),
		Description: r.Description,
		Date:        parseDay(r.Date),
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
	if r.CategoryID.Valid {
		id := r.CategoryID.Int64
		t.CategoryID = &id
		t.Category = &core.Category{
			ID:     id,
			Name:   r.CategoryName.String,
			Kind:   core.Kind(r.CategoryKind.String),
			Icon:   r.CategoryIcon.String,
			Active: r.CategoryActive.Int64 != 0,
		}
	}
	return t
}

// Aggregates

// aggregateParams is the single place where a filter becomes query arguments.
func aggregateParams(userID string, f core.TransactionFilter) AggregateParams {
	p := AggregateParams{UserID: userID}
	if f.Kind != nil {
		p.Kind = string(*f.Kind)
	}
	if f.CategoryID != nil {
		p.CategoryID = *f.CategoryID
	}
	if f.From != nil {
		p.DateFrom = core.FormatDate(*f.From)
	}
	if f.To != nil {
		p.DateTo = core.FormatDate(*f.To)
	}
	return p
}

// SumByKind returns income and expense totals; kinds without rows are zero.
func (r *SQLiteRepository) SumByKind(ctx context.Context, userID string, f core.TransactionFilter) (core.Totals, error) {
	rows, err := r.queries.SumByKind(ctx, aggregateParams(userID, f))
	if err != nil {
		return core.Totals{}, fmt.Errorf("sum by kind: %w", err)
	}
	totals := core.Totals{Income: core.Zero, Expense: core.Zero}
	for _, row := range rows {
		switch core.Kind(row.Kind) {
		case core.KindIncome:
			totals.Income = core.MoneyFromCents(row.TotalCents)
		case core.KindExpense:
			totals.Expense = core.MoneyFromCents(row.TotalCents)
		}
	}
	return totals, nil
}

// SumByCategory groups categorised transactions, largest total first.
func (r *SQLiteRepository) SumByCategory(ctx context.Context, userID string, f core.TransactionFilter) ([]core.CategoryTotal, error) {
	rows, err := r.queries.SumByCategory(ctx, aggregateParams(userID, f))
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	out := make([]core.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.CategoryTotal{
			CategoryID:   row.CategoryID,
			CategoryName: row.Name,
			Icon:         row.Icon,
			Kind:         core.Kind(row.Kind),
			Total:        core.MoneyFromCents(row.TotalCents),
			Count:        row.Count,
		})
	}
	return out, nil
}

// SumByMonth returns totals keyed by "YYYY-MM". Months without rows are absent.
func (r *SQLiteRepository) SumByMonth(ctx context.Context, userID string, f core.TransactionFilter) (map[string]core.Totals, error) {
	rows, err := r.queries.SumByMonth(ctx, aggregateParams(userID, f))
	if err != nil {
		return nil, fmt.Errorf("sum by month: %w", err)
	}
	out := make(map[string]core.Totals)
	for _, row := range rows {
		t, ok := out[row.Month]
		if !ok {
			t = core.Totals{Income: core.Zero, Expense: core.Zero}
		}
		switch core.Kind(row.Kind) {
		case core.KindIncome:
			t.Income = core.MoneyFromCents(row.TotalCents)
		case core.KindExpense:
			t.Expense = core.MoneyFromCents(row.TotalCents)
		}
		out[row.Month] = t
	}
	return out, nil
}
