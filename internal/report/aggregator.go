package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/core"
)

const (
	DefaultTrendMonths = 6
	RecentLimit        = 10
	TopCategoriesLimit = 5
	monthKeyLayout     = "2006-01"
)

var hundred = decimal.NewFromInt(100)

// Store is the aggregate surface of the storage layer.
type Store interface {
	SumByKind(ctx context.Context, userID string, f core.TransactionFilter) (core.Totals, error)
	SumByCategory(ctx context.Context, userID string, f core.TransactionFilter) ([]core.CategoryTotal, error)
	SumByMonth(ctx context.Context, userID string, f core.TransactionFilter) (map[string]core.Totals, error)
	ListTransactions(ctx context.Context, userID string, f core.TransactionFilter) ([]core.Transaction, error)
}

// Aggregator computes summary figures for a single user. It holds no state
// besides the store.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// MonthlyTotals sums by kind over the half-open window [monthStart, monthEnd).
func (a *Aggregator) MonthlyTotals(ctx context.Context, userID string, monthStart, monthEnd time.Time) (core.Totals, error) {
	start := core.DateOf(monthStart)
	last := core.DateOf(monthEnd).AddDate(0, 0, -1)
	if last.Before(start) {
		return zeroTotals(), nil
	}
	totals, err := a.store.SumByKind(ctx, userID, core.TransactionFilter{From: &start, To: &last})
	if err != nil {
		return zeroTotals(), fmt.Errorf("monthly totals: %w", err)
	}
	return totals, nil
}

// RangeSummary sums by kind over the inclusive window [periodStart, periodEnd].
func (a *Aggregator) RangeSummary(ctx context.Context, userID string, periodStart, periodEnd time.Time) (core.Summary, error) {
	start, end := core.DateOf(periodStart), core.DateOf(periodEnd)
	totals, err := a.store.SumByKind(ctx, userID, core.TransactionFilter{From: &start, To: &end})
	if err != nil {
		return zeroTotals().Summary(), fmt.Errorf("range summary: %w", err)
	}
	return totals.Summary(), nil
}

// Summarize sums by kind over any filter; used for the filtered list.
func (a *Aggregator) Summarize(ctx context.Context, userID string, f core.TransactionFilter) (core.Summary, error) {
	totals, err := a.store.SumByKind(ctx, userID, f)
	if err != nil {
		return zeroTotals().Summary(), fmt.Errorf("summarize: %w", err)
	}
	return totals.Summary(), nil
}

// CategoryBreakdown groups one kind's transactions in [periodStart, periodEnd]
// by category, largest total first. Uncategorised transactions are left out.
func (a *Aggregator) CategoryBreakdown(ctx context.Context, userID string, periodStart, periodEnd time.Time, kind core.Kind) ([]core.CategoryTotal, error) {
	start, end := core.DateOf(periodStart), core.DateOf(periodEnd)
	rows, err := a.store.SumByCategory(ctx, userID, core.TransactionFilter{Kind: &kind, From: &start, To: &end})
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return rows, nil
}

// TrendSeries returns monthCount calendar months ending with the month of
// referenceDate, oldest first. Months without transactions are zero.
func (a *Aggregator) TrendSeries(ctx context.Context, userID string, referenceDate time.Time, monthCount int) ([]core.TrendPoint, error) {
	if monthCount <= 0 {
		monthCount = DefaultTrendMonths
	}
	current := core.MonthStart(referenceDate)
	first := core.AddMonths(current, -(monthCount - 1))
	last := core.AddMonths(current, 1).AddDate(0, 0, -1)

	byMonth, err := a.store.SumByMonth(ctx, userID, core.TransactionFilter{From: &first, To: &last})
	if err != nil {
		return emptyTrend(first, monthCount), fmt.Errorf("trend series: %w", err)
	}

	series := emptyTrend(first, monthCount)
	for i := range series {
		key := core.AddMonths(first, i).Format(monthKeyLayout)
		if t, ok := byMonth[key]; ok {
			series[i].Income = t.Income
			series[i].Expense = t.Expense
		}
	}
	return series, nil
}

// LifetimeSummary aggregates everything the user recorded. ExpenseRatio is
// expense as a percentage of income, or zero when there is no income.
func (a *Aggregator) LifetimeSummary(ctx context.Context, userID string) (core.Lifetime, error) {
	totals, err := a.store.SumByKind(ctx, userID, core.TransactionFilter{})
	if err != nil {
		return lifetimeOf(zeroTotals()), fmt.Errorf("lifetime summary: %w", err)
	}
	return lifetimeOf(totals), nil
}

func lifetimeOf(t core.Totals) core.Lifetime {
	l := core.Lifetime{
		TotalIncome:  t.Income,
		TotalExpense: t.Expense,
		Balance:      t.Income.Sub(t.Expense),
		ExpenseRatio: decimal.Zero,
	}
	if t.Income.Decimal().IsPositive() {
		l.ExpenseRatio = t.Expense.Decimal().Div(t.Income.Decimal()).Mul(hundred).Round(2)
	}
	return l
}

// RecentTransactions returns the user's newest transactions.
func (a *Aggregator) RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	txs, err := a.store.ListTransactions(ctx, userID, core.TransactionFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return txs, nil
}

func zeroTotals() core.Totals {
	return core.Totals{Income: core.Zero, Expense: core.Zero}
}

func emptyTrend(first time.Time, n int) []core.TrendPoint {
	series := make([]core.TrendPoint, n)
	for i := range series {
		m := core.AddMonths(first, i)
		series[i] = core.TrendPoint{
			Label:   core.MonthLabel(m),
			Month:   int(m.Month()),
			Year:    m.Year(),
			Income:  core.Zero,
			Expense: core.Zero,
		}
	}
	return series
}
