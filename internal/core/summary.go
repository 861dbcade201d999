package core

import "github.com/shopspring/decimal"

// Totals holds income and expense sums for a window.
type Totals struct {
	Income  Money
	Expense Money
}

// Summary is Totals plus balance.
type Summary struct {
	Income  Money
	Expense Money
	Balance Money
}

func (t Totals) Summary() Summary {
	return Summary{Income: t.Income, Expense: t.Expense, Balance: t.Income.Sub(t.Expense)}
}

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	CategoryID   int64
	CategoryName string
	Icon         string
	Kind         Kind
	Total        Money
	Count        int64
}

// TrendPoint is one month of a trend series.
type TrendPoint struct {
	Label   string
	Month   int // 1-12
	Year    int
	Income  Money
	Expense Money
}

// Lifetime aggregates everything a user ever recorded.
type Lifetime struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	ExpenseRatio decimal.Decimal // percentage, two decimals
}
