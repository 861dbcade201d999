package report

import (
	"context"
	"errors"
	"time"

	"moneytracker/internal/core"
)

// Dashboard is the landing page: the current month, the latest activity and
// the month's largest categories.
type Dashboard struct {
	Month         time.Time
	Summary       core.Summary
	Recent        []core.Transaction
	TopCategories []core.CategoryTotal
}

// EmptyDashboard is what the page shows when the store is unavailable.
func EmptyDashboard(today time.Time) Dashboard {
	return Dashboard{Month: core.MonthStart(today), Summary: zeroTotals().Summary()}
}

// Dashboard assembles the landing page. On failure the returned value is
// still renderable, with zero figures for whatever could not be loaded.
func (a *Aggregator) Dashboard(ctx context.Context, userID string, today time.Time) (Dashboard, error) {
	d := EmptyDashboard(today)
	monthStart := core.MonthStart(today)

	totals, errTotals := a.MonthlyTotals(ctx, userID, monthStart, core.AddMonths(monthStart, 1))
	d.Summary = totals.Summary()

	recent, errRecent := a.RecentTransactions(ctx, userID, RecentLimit)
	d.Recent = recent

	last := core.AddMonths(monthStart, 1).AddDate(0, 0, -1)
	top, errTop := a.store.SumByCategory(ctx, userID, core.TransactionFilter{From: &monthStart, To: &last})
	if errTop == nil {
		if len(top) > TopCategoriesLimit {
			top = top[:TopCategoriesLimit]
		}
		d.TopCategories = top
	}

	return d, errors.Join(errTotals, errRecent, errTop)
}

// Report is the reports page for one period.
type Report struct {
	Criteria         Criteria
	Start, End       *time.Time
	Period           core.Summary
	ExpenseBreakdown []core.CategoryTotal
	IncomeBreakdown  []core.CategoryTotal
	Trend            []core.TrendPoint
	Lifetime         core.Lifetime
	Chart            ChartData

	// Transactions lists every transaction of the period, oldest first.
	Transactions []core.Transaction
}

// EmptyReport is what the page shows when the store is unavailable.
func EmptyReport(c Criteria, today time.Time) Report {
	start, end := c.Period(today)
	first := core.AddMonths(core.MonthStart(today), -(DefaultTrendMonths - 1))
	r := Report{
		Criteria: c,
		Start:    start,
		End:      end,
		Period:   zeroTotals().Summary(),
		Trend:    emptyTrend(first, DefaultTrendMonths),
		Lifetime: lifetimeOf(zeroTotals()),
	}
	r.Chart = NewChartData(r.Trend, nil)
	return r
}

// Report assembles the reports page. The trend always covers the six
// months up to today; the other sections follow the criteria's period.
func (a *Aggregator) Report(ctx context.Context, userID string, c Criteria, today time.Time) (Report, error) {
	r := EmptyReport(c, today)
	var errs []error

	f := core.TransactionFilter{From: r.Start, To: r.End}
	if totals, err := a.store.SumByKind(ctx, userID, f); err != nil {
		errs = append(errs, err)
	} else {
		r.Period = totals.Summary()
	}

	listF := f
	listF.Chronological = true
	if txs, err := a.store.ListTransactions(ctx, userID, listF); err != nil {
		errs = append(errs, err)
	} else {
		r.Transactions = txs
	}

	for _, kind := range core.Kinds() {
		kf := f
		k := kind
		kf.Kind = &k
		rows, err := a.store.SumByCategory(ctx, userID, kf)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if kind == core.KindExpense {
			r.ExpenseBreakdown = rows
		} else {
			r.IncomeBreakdown = rows
		}
	}

	if trend, err := a.TrendSeries(ctx, userID, today, DefaultTrendMonths); err != nil {
		errs = append(errs, err)
	} else {
		r.Trend = trend
	}

	if lifetime, err := a.LifetimeSummary(ctx, userID); err != nil {
		errs = append(errs, err)
	} else {
		r.Lifetime = lifetime
	}

	r.Chart = NewChartData(r.Trend, r.ExpenseBreakdown)
	return r, errors.Join(errs...)
}

// ChartData is the float payload handed to the charting script. Floats are
// for display only.
type ChartData struct {
	Labels         []string  `json:"labels"`
	Income         []float64 `json:"income"`
	Expense        []float64 `json:"expense"`
	CategoryLabels []string  `json:"categoryLabels"`
	CategoryTotals []float64 `json:"categoryTotals"`
}

func NewChartData(trend []core.TrendPoint, breakdown []core.CategoryTotal) ChartData {
	cd := ChartData{
		Labels:         make([]string, 0, len(trend)),
		Income:         make([]float64, 0, len(trend)),
		Expense:        make([]float64, 0, len(trend)),
		CategoryLabels: make([]string, 0, len(breakdown)),
		CategoryTotals: make([]float64, 0, len(breakdown)),
	}
	for _, p := range trend {
		cd.Labels = append(cd.Labels, p.Label)
		cd.Income = append(cd.Income, p.Income.Float64())
		cd.Expense = append(cd.Expense, p.Expense.Float64())
	}
	for _, c := range breakdown {
		cd.CategoryLabels = append(cd.CategoryLabels, c.CategoryName)
		cd.CategoryTotals = append(cd.CategoryTotals, c.Total.Float64())
	}
	return cd
}
