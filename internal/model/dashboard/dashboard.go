// Package dashboard aggregates the cached collections into the overview
// shown after login.
package dashboard

import (
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/entity/expense"
)

const (
	recentLimit          = 5
	UncategorizedName    = "Uncategorized"
	warningUsagePercent  = 70
	criticalUsagePercent = 90
)

type Level string

const (
	LevelOK       Level = "ok"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

type CategoryTotal struct {
	CategoryID string
	Name       string
	Count      int
	Total      decimal.Decimal
}

type Overview struct {
	TotalExpenses   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	MonthlyBudget   decimal.Decimal
	BudgetUsage     int
	Recent          []expense.Transaction
	ByCategory      []CategoryTotal
}

// UsageLevel grades budget usage for display.
func (o Overview) UsageLevel() Level {
	switch {
	case o.BudgetUsage > criticalUsagePercent:
		return LevelCritical
	case o.BudgetUsage > warningUsagePercent:
		return LevelWarning
	}
	return LevelOK
}

// Build computes the overview at the moment at. summary may be nil before
// the first load finished. Only expense transactions count, ByCategory
// follows the order of categories.
func Build(
	categories []expense.Category,
	transactions []expense.Transaction,
	summary *expense.BudgetSummary,
	at time.Time,
) Overview {
	res := Overview{
		TotalExpenses:   decimal.Zero,
		MonthlyExpenses: decimal.Zero,
		MonthlyBudget:   decimal.Zero,
	}

	month := now.New(at)
	begin, end := month.BeginningOfMonth(), month.EndOfMonth()

	totals := make(map[string]*CategoryTotal, len(categories))
	order := make([]string, 0, len(categories))
	for _, c := range categories {
		totals[c.ID] = &CategoryTotal{CategoryID: c.ID, Name: c.Name, Total: decimal.Zero}
		order = append(order, c.ID)
	}

	for _, t := range transactions {
		if t.Kind != expense.Expense {
			continue
		}
		res.TotalExpenses = res.TotalExpenses.Add(t.Amount)

		date := t.Date.In(at.Location())
		if !t.Date.IsZero() && !date.Before(begin) && !date.After(end) {
			res.MonthlyExpenses = res.MonthlyExpenses.Add(t.Amount)
		}
		if len(res.Recent) < recentLimit {
			res.Recent = append(res.Recent, t)
		}

		ct, ok := totals[t.Category]
		if !ok {
			ct = &CategoryTotal{CategoryID: t.Category, Name: UncategorizedName, Total: decimal.Zero}
			totals[t.Category] = ct
			order = append(order, t.Category)
		}
		ct.Count++
		ct.Total = ct.Total.Add(t.Amount)
	}

	for _, id := range order {
		res.ByCategory = append(res.ByCategory, *totals[id])
	}

	if summary != nil {
		res.MonthlyBudget = summary.Budget
		res.BudgetUsage = usagePercent(summary.Spent, summary.Budget)
	}
	return res
}

// usagePercent is spent/budget as a whole percentage capped at 100, zero
// without a budget.
func usagePercent(spent, budget decimal.Decimal) int {
	if !budget.IsPositive() {
		return 0
	}
	pct := spent.Div(budget).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// CategoryName resolves a category ID for display.
func CategoryName(categories []expense.Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return UncategorizedName
}
