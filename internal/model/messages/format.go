package messages

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/clients/api"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/dashboard"
	"max.ks1230/expense-tracker/internal/model/forms"
)

const (
	genericFailureMessage = "Something went wrong. Please try again."
	listLimit             = 30
)

func usage(line string) string {
	return incorrectUsageMessage + "\nUsage: " + line
}

// failure renders validation problems one per line, anything else as the
// server message or fallback.
func failure(err error, fallback string) string {
	var verrs forms.ValidationErrors
	if errors.As(err, &verrs) {
		return strings.Join(verrs.Messages(), "\n")
	}
	if fallback == "" {
		fallback = genericFailureMessage
	}
	return api.DisplayMessage(err, fallback)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func signed(t expense.Transaction) string {
	if t.Kind == expense.Income {
		return "+" + money(t.Amount)
	}
	return "-" + money(t.Amount)
}

func formatCategory(c expense.Category) string {
	if c.Color != "" {
		return fmt.Sprintf("%s %s [%s]", c.Name, c.Color, c.ID)
	}
	return fmt.Sprintf("%s [%s]", c.Name, c.ID)
}

func formatTransaction(t expense.Transaction, categories []expense.Category, loc *time.Location) string {
	line := fmt.Sprintf("%s %s %s", t.Date.In(loc).Format(forms.DateLayout), signed(t), dashboard.CategoryName(categories, t.Category))
	if t.Description != "" {
		line += " " + t.Description
	}
	return line + " [" + t.ID + "]"
}

func formatBudget(b expense.Budget, categories []expense.Category) string {
	return fmt.Sprintf("%02d/%d %s: %s [%s]", b.Month, b.Year, dashboard.CategoryName(categories, b.Category), money(b.Amount), b.ID)
}

func formatSummary(summary expense.BudgetSummary, month, year int, categories []expense.Category) string {
	lines := []string{
		fmt.Sprintf("Budget summary for %s %d", time.Month(month), year),
		fmt.Sprintf("Budget: %s", money(summary.Budget)),
		fmt.Sprintf("Spent: %s", money(summary.Spent)),
		fmt.Sprintf("Remaining: %s", money(summary.Remaining)),
	}

	ids := make([]string, 0, len(summary.Categories))
	for _, c := range categories {
		if _, ok := summary.Categories[c.ID]; ok {
			ids = append(ids, c.ID)
		}
	}
	unknown := make([]string, 0)
	for id := range summary.Categories {
		if dashboard.CategoryName(categories, id) == dashboard.UncategorizedName {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	ids = append(ids, unknown...)

	if len(ids) > 0 {
		lines = append(lines, "")
	}
	for _, id := range ids {
		fig := summary.Categories[id]
		lines = append(lines, fmt.Sprintf("%s: %s of %s, %s left",
			dashboard.CategoryName(categories, id), money(fig.Spent), money(fig.Budget), money(fig.Remaining)))
	}
	return strings.Join(lines, "\n")
}

func formatOverview(o dashboard.Overview, categories []expense.Category, loc *time.Location) string {
	lines := []string{
		"Total expenses: " + money(o.TotalExpenses),
		"This month: " + money(o.MonthlyExpenses),
		"Monthly budget: " + money(o.MonthlyBudget),
		fmt.Sprintf("Budget usage: %d%% (%s)", o.BudgetUsage, o.UsageLevel()),
	}

	if len(o.Recent) > 0 {
		lines = append(lines, "", "Recent expenses:")
		for _, t := range o.Recent {
			lines = append(lines, formatTransaction(t, categories, loc))
		}
	}

	if len(o.ByCategory) > 0 {
		lines = append(lines, "", "By category:")
		for _, c := range o.ByCategory {
			lines = append(lines, fmt.Sprintf("%s: %d, %s", c.Name, c.Count, money(c.Total)))
		}
	}
	return strings.Join(lines, "\n")
}

// tail keeps the last listLimit lines and notes how many were left out.
func tail(lines []string) []string {
	if len(lines) <= listLimit {
		return lines
	}
	skipped := len(lines) - listLimit
	return append([]string{fmt.Sprintf("...%d earlier entries", skipped)}, lines[skipped:]...)
}
