package forms

import (
	"strings"
	"time"

	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/services"
)

// Transaction is the add form. Kind defaults to an expense, a blank Date
// lets the server pick today. Date is read in Location, UTC when nil.
type Transaction struct {
	Description string
	Amount      string
	Category    string
	Date        string
	Kind        expense.Kind
	Location    *time.Location
}

func (f Transaction) Request() (services.CreateTransactionRequest, error) {
	var c checker
	c.required("description", f.Description, descriptionMessage)
	amount := c.positive("amount", f.Amount, amountMessage)
	c.required("category", f.Category, categoryMessage)
	date := c.date("date", f.Date, f.Location)

	kind := f.Kind
	if kind == "" {
		kind = expense.Expense
	}
	c.check(kind.Valid(), "type", kindMessage)

	return services.CreateTransactionRequest{
		Amount:      amount,
		Kind:        kind,
		Category:    strings.TrimSpace(f.Category),
		Description: strings.TrimSpace(f.Description),
		Date:        date,
	}, c.err()
}

// TransactionChanges is the edit form, blank fields stay as they are.
type TransactionChanges struct {
	Description string
	Amount      string
	Category    string
	Date        string
	Kind        expense.Kind
	Location    *time.Location
}

func (f TransactionChanges) Request() (services.UpdateTransactionRequest, error) {
	var c checker
	var req services.UpdateTransactionRequest

	if strings.TrimSpace(f.Amount) != "" {
		amount := c.positive("amount", f.Amount, amountMessage)
		req.Amount = &amount
	}
	if f.Kind != "" {
		c.check(f.Kind.Valid(), "type", kindMessage)
		req.Kind = f.Kind
	}
	req.Date = c.date("date", f.Date, f.Location)
	req.Category = strings.TrimSpace(f.Category)
	req.Description = strings.TrimSpace(f.Description)

	blank := strings.TrimSpace(f.Amount+f.Date+f.Category+f.Description) == "" && f.Kind == ""
	c.check(!blank, "", emptyChangeMessage)
	return req, c.err()
}

type Category struct {
	Name  string
	Color string
}

func (f Category) Request() (services.CreateCategoryRequest, error) {
	var c checker
	c.required("name", f.Name, nameMessage)
	color := strings.TrimSpace(f.Color)
	c.color("color", color)
	return services.CreateCategoryRequest{Name: strings.TrimSpace(f.Name), Color: color}, c.err()
}

// UpdateRequest accepts a blank name when only the colour changes.
func (f Category) UpdateRequest() (services.UpdateCategoryRequest, error) {
	var c checker
	name := strings.TrimSpace(f.Name)
	color := strings.TrimSpace(f.Color)
	c.color("color", color)
	c.check(name != "" || color != "", "", emptyChangeMessage)
	return services.UpdateCategoryRequest{Name: name, Color: color}, c.err()
}

type Budget struct {
	Category string
	Amount   string
	Month    string
	Year     string
}

func (f Budget) Request() (services.CreateBudgetRequest, error) {
	var c checker
	c.required("category", f.Category, categoryMessage)
	amount := c.positive("amount", f.Amount, budgetAmountMessage)
	month := c.intRange("month", f.Month, 1, 12, monthMessage)
	year := c.intRange("year", f.Year, minYear, 0, yearMessage)
	return services.CreateBudgetRequest{
		Category: strings.TrimSpace(f.Category),
		Amount:   amount,
		Month:    month,
		Year:     year,
	}, c.err()
}

// BudgetChanges is the edit form, blank fields stay as they are.
type BudgetChanges struct {
	Category string
	Amount   string
}

func (f BudgetChanges) Request() (services.UpdateBudgetRequest, error) {
	var c checker
	var req services.UpdateBudgetRequest

	if strings.TrimSpace(f.Amount) != "" {
		amount := c.positive("amount", f.Amount, budgetAmountMessage)
		req.Amount = &amount
	}
	req.Category = strings.TrimSpace(f.Category)
	c.check(req.Amount != nil || req.Category != "", "", emptyChangeMessage)
	return req, c.err()
}
