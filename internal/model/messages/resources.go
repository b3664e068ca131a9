package messages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/dashboard"
	"max.ks1230/expense-tracker/internal/model/forms"
	"max.ks1230/expense-tracker/internal/model/session"
)

const (
	noCategoriesMessage   = "You have no categories yet. Add one with /category <name>."
	noTransactionsMessage = "You have no transactions yet"
	noBudgetsMessage      = "No budgets for this month"
	refreshedMessage      = "Your data has been reloaded."
	unknownCategoryFormat = "Unknown category %q. See /categories."
)

// providerFailure prefers the message the provider recorded for err.
func providerFailure(err error, sess *session.Session) string {
	return failure(err, sess.Expenses.Error())
}

func (s *HandlerService) handleRefresh(ctx context.Context, sess *session.Session, _ string) (string, error) {
	if err := sess.Expenses.LoadInitial(ctx); err != nil {
		return providerFailure(err, sess), nil
	}
	return refreshedMessage, nil
}

func (s *HandlerService) handleCategories(_ context.Context, sess *session.Session, _ string) (string, error) {
	categories := sess.Expenses.Categories()
	if len(categories) == 0 {
		return noCategoriesMessage, nil
	}
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, formatCategory(c))
	}
	return strings.Join(lines, "\n"), nil
}

// splitColor takes a trailing #color off a category name.
func splitColor(arg string) (name, color string) {
	fields := strings.Fields(arg)
	if n := len(fields); n > 1 && strings.HasPrefix(fields[n-1], "#") {
		return strings.Join(fields[:n-1], " "), fields[n-1]
	}
	return strings.Join(fields, " "), ""
}

func (s *HandlerService) handleAddCategory(ctx context.Context, sess *session.Session, arg string) (string, error) {
	if arg == "" {
		return usage("/category <name> [#color]"), nil
	}
	name, color := splitColor(arg)

	req, err := forms.Category{Name: name, Color: color}.Request()
	if err != nil {
		return failure(err, ""), nil
	}
	c, err := sess.Expenses.AddCategory(ctx, req)
	if err != nil {
		return providerFailure(err, sess), nil
	}
	if c == nil {
		return loginFirstMessage, nil
	}
	return "Category added: " + formatCategory(*c), nil
}

func (s *HandlerService) handleEditCategory(ctx context.Context, sess *session.Session, arg string) (string, error) {
	id, rest, _ := strings.Cut(arg, " ")
	if id == "" || strings.TrimSpace(rest) == "" {
		return usage("/category_edit <id> <name> [#color]"), nil
	}
	name, color := splitColor(rest)
	if strings.HasPrefix(name, "#") && color == "" {
		name, color = "", name
	}

	req, err := forms.Category{Name: name, Color: color}.UpdateRequest()
	if err != nil {
		return failure(err, ""), nil
	}
	c, err := sess.Expenses.UpdateCategory(ctx, id, req)
	if err != nil {
		return providerFailure(err, sess), nil
	}
	if c == nil {
		return loginFirstMessage, nil
	}
	return "Category updated: " + formatCategory(*c), nil
}

func (s *HandlerService) handleDeleteCategory(ctx context.Context, sess *session.Session, arg string) (string, error) {
	id := strings.TrimSpace(arg)
	if id == "" {
		return usage("/category_delete <id>"), nil
	}
	if err := sess.Expenses.DeleteCategory(ctx, id); err != nil {
		return providerFailure(err, sess), nil
	}
	return "Category deleted.", nil
}

// resolveCategory accepts a category ID or a case-insensitive name.
func resolveCategory(categories []expense.Category, ref string) (string, bool) {
	for _, c := range categories {
		if c.ID == ref {
			return c.ID, true
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, ref) {
			return c.ID, true
		}
	}
	return "", false
}

func (s *HandlerService) handleTransactions(_ context.Context, sess *session.Session, _ string) (string, error) {
	txs := sess.Expenses.Transactions()
	if len(txs) == 0 {
		return noTransactionsMessage, nil
	}
	categories := sess.Expenses.Categories()
	lines := make([]string, 0, len(txs))
	for _, t := range txs {
		lines = append(lines, formatTransaction(t, categories, s.location))
	}
	return strings.Join(tail(lines), "\n"), nil
}

func (s *HandlerService) handleExpense(ctx context.Context, sess *session.Session, arg string) (string, error) {
	return s.addTransaction(ctx, sess, arg, expense.Expense, expenseCommand)
}

func (s *HandlerService) handleIncome(ctx context.Context, sess *session.Session, arg string) (string, error) {
	return s.addTransaction(ctx, sess, arg, expense.Income, incomeCommand)
}

func looksLikeDate(s string) bool {
	return len(s) == len(forms.DateLayout) && s[4] == '-' && s[7] == '-'
}

func (s *HandlerService) addTransaction(ctx context.Context, sess *session.Session, arg string, kind expense.Kind, cmd string) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 3 {
		return usage(cmd + " <amount> <category> [YYYY-MM-DD] <description>"), nil
	}
	amount, categoryRef, rest := args[0], args[1], args[2:]

	date := ""
	if looksLikeDate(rest[0]) {
		date, rest = rest[0], rest[1:]
	}

	categoryID, ok := resolveCategory(sess.Expenses.Categories(), categoryRef)
	if !ok {
		return fmt.Sprintf(unknownCategoryFormat, categoryRef), nil
	}

	req, err := forms.Transaction{
		Description: strings.Join(rest, " "),
		Amount:      amount,
		Category:    categoryID,
		Date:        date,
		Kind:        kind,
		Location:    s.location,
	}.Request()
	if err != nil {
		return failure(err, ""), nil
	}

	t, err := sess.Expenses.AddTransaction(ctx, req)
	if err != nil {
		return providerFailure(err, sess), nil
	}
	if t == nil {
		return loginFirstMessage, nil
	}
	return "Saved: " + formatTransaction(*t, sess.Expenses.Categories(), s.location), nil
}

// parseAssignments reads "key=value" pairs. description takes the rest of
// the line so it may contain spaces.
func parseAssignments(text string) (map[string]string, bool) {
	res := make(map[string]string)
	for text = strings.TrimSpace(text); text != ""; text = strings.TrimSpace(text) {
		key, rest, ok := strings.Cut(text, "=")
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, false
		}
		key = strings.ToLower(key)
		if key == "description" {
			res[key] = strings.TrimSpace(rest)
			break
		}
		value, remaining, _ := strings.Cut(rest, " ")
		res[key] = value
		text = remaining
	}
	return res, len(res) > 0
}

func onlyKeys(values map[string]string, allowed ...string) bool {
	for key := range values {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return false
		}
	}
	return true
}

func (s *HandlerService) handleEditTransaction(ctx context.Context, sess *session.Session, arg string) (string, error) {
	const line = "/transaction_edit <id> [amount=] [category=] [date=] [type=] [description=]"

	id, rest, _ := strings.Cut(arg, " ")
	values, ok := parseAssignments(rest)
	if id == "" || !ok || !onlyKeys(values, "amount", "category", "date", "type", "description") {
		return usage(line), nil
	}

	categoryID := ""
	if ref := values["category"]; ref != "" {
		if categoryID, ok = resolveCategory(sess.Expenses.Categories(), ref); !ok {
			return fmt.Sprintf(unknownCategoryFormat, ref), nil
		}
	}

	req, err := forms.TransactionChanges{
		Description: values["description"],
		Amount:      values["amount"],
		Category:    categoryID,
		Date:        values["date"],
		Kind:        expense.Kind(values["type"]),
		Location:    s.location,
	}.Request()
	if err != nil {
		return failure(err, ""), nil
	}

	t, err := sess.Expenses.UpdateTransaction(ctx, id, req)
	if err != nil {
		return providerFailure(err, sess), nil
	}
	if t == nil {
		return loginFirstMessage, nil
	}
	return "Updated: " + formatTransaction(*t, sess.Expenses.Categories(), s.location), nil
}

func (s *HandlerService) handleDeleteTransaction(ctx context.Context, sess *session.Session, arg string) (string, error) {
	id := strings.TrimSpace(arg)
	if id == "" {
		return usage("/transaction_delete <id>"), nil
	}
	if err := sess.Expenses.DeleteTransaction(ctx, id); err != nil {
		return providerFailure(err, sess), nil
	}
	return "Transaction deleted.", nil
}

// period reads optional "[month] [year]" arguments, defaulting to today.
func (s *HandlerService) period(args []string) (month, year int, ok bool) {
	today := s.today()
	month, year = int(today.Month()), today.Year()
	if len(args) > 2 {
		return 0, 0, false
	}

	var err error
	if len(args) > 0 {
		if month, err = strconv.Atoi(args[0]); err != nil || month < 1 || month > 12 {
			return 0, 0, false
		}
	}
	if len(args) > 1 {
		if year, err = strconv.Atoi(args[1]); err != nil {
			return 0, 0, false
		}
	}
	return month, year, true
}

func (s *HandlerService) handleBudgets(ctx context.Context, sess *session.Session, arg string) (string, error) {
	month, year, ok := s.period(strings.Fields(arg))
	if !ok {
		return usage("/budgets [month] [year]"), nil
	}
	if err := sess.Expenses.FetchBudgets(ctx, month, year); err != nil {
		return providerFailure(err, sess), nil
	}

	budgets := sess.Expenses.Budgets()
	if len(budgets) == 0 {
		return noBudgetsMessage, nil
	}
	categories := sess.Expenses.Categories()
	lines := make([]string, 0, len(budgets))
	for _, b := range budgets {
		lines = append(lines, formatBudget(b, categories))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleAddBudget(ctx context.Context, sess *session.Session, arg string) (string, error) {
	const line = "/budget <category> <amount> [month] [year]"

	args := strings.Fields(arg)
	if len(args) < 2 || len(args) > 4 {
		return usage(line), nil
	}
	categoryID, ok := resolveCategory(sess.Expenses.Categories(), args[0])
	if !ok {
		return fmt.Sprintf(unknownCategoryFormat, args[0]), nil
	}

	today := s.today()
	f := forms.Budget{
		Category: categoryID,
		Amount:   args[1],
		Month:    strconv.Itoa(int(today.Month())),
		Year:     strconv.Itoa(today.Year()),
	}
	if len(args) > 2 {
		f.Month = args[2]
	}
	if len(args) > 3 {
		f.Year = args[3]
	}

	req, err := f.Request()
	if err != nil {
		return failure(err, ""), nil
	}
	b, err := sess.Expenses.AddBudget(ctx, req)
	if err != nil {
		return providerFailure(err, sess), nil
	}
	if b == nil {
		return loginFirstMessage, nil
	}
	return "Budget set: " + formatBudget(*b, sess.Expenses.Categories()), nil
}

func (s *HandlerService) handleEditBudget(ctx context.Context, sess *session.Session, arg string) (string, error) {
	const line = "/budget_edit <id> [amount=] [category=]"

	id, rest, _ := strings.Cut(arg, " ")
	values, ok := parseAssignments(rest)
	if id == "" || !ok || !onlyKeys(values, "amount", "category") {
		return usage(line), nil
	}

	categoryID := ""
	if ref := values["category"]; ref != "" {
		if categoryID, ok = resolveCategory(sess.Expenses.Categories(), ref); !ok {
			return fmt.Sprintf(unknownCategoryFormat, ref), nil
		}
	}

	req, err := forms.BudgetChanges{Category: categoryID, Amount: values["amount"]}.Request()
	if err != nil {
		return failure(err, ""), nil
	}
	b, err := sess.Expenses.UpdateBudget(ctx, id, req)
	if err != nil {
		return providerFailure(err, sess), nil
	}
	if b == nil {
		return loginFirstMessage, nil
	}
	return "Budget updated: " + formatBudget(*b, sess.Expenses.Categories()), nil
}

func (s *HandlerService) handleDeleteBudget(ctx context.Context, sess *session.Session, arg string) (string, error) {
	id := strings.TrimSpace(arg)
	if id == "" {
		return usage("/budget_delete <id>"), nil
	}
	if err := sess.Expenses.DeleteBudget(ctx, id); err != nil {
		return providerFailure(err, sess), nil
	}
	return "Budget deleted.", nil
}

func (s *HandlerService) handleSummary(ctx context.Context, sess *session.Session, arg string) (string, error) {
	month, year, ok := s.period(strings.Fields(arg))
	if !ok {
		return usage("/summary [month] [year]"), nil
	}
	if err := sess.Expenses.FetchBudgetSummary(ctx, month, year); err != nil {
		return providerFailure(err, sess), nil
	}

	summary, period, ok := sess.Expenses.BudgetSummary()
	if !ok {
		return loginFirstMessage, nil
	}
	return formatSummary(summary, period.Month, period.Year, sess.Expenses.Categories()), nil
}

func (s *HandlerService) handleDashboard(_ context.Context, sess *session.Session, _ string) (string, error) {
	today := s.today()

	var summary *expense.BudgetSummary
	if cached, period, ok := sess.Expenses.BudgetSummary(); ok && period == sess.Expenses.CurrentPeriod() {
		summary = &cached
	}

	categories := sess.Expenses.Categories()
	overview := dashboard.Build(categories, sess.Expenses.Transactions(), summary, today)
	return formatOverview(overview, categories, s.location), nil
}
