package apitest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jinzhu/now"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/services"
)

type owned interface {
	expense.Category | expense.Transaction | expense.Budget
}

func ownerOf[T owned](item T) (id, owner string) {
	switch v := any(item).(type) {
	case expense.Category:
		return v.ID, v.User
	case expense.Transaction:
		return v.ID, v.User
	case expense.Budget:
		return v.ID, v.User
	}
	return "", ""
}

func listFor[T owned](items []T, userID string) []T {
	res := make([]T, 0)
	for _, item := range items {
		if _, owner := ownerOf(item); owner == userID {
			res = append(res, item)
		}
	}
	return res
}

func indexFor[T owned](items []T, userID, id string) int {
	for i, item := range items {
		if itemID, owner := ownerOf(item); itemID == id && owner == userID {
			return i
		}
	}
	return -1
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, listFor(s.categories, userID(r)))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCategoryRequest
	if err := decode(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Please add a category name")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	c := expense.Category{
		ID:        s.nextID(),
		Name:      req.Name,
		Color:     req.Color,
		User:      userID(r),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.categories = append(s.categories, c)
	writeData(w, http.StatusCreated, c)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexFor(s.categories, userID(r), chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeData(w, http.StatusOK, s.categories[i])
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexFor(s.categories, userID(r), chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	c := &s.categories[i]
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Color != "" {
		c.Color = req.Color
	}
	c.UpdatedAt = s.now()
	writeData(w, http.StatusOK, *c)
}

// deleteCategory leaves transactions and budgets pointing at the category.
func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexFor(s.categories, userID(r), chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	s.categories = append(s.categories[:i:i], s.categories[i+1:]...)
	writeData(w, http.StatusOK, map[string]any{})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, listFor(s.transactions, userID(r)))
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTransactionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Amount.IsPositive() || !req.Kind.Valid() || req.Category == "" {
		writeError(w, http.StatusBadRequest, "Please provide a positive amount, a type and a category")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	date := ts
	if req.Date != nil {
		date = *req.Date
	}
	t := expense.Transaction{
		ID:          s.nextID(),
		Amount:      req.Amount,
		Kind:        req.Kind,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		User:        userID(r),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	s.transactions = append(s.transactions, t)
	writeData(w, http.StatusCreated, t)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexFor(s.transactions, userID(r), chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	writeData(w, http.StatusOK, s.transactions[i])
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateTransactionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexFor(s.transactions, userID(r), chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	t := &s.transactions[i]
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			writeError(w, http.StatusBadRequest, "Amount must be positive")
			return
		}
		t.Amount = *req.Amount
	}
	if req.Kind != "" {
		t.Kind = req.Kind
	}
	if req.Category != "" {
		t.Category = req.Category
	}
	if req.Description != "" {
		t.Description = req.Description
	}
	if req.Date != nil {
		t.Date = *req.Date
	}
	t.UpdatedAt = s.now()
	writeData(w, http.StatusOK, *t)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexFor(s.transactions, userID(r), chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	s.transactions = append(s.transactions[:i:i], s.transactions[i+1:]...)
	writeData(w, http.StatusOK, map[string]any{})
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	s.mu.Lock()
	defer s.mu.Unlock()

	res := listFor(s.budgets, userID(r))
	if month > 0 && year > 0 {
		filtered := make([]expense.Budget, 0, len(res))
		for _, b := range res {
			if b.Month == month && b.Year == year {
				filtered = append(filtered, b)
			}
		}
		res = filtered
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBudgetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" || !req.Amount.IsPositive() || req.Month < 1 || req.Month > 12 || req.Year < 1 {
		writeError(w, http.StatusBadRequest, "Please provide a category, a positive amount, a month and a year")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	b := expense.Budget{
		ID:        s.nextID(),
		Category:  req.Category,
		Amount:    req.Amount,
		Month:     req.Month,
		Year:      req.Year,
		User:      userID(r),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	s.budgets = append(s.budgets, b)
	writeData(w, http.StatusCreated, b)
}

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexFor(s.budgets, userID(r), chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Budget not found")
		return
	}
	writeData(w, http.StatusOK, s.budgets[i])
}

func (s *Server) updateBudget(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateBudgetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexFor(s.budgets, userID(r), chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Budget not found")
		return
	}
	b := &s.budgets[i]
	if req.Category != "" {
		b.Category = req.Category
	}
	if req.Amount != nil {
		b.Amount = *req.Amount
	}
	if req.Month != 0 {
		b.Month = req.Month
	}
	if req.Year != 0 {
		b.Year = req.Year
	}
	b.UpdatedAt = s.now()
	writeData(w, http.StatusOK, *b)
}

func (s *Server) deleteBudget(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexFor(s.budgets, userID(r), chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Budget not found")
		return
	}
	s.budgets = append(s.budgets[:i:i], s.budgets[i+1:]...)
	writeData(w, http.StatusOK, map[string]any{})
}

// summary aggregates budgets and expenses of one month. Categories with
// spending but no budget show up with a zero budget.
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	year := s.now().Year()
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil {
		year = y
	}
	first := now.New(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	begin, end := first.BeginningOfMonth(), first.EndOfMonth()

	uid := userID(r)
	res := expense.BudgetSummary{Categories: make(map[string]expense.Figures)}

	for _, b := range listFor(s.budgets, uid) {
		if b.Month != month || b.Year != year {
			continue
		}
		fig := res.Categories[b.Category]
		fig.Budget = fig.Budget.Add(b.Amount)
		res.Categories[b.Category] = fig
		res.Budget = res.Budget.Add(b.Amount)
	}

	for _, t := range listFor(s.transactions, uid) {
		date := t.Date.UTC()
		if t.Kind != expense.Expense || date.Before(begin) || date.After(end) {
			continue
		}
		fig := res.Categories[t.Category]
		fig.Spent = fig.Spent.Add(t.Amount)
		res.Categories[t.Category] = fig
		res.Spent = res.Spent.Add(t.Amount)
	}

	for id, fig := range res.Categories {
		fig.Remaining = fig.Budget.Sub(fig.Spent)
		res.Categories[id] = fig
	}
	res.Remaining = res.Budget.Sub(res.Spent)

	writeData(w, http.StatusOK, res)
}
