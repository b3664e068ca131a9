package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/entity/expense"
)

const budgetsPath = "/api/budgets"

type CreateBudgetRequest struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Month    int             `json:"month"`
	Year     int             `json:"year"`
}

type UpdateBudgetRequest struct {
	Category string           `json:"category,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Month    int              `json:"month,omitempty"`
	Year     int              `json:"year,omitempty"`
}

func (r CreateBudgetRequest) MarshalJSON() ([]byte, error) {
	type plain CreateBudgetRequest
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(r), expense.Number(&r.Amount)})
}

func (r UpdateBudgetRequest) MarshalJSON() ([]byte, error) {
	type plain UpdateBudgetRequest
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount,omitempty"`
	}{plain(r), expense.Number(r.Amount)})
}

type BudgetService struct {
	client requester
}

func NewBudgetService(client requester) *BudgetService {
	return &BudgetService{client: client}
}

func (s *BudgetService) List(ctx context.Context) ([]expense.Budget, error) {
	return call[[]expense.Budget](ctx, s.client, http.MethodGet, budgetsPath, nil)
}

func (s *BudgetService) ListByMonth(ctx context.Context, month, year int) ([]expense.Budget, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))
	return call[[]expense.Budget](ctx, s.client, http.MethodGet, budgetsPath+"?"+q.Encode(), nil)
}

func (s *BudgetService) Get(ctx context.Context, id string) (expense.Budget, error) {
	return call[expense.Budget](ctx, s.client, http.MethodGet, resourcePath(budgetsPath, id), nil)
}

func (s *BudgetService) Create(ctx context.Context, req CreateBudgetRequest) (expense.Budget, error) {
	return call[expense.Budget](ctx, s.client, http.MethodPost, budgetsPath, req)
}

func (s *BudgetService) Update(ctx context.Context, id string, req UpdateBudgetRequest) (expense.Budget, error) {
	return call[expense.Budget](ctx, s.client, http.MethodPut, resourcePath(budgetsPath, id), req)
}

func (s *BudgetService) Delete(ctx context.Context, id string) error {
	return send(ctx, s.client, http.MethodDelete, resourcePath(budgetsPath, id), nil)
}

// Summary addresses the month in the path, the year rides along as a query
// parameter.
func (s *BudgetService) Summary(ctx context.Context, month, year int) (expense.BudgetSummary, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	path := budgetsPath + "/summary/" + strconv.Itoa(month) + "?" + q.Encode()
	return call[expense.BudgetSummary](ctx, s.client, http.MethodGet, path, nil)
}
