package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"max.ks1230/expense-tracker/internal/entity/expense"
)

const transactionsPath = "/api/transactions"

type CreateTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Kind        expense.Kind    `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        *time.Time      `json:"date,omitempty"`
}

// UpdateTransactionRequest sends only the fields that are set.
type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Kind        expense.Kind     `json:"type,omitempty"`
	Category    string           `json:"category,omitempty"`
	Description string           `json:"description,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
}

func (r CreateTransactionRequest) MarshalJSON() ([]byte, error) {
	type plain CreateTransactionRequest
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(r), expense.Number(&r.Amount)})
}

func (r UpdateTransactionRequest) MarshalJSON() ([]byte, error) {
	type plain UpdateTransactionRequest
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount,omitempty"`
	}{plain(r), expense.Number(r.Amount)})
}

type TransactionService struct {
	client requester
}

func NewTransactionService(client requester) *TransactionService {
	return &TransactionService{client: client}
}

func (s *TransactionService) List(ctx context.Context) ([]expense.Transaction, error) {
	return call[[]expense.Transaction](ctx, s.client, http.MethodGet, transactionsPath, nil)
}

func (s *TransactionService) Get(ctx context.Context, id string) (expense.Transaction, error) {
	return call[expense.Transaction](ctx, s.client, http.MethodGet, resourcePath(transactionsPath, id), nil)
}

func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (expense.Transaction, error) {
	return call[expense.Transaction](ctx, s.client, http.MethodPost, transactionsPath, req)
}

func (s *TransactionService) Update(ctx context.Context, id string, req UpdateTransactionRequest) (expense.Transaction, error) {
	return call[expense.Transaction](ctx, s.client, http.MethodPut, resourcePath(transactionsPath, id), req)
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	return send(ctx, s.client, http.MethodDelete, resourcePath(transactionsPath, id), nil)
}
