package services

import (
	"context"
	"net/http"

	"max.ks1230/expense-tracker/internal/entity/expense"
)

const categoriesPath = "/api/categories"

type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type UpdateCategoryRequest struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

type CategoryService struct {
	client requester
}

func NewCategoryService(client requester) *CategoryService {
	return &CategoryService{client: client}
}

func (s *CategoryService) List(ctx context.Context) ([]expense.Category, error) {
	return call[[]expense.Category](ctx, s.client, http.MethodGet, categoriesPath, nil)
}

func (s *CategoryService) Get(ctx context.Context, id string) (expense.Category, error) {
	return call[expense.Category](ctx, s.client, http.MethodGet, resourcePath(categoriesPath, id), nil)
}

func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (expense.Category, error) {
	return call[expense.Category](ctx, s.client, http.MethodPost, categoriesPath, req)
}

func (s *CategoryService) Update(ctx context.Context, id string, req UpdateCategoryRequest) (expense.Category, error) {
	return call[expense.Category](ctx, s.client, http.MethodPut, resourcePath(categoriesPath, id), req)
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return send(ctx, s.client, http.MethodDelete, resourcePath(categoriesPath, id), nil)
}
