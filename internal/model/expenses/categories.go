package expenses

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/events"
	"max.ks1230/expense-tracker/internal/services"
)

const (
	fetchCategoriesFailed = "Failed to fetch categories"
	addCategoryFailed     = "Failed to add category"
	updateCategoryFailed  = "Failed to update category"
	deleteCategoryFailed  = "Failed to delete category"
)

func (p *Provider) FetchCategories(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fetchCategories")
	defer span.Finish()

	return fetch(ctx, p, slotCategories, fetchCategoriesFailed, p.categorySvc.List, func(res []expense.Category) {
		p.categories = res
	})
}

func (p *Provider) AddCategory(ctx context.Context, req services.CreateCategoryRequest) (*expense.Category, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "addCategory")
	defer span.Finish()

	res, err := mutate(ctx, p, slotCategories, addCategoryFailed,
		func(ctx context.Context) (expense.Category, error) {
			return p.categorySvc.Create(ctx, req)
		},
		func(c expense.Category) {
			p.categories = appendItem(p.categories, c)
		})
	if res != nil {
		p.publish(ctx, events.New(events.Category, events.Created, res.ID))
	}
	return res, err
}

func (p *Provider) UpdateCategory(ctx context.Context, id string, req services.UpdateCategoryRequest) (*expense.Category, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "updateCategory")
	defer span.Finish()

	res, err := mutate(ctx, p, slotCategories, updateCategoryFailed,
		func(ctx context.Context) (expense.Category, error) {
			return p.categorySvc.Update(ctx, id, req)
		},
		func(c expense.Category) {
			p.categories = replaceByKey(p.categories, id, c)
		})
	if res != nil {
		p.publish(ctx, events.New(events.Category, events.Updated, id))
	}
	return res, err
}

// DeleteCategory leaves transactions and budgets referencing the category
// untouched.
func (p *Provider) DeleteCategory(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "deleteCategory")
	defer span.Finish()

	res, err := mutate(ctx, p, slotCategories, deleteCategoryFailed,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.categorySvc.Delete(ctx, id)
		},
		func(struct{}) {
			p.categories = removeByKey(p.categories, id)
		})
	if res != nil {
		p.publish(ctx, events.New(events.Category, events.Deleted, id))
	}
	return err
}
