package expenses

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/events"
	"max.ks1230/expense-tracker/internal/services"
)

const (
	fetchBudgetsFailed = "Failed to fetch budgets"
	fetchSummaryFailed = "Failed to fetch budget summary"
	addBudgetFailed    = "Failed to add budget"
	updateBudgetFailed = "Failed to update budget"
	deleteBudgetFailed = "Failed to delete budget"
)

// FetchBudgets loads the budgets of one month, or all of them when month
// and year are zero.
func (p *Provider) FetchBudgets(ctx context.Context, month, year int) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fetchBudgets")
	defer span.Finish()

	list := p.budgetSvc.List
	if month != 0 && year != 0 {
		list = func(ctx context.Context) ([]expense.Budget, error) {
			return p.budgetSvc.ListByMonth(ctx, month, year)
		}
	}
	return fetch(ctx, p, slotBudgets, fetchBudgetsFailed, list, func(res []expense.Budget) {
		p.budgets = res
	})
}

func (p *Provider) FetchBudgetSummary(ctx context.Context, month, year int) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fetchBudgetSummary")
	defer span.Finish()

	get := func(ctx context.Context) (expense.BudgetSummary, error) {
		return p.budgetSvc.Summary(ctx, month, year)
	}
	return fetch(ctx, p, slotSummary, fetchSummaryFailed, get, func(res expense.BudgetSummary) {
		p.summary = &res
		p.period = Period{Month: month, Year: year}
	})
}

func (p *Provider) AddBudget(ctx context.Context, req services.CreateBudgetRequest) (*expense.Budget, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "addBudget")
	defer span.Finish()

	res, err := mutate(ctx, p, slotBudgets, addBudgetFailed,
		func(ctx context.Context) (expense.Budget, error) {
			return p.budgetSvc.Create(ctx, req)
		},
		func(b expense.Budget) {
			p.budgets = appendItem(p.budgets, b)
		})
	if res != nil {
		p.publish(ctx, budgetEvent(events.Created, *res))
	}
	return res, err
}

func (p *Provider) UpdateBudget(ctx context.Context, id string, req services.UpdateBudgetRequest) (*expense.Budget, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "updateBudget")
	defer span.Finish()

	res, err := mutate(ctx, p, slotBudgets, updateBudgetFailed,
		func(ctx context.Context) (expense.Budget, error) {
			return p.budgetSvc.Update(ctx, id, req)
		},
		func(b expense.Budget) {
			p.budgets = replaceByKey(p.budgets, id, b)
		})
	if res != nil {
		p.publish(ctx, budgetEvent(events.Updated, *res))
	}
	return res, err
}

func (p *Provider) DeleteBudget(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "deleteBudget")
	defer span.Finish()

	res, err := mutate(ctx, p, slotBudgets, deleteBudgetFailed,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.budgetSvc.Delete(ctx, id)
		},
		func(struct{}) {
			p.budgets = removeByKey(p.budgets, id)
		})
	if res != nil {
		p.publish(ctx, events.New(events.Budget, events.Deleted, id))
	}
	return err
}

func budgetEvent(action events.Action, b expense.Budget) events.Event {
	return events.New(events.Budget, action, b.ID).WithPeriod(b.Month, b.Year)
}
