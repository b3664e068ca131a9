package expenses

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/events"
	"max.ks1230/expense-tracker/internal/services"
)

const (
	fetchTransactionsFailed = "Failed to fetch transactions"
	addTransactionFailed    = "Failed to add transaction"
	updateTransactionFailed = "Failed to update transaction"
	deleteTransactionFailed = "Failed to delete transaction"
)

func (p *Provider) FetchTransactions(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fetchTransactions")
	defer span.Finish()

	return fetch(ctx, p, slotTransactions, fetchTransactionsFailed, p.txSvc.List, func(res []expense.Transaction) {
		p.transactions = res
	})
}

func (p *Provider) AddTransaction(ctx context.Context, req services.CreateTransactionRequest) (*expense.Transaction, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "addTransaction")
	defer span.Finish()

	res, err := mutate(ctx, p, slotTransactions, addTransactionFailed,
		func(ctx context.Context) (expense.Transaction, error) {
			return p.txSvc.Create(ctx, req)
		},
		func(t expense.Transaction) {
			p.transactions = appendItem(p.transactions, t)
		})
	if res != nil {
		p.publish(ctx, transactionEvent(events.Created, *res))
	}
	return res, err
}

func (p *Provider) UpdateTransaction(ctx context.Context, id string, req services.UpdateTransactionRequest) (*expense.Transaction, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "updateTransaction")
	defer span.Finish()

	res, err := mutate(ctx, p, slotTransactions, updateTransactionFailed,
		func(ctx context.Context) (expense.Transaction, error) {
			return p.txSvc.Update(ctx, id, req)
		},
		func(t expense.Transaction) {
			p.transactions = replaceByKey(p.transactions, id, t)
		})
	if res != nil {
		p.publish(ctx, transactionEvent(events.Updated, *res))
	}
	return res, err
}

func (p *Provider) DeleteTransaction(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "deleteTransaction")
	defer span.Finish()

	res, err := mutate(ctx, p, slotTransactions, deleteTransactionFailed,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.txSvc.Delete(ctx, id)
		},
		func(struct{}) {
			p.transactions = removeByKey(p.transactions, id)
		})
	if res != nil {
		p.publish(ctx, events.New(events.Transaction, events.Deleted, id))
	}
	return err
}

func transactionEvent(action events.Action, t expense.Transaction) events.Event {
	return events.New(events.Transaction, action, t.ID).
		WithPeriod(int(t.Date.Month()), t.Date.Year())
}
