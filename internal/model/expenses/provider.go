package expenses

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"max.ks1230/expense-tracker/internal/clients/api"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/auth"
	"max.ks1230/expense-tracker/internal/model/events"
	"max.ks1230/expense-tracker/internal/services"
)

type categoryService interface {
	List(ctx context.Context) ([]expense.Category, error)
	Create(ctx context.Context, req services.CreateCategoryRequest) (expense.Category, error)
	Update(ctx context.Context, id string, req services.UpdateCategoryRequest) (expense.Category, error)
	Delete(ctx context.Context, id string) error
}

type transactionService interface {
	List(ctx context.Context) ([]expense.Transaction, error)
	Create(ctx context.Context, req services.CreateTransactionRequest) (expense.Transaction, error)
	Update(ctx context.Context, id string, req services.UpdateTransactionRequest) (expense.Transaction, error)
	Delete(ctx context.Context, id string) error
}

type budgetService interface {
	List(ctx context.Context) ([]expense.Budget, error)
	ListByMonth(ctx context.Context, month, year int) ([]expense.Budget, error)
	Create(ctx context.Context, req services.CreateBudgetRequest) (expense.Budget, error)
	Update(ctx context.Context, id string, req services.UpdateBudgetRequest) (expense.Budget, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, month, year int) (expense.BudgetSummary, error)
}

type authState interface {
	Authenticated() bool
}

// Loading flags, one per collection.
type Loading struct {
	Categories    bool
	Transactions  bool
	Budgets       bool
	BudgetSummary bool
}

func (l Loading) Any() bool {
	return l.Categories || l.Transactions || l.Budgets || l.BudgetSummary
}

type slot int

const (
	slotCategories slot = iota
	slotTransactions
	slotBudgets
	slotSummary
)

func (l *Loading) set(s slot, v bool) {
	switch s {
	case slotCategories:
		l.Categories = v
	case slotTransactions:
		l.Transactions = v
	case slotBudgets:
		l.Budgets = v
	case slotSummary:
		l.BudgetSummary = v
	}
}

// Period identifies a budget month.
type Period struct {
	Month int
	Year  int
}

func periodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

type Option func(p *Provider)

func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// Provider caches the categories, transactions, budgets and budget summary
// of the signed-in user. Mutations patch the cache locally instead of
// refetching; the summary is refreshed through the event bus.
type Provider struct {
	auth         authState
	categorySvc  categoryService
	txSvc        transactionService
	budgetSvc    budgetService
	bus          *events.Bus
	now          func() time.Time
	background   sync.WaitGroup
	mu           sync.RWMutex
	generation   uint64
	categories   []expense.Category
	transactions []expense.Transaction
	budgets      []expense.Budget
	summary      *expense.BudgetSummary
	period       Period
	loading      Loading
	errMsg       string
}

func NewProvider(
	auth authState,
	categories categoryService,
	transactions transactionService,
	budgets budgetService,
	bus *events.Bus,
	opts ...Option,
) *Provider {
	p := &Provider{
		auth:        auth,
		categorySvc: categories,
		txSvc:       transactions,
		budgetSvc:   budgets,
		bus:         bus,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	bus.Subscribe(events.HandlerFunc(p.refreshSummary))
	return p
}

// OnAuthChanged loads everything for a fresh session and drops the cache
// when the user goes away.
func (p *Provider) OnAuthChanged(ctx context.Context, change auth.Change) {
	switch change.State {
	case auth.StateAuthenticated:
		p.Reset()
		p.spawn(ctx, func(ctx context.Context) {
			_ = p.LoadInitial(ctx)
		})
	case auth.StateAnonymous:
		p.Reset()
	}
}

// LoadInitial fetches categories, transactions and the current month's
// budgets and summary concurrently. Every failure is recorded, the first
// one is returned.
func (p *Provider) LoadInitial(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "loadInitial")
	defer span.Finish()

	current := p.CurrentPeriod()

	var g errgroup.Group
	g.Go(func() error { return p.FetchCategories(ctx) })
	g.Go(func() error { return p.FetchTransactions(ctx) })
	g.Go(func() error { return p.FetchBudgets(ctx, current.Month, current.Year) })
	g.Go(func() error { return p.FetchBudgetSummary(ctx, current.Month, current.Year) })
	return g.Wait()
}

// Reset empties every collection. Responses to requests sent before the
// reset are discarded.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	p.categories = nil
	p.transactions = nil
	p.budgets = nil
	p.summary = nil
	p.period = Period{}
	p.loading = Loading{}
	p.errMsg = ""
}

// Wait blocks until background loads and summary refreshes are done.
func (p *Provider) Wait() {
	p.background.Wait()
}

func (p *Provider) CurrentPeriod() Period {
	return periodOf(p.now())
}

func (p *Provider) Categories() []expense.Category {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clone(p.categories)
}

func (p *Provider) Transactions() []expense.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clone(p.transactions)
}

func (p *Provider) Budgets() []expense.Budget {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clone(p.budgets)
}

// BudgetSummary returns the cached summary and the month it describes.
func (p *Provider) BudgetSummary() (expense.BudgetSummary, Period, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.summary == nil {
		return expense.BudgetSummary{}, Period{}, false
	}
	return p.summary.Clone(), p.period, true
}

func (p *Provider) Loading() Loading {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Error is the display message of the most recent failure, cleared when the
// next operation starts.
func (p *Provider) Error() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errMsg
}

// begin raises the loading flag and returns the cache generation the
// response has to be applied to.
func (p *Provider) begin(s slot) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading.set(s, true)
	p.errMsg = ""
	return p.generation
}

func (p *Provider) commit(s slot, gen uint64, apply func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return
	}
	p.loading.set(s, false)
	apply()
}

func (p *Provider) fail(s slot, gen uint64, err error, fallback string) error {
	msg := api.DisplayMessage(err, fallback)

	p.mu.Lock()
	if gen == p.generation {
		p.loading.set(s, false)
		p.errMsg = msg
	}
	p.mu.Unlock()

	logger.Error(fallback, zap.String("message", msg), zap.Error(err))
	return err
}

func (p *Provider) publish(ctx context.Context, e events.Event) {
	p.bus.Publish(ctx, e)
}

// spawn runs fn in the background, detached from the caller's cancellation.
func (p *Provider) spawn(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	p.background.Add(1)
	go func() {
		defer p.background.Done()
		fn(ctx)
	}()
}

// refreshSummary reloads the current month's summary after a transaction or
// budget changed. Failures only land in the error slot.
func (p *Provider) refreshSummary(ctx context.Context, e events.Event) {
	if !e.AffectsSummary() {
		return
	}
	current := p.CurrentPeriod()
	p.spawn(ctx, func(ctx context.Context) {
		_ = p.FetchBudgetSummary(ctx, current.Month, current.Year)
	})
}

// fetch runs a list call and replaces the collection on success.
func fetch[T any](ctx context.Context, p *Provider, s slot, fallback string, get func(ctx context.Context) (T, error), store func(T)) error {
	if !p.auth.Authenticated() {
		return nil
	}

	gen := p.begin(s)
	res, err := get(ctx)
	if err != nil {
		return p.fail(s, gen, err, fallback)
	}
	p.commit(s, gen, func() { store(res) })
	return nil
}

// mutate runs a write call and patches the collection on success. It returns
// nil, nil when nobody is signed in.
func mutate[T any](ctx context.Context, p *Provider, s slot, fallback string, call func(ctx context.Context) (T, error), apply func(T)) (*T, error) {
	if !p.auth.Authenticated() {
		return nil, nil
	}

	gen := p.begin(s)
	res, err := call(ctx)
	if err != nil {
		return nil, p.fail(s, gen, err, fallback)
	}
	p.commit(s, gen, func() { apply(res) })
	return &res, nil
}
