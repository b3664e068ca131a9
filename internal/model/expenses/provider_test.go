package expenses

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/apitest"
	"max.ks1230/expense-tracker/internal/clients/api"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/model/auth"
	"max.ks1230/expense-tracker/internal/model/events"
	"max.ks1230/expense-tracker/internal/model/storage"
	"max.ks1230/expense-tracker/internal/services"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	srv      *apitest.Server
	creds    *storage.Scoped
	auth     *auth.Provider
	bus      *events.Bus
	provider *Provider
	received []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.SetClock(func() time.Time { return testNow })

	f := &fixture{
		srv:   srv,
		creds: storage.ForSession(storage.NewInMemStorage(), 1),
		bus:   events.NewBus(),
	}
	client := srv.NewClient(f.creds, api.WithExpiredHandler(func(ctx context.Context) {
		f.auth.Expire(ctx)
	}))
	f.auth = auth.NewProvider(services.NewAuthService(client), f.creds)
	f.provider = NewProvider(
		f.auth,
		services.NewCategoryService(client),
		services.NewTransactionService(client),
		services.NewBudgetService(client),
		f.bus,
		WithClock(func() time.Time { return testNow }),
	)
	f.auth.Subscribe(f.provider)
	f.bus.Subscribe(events.HandlerFunc(func(_ context.Context, e events.Event) {
		f.received = append(f.received, e)
	}))
	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	f.srv.CreateUser("alice", "alice@example.com", "secret1")
	err := f.auth.Login(context.Background(), services.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	f.provider.Wait()
}

func (f *fixture) addCategory(t *testing.T, name string) expense.Category {
	t.Helper()
	c, err := f.provider.AddCategory(context.Background(), services.CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	require.NotNil(t, c)
	return *c
}

func Test_OnAnonymousSession_ShouldSkipRequests(t *testing.T) {
	f := newFixture(t)
	f.auth.Start(context.Background())

	c, err := f.provider.AddCategory(context.Background(), services.CreateCategoryRequest{Name: "Food"})
	require.NoError(t, err)
	assert.Nil(t, c)

	require.NoError(t, f.provider.FetchTransactions(context.Background()))
	assert.Zero(t, f.srv.Hits(http.MethodPost, "/api/categories"))
	assert.Zero(t, f.srv.Hits(http.MethodGet, "/api/transactions"))
	assert.Empty(t, f.received)
}

func Test_OnLogin_ShouldLoadCurrentMonth(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/api/categories"))
	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/api/transactions"))
	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/api/budgets"))
	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/api/budgets/summary/3"))
	assert.False(t, f.provider.Loading().Any())
	assert.Empty(t, f.provider.Error())

	_, period, ok := f.provider.BudgetSummary()
	require.True(t, ok)
	assert.Equal(t, Period{Month: 3, Year: 2024}, period)
}

func Test_OnRegisterAndFractionalExpense_ShouldFetchItBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.auth.Start(ctx)

	require.NoError(t, f.auth.Signup(ctx, services.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"}))
	f.provider.Wait()
	f.auth.Logout(ctx)
	require.NoError(t, f.auth.Login(ctx, services.LoginRequest{Email: "alice@example.com", Password: "secret1"}))
	f.provider.Wait()

	food := f.addCategory(t, "Food")
	_, err := f.provider.AddTransaction(ctx, services.CreateTransactionRequest{
		Amount:      decimal.RequireFromString("20.5"),
		Kind:        expense.Expense,
		Category:    food.ID,
		Description: "Lunch",
	})
	require.NoError(t, err)
	f.provider.Wait()

	require.NoError(t, f.provider.FetchTransactions(ctx))

	txs := f.provider.Transactions()
	require.Len(t, txs, 1)
	assert.True(t, decimal.RequireFromString("20.5").Equal(txs[0].Amount), "got %s", txs[0].Amount)
	assert.Equal(t, food.ID, txs[0].Category)
	assert.Equal(t, 3, f.srv.Hits(http.MethodGet, "/api/transactions"))
}

func Test_OnCategoryMutations_ShouldMatchServer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	food := f.addCategory(t, "Food")
	rent := f.addCategory(t, "Rent")

	updated, err := f.provider.UpdateCategory(ctx, food.ID, services.UpdateCategoryRequest{Name: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Name)

	require.NoError(t, f.provider.DeleteCategory(ctx, rent.ID))

	local := f.provider.Categories()
	require.NoError(t, f.provider.FetchCategories(ctx))
	assert.Equal(t, f.provider.Categories(), local)
	require.Len(t, local, 1)
	assert.Equal(t, "Groceries", local[0].Name)
	assert.Equal(t, 2, f.srv.Hits(http.MethodGet, "/api/categories"))
}

func Test_OnCategoryMutations_ShouldPublishEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	food := f.addCategory(t, "Food")
	require.NoError(t, f.provider.DeleteCategory(ctx, food.ID))

	require.Len(t, f.received, 2)
	assert.Equal(t, events.Created, f.received[0].Action)
	assert.Equal(t, events.Deleted, f.received[1].Action)
	assert.Equal(t, food.ID, f.received[1].EntityID)
	assert.False(t, f.received[0].AffectsSummary())
}

func Test_OnExpenseInBudgetedMonth_ShouldRefreshSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	food := f.addCategory(t, "Food")
	_, err := f.provider.AddBudget(ctx, services.CreateBudgetRequest{
		Category: food.ID,
		Amount:   decimal.NewFromInt(100),
		Month:    3,
		Year:     2024,
	})
	require.NoError(t, err)
	f.provider.Wait()

	tx, err := f.provider.AddTransaction(ctx, services.CreateTransactionRequest{
		Amount:      decimal.NewFromInt(50),
		Kind:        expense.Expense,
		Category:    food.ID,
		Description: "Lunch",
	})
	require.NoError(t, err)
	require.NotNil(t, tx)
	f.provider.Wait()

	summary, _, ok := f.provider.BudgetSummary()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(100).Equal(summary.Budget))
	assert.True(t, decimal.NewFromInt(50).Equal(summary.Spent))
	assert.True(t, decimal.NewFromInt(50).Equal(summary.Remaining))
	assert.True(t, decimal.NewFromInt(50).Equal(summary.Categories[food.ID].Remaining))

	last := f.received[len(f.received)-1]
	assert.Equal(t, events.Transaction, last.Entity)
	assert.Equal(t, 3, last.Month)
	assert.Equal(t, 2024, last.Year)
}

func Test_OnCategoryDelete_ShouldKeepTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	food := f.addCategory(t, "Food")
	_, err := f.provider.AddTransaction(ctx, services.CreateTransactionRequest{
		Amount:   decimal.NewFromInt(12),
		Kind:     expense.Expense,
		Category: food.ID,
	})
	require.NoError(t, err)
	f.provider.Wait()

	require.NoError(t, f.provider.DeleteCategory(ctx, food.ID))

	assert.Empty(t, f.provider.Categories())
	txs := f.provider.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, food.ID, txs[0].Category)
}

func Test_OnTransactionUpdate_ShouldReplaceInPlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	food := f.addCategory(t, "Food")
	first, err := f.provider.AddTransaction(ctx, services.CreateTransactionRequest{
		Amount: decimal.NewFromInt(10), Kind: expense.Expense, Category: food.ID, Description: "Tea",
	})
	require.NoError(t, err)
	_, err = f.provider.AddTransaction(ctx, services.CreateTransactionRequest{
		Amount: decimal.NewFromInt(20), Kind: expense.Income, Category: food.ID, Description: "Refund",
	})
	require.NoError(t, err)

	amount := decimal.NewFromInt(15)
	_, err = f.provider.UpdateTransaction(ctx, first.ID, services.UpdateTransactionRequest{Amount: &amount})
	require.NoError(t, err)
	f.provider.Wait()

	txs := f.provider.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, first.ID, txs[0].ID)
	assert.True(t, amount.Equal(txs[0].Amount))
	assert.Equal(t, "Refund", txs[1].Description)
}

func Test_OnServerError_ShouldKeepCollectionAndReportMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)
	food := f.addCategory(t, "Food")

	f.srv.FailNext(http.MethodPost, "/api/categories", http.StatusBadRequest, "Category already exists")
	c, err := f.provider.AddCategory(ctx, services.CreateCategoryRequest{Name: "Food"})

	require.Error(t, err)
	assert.Nil(t, c)
	assert.Equal(t, "Category already exists", f.provider.Error())
	assert.Equal(t, []expense.Category{food}, f.provider.Categories())
	assert.False(t, f.provider.Loading().Categories)
}

func Test_OnNetworkError_ShouldUseFallbackMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)
	food := f.addCategory(t, "Food")

	f.srv.FailNext(http.MethodDelete, "/api/categories/"+food.ID, 0, "")
	err := f.provider.DeleteCategory(ctx, food.ID)

	require.Error(t, err)
	assert.True(t, api.IsNetwork(err))
	assert.Equal(t, deleteCategoryFailed, f.provider.Error())
	assert.Len(t, f.provider.Categories(), 1)
}

func Test_OnNextOperation_ShouldClearError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	f.srv.FailNext(http.MethodGet, "/api/categories", http.StatusInternalServerError, "")
	require.Error(t, f.provider.FetchCategories(ctx))
	assert.Equal(t, fetchCategoriesFailed, f.provider.Error())

	require.NoError(t, f.provider.FetchCategories(ctx))
	assert.Empty(t, f.provider.Error())
}

func Test_OnLogout_ShouldClearEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)
	f.addCategory(t, "Food")

	f.auth.Logout(ctx)

	assert.Empty(t, f.provider.Categories())
	assert.Empty(t, f.provider.Transactions())
	assert.Empty(t, f.provider.Budgets())
	_, _, ok := f.provider.BudgetSummary()
	assert.False(t, ok)
	assert.Empty(t, f.provider.Error())
}

func Test_OnExpiredToken_ShouldSignOutAndClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)
	f.addCategory(t, "Food")

	f.srv.RevokeTokens()
	err := f.provider.FetchCategories(ctx)

	require.Error(t, err)
	assert.True(t, api.IsAuthExpired(err))
	assert.Equal(t, auth.StateAnonymous, f.auth.State())
	assert.Empty(t, f.provider.Categories())

	token, err := f.creds.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func Test_OnResponseAfterReset_ShouldDiscardIt(t *testing.T) {
	p := &Provider{}
	gen := p.begin(slotCategories)

	p.Reset()
	p.commit(slotCategories, gen, func() {
		p.categories = []expense.Category{{ID: "stale"}}
	})

	assert.Empty(t, p.Categories())
	assert.False(t, p.Loading().Categories)
}

func Test_OnBudgetsForMonth_ShouldFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)
	food := f.addCategory(t, "Food")

	for _, month := range []int{2, 3} {
		_, err := f.provider.AddBudget(ctx, services.CreateBudgetRequest{
			Category: food.ID, Amount: decimal.NewFromInt(100), Month: month, Year: 2024,
		})
		require.NoError(t, err)
	}
	f.provider.Wait()
	require.Len(t, f.provider.Budgets(), 2)

	require.NoError(t, f.provider.FetchBudgets(ctx, 2, 2024))
	budgets := f.provider.Budgets()
	require.Len(t, budgets, 1)
	assert.Equal(t, 2, budgets[0].Month)

	require.NoError(t, f.provider.FetchBudgets(ctx, 0, 0))
	assert.Len(t, f.provider.Budgets(), 2)
}
