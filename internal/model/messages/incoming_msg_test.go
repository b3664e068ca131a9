package messages

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/apitest"
	"max.ks1230/expense-tracker/internal/config"
	"max.ks1230/expense-tracker/internal/model/session"
	"max.ks1230/expense-tracker/internal/model/storage"
)

const chatID = int64(123)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type sentMessage struct {
	text   string
	userID int64
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) SendMessage(text string, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{text: text, userID: userID})
	return nil
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].text
}

type fixture struct {
	srv      *apitest.Server
	sender   *fakeSender
	sessions *session.Registry
	model    *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	clock := func() time.Time { return testNow }
	srv.SetClock(clock)

	sender := &fakeSender{}
	sessions := session.NewRegistry(
		storage.NewInMemStorage(),
		&config.APIConfig{URL: srv.URL, TimeoutSeconds: 5},
		session.WithClock(clock),
		session.WithAuthListener(ExpiryNotifier(sender)),
	)
	t.Cleanup(sessions.Wait)

	return &fixture{
		srv:      srv,
		sender:   sender,
		sessions: sessions,
		model:    NewService(sender, sessions, append([]Option{WithClock(clock)}, opts...)...),
	}
}

// send delivers text and returns the reply, waiting for background loads so
// the next command sees settled state.
func (f *fixture) send(t *testing.T, text string) string {
	t.Helper()
	err := f.model.HandleIncomingMessage(context.Background(), Message{Text: text, UserID: chatID})
	require.NoError(t, err)
	f.sessions.Wait()
	return f.sender.last()
}

func (f *fixture) loggedIn(t *testing.T) {
	t.Helper()
	f.srv.CreateUser("alice", "alice@example.com", "secret1")
	require.Contains(t, f.send(t, "/login alice@example.com secret1"), "Welcome, alice!")
}

func (f *fixture) categoryID(t *testing.T, name string) string {
	t.Helper()
	for _, c := range f.sessions.Get(context.Background(), chatID).Expenses.Categories() {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %s not found", name)
	return ""
}

func Test_OnStartCommand_ShouldAnswerWithIntroMessage(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, "/start")

	assert.True(t, strings.HasPrefix(reply, helloMessage))
	assert.Contains(t, reply, loginFirstMessage)
	assert.Equal(t, chatID, f.sender.sent[0].userID)
}

func Test_OnUnknownCommand_ShouldAnswerWithHelpMessage(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, dontUnderstandMessage, f.send(t, "/none"))
	assert.Equal(t, loveToTalkMessage, f.send(t, "how are you"))
}

func Test_OnCommandWithBotName_ShouldDispatch(t *testing.T) {
	cmd, arg := parseCommand("/Login@expense_bot a@b.c pw")

	assert.Equal(t, loginCommand, cmd)
	assert.Equal(t, "a@b.c pw", arg)
}

func Test_OnDataCommandWhileAnonymous_ShouldAskToLogin(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, loginFirstMessage, f.send(t, "/categories"))
	assert.Equal(t, loginFirstMessage, f.send(t, "/expense 10 food lunch"))
	assert.Zero(t, f.srv.Hits(http.MethodPost, "/api/transactions"))
}

func Test_OnInvalidLoginForm_ShouldNotCallServer(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, "/login not-an-email secret1")

	assert.Equal(t, "Please enter a valid email address", reply)
	assert.Zero(t, f.srv.Hits(http.MethodPost, "/api/auth/login"))
}

func Test_OnWrongPassword_ShouldShowServerMessage(t *testing.T) {
	f := newFixture(t)
	f.srv.CreateUser("alice", "alice@example.com", "secret1")

	assert.Equal(t, "Invalid credentials", f.send(t, "/login alice@example.com wrong"))
}

func Test_OnRegister_ShouldLogIn(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.send(t, "/register bob bob@example.com secret1"), "Welcome, bob!")
	assert.Contains(t, f.send(t, "/me"), "bob@example.com")
	assert.Equal(t, loggedOutMessage, f.send(t, "/logout"))
	assert.Equal(t, loginFirstMessage, f.send(t, "/me"))
}

func Test_OnForgotPassword_ShouldAnswerTheSameForUnknownEmail(t *testing.T) {
	f := newFixture(t)
	f.srv.CreateUser("alice", "alice@example.com", "secret1")

	known := f.send(t, "/forgot alice@example.com")
	unknown := f.send(t, "/forgot nobody@example.com")

	assert.Equal(t, forgotPasswordMessage, known)
	assert.Equal(t, known, unknown)
}

func Test_OnResetPassword_ShouldAllowNewLogin(t *testing.T) {
	f := newFixture(t)
	f.srv.CreateUser("alice", "alice@example.com", "secret1")
	f.send(t, "/forgot alice@example.com")
	token := f.srv.ResetTokenFor("alice@example.com")

	assert.Equal(t, passwordResetMessage, f.send(t, "/reset "+token+" secret2 secret2"))
	assert.Contains(t, f.send(t, "/login alice@example.com secret2"), "Welcome")
}

func Test_OnExpenseFlow_ShouldUpdateSummaryAndDashboard(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	assert.Contains(t, f.send(t, "/category Food #4caf50"), "Category added: Food #4caf50")
	assert.Contains(t, f.send(t, "/budget food 100"), "03/2024 Food: 100.00")
	assert.Contains(t, f.send(t, "/expense 50 Food Lunch with team"), "-50.00 Food Lunch with team")

	summary := f.send(t, "/summary")
	assert.Contains(t, summary, "Spent: 50.00")
	assert.Contains(t, summary, "Remaining: 50.00")

	dash := f.send(t, "/dashboard")
	assert.Contains(t, dash, "This month: 50.00")
	assert.Contains(t, dash, "Budget usage: 50% (ok)")
	assert.Contains(t, dash, "Food: 1, 50.00")
}

func Test_OnUnknownCategory_ShouldRefuseExpense(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)

	assert.Equal(t, `Unknown category "Travel". See /categories.`, f.send(t, "/expense 10 Travel Taxi"))
	assert.Zero(t, f.srv.Hits(http.MethodPost, "/api/transactions"))
}

func Test_OnBadAmount_ShouldListValidationProblems(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.send(t, "/category Food")

	reply := f.send(t, "/expense -5 Food 2024-13-01 Lunch")

	assert.Equal(t, "Amount must be positive\nDate must be in YYYY-MM-DD format", reply)
}

func Test_OnTransactionEdit_ShouldApplyAssignments(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.send(t, "/category Food")
	f.send(t, "/expense 10 Food 2024-03-01 Tea")
	txs := f.sessions.Get(context.Background(), chatID).Expenses.Transactions()
	require.Len(t, txs, 1)

	reply := f.send(t, "/transaction_edit "+txs[0].ID+" amount=12.5 description=Green tea")

	assert.Equal(t, "Updated: 2024-03-01 -12.50 Food Green tea ["+txs[0].ID+"]", reply)
	assert.Contains(t, f.send(t, "/transaction_edit "+txs[0].ID+" colour=red"), incorrectUsageMessage)
}

func Test_OnDateWestOfUTC_ShouldKeepCalendarDay(t *testing.T) {
	f := newFixture(t, WithLocation(time.FixedZone("UTC-5", -5*60*60)))
	f.loggedIn(t)
	f.send(t, "/category Food")

	assert.Contains(t, f.send(t, "/expense 10 Food 2024-03-01 Tea"), "Saved: 2024-03-01 -10.00 Food Tea")
	assert.Contains(t, f.send(t, "/transactions"), "2024-03-01 -10.00 Food Tea")
	assert.Contains(t, f.send(t, "/dashboard"), "This month: 10.00")
}

func Test_OnCategoryDelete_ShouldKeepTransactionsUncategorized(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.send(t, "/category Food")
	id := f.categoryID(t, "Food")
	f.send(t, "/expense 10 Food Tea")

	assert.Equal(t, "Category deleted.", f.send(t, "/category_delete "+id))
	assert.Contains(t, f.send(t, "/transactions"), "-10.00 Uncategorized Tea")
}

func Test_OnServerFailure_ShouldReplyWithMessage(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.srv.FailNext(http.MethodPost, "/api/categories", http.StatusInternalServerError, "")

	assert.Equal(t, "Failed to add category", f.send(t, "/category Food"))
	assert.Equal(t, noCategoriesMessage, f.send(t, "/categories"))
}

func Test_OnExpiredSession_ShouldNotifyChat(t *testing.T) {
	f := newFixture(t)
	f.loggedIn(t)
	f.srv.RevokeTokens()

	f.send(t, "/budgets")

	var texts []string
	for _, m := range f.sender.sent {
		texts = append(texts, m.text)
	}
	assert.Contains(t, texts, sessionExpiredMessage)
	assert.Equal(t, loginFirstMessage, f.send(t, "/categories"))
}

func Test_OnParseAssignments_ShouldKeepDescriptionWhole(t *testing.T) {
	values, ok := parseAssignments("amount=5 description=Dinner with friends")

	require.True(t, ok)
	assert.Equal(t, map[string]string{"amount": "5", "description": "Dinner with friends"}, values)

	_, ok = parseAssignments("amount 5")
	assert.False(t, ok)
}
