package messages

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/expense-tracker/internal/model/session"
)

const (
	dontUnderstandMessage = "I don't understand you :("
	helloMessage          = "Hello! I am your expense tracker bot 🤖"
	loveToTalkMessage     = "I would love to talk about it more!"
	loginFirstMessage     = "Please /login or /register first."
	incorrectUsageMessage = "That is an incorrect command usage"
)

const (
	startCommand             = "/start"
	helpCommand              = "/help"
	registerCommand          = "/register"
	loginCommand             = "/login"
	logoutCommand            = "/logout"
	meCommand                = "/me"
	profileCommand           = "/profile"
	passwordCommand          = "/password"
	forgotCommand            = "/forgot"
	resetCommand             = "/reset"
	refreshCommand           = "/refresh"
	categoriesCommand        = "/categories"
	categoryCommand          = "/category"
	categoryEditCommand      = "/category_edit"
	categoryDeleteCommand    = "/category_delete"
	transactionsCommand      = "/transactions"
	expenseCommand           = "/expense"
	incomeCommand            = "/income"
	transactionEditCommand   = "/transaction_edit"
	transactionDeleteCommand = "/transaction_delete"
	budgetsCommand           = "/budgets"
	budgetCommand            = "/budget"
	budgetEditCommand        = "/budget_edit"
	budgetDeleteCommand      = "/budget_delete"
	summaryCommand           = "/summary"
	dashboardCommand         = "/dashboard"
)

var helpMessage = strings.Join([]string{
	"Account:",
	"/register <username> <email> <password>",
	"/login <email> <password>",
	"/logout, /me",
	"/profile <username> <email>",
	"/password <current> <new> <new again>",
	"/forgot <email>",
	"/reset <token> <password> <password again>",
	"",
	"Categories:",
	"/categories",
	"/category <name> [#color]",
	"/category_edit <id> <name> [#color]",
	"/category_delete <id>",
	"",
	"Transactions:",
	"/transactions",
	"/expense <amount> <category> [YYYY-MM-DD] <description>",
	"/income <amount> <category> [YYYY-MM-DD] <description>",
	"/transaction_edit <id> [amount=] [category=] [date=] [type=] [description=]",
	"/transaction_delete <id>",
	"",
	"Budgets:",
	"/budgets [month] [year]",
	"/budget <category> <amount> [month] [year]",
	"/budget_edit <id> [amount=] [category=]",
	"/budget_delete <id>",
	"/summary [month] [year]",
	"",
	"/dashboard, /refresh",
}, "\n")

type sessionSource interface {
	Get(ctx context.Context, id int64) *session.Session
}

type handler func(ctx context.Context, s *session.Session, arg string) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	sessions    sessionSource
	location    *time.Location
	now         func() time.Time
}

func newHandler(sessions sessionSource, location *time.Location, now func() time.Time) *HandlerService {
	res := &HandlerService{
		sessions: sessions,
		location: location,
		now:      now,
	}
	res.handlersMap = newMap(res)
	return res
}

func (s *HandlerService) HandleMessage(ctx context.Context, text string, userID int64) (string, error) {
	cmd, arg := parseCommand(text)

	h, ok := s.handlersMap[cmd]
	if !ok {
		return dontUnderstandMessage, nil
	}

	resp, err := h(ctx, s.sessions.Get(ctx, userID), arg)
	if err != nil {
		return resp, errors.Wrap(err, "handle "+cmd)
	}
	return resp, nil
}

// parseCommand splits "/cmd@bot rest of line" into "/cmd" and the rest.
func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	cmd, arg, _ = strings.Cut(text, " ")
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[helpCommand] = s.handleHelp

	m[registerCommand] = s.handleRegister
	m[loginCommand] = s.handleLogin
	m[logoutCommand] = s.handleLogout
	m[meCommand] = s.handleMe
	m[profileCommand] = s.handleProfile
	m[passwordCommand] = s.handlePassword
	m[forgotCommand] = s.handleForgot
	m[resetCommand] = s.handleReset

	m[refreshCommand] = authorized(s.handleRefresh)
	m[categoriesCommand] = authorized(s.handleCategories)
	m[categoryCommand] = authorized(s.handleAddCategory)
	m[categoryEditCommand] = authorized(s.handleEditCategory)
	m[categoryDeleteCommand] = authorized(s.handleDeleteCategory)
	m[transactionsCommand] = authorized(s.handleTransactions)
	m[expenseCommand] = authorized(s.handleExpense)
	m[incomeCommand] = authorized(s.handleIncome)
	m[transactionEditCommand] = authorized(s.handleEditTransaction)
	m[transactionDeleteCommand] = authorized(s.handleDeleteTransaction)
	m[budgetsCommand] = authorized(s.handleBudgets)
	m[budgetCommand] = authorized(s.handleAddBudget)
	m[budgetEditCommand] = authorized(s.handleEditBudget)
	m[budgetDeleteCommand] = authorized(s.handleDeleteBudget)
	m[summaryCommand] = authorized(s.handleSummary)
	m[dashboardCommand] = authorized(s.handleDashboard)

	m[""] = s.handleNoCommand

	return m
}

// authorized answers with a login hint instead of running h for anonymous
// sessions.
func authorized(h handler) handler {
	return func(ctx context.Context, s *session.Session, arg string) (string, error) {
		if !s.Auth.Authenticated() {
			return loginFirstMessage, nil
		}
		return h(ctx, s, arg)
	}
}

func (s *HandlerService) handleStart(_ context.Context, sess *session.Session, _ string) (string, error) {
	if u, ok := sess.Auth.User(); ok {
		return helloMessage + "\nWelcome back, " + u.DisplayName() + "!", nil
	}
	return helloMessage + "\n" + loginFirstMessage + " Send /help to see what I can do.", nil
}

func (s *HandlerService) handleHelp(_ context.Context, _ *session.Session, _ string) (string, error) {
	return helpMessage, nil
}

func (s *HandlerService) handleNoCommand(_ context.Context, _ *session.Session, _ string) (string, error) {
	return loveToTalkMessage, nil
}

func (s *HandlerService) today() time.Time {
	return s.now().In(s.location)
}
