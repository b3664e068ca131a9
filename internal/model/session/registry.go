// Package session builds and keeps the per-chat object graph: credentials,
// API client, services, event bus and the two state providers.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/clients/api"
	"max.ks1230/expense-tracker/internal/entity/user"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/model/auth"
	"max.ks1230/expense-tracker/internal/model/events"
	"max.ks1230/expense-tracker/internal/model/expenses"
	"max.ks1230/expense-tracker/internal/model/storage"
	"max.ks1230/expense-tracker/internal/services"
)

// CredentialStore persists the token and user of every session.
type CredentialStore interface {
	GetCredentials(ctx context.Context, sessionID int64) (user.Credentials, error)
	SaveToken(ctx context.Context, sessionID int64, token string) error
	SaveUser(ctx context.Context, sessionID int64, u user.User) error
	ClearCredentials(ctx context.Context, sessionID int64) error
}

type apiConfig interface {
	BaseURL() string
	Timeout() time.Duration
}

type Session struct {
	ID          int64
	Creds       *storage.Scoped
	Client      *api.Client
	AuthService *services.AuthService
	Bus         *events.Bus
	Auth        *auth.Provider
	Expenses    *expenses.Provider

	start sync.Once
}

// Option customises every session the registry builds.
type Option func(r *Registry)

// WithEventSink subscribes a handler built for each session to its bus.
func WithEventSink(sink func(sessionID int64) events.Handler) Option {
	return func(r *Registry) {
		r.sinks = append(r.sinks, sink)
	}
}

// WithAuthListener subscribes a listener built for each session to its auth
// provider, after the domain provider.
func WithAuthListener(listener func(sessionID int64) auth.Listener) Option {
	return func(r *Registry) {
		r.listeners = append(r.listeners, listener)
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

type Registry struct {
	store     CredentialStore
	api       apiConfig
	sinks     []func(sessionID int64) events.Handler
	listeners []func(sessionID int64) auth.Listener
	now       func() time.Time

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewRegistry(store CredentialStore, apiCfg apiConfig, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		api:      apiCfg,
		now:      time.Now,
		sessions: make(map[int64]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session of id, building it and resolving its stored
// credentials on first use.
func (r *Registry) Get(ctx context.Context, id int64) *Session {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = r.build(id)
		r.sessions[id] = s
	}
	r.mu.Unlock()

	s.start.Do(func() {
		logger.Info("starting session", zap.Int64("session", id))
		s.Auth.Start(ctx)
	})
	return s
}

// Wait blocks until background work of every session is done.
func (r *Registry) Wait() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Expenses.Wait()
	}
}

func (r *Registry) build(id int64) *Session {
	s := &Session{
		ID:    id,
		Creds: storage.ForSession(r.store, id),
		Bus:   events.NewBus(),
	}

	s.Client = api.New(r.api, s.Creds, api.WithExpiredHandler(func(ctx context.Context) {
		s.Auth.Expire(ctx)
	}))
	s.AuthService = services.NewAuthService(s.Client)
	s.Auth = auth.NewProvider(s.AuthService, s.Creds)
	s.Expenses = expenses.NewProvider(
		s.Auth,
		services.NewCategoryService(s.Client),
		services.NewTransactionService(s.Client),
		services.NewBudgetService(s.Client),
		s.Bus,
		expenses.WithClock(r.now),
	)

	s.Auth.Subscribe(s.Expenses)
	for _, listener := range r.listeners {
		s.Auth.Subscribe(listener(id))
	}
	for _, sink := range r.sinks {
		s.Bus.Subscribe(sink(id))
	}
	return s
}
