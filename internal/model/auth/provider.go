package auth

import (
	"context"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/clients/api"
	"max.ks1230/expense-tracker/internal/entity/user"
	"max.ks1230/expense-tracker/internal/logger"
	"max.ks1230/expense-tracker/internal/services"
)

const (
	loginFailedMessage    = "Login failed. Please check your credentials."
	signupFailedMessage   = "Signup failed. Please try again."
	profileFailedMessage  = "Profile update failed. Please try again."
	passwordFailedMessage = "Password update failed. Please try again."
)

type authService interface {
	Register(ctx context.Context, req services.RegisterRequest) (string, error)
	Login(ctx context.Context, req services.LoginRequest) (string, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (user.User, error)
	UpdateDetails(ctx context.Context, req services.UpdateDetailsRequest) (user.User, error)
	UpdatePassword(ctx context.Context, req services.UpdatePasswordRequest) error
}

type credentials interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	SetUser(ctx context.Context, u user.User) error
	Clear(ctx context.Context) error
}

// Provider owns the authenticated user of one session. Calls are not
// queued: a second Login while the first is in flight races it.
type Provider struct {
	service authService
	creds   credentials

	mu        sync.RWMutex
	state     State
	user      *user.User
	loading   bool
	errMsg    string
	listeners []Listener
}

func NewProvider(service authService, creds credentials) *Provider {
	return &Provider{
		service: service,
		creds:   creds,
		state:   StateLoading,
		loading: true,
	}
}

func (p *Provider) Subscribe(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// Start resolves the initial state from the stored token.
func (p *Provider) Start(ctx context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authStart")
	defer span.Finish()

	token, err := p.creds.Token(ctx)
	if err != nil {
		logger.Error("cannot read stored token", zap.Error(err))
	}
	if token == "" {
		p.transition(ctx, StateAnonymous, ReasonStartup, nil)
		return
	}

	u, err := p.service.CurrentUser(ctx)
	if err != nil {
		ext.Error.Set(span, true)
		logger.Error("failed to fetch current user", zap.Error(err))
		p.clearCredentials(ctx)
		p.transition(ctx, StateAnonymous, ReasonStartup, nil)
		return
	}

	p.saveUser(ctx, u)
	p.transition(ctx, StateAuthenticated, ReasonStartup, &u)
}

func (p *Provider) Login(ctx context.Context, req services.LoginRequest) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authLogin")
	defer span.Finish()

	err := p.authenticate(ctx, ReasonLogin, func(ctx context.Context) (string, error) {
		return p.service.Login(ctx, req)
	})
	if err != nil {
		ext.Error.Set(span, true)
		return p.fail(err, loginFailedMessage)
	}
	return nil
}

func (p *Provider) Signup(ctx context.Context, req services.RegisterRequest) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authSignup")
	defer span.Finish()

	err := p.authenticate(ctx, ReasonSignup, func(ctx context.Context) (string, error) {
		return p.service.Register(ctx, req)
	})
	if err != nil {
		ext.Error.Set(span, true)
		return p.fail(err, signupFailedMessage)
	}
	return nil
}

// authenticate obtains a token, stores it and loads the user behind it.
func (p *Provider) authenticate(ctx context.Context, reason Reason, obtain func(ctx context.Context) (string, error)) error {
	p.begin()

	token, err := obtain(ctx)
	if err != nil {
		return err
	}
	if err = p.creds.SetToken(ctx, token); err != nil {
		return errors.Wrap(err, "store token")
	}

	u, err := p.service.CurrentUser(ctx)
	if err != nil {
		p.clearCredentials(ctx)
		return errors.Wrap(err, "fetch current user")
	}

	p.saveUser(ctx, u)
	p.transition(ctx, StateAuthenticated, reason, &u)
	return nil
}

// Logout never fails: the server call is best-effort and local credentials
// are dropped regardless.
func (p *Provider) Logout(ctx context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authLogout")
	defer span.Finish()

	p.setLoading(true)
	if err := p.service.Logout(ctx); err != nil {
		logger.Error("logout failed", zap.Error(err))
	}

	p.clearCredentials(ctx)
	p.transition(ctx, StateAnonymous, ReasonLogout, nil)
}

func (p *Provider) UpdateProfile(ctx context.Context, req services.UpdateDetailsRequest) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authUpdateProfile")
	defer span.Finish()

	p.begin()
	u, err := p.service.UpdateDetails(ctx, req)
	if err != nil {
		ext.Error.Set(span, true)
		return p.fail(err, profileFailedMessage)
	}

	p.mu.Lock()
	p.user = &u
	p.loading = false
	p.mu.Unlock()

	p.saveUser(ctx, u)
	return nil
}

func (p *Provider) UpdatePassword(ctx context.Context, req services.UpdatePasswordRequest) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authUpdatePassword")
	defer span.Finish()

	p.begin()
	if err := p.service.UpdatePassword(ctx, req); err != nil {
		ext.Error.Set(span, true)
		return p.fail(err, passwordFailedMessage)
	}
	p.setLoading(false)
	return nil
}

// Expire handles a rejected token. The HTTP client has already dropped the
// stored credentials; only an authenticated session transitions, so several
// 401s produce a single change.
func (p *Provider) Expire(ctx context.Context) {
	p.transitionFrom(ctx, StateAuthenticated, StateAnonymous, ReasonExpired, nil)
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Provider) Authenticated() bool {
	return p.State() == StateAuthenticated
}

// User returns a copy of the current user.
func (p *Provider) User() (user.User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return user.User{}, false
	}
	return *p.user, true
}

func (p *Provider) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Error is the display message of the last failed operation.
func (p *Provider) Error() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errMsg
}

func (p *Provider) begin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = true
	p.errMsg = ""
}

func (p *Provider) setLoading(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = v
}

func (p *Provider) fail(err error, fallback string) error {
	msg := api.DisplayMessage(err, fallback)

	p.mu.Lock()
	p.errMsg = msg
	p.loading = false
	if p.state == StateLoading {
		p.state = StateAnonymous
	}
	p.mu.Unlock()

	logger.Error(fallback, zap.String("message", msg), zap.Error(err))
	return err
}

func (p *Provider) saveUser(ctx context.Context, u user.User) {
	if err := p.creds.SetUser(ctx, u); err != nil {
		logger.Error("cannot store user", zap.Error(err))
	}
}

func (p *Provider) clearCredentials(ctx context.Context) {
	if err := p.creds.Clear(ctx); err != nil {
		logger.Error("cannot clear credentials", zap.Error(err))
	}
}

func (p *Provider) transition(ctx context.Context, next State, reason Reason, u *user.User) {
	p.apply(ctx, nil, next, reason, u)
}

func (p *Provider) transitionFrom(ctx context.Context, from, next State, reason Reason, u *user.User) {
	p.apply(ctx, &from, next, reason, u)
}

// apply switches state and notifies listeners outside the lock. Listeners
// hear about every entry into StateAuthenticated (a re-login may switch
// users) and about other states only when they change.
func (p *Provider) apply(ctx context.Context, from *State, next State, reason Reason, u *user.User) {
	p.mu.Lock()
	prev := p.state
	if from != nil && prev != *from {
		p.mu.Unlock()
		return
	}
	p.state = next
	p.user = u
	p.loading = false
	listeners := make([]Listener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	if prev == next && next != StateAuthenticated {
		return
	}

	logger.Info("auth state changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.String("reason", string(reason)))

	change := Change{State: next, Reason: reason}
	if u != nil {
		cp := *u
		change.User = &cp
	}
	for _, l := range listeners {
		l.OnAuthChanged(ctx, change)
	}
}
