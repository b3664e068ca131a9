package auth

import (
	"context"

	"max.ks1230/expense-tracker/internal/entity/user"
)

type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

type Reason string

const (
	ReasonStartup Reason = "startup"
	ReasonLogin   Reason = "login"
	ReasonSignup  Reason = "signup"
	ReasonLogout  Reason = "logout"
	ReasonExpired Reason = "expired"
)

// Change is delivered to listeners after every transition. User is nil
// unless State is StateAuthenticated.
type Change struct {
	State  State
	Reason Reason
	User   *user.User
}

type Listener interface {
	OnAuthChanged(ctx context.Context, change Change)
}

type ListenerFunc func(ctx context.Context, change Change)

func (f ListenerFunc) OnAuthChanged(ctx context.Context, change Change) {
	f(ctx, change)
}
