package storage

import (
	"context"

	"max.ks1230/expense-tracker/internal/entity/user"
)

type credentialStore interface {
	GetCredentials(ctx context.Context, sessionID int64) (user.Credentials, error)
	SaveToken(ctx context.Context, sessionID int64, token string) error
	SaveUser(ctx context.Context, sessionID int64, u user.User) error
	ClearCredentials(ctx context.Context, sessionID int64) error
}

// Scoped binds a credential store to one session.
type Scoped struct {
	store credentialStore
	id    int64
}

func ForSession(store credentialStore, sessionID int64) *Scoped {
	return &Scoped{store: store, id: sessionID}
}

func (s *Scoped) SessionID() int64 {
	return s.id
}

func (s *Scoped) Token(ctx context.Context) (string, error) {
	c, err := s.store.GetCredentials(ctx, s.id)
	if err != nil {
		return "", err
	}
	return c.Token, nil
}

func (s *Scoped) User(ctx context.Context) (*user.User, error) {
	c, err := s.store.GetCredentials(ctx, s.id)
	if err != nil {
		return nil, err
	}
	return c.User, nil
}

func (s *Scoped) SetToken(ctx context.Context, token string) error {
	return s.store.SaveToken(ctx, s.id, token)
}

func (s *Scoped) SetUser(ctx context.Context, u user.User) error {
	return s.store.SaveUser(ctx, s.id, u)
}

func (s *Scoped) Clear(ctx context.Context) error {
	return s.store.ClearCredentials(ctx, s.id)
}
