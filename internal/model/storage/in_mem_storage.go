package storage

import (
	"context"
	"sync"

	"max.ks1230/expense-tracker/internal/entity/user"
)

type InMemStorage struct {
	mu       sync.RWMutex
	sessions map[int64]user.Credentials
}

func NewInMemStorage() *InMemStorage {
	s := make(map[int64]user.Credentials)
	return &InMemStorage{sessions: s}
}

func (s *InMemStorage) GetCredentials(_ context.Context, sessionID int64) (user.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.sessions[sessionID]
	if !ok {
		return user.Credentials{}, nil
	}
	if c.User != nil {
		u := *c.User
		c.User = &u
	}
	return c, nil
}

func (s *InMemStorage) SaveToken(_ context.Context, sessionID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.sessions[sessionID]
	c.Token = token
	s.sessions[sessionID] = c
	return nil
}

func (s *InMemStorage) SaveUser(_ context.Context, sessionID int64, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.sessions[sessionID]
	c.User = &u
	s.sessions[sessionID] = c
	return nil
}

func (s *InMemStorage) ClearCredentials(_ context.Context, sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
