package out

import (
	"context"
	"sync"

	"vecino/internal/modules/auth/domain"
	apperrors "vecino/internal/platform/errors"
)

type MemoryCredentialStore struct {
	mu      sync.Mutex
	session domain.Session
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

func (s *MemoryCredentialStore) Load(_ context.Context) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.Complete() {
		return domain.Session{}, apperrors.ErrNoSession
	}
	return s.session, nil
}

func (s *MemoryCredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
	return nil
}
