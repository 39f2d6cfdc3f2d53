package verification

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	pending   PendingRegistration
	expiresAt time.Time
}

// InmemCodeStore keeps pending registrations in-process; entry lifetime is
// bounded by a timestamp check on read. Dev/test only: it does not survive
// restarts or multiple instances.
type InmemCodeStore struct {
	mutex sync.RWMutex
	codes map[string]entry
}

var _ CodeStore = (*InmemCodeStore)(nil)

func NewInmemCodeStore() *InmemCodeStore {
	return &InmemCodeStore{codes: make(map[string]entry)}
}

func (s *InmemCodeStore) Put(_ context.Context, email string, p PendingRegistration, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.codes[email] = entry{pending: p, expiresAt: NowFunc().Add(ttl)}
	return nil
}

func (s *InmemCodeStore) Get(_ context.Context, email string) (PendingRegistration, error) {
	s.mutex.RLock()
	e, ok := s.codes[email]
	s.mutex.RUnlock()
	if !ok {
		return PendingRegistration{}, ErrCodeNotFound
	}
	if NowFunc().After(e.expiresAt) {
		_ = s.Delete(context.Background(), email)
		return PendingRegistration{}, ErrCodeNotFound
	}
	return e.pending, nil
}

func (s *InmemCodeStore) Delete(_ context.Context, email string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.codes, email)
	return nil
}
