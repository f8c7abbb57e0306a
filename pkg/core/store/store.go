// Package store persists copilot sessions, in memory or in PostgreSQL.
package store

import (
	"context"
	"errors"
	"sync"

	"value_copilot/pkg/core/conversation"
)

// ErrNotFound is returned for an unknown session ID.
var ErrNotFound = errors.New("session not found")

// SessionStore keeps sessions between requests. Implementations hand out
// copies, so callers must Save after mutating a session.
type SessionStore interface {
	Create(ctx context.Context) (*conversation.Session, error)
	Get(ctx context.Context, id string) (*conversation.Session, error)
	Save(ctx context.Context, s *conversation.Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process-local SessionStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*conversation.Session
}

var _ SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*conversation.Session)}
}

func (m *MemoryStore) Create(ctx context.Context) (*conversation.Session, error) {
	s := conversation.NewSession()
	m.mu.Lock()
	m.sessions[s.ID] = s.Clone()
	m.mu.Unlock()
	return s, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*conversation.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s *conversation.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Locks serializes read-modify-write cycles on one session.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for id and returns its unlock function.
func (l *Locks) Lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Forget drops the mutex of a deleted session.
func (l *Locks) Forget(id string) {
	l.mu.Lock()
	delete(l.locks, id)
	l.mu.Unlock()
}
