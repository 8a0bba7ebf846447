package payout

import (
	"context"
	"sync"
)

// StateStore keeps at most one request per user.
type StateStore interface {
	Get(ctx context.Context, userID int64) (Request, bool, error)
	Put(ctx context.Context, req Request) error
	Delete(ctx context.Context, userID int64) error
}

// MemoryStore is the process-local StateStore. State does not survive restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[int64]Request
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[int64]Request)}
}

// Get returns a copy of the user's request if one exists.
func (m *MemoryStore) Get(_ context.Context, userID int64) (Request, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[userID]
	if ok && req.Media != nil {
		media := *req.Media
		req.Media = &media
	}
	return req, ok, nil
}

// Put stores the request under its user id, replacing any previous one.
func (m *MemoryStore) Put(_ context.Context, req Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.Media != nil {
		media := *req.Media
		req.Media = &media
	}
	m.requests[req.UserID] = req
	return nil
}

// Delete removes the user's request; missing entries are ignored.
func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.requests, userID)
	return nil
}

// Len reports the number of active requests.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// userLocks hands out one mutex per user and drops it once nobody holds it.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*userLock)}
}

func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
