// Package relay connects users with the staff chat: it forwards user messages and
// compiled payout requests, remembers where each staff-chat message came from and
// routes staff replies back to the right user.
package relay

import (
	"context"
	"sync"
	"time"
)

// Forward links a message the bot posted in the staff chat to the user conversation it belongs to.
type Forward struct {
	StaffChatID     int64     `db:"staff_chat_id"`
	StaffMessageID  int       `db:"staff_message_id"`
	OriginChatID    int64     `db:"origin_chat_id"`
	OriginMessageID int       `db:"origin_message_id"`
	CreatedAt       time.Time `db:"created_at"`
}

// ForwardingStore persists forwarding records keyed by staff chat and message id.
type ForwardingStore interface {
	// Save inserts the record, replacing an existing one with the same key.
	Save(ctx context.Context, f Forward) error
	Lookup(ctx context.Context, staffChatID int64, staffMessageID int) (Forward, bool, error)
	// DeleteBefore drops records created before cutoff and reports how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type forwardKey struct {
	chatID    int64
	messageID int
}

// MemoryForwardingStore keeps forwarding records in process memory.
type MemoryForwardingStore struct {
	mu      sync.RWMutex
	records map[forwardKey]Forward
}

// NewMemoryForwardingStore constructs an empty store.
func NewMemoryForwardingStore() *MemoryForwardingStore {
	return &MemoryForwardingStore{records: make(map[forwardKey]Forward)}
}

func (m *MemoryForwardingStore) Save(_ context.Context, f Forward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[forwardKey{f.StaffChatID, f.StaffMessageID}] = f
	return nil
}

func (m *MemoryForwardingStore) Lookup(_ context.Context, staffChatID int64, staffMessageID int) (Forward, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.records[forwardKey{staffChatID, staffMessageID}]
	return f, ok, nil
}

func (m *MemoryForwardingStore) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, f := range m.records {
		if f.CreatedAt.Before(cutoff) {
			delete(m.records, k)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored records.
func (m *MemoryForwardingStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
