package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/relaybot/core/logger"
)

// Router maps messages posted in the staff chat back to the originating user chat.
type Router struct {
	store       ForwardingStore
	staffChatID int64
	retention   time.Duration
	now         func() time.Time
}

// NewRouter creates a router for one staff chat. A zero retention keeps records forever.
func NewRouter(store ForwardingStore, staffChatID int64, retention time.Duration) *Router {
	return &Router{
		store:       store,
		staffChatID: staffChatID,
		retention:   retention,
		now:         time.Now,
	}
}

// StaffChatID returns the chat the router serves.
func (r *Router) StaffChatID() int64 {
	return r.staffChatID
}

// RecordForward remembers that staffMessageID was posted on behalf of the given user message.
// Recording the same staff message twice keeps the last call.
func (r *Router) RecordForward(ctx context.Context, staffMessageID int, originChatID int64, originMessageID int) error {
	f := Forward{
		StaffChatID:     r.staffChatID,
		StaffMessageID:  staffMessageID,
		OriginChatID:    originChatID,
		OriginMessageID: originMessageID,
		CreatedAt:       r.now().UTC(),
	}
	if err := r.store.Save(ctx, f); err != nil {
		return fmt.Errorf("record forward %d: %w", staffMessageID, err)
	}
	logger.Debug(ctx, "relay", "relay.forward.recorded",
		slog.Int("staff_message_id", staffMessageID),
		slog.Int64("origin_chat_id", originChatID),
	)
	return nil
}

// Resolve returns the user chat behind a staff-chat message.
// Unknown messages and store failures both report false; failures are logged.
func (r *Router) Resolve(ctx context.Context, staffMessageID int) (int64, bool) {
	f, ok, err := r.store.Lookup(ctx, r.staffChatID, staffMessageID)
	if err != nil {
		logger.Error(ctx, "relay", "relay.forward.lookup_failed",
			slog.Int("staff_message_id", staffMessageID),
			slog.String("err", err.Error()),
		)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	return f.OriginChatID, true
}

// Prune removes records older than the retention window.
func (r *Router) Prune(ctx context.Context) (int, error) {
	if r.retention <= 0 {
		return 0, nil
	}
	cutoff := r.now().UTC().Add(-r.retention)
	n, err := r.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, "relay", "relay.forward.pruned",
		slog.Int("count", n),
		slog.Time("cutoff", cutoff),
	)
	return n, nil
}
