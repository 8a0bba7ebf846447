package relay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresForwardingStore keeps forwarding records in the forwards table
// so staff replies keep working across restarts.
type PostgresForwardingStore struct {
	db *sqlx.DB
}

// NewPostgresForwardingStore wraps an open connection pool.
func NewPostgresForwardingStore(db *sqlx.DB) *PostgresForwardingStore {
	return &PostgresForwardingStore{db: db}
}

const upsertForward = `
INSERT INTO forwards (staff_chat_id, staff_message_id, origin_chat_id, origin_message_id, created_at)
VALUES (:staff_chat_id, :staff_message_id, :origin_chat_id, :origin_message_id, :created_at)
ON CONFLICT (staff_chat_id, staff_message_id) DO UPDATE
SET origin_chat_id = EXCLUDED.origin_chat_id,
    origin_message_id = EXCLUDED.origin_message_id,
    created_at = EXCLUDED.created_at`

func (s *PostgresForwardingStore) Save(ctx context.Context, f Forward) error {
	if _, err := s.db.NamedExecContext(ctx, upsertForward, f); err != nil {
		return fmt.Errorf("save forward: %w", err)
	}
	return nil
}

func (s *PostgresForwardingStore) Lookup(ctx context.Context, staffChatID int64, staffMessageID int) (Forward, bool, error) {
	var f Forward
	err := s.db.GetContext(ctx, &f, `
		SELECT staff_chat_id, staff_message_id, origin_chat_id, origin_message_id, created_at
		FROM forwards
		WHERE staff_chat_id = $1 AND staff_message_id = $2`,
		staffChatID, staffMessageID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Forward{}, false, nil
	}
	if err != nil {
		return Forward{}, false, fmt.Errorf("lookup forward: %w", err)
	}
	return f, true, nil
}

func (s *PostgresForwardingStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forwards WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune forwards: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune forwards: %w", err)
	}
	return int(n), nil
}
