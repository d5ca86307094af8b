package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReplyLedger records inbound replies keyed by the Message-ID of the
// outbound mail they answer. The monitor loop polls HasReply; an inbound
// webhook or mailbox sync process calls Record.
type ReplyLedger struct {
	pool *pgxpool.Pool
}

func NewReplyLedger(pool *pgxpool.Pool) *ReplyLedger {
	return &ReplyLedger{pool: pool}
}

// HasReply reports whether a reply referencing messageID has been
// recorded.
func (l *ReplyLedger) HasReply(ctx context.Context, messageID string) (bool, error) {
	var found bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM replies WHERE in_reply_to = $1)`,
		messageID,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("outreach: check reply for %s: %w", messageID, err)
	}
	return found, nil
}

// Record stores one inbound reply. Duplicate deliveries of the same
// reply are ignored.
func (l *ReplyLedger) Record(ctx context.Context, inReplyTo, fromAddress string, receivedAt time.Time) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO replies (in_reply_to, from_address, received_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (in_reply_to, from_address) DO NOTHING`,
		inReplyTo, fromAddress, receivedAt,
	)
	if err != nil {
		return fmt.Errorf("outreach: record reply to %s: %w", inReplyTo, err)
	}
	return nil
}
