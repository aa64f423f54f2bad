package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Notification names the members whose read state may have changed. It is a
// trigger, not a payload: receivers always recompute from the authoritative
// store and never apply the notification contents incrementally, so ordering
// and coalescing of deliveries cannot cause drift.
type Notification struct {
	UserIDs []string `json:"user_ids"`
}

// Publisher publishes change notifications on a fixed Postgres channel.
type Publisher struct {
	db      *sqlx.DB
	channel string
}

func NewPublisher(db *sqlx.DB, channel string) *Publisher {
	return &Publisher{db: db, channel: channel}
}

func (p *Publisher) Notify(ctx context.Context, userIDs []string) error {
	return Notify(ctx, p.db, p.channel, userIDs)
}

// Notify publishes a change notification on the Postgres channel after a
// write has committed.
func Notify(ctx context.Context, db *sqlx.DB, channel string, userIDs []string) error {
	const op = "realtime.Notify"

	payload, err := json.Marshal(Notification{UserIDs: userIDs})
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	if _, err := db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, channel, string(payload)); err != nil {
		return fmt.Errorf("%s: pg_notify: %w", op, err)
	}

	return nil
}
