package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dkravets/nestswap-messenger/internal/lib/logger/sl"
	"github.com/dkravets/nestswap-messenger/internal/realtime"
	"github.com/dkravets/nestswap-messenger/internal/unread"
	wsdomain "github.com/dkravets/nestswap-messenger/internal/ws"
	"github.com/dkravets/nestswap-messenger/internal/ws/hub"
)

// Listener holds a dedicated Postgres connection on LISTEN and turns every
// change notification into a full unread recompute pushed through the hub.
// Notifications may arrive out of order or coalesced; because each one only
// triggers a recompute against the store, eventual consistency holds
// regardless of delivery order.
type Listener struct {
	dsn            string
	channel        string
	reconnectDelay time.Duration
	rec            *unread.Reconciler
	hub            *hub.Hub
	log            *slog.Logger
}

func New(
	dsn, channel string,
	reconnectDelay time.Duration,
	rec *unread.Reconciler,
	h *hub.Hub,
	log *slog.Logger,
) *Listener {
	return &Listener{
		dsn:            dsn,
		channel:        channel,
		reconnectDelay: reconnectDelay,
		rec:            rec,
		hub:            h,
		log:            log,
	}
}

// Run blocks until ctx is cancelled, reconnecting with a fixed delay when
// the connection drops.
func (l *Listener) Run(ctx context.Context) {
	const op = "realtime.listener.Run"

	log := l.log.With(slog.String("op", op), slog.String("channel", l.channel))

	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			log.Info("realtime listener stopped")
			return
		}
		if err != nil {
			log.Error("realtime listener connection lost", sl.Err(err))
		}

		select {
		case <-ctx.Done():
			log.Info("realtime listener stopped")
			return
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	const op = "realtime.listener.listen"

	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("%s: connect: %w", op, err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, fmt.Sprintf(`LISTEN %s`, pgx.Identifier{l.channel}.Sanitize())); err != nil {
		return fmt.Errorf("%s: listen: %w", op, err)
	}

	l.log.Info("realtime listener attached", slog.String("channel", l.channel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("%s: wait: %w", op, err)
		}

		l.handle(ctx, n.Payload)
	}
}

func (l *Listener) handle(ctx context.Context, payload string) {
	const op = "realtime.listener.handle"

	log := l.log.With(slog.String("op", op))

	var n realtime.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		log.Error("bad notification payload", sl.Err(err))
		return
	}

	for userID, summary := range l.rec.ComputeAll(ctx, n.UserIDs) {
		evt, err := wsdomain.NewEvent(wsdomain.UnreadSummary, 0, wsdomain.UnreadSummaryPayload{Summary: summary})
		if err != nil {
			log.Error("failed to build ws event", sl.Err(err))
			continue
		}

		b, err := json.Marshal(evt)
		if err != nil {
			log.Error("failed to marshal ws event", sl.Err(err))
			continue
		}

		l.hub.Broadcast(userID, b)
	}
}
