package unread

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dkravets/nestswap-messenger/internal/lib/logger/sl"
)

type Store interface {
	UnreadRows(ctx context.Context, userID string) ([]Row, error)
}

// BatchStore is implemented by stores that can fetch read-state rows for
// several members in one round trip.
type BatchStore interface {
	UnreadRowsForUsers(ctx context.Context, userIDs []string) (map[string][]Row, error)
}

// Reconciler derives unread state from the authoritative store. Every call
// is a full recompute; it is safe to invoke from both the polling path and
// the realtime notification callback, the latest fetch always wins.
type Reconciler struct {
	store Store
	log   *slog.Logger

	mu        sync.Mutex
	lastKnown map[string]Summary
}

func NewReconciler(store Store, log *slog.Logger) *Reconciler {
	return &Reconciler{
		store:     store,
		log:       log,
		lastKnown: make(map[string]Summary),
	}
}

// Compute fetches the member's read-state rows and applies the unread
// predicate. On a store failure the previously known summary is returned
// so a transient error never zeroes the badge; the error is logged, not
// propagated.
func (r *Reconciler) Compute(ctx context.Context, userID string) Summary {
	const op = "unread.Reconciler.Compute"

	rows, err := r.store.UnreadRows(ctx, userID)
	if err != nil {
		r.log.Error("unread recompute failed, keeping last known state",
			slog.String("op", op),
			slog.String("user_id", userID),
			sl.Err(err),
		)

		r.mu.Lock()
		defer r.mu.Unlock()
		return r.lastKnown[userID]
	}

	s := Summarize(rows)

	r.mu.Lock()
	r.lastKnown[userID] = s
	r.mu.Unlock()

	return s
}

// ComputeAll recomputes summaries for several members, taking the store's
// batch path when it offers one. Per-member semantics match Compute,
// including last-known-state retention on failure.
func (r *Reconciler) ComputeAll(ctx context.Context, userIDs []string) map[string]Summary {
	const op = "unread.Reconciler.ComputeAll"

	out := make(map[string]Summary, len(userIDs))

	bs, ok := r.store.(BatchStore)
	if !ok {
		for _, userID := range userIDs {
			out[userID] = r.Compute(ctx, userID)
		}
		return out
	}

	rows, err := bs.UnreadRowsForUsers(ctx, userIDs)
	if err != nil {
		r.log.Error("batch unread recompute failed, keeping last known state",
			slog.String("op", op),
			sl.Err(err),
		)

		r.mu.Lock()
		defer r.mu.Unlock()
		for _, userID := range userIDs {
			out[userID] = r.lastKnown[userID]
		}
		return out
	}

	r.mu.Lock()
	for _, userID := range userIDs {
		s := Summarize(rows[userID])
		r.lastKnown[userID] = s
		out[userID] = s
	}
	r.mu.Unlock()

	return out
}
