package unread

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"
)

type fakeStore struct {
	rows map[string][]Row
	err  error
}

func (f *fakeStore) UnreadRows(_ context.Context, userID string) ([]Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[userID], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconciler_ComputeIsIdempotent(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)

	store := &fakeStore{rows: map[string][]Row{
		"u2": {
			{ConversationID: 1, LastMessageAt: &t2, LastReadAt: &t1},
			{ConversationID: 2, LastMessageAt: &t1, LastReadAt: &t2},
		},
	}}

	rec := NewReconciler(store, discardLogger())

	first := rec.Compute(context.Background(), "u2")
	second := rec.Compute(context.Background(), "u2")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("recompute without intervening writes differs: %+v vs %+v", first, second)
	}
	if first.TotalUnread != 1 {
		t.Errorf("TotalUnread = %d, want 1", first.TotalUnread)
	}
}

func TestReconciler_KeepsLastKnownOnFailure(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	store := &fakeStore{rows: map[string][]Row{
		"u1": {
			{ConversationID: 7, LastMessageAt: &t1, LastReadAt: nil},
		},
	}}

	rec := NewReconciler(store, discardLogger())

	good := rec.Compute(context.Background(), "u1")
	if good.TotalUnread != 1 {
		t.Fatalf("TotalUnread = %d, want 1", good.TotalUnread)
	}

	store.err = errors.New("backend down")

	afterFailure := rec.Compute(context.Background(), "u1")
	if !reflect.DeepEqual(good, afterFailure) {
		t.Errorf("transient failure changed the summary: %+v vs %+v", good, afterFailure)
	}
}

func TestReconciler_NoStateBeforeFirstFetch(t *testing.T) {
	store := &fakeStore{err: errors.New("backend down")}
	rec := NewReconciler(store, discardLogger())

	s := rec.Compute(context.Background(), "u1")
	if s.TotalUnread != 0 || len(s.Conversations) != 0 {
		t.Errorf("expected empty summary before any successful fetch, got %+v", s)
	}
}

// Two members, first contact, send, open, reread: the unread flag follows the
// read receipt on the recipient side and never appears on the sender side.
func TestReconciler_FirstContactScenario(t *testing.T) {
	store := &fakeStore{rows: map[string][]Row{}}
	rec := NewReconciler(store, discardLogger())

	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// u1 sends "Hello" to u2. The store's rows expose the counterpart's
	// latest message time per member, so u1 sees no incoming messages yet.
	store.rows["u1"] = []Row{{ConversationID: 1, LastMessageAt: nil, LastReadAt: nil}}
	store.rows["u2"] = []Row{{ConversationID: 1, LastMessageAt: &sentAt, LastReadAt: nil}}

	if got := rec.Compute(context.Background(), "u2"); got.TotalUnread != 1 || !got.Conversations[0].Unread {
		t.Errorf("recipient should see the conversation unread, got %+v", got)
	}
	if got := rec.Compute(context.Background(), "u1"); got.TotalUnread != 0 {
		t.Errorf("sender must never see their own message as unread, got %+v", got)
	}

	// u2 opens the conversation.
	readAt := sentAt.Add(time.Minute)
	store.rows["u2"] = []Row{{ConversationID: 1, LastMessageAt: &sentAt, LastReadAt: &readAt}}

	if got := rec.Compute(context.Background(), "u2"); got.TotalUnread != 0 {
		t.Errorf("after reading, conversation must not be unread, got %+v", got)
	}
}

type fakeBatchStore struct {
	fakeStore
	batchCalls int
	batchErr   error
}

func (f *fakeBatchStore) UnreadRowsForUsers(_ context.Context, userIDs []string) (map[string][]Row, error) {
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make(map[string][]Row, len(userIDs))
	for _, id := range userIDs {
		out[id] = f.rows[id]
	}
	return out, nil
}

func TestReconciler_ComputeAllUsesBatchPath(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	store := &fakeBatchStore{fakeStore: fakeStore{rows: map[string][]Row{
		"u1": {{ConversationID: 1, LastMessageAt: nil, LastReadAt: nil}},
		"u2": {{ConversationID: 1, LastMessageAt: &t1, LastReadAt: nil}},
	}}}

	rec := NewReconciler(store, discardLogger())

	got := rec.ComputeAll(context.Background(), []string{"u1", "u2"})

	if store.batchCalls != 1 {
		t.Errorf("batch store queried %d times, want 1", store.batchCalls)
	}
	if got["u1"].TotalUnread != 0 {
		t.Errorf("u1 TotalUnread = %d, want 0", got["u1"].TotalUnread)
	}
	if got["u2"].TotalUnread != 1 {
		t.Errorf("u2 TotalUnread = %d, want 1", got["u2"].TotalUnread)
	}
}

func TestReconciler_ComputeAllKeepsLastKnownOnFailure(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	store := &fakeBatchStore{fakeStore: fakeStore{rows: map[string][]Row{
		"u2": {{ConversationID: 1, LastMessageAt: &t1, LastReadAt: nil}},
	}}}

	rec := NewReconciler(store, discardLogger())

	good := rec.ComputeAll(context.Background(), []string{"u2"})

	store.batchErr = errors.New("backend down")

	afterFailure := rec.ComputeAll(context.Background(), []string{"u2"})
	if !reflect.DeepEqual(good, afterFailure) {
		t.Errorf("transient batch failure changed summaries: %+v vs %+v", good, afterFailure)
	}
}

func TestReconciler_ComputeAllWithoutBatchStore(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	store := &fakeStore{rows: map[string][]Row{
		"u2": {{ConversationID: 1, LastMessageAt: &t1, LastReadAt: nil}},
	}}

	rec := NewReconciler(store, discardLogger())

	got := rec.ComputeAll(context.Background(), []string{"u1", "u2"})
	if got["u2"].TotalUnread != 1 {
		t.Errorf("u2 TotalUnread = %d, want 1", got["u2"].TotalUnread)
	}
	if got["u1"].TotalUnread != 0 {
		t.Errorf("u1 TotalUnread = %d, want 0", got["u1"].TotalUnread)
	}
}
