package inbox

import (
	"context"
	"errors"
	"testing"
	"time"

	messagesdomain "github.com/dkravets/nestswap-messenger/internal/messages"
)

type fakeSender struct {
	err  error
	sent []messagesdomain.Content
}

func (f *fakeSender) Send(_ context.Context, conversationID int64, senderID string, content messagesdomain.Content) (messagesdomain.Message, error) {
	if f.err != nil {
		return messagesdomain.Message{}, f.err
	}
	f.sent = append(f.sent, content)
	return messagesdomain.Message{
		ID:             1,
		ConversationID: conversationID,
		SenderUserID:   senderID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func msgs(ids ...int64) []messagesdomain.Message {
	out := make([]messagesdomain.Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, messagesdomain.Message{ID: id, Content: messagesdomain.TextContent("m")})
	}
	return out
}

// Switching the active conversation while a fetch is still in flight must
// not let the stale response overwrite the new conversation's list.
func TestInbox_StaleFetchDiscarded(t *testing.T) {
	i := New("u1")

	tagA := i.Select(1)
	tagB := i.Select(2)

	if applied := i.ApplyMessages(tagB, msgs(20, 21)); !applied {
		t.Fatalf("current fetch must apply")
	}
	if applied := i.ApplyMessages(tagA, msgs(10)); applied {
		t.Fatalf("stale fetch must be discarded")
	}

	got := i.Messages()
	if len(got) != 2 || got[0].ID != 20 {
		t.Errorf("displayed list must reflect conversation 2, got %+v", got)
	}
}

func TestInbox_RefetchReplacesList(t *testing.T) {
	i := New("u1")

	tag := i.Select(1)
	if !i.ApplyMessages(tag, msgs(1, 2)) {
		t.Fatal("first apply failed")
	}

	// Re-selecting the same conversation issues a fresh tag; the new payload
	// is the full authoritative replacement.
	tag2 := i.Select(1)
	if !i.ApplyMessages(tag2, msgs(1, 2, 3)) {
		t.Fatal("second apply failed")
	}

	if got := i.Messages(); len(got) != 3 {
		t.Errorf("expected replaced list of 3, got %d", len(got))
	}
}

func TestInbox_FailedSendKeepsDraft(t *testing.T) {
	i := New("u1")
	i.Select(1)
	i.SetDraft(1, "drafted text")

	sender := &fakeSender{err: errors.New("backend down")}
	if _, err := i.Send(context.Background(), sender); err == nil {
		t.Fatal("expected send error")
	}

	if got := i.Draft(1); got != "drafted text" {
		t.Errorf("failed send cleared the draft: %q", got)
	}
}

func TestInbox_SuccessfulSendClearsDraft(t *testing.T) {
	i := New("u1")
	i.Select(1)
	i.SetDraft(1, "hello")

	sender := &fakeSender{}
	msg, err := i.Send(context.Background(), sender)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.SenderUserID != "u1" {
		t.Errorf("sender id = %q, want u1", msg.SenderUserID)
	}
	if got := i.Draft(1); got != "" {
		t.Errorf("draft not cleared after success: %q", got)
	}
}

func TestInbox_SendWithoutSelection(t *testing.T) {
	i := New("u1")
	if _, err := i.Send(context.Background(), &fakeSender{}); !errors.Is(err, ErrNoActiveConversation) {
		t.Errorf("err = %v, want ErrNoActiveConversation", err)
	}
}

func TestInbox_SnapshotRestore(t *testing.T) {
	i := New("u1")
	i.Select(3)
	i.SetDraft(3, "half-written reply")
	i.SetDraft(5, "other draft")

	data, err := i.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	restored, err := Restore(data)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if restored.UserID() != "u1" {
		t.Errorf("user id = %q, want u1", restored.UserID())
	}
	if restored.ActiveConversation() != 3 {
		t.Errorf("active = %d, want 3", restored.ActiveConversation())
	}
	if got := restored.Draft(3); got != "half-written reply" {
		t.Errorf("draft 3 = %q", got)
	}
	if got := restored.Draft(5); got != "other draft" {
		t.Errorf("draft 5 = %q", got)
	}
	// The message list is a cache, not session state.
	if got := restored.Messages(); len(got) != 0 {
		t.Errorf("restored inbox must start with an empty list, got %d", len(got))
	}
}
