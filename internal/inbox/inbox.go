package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	messagesdomain "github.com/dkravets/nestswap-messenger/internal/messages"
	"github.com/dkravets/nestswap-messenger/internal/unread"
)

var ErrNoActiveConversation = errors.New("no active conversation selected")

// Sender is the send path the inbox drives; satisfied by the messages
// service and by an HTTP client in an embedding UI shell.
type Sender interface {
	Send(ctx context.Context, conversationID int64, senderID string, content messagesdomain.Content) (messagesdomain.Message, error)
}

// Inbox is the view-state engine for one signed-in member. It replaces the
// ad hoc process-wide state atom of the old client: all mutation goes
// through methods, persistence goes through the explicit Snapshot/Restore
// boundary, and nothing here is authoritative: every field can be
// discarded and refetched from the store.
type Inbox struct {
	mu sync.Mutex

	userID   string
	active   int64
	fetchTag uuid.UUID

	messages []messagesdomain.Message
	drafts   map[int64]string
	summary  unread.Summary
}

func New(userID string) *Inbox {
	return &Inbox{
		userID: userID,
		drafts: make(map[int64]string),
	}
}

func (i *Inbox) UserID() string { return i.userID }

// Select activates a conversation and returns the fetch tag the caller must
// pass to ApplyMessages. Selecting invalidates the tag of any fetch still in
// flight for the previously active conversation, so its late response is
// discarded instead of overwriting the new conversation's list.
func (i *Inbox) Select(conversationID int64) uuid.UUID {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.active = conversationID
	i.fetchTag = uuid.New()
	i.messages = nil

	return i.fetchTag
}

// ApplyMessages installs a fetched message list as the full authoritative
// replacement. Responses carrying a stale tag are dropped; the return value
// reports whether the payload was applied.
func (i *Inbox) ApplyMessages(tag uuid.UUID, msgs []messagesdomain.Message) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if tag != i.fetchTag {
		return false
	}

	i.messages = msgs
	return true
}

// Messages returns the currently displayed list.
func (i *Inbox) Messages() []messagesdomain.Message {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]messagesdomain.Message, len(i.messages))
	copy(out, i.messages)
	return out
}

func (i *Inbox) ActiveConversation() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active
}

func (i *Inbox) SetDraft(conversationID int64, text string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if text == "" {
		delete(i.drafts, conversationID)
		return
	}
	i.drafts[conversationID] = text
}

func (i *Inbox) Draft(conversationID int64) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.drafts[conversationID]
}

// Send submits the active conversation's draft. The draft is cleared only
// after the send succeeds; on failure it stays intact so the member can
// retry without retyping.
func (i *Inbox) Send(ctx context.Context, sender Sender) (messagesdomain.Message, error) {
	i.mu.Lock()
	conversationID := i.active
	draft := i.drafts[conversationID]
	userID := i.userID
	i.mu.Unlock()

	if conversationID == 0 {
		return messagesdomain.Message{}, ErrNoActiveConversation
	}

	msg, err := sender.Send(ctx, conversationID, userID, messagesdomain.TextContent(draft))
	if err != nil {
		return messagesdomain.Message{}, err
	}

	i.mu.Lock()
	delete(i.drafts, conversationID)
	i.mu.Unlock()

	return msg, nil
}

// ApplySummary installs a recomputed unread summary (latest fetch wins).
func (i *Inbox) ApplySummary(s unread.Summary) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.summary = s
}

func (i *Inbox) Summary() unread.Summary {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.summary
}

// Snapshot is the serialized session state. The message list is not part of
// it: it is a cache, always refetched on restore.
type Snapshot struct {
	UserID string           `json:"user_id"`
	Active int64            `json:"active"`
	Drafts map[int64]string `json:"drafts,omitempty"`
}

func (i *Inbox) Snapshot() ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	drafts := make(map[int64]string, len(i.drafts))
	for k, v := range i.drafts {
		drafts[k] = v
	}

	return json.Marshal(Snapshot{
		UserID: i.userID,
		Active: i.active,
		Drafts: drafts,
	})
}

func Restore(data []byte) (*Inbox, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	i := New(s.UserID)
	i.active = s.Active
	if s.Active != 0 {
		i.fetchTag = uuid.New()
	}
	for k, v := range s.Drafts {
		i.drafts[k] = v
	}

	return i, nil
}
