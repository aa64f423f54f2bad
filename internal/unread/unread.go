package unread

import (
	"time"
)

// IsUnread reports whether a conversation has messages the member has not
// seen yet. It is a pure function of the two timestamps and is recomputed on
// every reconciliation; the result is never stored, so it cannot drift from
// the authoritative store.
func IsUnread(lastMessageAt, lastReadAt *time.Time) bool {
	if lastMessageAt == nil {
		return false
	}
	if lastReadAt == nil {
		return true
	}
	return lastMessageAt.After(*lastReadAt)
}

// Row is one conversation's read state for a given member as fetched from
// the store. LastMessageAt is the latest message time from the counterpart:
// a member's own messages never count toward their unread state.
type Row struct {
	ConversationID int64
	LastMessageAt  *time.Time
	LastReadAt     *time.Time
}

type ConversationUnread struct {
	ConversationID int64 `json:"conversation_id"`
	Unread         bool  `json:"unread"`
}

// Summary is the result of one full recompute. TotalUnread counts unread
// conversations, not unread messages.
type Summary struct {
	TotalUnread   int                  `json:"total_unread"`
	Conversations []ConversationUnread `json:"conversation_counts"`
}

// Summarize applies the unread predicate to every row.
func Summarize(rows []Row) Summary {
	s := Summary{Conversations: make([]ConversationUnread, 0, len(rows))}
	for _, r := range rows {
		u := IsUnread(r.LastMessageAt, r.LastReadAt)
		if u {
			s.TotalUnread++
		}
		s.Conversations = append(s.Conversations, ConversationUnread{
			ConversationID: r.ConversationID,
			Unread:         u,
		})
	}
	return s
}
