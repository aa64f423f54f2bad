package ws

import (
	"encoding/json"

	messagesdomain "github.com/dkravets/nestswap-messenger/internal/messages"
	"github.com/dkravets/nestswap-messenger/internal/unread"
)

const (
	// UnreadSummary carries a freshly recomputed unread summary. The payload
	// is itself authoritative output of a full recompute; clients replace,
	// never merge.
	UnreadSummary = "unread.summary"
	MessageNew    = "message.new"
	MessageRead   = "message.read"
)

type ServerEvent struct {
	Type           string          `json:"type"`
	ConversationID int64           `json:"conversation_id,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

type UnreadSummaryPayload struct {
	Summary unread.Summary `json:"summary"`
}

type MessageNewPayload struct {
	Message messagesdomain.Message `json:"message"`
}

type MessageReadPayload struct {
	UserID     string `json:"user_id"`
	LastReadAt string `json:"last_read_at"`
}

func NewEvent(eventType string, conversationID int64, payload any) (ServerEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return ServerEvent{}, err
	}

	return ServerEvent{
		Type:           eventType,
		ConversationID: conversationID,
		Payload:        raw,
	}, nil
}
