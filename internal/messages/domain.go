package messagesdomain

import (
	"context"
	"time"

	response "github.com/dkravets/nestswap-messenger/internal/lib/api/response"
)

// Message is an append-only entry of a conversation. Content carries either
// plain text or a swap-agreement reference; see content.go.
type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID int64     `json:"conversation_id" db:"conversation_id"`
	SenderUserID   string    `json:"sender_user_id" db:"sender_user_id"`
	Content        Content   `json:"content"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type MessageRow struct {
	ID             int64     `db:"id"`
	ConversationID int64     `db:"conversation_id"`
	SenderUserID   string    `db:"sender_user_id"`
	Kind           string    `db:"kind"`
	Body           string    `db:"body"`
	CreatedAt      time.Time `db:"created_at"`
}

type SendMessageRequest struct {
	Content Content `json:"content"`
}

type SendMessageResponse struct {
	response.Response
	Message Message `json:"message"`
}

type GetMessagesResponse struct {
	response.Response
	Messages []Message `json:"messages"`
}

type MarkReadRequest struct {
	At *time.Time `json:"at"`
}

type MarkReadResponse struct {
	response.Response
	LastReadAt time.Time `json:"last_read_at"`
}

type Repo interface {
	SendMessage(ctx context.Context, conversationID int64, senderID string, content Content) (Message, error)
	GetMessages(ctx context.Context, conversationID int64) ([]Message, error)
	MarkRead(ctx context.Context, conversationID int64, userID string, at time.Time) (time.Time, error)
	IsParticipant(ctx context.Context, conversationID int64, userID string) (bool, error)
	ParticipantIDs(ctx context.Context, conversationID int64) ([]string, error)
}

type Service interface {
	Send(ctx context.Context, conversationID int64, senderID string, content Content) (Message, error)
	List(ctx context.Context, conversationID int64, userID string) ([]Message, error)
	MarkRead(ctx context.Context, conversationID int64, userID string, at time.Time) (time.Time, error)
}
