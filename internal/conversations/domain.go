package conversationsdomain

import (
	"context"
	"database/sql"
	"time"

	response "github.com/dkravets/nestswap-messenger/internal/lib/api/response"
)

// Participant is the denormalized per-conversation member record. Profile
// fields are copied in at creation time and re-enriched from the content
// store on every list read; LastReadAt is nil until the member first opens
// the conversation.
type Participant struct {
	UserID      string     `json:"user_id" db:"user_id"`
	DisplayName string     `json:"display_name" db:"display_name"`
	Email       string     `json:"email" db:"email"`
	AvatarKey   string     `json:"-" db:"avatar_key"`
	AvatarURL   string     `json:"avatar_url"`
	ListingID   string     `json:"listing_id"`
	LastReadAt  *time.Time `json:"last_read_at" db:"last_read_at"`
}

// Conversation is a direct exchange between exactly two members: a listing
// owner and an inquirer. Messages are append-only; LastMessageAt is advanced
// in the same transaction that writes each message.
type Conversation struct {
	ID            int64      `json:"id" db:"id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastMessageAt *time.Time `json:"last_message_at" db:"last_message_at"`
}

// ListItem is one entry of a member's conversation list: the conversation,
// the counterpart enriched with profile metadata, and the caller's own read
// state.
type ListItem struct {
	Conversation Conversation `json:"conversation"`
	Partner      Participant  `json:"partner"`
	LastReadAt   *time.Time   `json:"last_read_at"`
}

type Info struct {
	Conversation Conversation  `json:"conversation"`
	Participants []Participant `json:"participants"`
}

type ParticipantRow struct {
	ConversationID int64          `db:"conversation_id"`
	UserID         string         `db:"user_id"`
	DisplayName    sql.NullString `db:"display_name"`
	Email          sql.NullString `db:"email"`
	AvatarKey      sql.NullString `db:"avatar_key"`
	LastReadAt     sql.NullTime   `db:"last_read_at"`
}

type ListRow struct {
	ConversationID int64        `db:"conversation_id"`
	CreatedAt      time.Time    `db:"created_at"`
	LastMessageAt  sql.NullTime `db:"last_message_at"`
	OwnLastReadAt  sql.NullTime `db:"own_last_read_at"`

	Partner ParticipantRow `db:"partner"`
}

type CreateConversationRequest struct {
	Partner Participant `json:"partner"`
}

type ResolveConversationRequest struct {
	PartnerUserID string `json:"partner_user_id"`
}

type GetConversationsResponse struct {
	response.Response
	Conversations []ListItem `json:"conversations"`
}

type GetConversationResponse struct {
	response.Response
	Conversation *Info `json:"conversation"`
}

type CreateConversationResponse struct {
	response.Response
	ConversationID int64 `json:"conversation_id"`
	Created        bool  `json:"created"`
}

type ResolveConversationResponse struct {
	response.Response
	ConversationID int64 `json:"conversation_id,omitempty"`
	Exists         bool  `json:"exists"`
}

type Service interface {
	FindOrCreate(ctx context.Context, me, partner Participant) (int64, bool, error)
	Resolve(ctx context.Context, userID, partnerUserID string) (int64, bool, error)
	ListForUser(ctx context.Context, userID string) []ListItem
	Get(ctx context.Context, conversationID int64) (*Info, error)
}
