package messagesrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	messagesdomain "github.com/dkravets/nestswap-messenger/internal/messages"
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// SendMessage appends the message and advances the conversation's
// last_message_at in the same transaction, so the invariant
// last_message_at >= message.created_at holds at commit. The sender's own
// last_read_at is deliberately untouched; marking read is a separate action.
func (r *Repo) SendMessage(
	ctx context.Context,
	conversationID int64,
	senderID string,
	content messagesdomain.Content,
) (messagesdomain.Message, error) {

	const op = "storage.postgres.SendMessage"

	body, err := content.EncodeBody()
	if err != nil {
		return messagesdomain.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return messagesdomain.Message{}, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	var row messagesdomain.MessageRow
	err = tx.QueryRowxContext(
		ctx,
		`INSERT INTO messages (conversation_id, sender_user_id, kind, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, conversation_id, sender_user_id, kind, body, created_at`,
		conversationID, senderID, string(content.Kind), body,
	).StructScan(&row)

	if err != nil {
		return messagesdomain.Message{}, fmt.Errorf("%s: insert message: %w", op, err)
	}

	res, err := tx.ExecContext(
		ctx,
		`UPDATE conversations
		SET last_message_at = GREATEST(COALESCE(last_message_at, $1::timestamptz), $1::timestamptz)
		WHERE id = $2`,
		row.CreatedAt, conversationID,
	)
	if err != nil {
		return messagesdomain.Message{}, fmt.Errorf("%s: advance last_message_at: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return messagesdomain.Message{}, fmt.Errorf("%s: conversation %d not found", op, conversationID)
	}

	if err := tx.Commit(); err != nil {
		return messagesdomain.Message{}, fmt.Errorf("%s: commit tx: %w", op, err)
	}

	return messageFromRow(row)
}

// GetMessages returns the full history in creation order. Callers treat the
// result as the authoritative replacement for any locally held list.
func (r *Repo) GetMessages(ctx context.Context, conversationID int64) ([]messagesdomain.Message, error) {
	const op = "storage.postgres.GetMessages"

	var rows []messagesdomain.MessageRow
	if err := r.db.SelectContext(
		ctx,
		&rows,
		`SELECT id, conversation_id, sender_user_id, kind, body, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC`,
		conversationID,
	); err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	out := make([]messagesdomain.Message, 0, len(rows))
	for _, row := range rows {
		msg, err := messageFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: message %d: %w", op, row.ID, err)
		}
		out = append(out, msg)
	}

	return out, nil
}

// MarkRead moves the member's read receipt forward. GREATEST keeps
// last_read_at monotonic: a stale client timestamp can never regress it.
func (r *Repo) MarkRead(ctx context.Context, conversationID int64, userID string, at time.Time) (time.Time, error) {
	const op = "storage.postgres.MarkRead"

	var saved time.Time
	err := r.db.QueryRowxContext(
		ctx,
		`UPDATE conversation_participants
		SET last_read_at = GREATEST(COALESCE(last_read_at, $1::timestamptz), $1::timestamptz)
		WHERE conversation_id = $2 AND user_id = $3
		RETURNING last_read_at`,
		at, conversationID, userID,
	).Scan(&saved)

	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, messagesdomain.ErrNotParticipant
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: update: %w", op, err)
	}

	return saved, nil
}

func (r *Repo) IsParticipant(ctx context.Context, conversationID int64, userID string) (bool, error) {
	const op = "storage.postgres.IsParticipant"

	var ok bool
	err := r.db.QueryRowxContext(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND user_id = $2
		)`,
		conversationID, userID,
	).Scan(&ok)

	if err != nil {
		return false, fmt.Errorf("%s: query: %w", op, err)
	}

	return ok, nil
}

func (r *Repo) ParticipantIDs(ctx context.Context, conversationID int64) ([]string, error) {
	const op = "storage.postgres.ParticipantIDs"

	var ids []string
	if err := r.db.SelectContext(
		ctx,
		&ids,
		`SELECT user_id FROM conversation_participants
		WHERE conversation_id = $1
		ORDER BY user_id`,
		conversationID,
	); err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	return ids, nil
}

func messageFromRow(row messagesdomain.MessageRow) (messagesdomain.Message, error) {
	content, err := messagesdomain.DecodeBody(row.Kind, row.Body)
	if err != nil {
		return messagesdomain.Message{}, err
	}

	return messagesdomain.Message{
		ID:             row.ID,
		ConversationID: row.ConversationID,
		SenderUserID:   row.SenderUserID,
		Content:        content,
		CreatedAt:      row.CreatedAt,
	}, nil
}
