package conversationsrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	conversationsdomain "github.com/dkravets/nestswap-messenger/internal/conversations"
	"github.com/dkravets/nestswap-messenger/internal/unread"
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// PairKey normalizes a pair of member ids into the unique conversation key.
// The unique index on it is what makes concurrent first-contact between the
// same two members converge on a single conversation.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// FindOrCreate returns the conversation between the two members, creating it
// with both participants on first contact. The second return value reports
// whether a new conversation was created.
func (r *Repo) FindOrCreate(ctx context.Context, me, partner conversationsdomain.Participant) (int64, bool, error) {
	const op = "storage.postgres.FindOrCreate"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	pairKey := PairKey(me.UserID, partner.UserID)

	var conversationID int64
	created := true

	err = tx.QueryRowxContext(
		ctx,
		`INSERT INTO conversations (pair_key) VALUES ($1)
		ON CONFLICT (pair_key) DO NOTHING
		RETURNING id`,
		pairKey,
	).Scan(&conversationID)

	if errors.Is(err, sql.ErrNoRows) {
		created = false
		err = tx.QueryRowxContext(
			ctx,
			`SELECT id FROM conversations WHERE pair_key = $1`,
			pairKey,
		).Scan(&conversationID)
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: resolve conversation: %w", op, err)
	}

	for _, p := range []conversationsdomain.Participant{me, partner} {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO conversation_participants (conversation_id, user_id, display_name, email, avatar_key)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (conversation_id, user_id) DO NOTHING`,
			conversationID, p.UserID, p.DisplayName, p.Email, p.AvatarKey,
		); err != nil {
			return 0, false, fmt.Errorf("%s: insert participant %s: %w", op, p.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("%s: commit tx: %w", op, err)
	}

	return conversationID, created, nil
}

// Find returns the existing conversation between two members, if any.
func (r *Repo) Find(ctx context.Context, userA, userB string) (int64, bool, error) {
	const op = "storage.postgres.Find"

	var conversationID int64
	err := r.db.QueryRowxContext(
		ctx,
		`SELECT id FROM conversations WHERE pair_key = $1`,
		PairKey(userA, userB),
	).Scan(&conversationID)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: query: %w", op, err)
	}

	return conversationID, true, nil
}

// ListForUser returns every conversation the member participates in, joined
// with the counterpart's denormalized participant row and the member's own
// read state. last_message_at here is the conversation's, used for ordering;
// unread derivation goes through UnreadRows instead.
func (r *Repo) ListForUser(ctx context.Context, userID string) ([]conversationsdomain.ListRow, error) {
	const op = "storage.postgres.ListForUser"

	rows, err := r.db.QueryxContext(
		ctx,
		`
		WITH mine AS (SELECT conversation_id, last_read_at
		              FROM conversation_participants
		              WHERE user_id = $1)

		SELECT c.id              AS conversation_id,
		       c.created_at      AS created_at,
		       c.last_message_at AS last_message_at,
		       mine.last_read_at AS own_last_read_at,

		       p.user_id      AS "partner.user_id",
		       p.display_name AS "partner.display_name",
		       p.email        AS "partner.email",
		       p.avatar_key   AS "partner.avatar_key",
		       p.last_read_at AS "partner.last_read_at"

		FROM conversations c
		         JOIN mine ON mine.conversation_id = c.id
		         JOIN conversation_participants p
		              ON p.conversation_id = c.id AND p.user_id <> $1

		ORDER BY CASE WHEN c.last_message_at IS NULL THEN 1 ELSE 0 END,
		         c.last_message_at DESC,
		         c.id
		`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	items := []conversationsdomain.ListRow{}

	for rows.Next() {
		var row conversationsdomain.ListRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return items, nil
}

// Get returns the conversation with its participants.
func (r *Repo) Get(ctx context.Context, conversationID int64) (*conversationsdomain.Info, error) {
	const op = "storage.postgres.GetConversation"

	var conv conversationsdomain.Conversation
	err := r.db.QueryRowxContext(
		ctx,
		`SELECT id, created_at, last_message_at FROM conversations WHERE id = $1`,
		conversationID,
	).StructScan(&conv)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, conversationsdomain.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: query conversation: %w", op, err)
	}

	var participantRows []conversationsdomain.ParticipantRow
	if err := r.db.SelectContext(
		ctx,
		&participantRows,
		`SELECT conversation_id, user_id, display_name, email, avatar_key, last_read_at
		FROM conversation_participants
		WHERE conversation_id = $1
		ORDER BY user_id`,
		conversationID,
	); err != nil {
		return nil, fmt.Errorf("%s: query participants: %w", op, err)
	}

	participants := make([]conversationsdomain.Participant, 0, len(participantRows))
	for _, p := range participantRows {
		participants = append(participants, participantFromRow(p))
	}

	return &conversationsdomain.Info{
		Conversation: conv,
		Participants: participants,
	}, nil
}

// UnreadRows implements unread.Store. The effective last message time per
// conversation is the latest message from the counterpart, so a member's own
// messages never mark the conversation unread for them.
func (r *Repo) UnreadRows(ctx context.Context, userID string) ([]unread.Row, error) {
	const op = "storage.postgres.UnreadRows"

	type row struct {
		ConversationID int64        `db:"conversation_id"`
		LastMessageAt  sql.NullTime `db:"last_message_at"`
		LastReadAt     sql.NullTime `db:"last_read_at"`
	}

	var raw []row
	if err := r.db.SelectContext(
		ctx,
		&raw,
		`
		SELECT cp.conversation_id,
		       pl.last_message_at,
		       cp.last_read_at
		FROM conversation_participants cp
		         LEFT JOIN (SELECT conversation_id,
		                           MAX(created_at) AS last_message_at
		                    FROM messages
		                    WHERE sender_user_id <> $1
		                    GROUP BY conversation_id) pl
		                   ON pl.conversation_id = cp.conversation_id
		WHERE cp.user_id = $1
		ORDER BY cp.conversation_id
		`,
		userID,
	); err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	out := make([]unread.Row, 0, len(raw))
	for _, r := range raw {
		out = append(out, unread.Row{
			ConversationID: r.ConversationID,
			LastMessageAt:  nullTimePtr(r.LastMessageAt),
			LastReadAt:     nullTimePtr(r.LastReadAt),
		})
	}

	return out, nil
}

// UnreadRowsForUsers is the batch form of UnreadRows, used by the realtime
// listener when one change notification touches both members.
func (r *Repo) UnreadRowsForUsers(ctx context.Context, userIDs []string) (map[string][]unread.Row, error) {
	const op = "storage.postgres.UnreadRowsForUsers"

	type row struct {
		UserID         string       `db:"user_id"`
		ConversationID int64        `db:"conversation_id"`
		LastMessageAt  sql.NullTime `db:"last_message_at"`
		LastReadAt     sql.NullTime `db:"last_read_at"`
	}

	var raw []row
	if err := r.db.SelectContext(
		ctx,
		&raw,
		`
		SELECT cp.user_id,
		       cp.conversation_id,
		       (SELECT MAX(m.created_at)
		        FROM messages m
		        WHERE m.conversation_id = cp.conversation_id
		          AND m.sender_user_id <> cp.user_id) AS last_message_at,
		       cp.last_read_at
		FROM conversation_participants cp
		WHERE cp.user_id = ANY ($1)
		ORDER BY cp.user_id, cp.conversation_id
		`,
		pq.Array(userIDs),
	); err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	out := make(map[string][]unread.Row, len(userIDs))
	for _, r := range raw {
		out[r.UserID] = append(out[r.UserID], unread.Row{
			ConversationID: r.ConversationID,
			LastMessageAt:  nullTimePtr(r.LastMessageAt),
			LastReadAt:     nullTimePtr(r.LastReadAt),
		})
	}

	return out, nil
}

func participantFromRow(row conversationsdomain.ParticipantRow) conversationsdomain.Participant {
	return conversationsdomain.Participant{
		UserID:      row.UserID,
		DisplayName: row.DisplayName.String,
		Email:       row.Email.String,
		AvatarKey:   row.AvatarKey.String,
		LastReadAt:  nullTimePtr(row.LastReadAt),
	}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
