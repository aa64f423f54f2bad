package messagesservice

import (
	"context"
	"fmt"
	"time"

	messagesdomain "github.com/dkravets/nestswap-messenger/internal/messages"
)

type Service struct {
	repo messagesdomain.Repo
}

func New(repo messagesdomain.Repo) *Service {
	return &Service{repo: repo}
}

// Send validates the content and the sender's membership before writing.
// Validation failures never reach the store, so a failed send is always
// retryable by the caller with the same draft.
func (s *Service) Send(
	ctx context.Context,
	conversationID int64,
	senderID string,
	content messagesdomain.Content,
) (messagesdomain.Message, error) {

	const op = "messages.service.Send"

	if content.Empty() {
		return messagesdomain.Message{}, messagesdomain.ErrEmptyContent
	}

	ok, err := s.repo.IsParticipant(ctx, conversationID, senderID)
	if err != nil {
		return messagesdomain.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return messagesdomain.Message{}, messagesdomain.ErrNotParticipant
	}

	msg, err := s.repo.SendMessage(ctx, conversationID, senderID, content)
	if err != nil {
		return messagesdomain.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

func (s *Service) List(ctx context.Context, conversationID int64, userID string) ([]messagesdomain.Message, error) {
	const op = "messages.service.List"

	ok, err := s.repo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, messagesdomain.ErrNotParticipant
	}

	msgs, err := s.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return msgs, nil
}

// MarkRead advances the member's read receipt. A zero timestamp means "now";
// the store clamps to the maximum of the stored and supplied values, so the
// receipt only ever moves forward.
func (s *Service) MarkRead(ctx context.Context, conversationID int64, userID string, at time.Time) (time.Time, error) {
	const op = "messages.service.MarkRead"

	if at.IsZero() {
		at = time.Now().UTC()
	}

	saved, err := s.repo.MarkRead(ctx, conversationID, userID, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}
