package messagesdomain

import (
	"errors"
)

var (
	ErrEmptyContent       = errors.New("message content is empty")
	ErrUnknownContentKind = errors.New("unknown content kind")
	ErrNotParticipant     = errors.New("sender is not a participant of the conversation")
	ErrMessageNotFound    = errors.New("message not found")
)
