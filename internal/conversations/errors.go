package conversationsdomain

import (
	"errors"
)

var (
	ErrEmptyParticipant     = errors.New("participant user id is required")
	ErrSelfConversation     = errors.New("cannot open a conversation with yourself")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of the conversation")
)
