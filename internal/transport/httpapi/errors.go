package httpapi

import (
	"errors"
	"net/http"

	conversationsdomain "github.com/dkravets/nestswap-messenger/internal/conversations"
	messagesdomain "github.com/dkravets/nestswap-messenger/internal/messages"
)

func MapError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, conversationsdomain.ErrConversationNotFound):
		return http.StatusNotFound, "conversation_not_found", err.Error()

	case errors.Is(err, conversationsdomain.ErrEmptyParticipant):
		return http.StatusBadRequest, "empty_participant", err.Error()

	case errors.Is(err, conversationsdomain.ErrSelfConversation):
		return http.StatusBadRequest, "self_conversation", err.Error()

	case errors.Is(err, conversationsdomain.ErrNotParticipant),
		errors.Is(err, messagesdomain.ErrNotParticipant):
		return http.StatusForbidden, "not_participant", err.Error()

	case errors.Is(err, messagesdomain.ErrEmptyContent):
		return http.StatusBadRequest, "empty_content", err.Error()

	case errors.Is(err, messagesdomain.ErrUnknownContentKind):
		return http.StatusBadRequest, "unknown_content_kind", err.Error()
	}

	return http.StatusInternalServerError, "internal_error", "internal server error"
}
