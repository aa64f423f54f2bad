package messagesHandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	resp "github.com/dkravets/nestswap-messenger/internal/lib/api/response"
	"github.com/dkravets/nestswap-messenger/internal/lib/logger/sl"
	messagesdomain "github.com/dkravets/nestswap-messenger/internal/messages"
	"github.com/dkravets/nestswap-messenger/internal/metrics"
	"github.com/dkravets/nestswap-messenger/internal/session"
	"github.com/dkravets/nestswap-messenger/internal/transport/httpapi"
	wsdomain "github.com/dkravets/nestswap-messenger/internal/ws"
	"github.com/dkravets/nestswap-messenger/internal/ws/hub"
)

// Notifier publishes a store-change trigger naming the affected members.
type Notifier interface {
	Notify(ctx context.Context, userIDs []string) error
}

type Participants interface {
	ParticipantIDs(ctx context.Context, conversationID int64) ([]string, error)
}

type Handler struct {
	service      messagesdomain.Service
	participants Participants
	notifier     Notifier
	hub          *hub.Hub
	metrics      *metrics.Metrics
	log          *slog.Logger
}

func New(
	service messagesdomain.Service,
	participants Participants,
	notifier Notifier,
	h *hub.Hub,
	m *metrics.Metrics,
	log *slog.Logger,
) *Handler {
	return &Handler{
		service:      service,
		participants: participants,
		notifier:     notifier,
		hub:          h,
		metrics:      m,
		log:          log,
	}
}

// GetMessages returns the conversation's full history and, as a side effect,
// marks it read for the caller as of now: observing the messages is what
// consumes the unread state.
func (h *Handler) GetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.GetMessages"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		conversationID, ok := conversationIDParam(w, r)
		if !ok {
			return
		}

		userID := session.UserID(r)

		msgs, err := h.service.List(r.Context(), conversationID, userID)
		if err != nil {
			log.Error("failed to get messages", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		if _, err := h.service.MarkRead(r.Context(), conversationID, userID, time.Now().UTC()); err != nil {
			// The fetch itself succeeded; the read receipt catches up on the
			// next open or explicit mark-read.
			log.Error("failed to mark read on fetch", sl.Err(err))
		} else {
			h.notifyConversation(r.Context(), log, conversationID)
		}

		render.JSON(w, r, messagesdomain.GetMessagesResponse{
			Response: resp.OK(),
			Messages: msgs,
		})
	}
}

func (h *Handler) SendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.SendMessage"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		conversationID, ok := conversationIDParam(w, r)
		if !ok {
			return
		}

		var req messagesdomain.SendMessageRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("invalid body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid body"))
			return
		}

		userID := session.UserID(r)

		msg, err := h.service.Send(r.Context(), conversationID, userID, req.Content)
		if err != nil {
			log.Error("failed to send message", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		h.metrics.MessagesSentTotal.WithLabelValues(string(msg.Content.Kind)).Inc()

		render.JSON(w, r, messagesdomain.SendMessageResponse{
			Response: resp.OK(),
			Message:  msg,
		})

		h.broadcastNew(r.Context(), log, msg)
		h.notifyConversation(r.Context(), log, conversationID)
	}
}

// MarkRead is the explicit read action, decoupled from sending: "I sent it"
// never implies "I've read everything up to now".
func (h *Handler) MarkRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.messages.MarkRead"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		conversationID, ok := conversationIDParam(w, r)
		if !ok {
			return
		}

		var req messagesdomain.MarkReadRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("invalid body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid body"))
			return
		}

		var at time.Time
		if req.At != nil {
			at = *req.At
		}

		userID := session.UserID(r)

		saved, err := h.service.MarkRead(r.Context(), conversationID, userID, at)
		if err != nil {
			log.Error("failed to mark read", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, messagesdomain.MarkReadResponse{
			Response:   resp.OK(),
			LastReadAt: saved,
		})

		h.broadcastRead(log, conversationID, userID, saved)
		h.notifyConversation(r.Context(), log, conversationID)
	}
}

// notifyConversation publishes the change trigger for every participant.
// Receivers recompute from the store; the trigger carries no message data.
func (h *Handler) notifyConversation(ctx context.Context, log *slog.Logger, conversationID int64) {
	ids, err := h.participants.ParticipantIDs(ctx, conversationID)
	if err != nil {
		log.Error("failed to resolve participants for notify", sl.Err(err))
		return
	}

	if err := h.notifier.Notify(ctx, ids); err != nil {
		log.Error("failed to publish change notification", sl.Err(err))
		return
	}

	h.metrics.RealtimeNotificationsTotal.Inc()
}

func (h *Handler) broadcastNew(ctx context.Context, log *slog.Logger, msg messagesdomain.Message) {
	evt, err := wsdomain.NewEvent(wsdomain.MessageNew, msg.ConversationID, wsdomain.MessageNewPayload{Message: msg})
	if err != nil {
		log.Error("failed to build ws event", sl.Err(err))
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error("failed to marshal ws event", sl.Err(err))
		return
	}

	ids, err := h.participants.ParticipantIDs(ctx, msg.ConversationID)
	if err != nil {
		log.Error("failed to resolve participants for broadcast", sl.Err(err))
		return
	}

	for _, id := range ids {
		h.hub.Broadcast(id, payload)
	}
}

func (h *Handler) broadcastRead(log *slog.Logger, conversationID int64, userID string, at time.Time) {
	evt, err := wsdomain.NewEvent(wsdomain.MessageRead, conversationID, wsdomain.MessageReadPayload{
		UserID:     userID,
		LastReadAt: at.Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Error("failed to build ws event", sl.Err(err))
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error("failed to marshal ws event", sl.Err(err))
		return
	}

	h.hub.Broadcast(userID, payload)
}

func conversationIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "conversationId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error("invalid conversationId"))
		return 0, false
	}
	return id, true
}
