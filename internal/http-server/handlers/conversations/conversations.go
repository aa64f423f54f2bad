package conversationsHandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	conversationsdomain "github.com/dkravets/nestswap-messenger/internal/conversations"
	resp "github.com/dkravets/nestswap-messenger/internal/lib/api/response"
	"github.com/dkravets/nestswap-messenger/internal/lib/logger/sl"
	"github.com/dkravets/nestswap-messenger/internal/session"
	"github.com/dkravets/nestswap-messenger/internal/transport/httpapi"
)

type Handler struct {
	service conversationsdomain.Service
	log     *slog.Logger
}

func New(service conversationsdomain.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// GetConversations returns the caller's conversation list. The loader is
// read-only and never errors toward the UI: backend failure shows up as an
// empty list with a logged diagnostic inside the service.
func (h *Handler) GetConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.conversations.GetConversations"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		uid := session.UserID(r)

		items := h.service.ListForUser(r.Context(), uid)

		log.Debug("conversations fetched", slog.Int("count", len(items)))

		render.JSON(w, r, conversationsdomain.GetConversationsResponse{
			Response:      resp.OK(),
			Conversations: items,
		})
	}
}

func (h *Handler) GetConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.conversations.GetConversation"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		conversationID, ok := conversationIDParam(w, r)
		if !ok {
			return
		}

		info, err := h.service.Get(r.Context(), conversationID)
		if err != nil {
			log.Error("failed to get conversation", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, conversationsdomain.GetConversationResponse{
			Response:     resp.OK(),
			Conversation: info,
		})
	}
}

// CreateConversation is the create-or-find path: first contact creates the
// conversation with both participants, repeated contact returns the existing
// one.
func (h *Handler) CreateConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.conversations.CreateConversation"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req conversationsdomain.CreateConversationRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("invalid body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid body"))
			return
		}

		me := conversationsdomain.Participant{UserID: session.UserID(r)}

		id, created, err := h.service.FindOrCreate(r.Context(), me, req.Partner)
		if err != nil {
			log.Error("failed to resolve conversation", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		log.Info("conversation resolved",
			slog.Int64("conversation_id", id),
			slog.Bool("created", created),
		)

		render.JSON(w, r, conversationsdomain.CreateConversationResponse{
			Response:       resp.OK(),
			ConversationID: id,
			Created:        created,
		})
	}
}

// ResolveConversation checks for an existing conversation with the partner
// without creating one.
func (h *Handler) ResolveConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.conversations.ResolveConversation"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req conversationsdomain.ResolveConversationRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("invalid body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid body"))
			return
		}

		id, exists, err := h.service.Resolve(r.Context(), session.UserID(r), req.PartnerUserID)
		if err != nil {
			log.Error("failed to resolve conversation", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, conversationsdomain.ResolveConversationResponse{
			Response:       resp.OK(),
			ConversationID: id,
			Exists:         exists,
		})
	}
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
