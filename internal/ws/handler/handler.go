package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/dkravets/nestswap-messenger/internal/lib/logger/sl"
	"github.com/dkravets/nestswap-messenger/internal/metrics"
	"github.com/dkravets/nestswap-messenger/internal/session"
	"github.com/dkravets/nestswap-messenger/internal/unread"
	wsdomain "github.com/dkravets/nestswap-messenger/internal/ws"
	"github.com/dkravets/nestswap-messenger/internal/ws/hub"
)

type ClientMsg struct {
	Type string `json:"type"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades the request and registers the session with the hub.
// An initial unread summary is pushed right after the hello so freshly
// opened sessions do not wait for the next store change to get a badge.
func WSHandler(h *hub.Hub, rec *unread.Reconciler, m *metrics.Metrics, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		const op = "handlers.ws.WSHandler"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("ws upgrade error", sl.Err(err))
			return
		}
		defer conn.Close()

		userID := session.UserID(r)

		hc := hub.NewConnection(conn, userID)
		go hc.WritePump()

		h.Register(hc)
		m.WSSessionsActive.Inc()
		defer func() {
			h.Unregister(hc)
			m.WSSessionsActive.Dec()
		}()

		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		hello, _ := json.Marshal(map[string]any{"type": "hello", "ok": true})
		hc.Send(hello)

		pushSummary(context.Background(), rec, hc, userID, log)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Debug("ws read closed", sl.Err(err))
				return
			}

			var msg ClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Error("ws bad json", sl.Err(err))
				continue
			}

			switch msg.Type {
			case "refresh":
				// Client-requested recompute; same full-recompute path as a
				// store change notification.
				pushSummary(r.Context(), rec, hc, userID, log)
			default:
				log.Info("ws unknown message type", slog.String("message_type", msg.Type))
			}
		}
	}
}

func pushSummary(ctx context.Context, rec *unread.Reconciler, hc *hub.Connection, userID string, log *slog.Logger) {
	summary := rec.Compute(ctx, userID)

	evt, err := wsdomain.NewEvent(wsdomain.UnreadSummary, 0, wsdomain.UnreadSummaryPayload{Summary: summary})
	if err != nil {
		log.Error("failed to build ws event", sl.Err(err))
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error("failed to marshal ws event", sl.Err(err))
		return
	}

	hc.Send(payload)
}
