package unreadHandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	resp "github.com/dkravets/nestswap-messenger/internal/lib/api/response"
	"github.com/dkravets/nestswap-messenger/internal/metrics"
	"github.com/dkravets/nestswap-messenger/internal/session"
	"github.com/dkravets/nestswap-messenger/internal/unread"
)

type GetUnreadResponse struct {
	resp.Response
	unread.Summary
}

// GetUnread is the polling face of the reconciler: same full recompute the
// realtime path triggers, safe to call from either without inconsistency.
func GetUnread(rec *unread.Reconciler, m *metrics.Metrics, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.unread.GetUnread"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID := session.UserID(r)

		summary := rec.Compute(r.Context(), userID)
		m.UnreadRecomputesTotal.Inc()

		log.Debug("unread recomputed",
			slog.String("user_id", userID),
			slog.Int("total_unread", summary.TotalUnread),
		)

		render.JSON(w, r, GetUnreadResponse{
			Response: resp.OK(),
			Summary:  summary,
		})
	}
}
