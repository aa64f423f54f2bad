package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the messaging service.
type Metrics struct {
	MessagesSentTotal          *prometheus.CounterVec
	UnreadRecomputesTotal      prometheus.Counter
	RealtimeNotificationsTotal prometheus.Counter
	WSSessionsActive           prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{}

	m.MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nestswap_messages_sent_total",
			Help: "Total number of messages written, by content kind",
		},
		[]string{"kind"},
	)

	m.UnreadRecomputesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nestswap_unread_recomputes_total",
			Help: "Total number of full unread recomputes served",
		},
	)

	m.RealtimeNotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nestswap_realtime_notifications_total",
			Help: "Total number of change notifications published",
		},
	)

	m.WSSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nestswap_ws_sessions_active",
			Help: "Number of websocket sessions currently connected",
		},
	)

	return m
}
