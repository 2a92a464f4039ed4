package chat

import (
	internalmetrics "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	sessionsStarted prometheus.Counter
	handoffs        *prometheus.CounterVec
	resolved        prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		sessionsStarted: internalmetrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "desertport_chat_sessions_started_total",
			Help: "Chat sessions opened from the site widget.",
		})),
		handoffs: internalmetrics.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "desertport_chat_handoffs_total",
			Help: "Chat status transitions toward a human agent.",
		}, []string{"to"})),
		resolved: internalmetrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "desertport_chat_sessions_resolved_total",
			Help: "Chat sessions closed.",
		})),
	}
}

type monitorMetrics struct {
	notifications prometheus.Counter
	total         prometheus.Gauge
	staleEvents   prometheus.Counter
}

func newMonitorMetrics(reg prometheus.Registerer) *monitorMetrics {
	return &monitorMetrics{
		notifications: internalmetrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "desertport_chat_unread_notifications_total",
			Help: "Agent notifications fired by a rise in unread messages.",
		})),
		total: internalmetrics.Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "desertport_chat_unread_by_agent",
			Help: "Unread user messages across active sessions.",
		})),
		staleEvents: internalmetrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "desertport_chat_unread_stale_events_total",
			Help: "Session events skipped because a newer snapshot was already applied.",
		})),
	}
}
