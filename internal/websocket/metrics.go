package websocket

import (
	internalmetrics "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	connections prometheus.Gauge
	rooms       prometheus.Gauge
	delivered   prometheus.Counter
	dropped     prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		connections: internalmetrics.Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "desertport_ws_connections",
			Help: "Current number of active websocket connections.",
		})),
		rooms: internalmetrics.Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "desertport_ws_rooms",
			Help: "Current number of websocket rooms.",
		})),
		delivered: internalmetrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "desertport_ws_messages_delivered_total",
			Help: "Total websocket messages delivered to clients.",
		})),
		dropped: internalmetrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "desertport_ws_clients_dropped_total",
			Help: "Clients disconnected because their send buffer was full.",
		})),
	}
}
