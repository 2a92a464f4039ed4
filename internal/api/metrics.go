package api

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	internalmetrics "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/metrics"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/queue"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics bundles Prometheus collectors that are shared across the HTTP servers.
type metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
	queueDepth prometheus.GaugeFunc
	gatherer   prometheus.Gatherer
}

func newMetrics(reg prometheus.Registerer, listenAddr string, q *queue.RequestQueueManager) *metrics {
	labels := prometheus.Labels{"listen_addr": listenAddr}

	m := &metrics{
		requests: internalmetrics.Register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "desertport_http_requests_total",
				Help:        "Total count of HTTP requests received.",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		)),
		duration: internalmetrics.Register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "desertport_http_request_duration_seconds",
				Help:        "Histogram of request durations.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		)),
		inFlight: internalmetrics.Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "desertport_http_inflight_requests",
			Help:        "Number of requests currently being handled.",
			ConstLabels: labels,
		})),
		gatherer: prometheus.DefaultGatherer,
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	if q != nil {
		m.queueDepth = internalmetrics.Register(reg, prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "desertport_request_queue_depth",
				Help:        "Jobs waiting in the request queue channel.",
				ConstLabels: labels,
			},
			func() float64 {
				return float64(q.Depth())
			},
		))
	}

	return m
}

// metricsHandler exposes /metrics from the registry the collectors live in.
func (m *metrics) metricsHandler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// instrument wraps the provided handler with Prometheus counters and histograms.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start).Seconds()

		routePath := sanitizePath(r.URL.Path)
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				routePath = pattern
			}
		}

		labels := []string{r.Method, routePath, strconv.Itoa(rec.status)}

		m.requests.WithLabelValues(labels...).Inc()
		m.duration.WithLabelValues(labels...).Observe(elapsed)
	})
}

// sanitizePath reduces cardinality for requests that matched no route.
func sanitizePath(p string) string {
	clean := path.Clean(p)
	if clean == "" || clean == "." {
		return "/"
	}

	segments := strings.Split(clean, "/")
	// The first element is empty for absolute paths; keep up to three actual segments.
	out := segments
	if len(segments) > 4 {
		out = append(segments[:4], "...")
	}

	res := strings.Join(out, "/")
	if !strings.HasPrefix(res, "/") {
		res = "/" + res
	}

	return res
}

// statusRecorder captures the final status code for metrics purposes.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack keeps websocket upgrades working behind the instrumentation.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		sr.status = http.StatusSwitchingProtocols
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("statusRecorder: underlying ResponseWriter does not support hijacking")
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}
