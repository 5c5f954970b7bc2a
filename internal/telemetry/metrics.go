package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	DatagramsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simonlink",
			Name:      "datagrams_sent_total",
			Help:      "Datagram send attempts, by completion result.",
		},
		[]string{"result"},
	)

	DatagramsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "simonlink",
			Name:      "datagrams_received_total",
			Help:      "Datagrams delivered by the link.",
		},
	)

	DatagramsDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simonlink",
			Name:      "datagrams_discarded_total",
			Help:      "Inbound datagrams dropped: malformed or received in a non-accepting state.",
		},
		[]string{"reason"},
	)

	SendRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "simonlink",
			Name:      "send_retries_total",
			Help:      "Datagram retransmissions issued by the reliable sender.",
		},
	)

	SendGiveUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "simonlink",
			Name:      "send_give_ups_total",
			Help:      "Sends abandoned after the retry budget was exhausted.",
		},
	)

	GuessesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simonlink",
			Name:      "guesses_total",
			Help:      "Guesses evaluated by the manager, by outcome.",
		},
		[]string{"outcome"},
	)

	RoundsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "simonlink",
			Name:      "rounds_started_total",
			Help:      "Rounds the manager has started.",
		},
	)

	RoundsWon = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "simonlink",
			Name:      "rounds_won_total",
			Help:      "Rounds finished with a full correct sequence.",
		},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simonlink",
			Name:      "requests_total",
			Help:      "Total number of status HTTP requests.",
		},
		[]string{"op", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "simonlink",
			Name:      "request_duration_seconds",
			Help:      "Latency of status HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 13),
		},
		[]string{"op"},
	)

	// ---- Process / build info ----
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "simonlink",
			Name:      "build_info",
			Help:      "Build info (constant 1, labeled by version and git_sha).",
		},
		[]string{"version", "git_sha"},
	)

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "simonlink",
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(
		DatagramsSent, DatagramsReceived, DatagramsDiscarded,
		SendRetries, SendGiveUps,
		GuessesTotal, RoundsStarted, RoundsWon,
		RequestsTotal, RequestDuration,
		buildInfo, uptime,
	)
}

// MetricsHandler exposes /metrics. Mount it with mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// SetBuildInfo should be called once at startup, e.g. with ldflags-provided values.
func SetBuildInfo(version, gitSHA string) {
	buildInfo.WithLabelValues(version, gitSHA).Set(1)
}

// ---- Middleware instrumentation ----

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument wraps an http.Handler to record metrics under the provided "op" label.
func Instrument(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()

		next.ServeHTTP(sw, r)

		class := strconv.Itoa(sw.status/100) + "xx"
		RequestsTotal.WithLabelValues(op, class).Inc()
		RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	})
}
