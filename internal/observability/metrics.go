package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Batch outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeCommandFail = "command_failed"
	OutcomeIOError     = "io_error"
	OutcomeDecodeError = "decode_error"
	OutcomeCanceled    = "canceled"
	OutcomeClosed      = "closed"
)

var (
	registerOnce sync.Once

	batches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pine",
			Subsystem: "client",
			Name:      "batches_total",
			Help:      "Batches sent to the emulator, by outcome.",
		},
		[]string{"outcome"},
	)
	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pine",
			Subsystem: "client",
			Name:      "commands_total",
			Help:      "Commands sent to the emulator, by opcode.",
		},
		[]string{"opcode"},
	)
	roundTrip = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pine",
			Subsystem: "client",
			Name:      "roundtrip_seconds",
			Help:      "Write-then-read duration of one batch.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1},
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pine",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP bridge requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pine",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP bridge request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(batches, commands, roundTrip, httpRequests, httpDuration)
	})
}

// RecordBatch counts one exchange and, when it reached the wire, its opcodes.
func RecordBatch(outcome string, opcodes []string, duration time.Duration) {
	RegisterMetrics()
	batches.WithLabelValues(outcome).Inc()
	for _, op := range opcodes {
		commands.WithLabelValues(op).Inc()
	}
	if duration > 0 {
		roundTrip.Observe(duration.Seconds())
	}
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
