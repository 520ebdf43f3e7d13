// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CommandsHandled  prometheus.Counter
	CommandsUnknown  prometheus.Counter
	JoinsAccepted    prometheus.Counter
	JoinsRejected    prometheus.Counter
	SnippetsRelayed  prometheus.Counter
	FormatFallbacks  prometheus.Counter
	ChatSendFailures prometheus.Counter

	// Histograms (seconds)
	FormatDuration   prometheus.Observer
	DispatchDuration prometheus.Observer

	// Gauges
	QueueDepthGauge prometheus.Gauge
	IRCConnected    prometheus.Gauge // 1=connected,0=disconnected
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CommandsHandled = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_handled_total", Help: "Number of recognized chat commands dispatched"})
		CommandsUnknown = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_commands_unknown_total", Help: "Number of messages with the trigger prefix but no matching command"})
		JoinsAccepted = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_queue_joins_accepted_total", Help: "Number of successful queue joins"})
		JoinsRejected = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_queue_joins_rejected_total", Help: "Number of duplicate queue joins rejected"})
		SnippetsRelayed = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_snippets_relayed_total", Help: "Number of code snippets relayed to Discord"})
		FormatFallbacks = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_format_fallbacks_total", Help: "Number of snippets posted unformatted after a formatter failure"})
		ChatSendFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "bot_send_failures_total", Help: "Number of outbound sends that failed"})
		FormatDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "bot_format_duration_seconds", Help: "Formatter invocation duration seconds", Buckets: prometheus.DefBuckets})
		DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "bot_dispatch_duration_seconds", Help: "Per-command dispatch duration seconds", Buckets: prometheus.DefBuckets})
		QueueDepthGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_queue_depth", Help: "Current number of queued participants"})
		IRCConnected = promauto.NewGauge(prometheus.GaugeOpts{Name: "bot_irc_connected", Help: "Twitch IRC connection state (1=connected)"})
	})
}

// SetQueueDepth records the current participant count.
func SetQueueDepth(n int) {
	if QueueDepthGauge != nil {
		QueueDepthGauge.Set(float64(n))
	}
}

// SetIRCConnected flips the IRC connection gauge.
func SetIRCConnected(up bool) {
	if IRCConnected != nil {
		if up {
			IRCConnected.Set(1)
		} else {
			IRCConnected.Set(0)
		}
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with the corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
