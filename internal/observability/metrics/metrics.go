package metrics

import (
	"database/sql"
	"log"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "aura_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	pollTotal   *prometheus.CounterVec
	pollLatency *prometheus.HistogramVec
	pollSkipped prometheus.Counter

	hazardEventsTotal *prometheus.CounterVec

	dispatchTotal *prometheus.CounterVec

	alertForwardTotal *prometheus.CounterVec

	logAppendTotal *prometheus.CounterVec
)

// Init registers panel metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		pollTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_total",
				Help: "Total telemetry polls by result",
			},
			[]string{"result"},
		)
		pollLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "poll_latency_seconds",
				Help:    "Telemetry poll latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		pollSkipped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "poll_skipped_total",
				Help: "Total ticks skipped because a poll was still in flight",
			},
		)

		hazardEventsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "hazard_events_total",
				Help: "Total hazard lifecycle events by channel and event",
			},
			[]string{"channel", "event"},
		)

		dispatchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dispatch_total",
				Help: "Total side-effect dispatches by action and result",
			},
			[]string{"action", "result"},
		)

		alertForwardTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_forward_total",
				Help: "Total manual alert forwards by channel and result",
			},
			[]string{"channel", "result"},
		)

		logAppendTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "log_append_total",
				Help: "Total system log appends by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			pollTotal,
			pollLatency,
			pollSkipped,
			hazardEventsTotal,
			dispatchTotal,
			alertForwardTotal,
			logAppendTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	gauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_open_connections",
			Help: "Open connections in the database pool",
		},
		func() float64 {
			return float64(db.Stats().OpenConnections)
		},
	)
	if err := prometheus.Register(gauge); err != nil && logger != nil {
		logger.Printf("metrics: db gauge registration failed: %v", err)
	}
}

// ObservePoll records one telemetry poll.
func ObservePoll(seconds float64, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if pollTotal != nil {
		pollTotal.WithLabelValues(result).Inc()
	}
	if pollLatency != nil {
		pollLatency.WithLabelValues(result).Observe(seconds)
	}
}

// IncPollSkipped increments the skipped-tick counter.
func IncPollSkipped() {
	if pollSkipped != nil {
		pollSkipped.Inc()
	}
}

// IncHazardEvent increments the hazard lifecycle counter.
func IncHazardEvent(channel, event string) {
	if channel == "" {
		channel = "unknown"
	}
	if hazardEventsTotal != nil {
		hazardEventsTotal.WithLabelValues(channel, event).Inc()
	}
}

// IncDispatch increments the side-effect dispatch counter.
func IncDispatch(action string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if dispatchTotal != nil {
		dispatchTotal.WithLabelValues(action, result).Inc()
	}
}

// IncAlertForward increments the manual alert forward counter.
func IncAlertForward(channel string, sent bool) {
	result := resultSuccess
	if !sent {
		result = resultError
	}
	if alertForwardTotal != nil {
		alertForwardTotal.WithLabelValues(channel, result).Inc()
	}
}

// IncLogAppend increments the log append counter.
func IncLogAppend(err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if logAppendTotal != nil {
		logAppendTotal.WithLabelValues(result).Inc()
	}
}
