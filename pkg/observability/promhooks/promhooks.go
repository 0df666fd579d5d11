// Package promhooks implements the observability hook interfaces with
// Prometheus collectors. Wire it in once at startup:
//
//	metrics := promhooks.Install(prometheus.DefaultRegisterer)
//
// and expose the registry with promhttp. Workflow ids are deliberately
// not used as labels; they are unbounded.
package promhooks

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/voxhive/callflow/pkg/observability"
)

// Metrics implements observability.SessionHooks, observability.CacheHooks,
// and observability.HTTPHooks backed by Prometheus collectors.
type Metrics struct {
	commands           *prometheus.CounterVec
	historyMoves       *prometheus.CounterVec
	saves              *prometheus.CounterVec
	saveDuration       prometheus.Histogram
	validations        *prometheus.CounterVec
	validationErrors   prometheus.Gauge
	validationDuration prometheus.Histogram
	cacheOps           *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to use the global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callflow_session_commands_total",
				Help: "Edit commands recorded in session history.",
			},
			[]string{"name", "classification"},
		),
		historyMoves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callflow_session_history_moves_total",
				Help: "Undo and redo attempts, including no-ops at history ends.",
			},
			[]string{"op", "outcome"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callflow_session_saves_total",
				Help: "Workflow save attempts.",
			},
			[]string{"outcome", "include_graph"},
		),
		saveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "callflow_session_save_duration_seconds",
				Help: "Duration of workflow save round trips.",
			},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callflow_session_validations_total",
				Help: "Validation round trips by outcome (valid, invalid, stale).",
			},
			[]string{"outcome"},
		),
		validationErrors: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "callflow_session_validation_errors",
				Help: "Error count reported by the most recent fresh validation.",
			},
		),
		validationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "callflow_session_validation_duration_seconds",
				Help: "Duration of validation round trips.",
			},
		),
		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callflow_cache_operations_total",
				Help: "Cache hits, misses, and writes by key type.",
			},
			[]string{"key_type", "op"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callflow_http_requests_total",
				Help: "Outgoing HTTP requests by method, host, and status.",
			},
			[]string{"method", "host", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "callflow_http_request_duration_seconds",
				Help: "Duration of outgoing HTTP requests.",
			},
			[]string{"method", "host"},
		),
	}

	reg.MustRegister(
		m.commands,
		m.historyMoves,
		m.saves,
		m.saveDuration,
		m.validations,
		m.validationErrors,
		m.validationDuration,
		m.cacheOps,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Install registers the collectors with reg and wires them into the
// global hook registry. Call once at application startup.
func Install(reg prometheus.Registerer) *Metrics {
	m := New(reg)
	observability.SetSessionHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
	return m
}

// OnCommand implements observability.SessionHooks.
func (m *Metrics) OnCommand(_ context.Context, name string, structural bool, _ time.Duration) {
	class := "cosmetic"
	if structural {
		class = "structural"
	}
	m.commands.WithLabelValues(name, class).Inc()
}

// OnUndo implements observability.SessionHooks.
func (m *Metrics) OnUndo(_ context.Context, ok bool) {
	m.historyMoves.WithLabelValues("undo", moveOutcome(ok)).Inc()
}

// OnRedo implements observability.SessionHooks.
func (m *Metrics) OnRedo(_ context.Context, ok bool) {
	m.historyMoves.WithLabelValues("redo", moveOutcome(ok)).Inc()
}

// OnSave implements observability.SessionHooks.
func (m *Metrics) OnSave(_ context.Context, _ string, includeGraph bool, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.saves.WithLabelValues(outcome, strconv.FormatBool(includeGraph)).Inc()
	m.saveDuration.Observe(duration.Seconds())
}

// OnValidation implements observability.SessionHooks. Stale responses
// count toward the stale outcome and never move the error gauge.
func (m *Metrics) OnValidation(_ context.Context, _ string, _ uint64, errorCount int, stale bool, duration time.Duration) {
	switch {
	case stale:
		m.validations.WithLabelValues("stale").Inc()
		return
	case errorCount == 0:
		m.validations.WithLabelValues("valid").Inc()
	default:
		m.validations.WithLabelValues("invalid").Inc()
	}
	m.validationErrors.Set(float64(errorCount))
	m.validationDuration.Observe(duration.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
}

// OnRequest implements observability.HTTPHooks. Requests are counted on
// completion, so this is a no-op.
func (m *Metrics) OnRequest(context.Context, string, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, host, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, host).Observe(duration.Seconds())
}

// OnError implements observability.HTTPHooks.
func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.httpRequests.WithLabelValues(method, host, "error").Inc()
}

func moveOutcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "noop"
}

var (
	_ observability.SessionHooks = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
