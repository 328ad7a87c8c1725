package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cementplant"

// Metrics owns a private registry. All methods are nil-safe so components can
// run without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	jobRuns     *prometheus.CounterVec
	jobLatency  *prometheus.HistogramVec
	jobRunning  *prometheus.GaugeVec
	jobLastDone *prometheus.GaugeVec

	wsConnections prometheus.Gauge
	wsMessages    *prometheus.CounterVec
	wsDropped     prometheus.Counter

	recommendations *prometheus.CounterVec
	aiRequests      *prometheus.CounterVec
	kpiValue        *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "runs_total",
			Help: "Scheduled job triggers by outcome (success, error, panic, skipped).",
		}, []string{"job", "outcome"}),
		jobLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "run_duration_seconds",
			Help:    "Duration of completed job runs.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"job"}),
		jobRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "running",
			Help: "1 while the job is running.",
		}, []string{"job"}),
		jobLastDone: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}, []string{"job"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "realtime", Name: "connections",
			Help: "Open dashboard WebSocket connections.",
		}),
		wsMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "realtime", Name: "messages_sent_total",
			Help: "Messages delivered to subscribers by message type.",
		}, []string{"type"}),
		wsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "realtime", Name: "subscribers_dropped_total",
			Help: "Subscribers removed after a failed send.",
		}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "recommendations", Name: "created_total",
			Help: "Persisted recommendations by source and severity band.",
		}, []string{"source", "band"}),
		aiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ai", Name: "requests_total",
			Help: "Text generation calls by outcome.",
		}, []string{"outcome"}),
		kpiValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "kpi", Name: "value",
			Help: "Latest available value of each plant KPI.",
		}, []string{"metric"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.jobRuns, m.jobLatency, m.jobRunning, m.jobLastDone,
		m.wsConnections, m.wsMessages, m.wsDropped,
		m.recommendations, m.aiRequests, m.kpiValue,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) JobStarted(job string) {
	if m == nil {
		return
	}
	m.jobRunning.WithLabelValues(job).Set(1)
}

func (m *Metrics) JobFinished(job, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.jobRunning.WithLabelValues(job).Set(0)
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	m.jobLatency.WithLabelValues(job).Observe(dur.Seconds())
	if outcome == "success" {
		m.jobLastDone.WithLabelValues(job).SetToCurrentTime()
	}
}

func (m *Metrics) JobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, "skipped").Inc()
}

func (m *Metrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.wsConnections.Set(float64(n))
}

func (m *Metrics) MessagesSent(msgType string, delivered, dropped int) {
	if m == nil {
		return
	}
	m.wsMessages.WithLabelValues(msgType).Add(float64(delivered))
	m.wsDropped.Add(float64(dropped))
}

func (m *Metrics) RecommendationCreated(source, band string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(source, band).Inc()
}

func (m *Metrics) AIRequest(outcome string) {
	if m == nil {
		return
	}
	m.aiRequests.WithLabelValues(outcome).Inc()
}

// SetKPI records an available KPI; ClearKPI removes one that went unavailable
// so dashboards never show a stale value as current.
func (m *Metrics) SetKPI(name string, v float64) {
	if m == nil {
		return
	}
	m.kpiValue.WithLabelValues(name).Set(v)
}

func (m *Metrics) ClearKPI(name string) {
	if m == nil {
		return
	}
	m.kpiValue.DeleteLabelValues(name)
}
