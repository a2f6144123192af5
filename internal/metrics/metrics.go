// Package metrics records the outcome of a scan run in Prometheus
// collectors and optionally pushes them to a Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"vulnreport/internal/model"
)

const namespace = "vulnreport"

// Metrics holds the collectors of one run, registered on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	Findings      *prometheus.GaugeVec
	Notifications *prometheus.CounterVec
	RunDuration   prometheus.Gauge
	LastRun       prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.Findings = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "findings",
			Help:      "Findings in the last scan report by severity and status",
		},
		[]string{"severity", "status"},
	)

	m.Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by channel and result",
		},
		[]string{"channel", "result"},
	)

	m.RunDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		},
	)

	m.LastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		},
	)

	m.Registry.MustRegister(m.Findings, m.Notifications, m.RunDuration, m.LastRun)
	return m
}

// RecordSummary sets the findings gauges from s.
func (m *Metrics) RecordSummary(s model.SeveritySummary) {
	for _, sev := range model.Severities {
		c := s.Counts(sev)
		m.Findings.WithLabelValues(string(sev), model.StatusActive).Set(float64(c.Active))
		m.Findings.WithLabelValues(string(sev), model.StatusSuppressed).Set(float64(c.Suppressed))
	}
}

// ObserveNotification counts one channel send. It has the shape of a
// notify.Observer.
func (m *Metrics) ObserveNotification(channel string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.Notifications.WithLabelValues(channel, result).Inc()
}

// ObserveRun records how long the run took, ending at end.
func (m *Metrics) ObserveRun(start, end time.Time) {
	m.RunDuration.Set(end.Sub(start).Seconds())
	m.LastRun.Set(float64(end.Unix()))
}

// Push sends every collector to the Pushgateway at url, grouped by run ID.
func (m *Metrics) Push(ctx context.Context, url, job, runID string) error {
	p := push.New(url, job).Gatherer(m.Registry)
	if runID != "" {
		p = p.Grouping("run_id", runID)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
