// Package metrics exposes the pipeline's prometheus counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the pipeline counters. A nil *Metrics is a valid no-op
// receiver so components can run without a registry in tests.
type Metrics struct {
	Received        prometheus.Counter
	Rejected        prometheus.Counter
	Persisted       prometheus.Counter
	PersistFailures prometheus.Counter
	Alerts          prometheus.Counter
	Republished     prometheus.Counter
	Commits         prometheus.Counter
}

// New creates and registers the pipeline counters.
func New(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "udite",
			Subsystem: "pipeline",
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		Received:        counter("events_received_total", "Inbound raw messages delivered to the pipeline."),
		Rejected:        counter("events_rejected_total", "Messages dropped by validation."),
		Persisted:       counter("events_persisted_total", "Validated events staged for durable storage."),
		PersistFailures: counter("persist_failures_total", "Row-level persistence failures."),
		Alerts:          counter("alerts_published_total", "Alert records published to the alert channel."),
		Republished:     counter("events_republished_total", "Validated events republished on data/post channels."),
		Commits:         counter("storage_commits_total", "Batch commits issued by the persistence writer."),
	}

	reg.MustRegister(m.Received, m.Rejected, m.Persisted, m.PersistFailures,
		m.Alerts, m.Republished, m.Commits)
	return m
}

func (m *Metrics) IncReceived() {
	if m != nil {
		m.Received.Inc()
	}
}

func (m *Metrics) IncRejected() {
	if m != nil {
		m.Rejected.Inc()
	}
}

func (m *Metrics) IncPersisted() {
	if m != nil {
		m.Persisted.Inc()
	}
}

func (m *Metrics) IncPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) IncAlerts() {
	if m != nil {
		m.Alerts.Inc()
	}
}

func (m *Metrics) IncRepublished() {
	if m != nil {
		m.Republished.Inc()
	}
}

func (m *Metrics) IncCommits() {
	if m != nil {
		m.Commits.Inc()
	}
}
