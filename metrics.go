package reply

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes builder counters as Prometheus collectors. Builders are
// single-owner and unlocked, so metrics are fed by draining: the owning
// loop calls Drain on its own schedule (typically per monitoring interval),
// which folds the current counters into the collectors and resets them.
type Metrics struct {
	writeOps   prometheus.Counter
	writeBytes prometheus.Counter
	errors     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		writeOps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reply_write_ops_total",
			Help: "Write operations issued to connection sinks",
		}),
		writeBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reply_write_bytes_total",
			Help: "Bytes written to connection sinks",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reply_errors_total",
			Help: "Error replies sent, by resolved error type",
		}, []string{"type"}),
	}
	reg.MustRegister(m.writeOps, m.writeBytes, m.errors)
	return m
}

// Drain folds b's counters into the exported metrics and zeroes them via
// ResetIOStats. Call it from the goroutine that owns b.
func (m *Metrics) Drain(b ReplyBuilder) {
	m.writeOps.Add(float64(b.IOWriteCount()))
	m.writeBytes.Add(float64(b.IOWriteBytes()))
	for typ, n := range b.ErrCount() {
		m.errors.WithLabelValues(typ).Add(float64(n))
	}
	b.ResetIOStats()
}
