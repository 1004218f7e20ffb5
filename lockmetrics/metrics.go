// Package lockmetrics provides Prometheus instrumentation for the lock
// coordinator: acquisition outcomes, wait time, held-lease counts, and
// extension/release failures.
package lockmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the collectors a Coordinator reports against. The zero
// value is not usable; construct with New.
type Metrics struct {
	AcquisitionsTotal      *prometheus.CounterVec
	AcquisitionAttempts    prometheus.Histogram
	AcquisitionWaitSeconds prometheus.Histogram
	HeldLeases             prometheus.Gauge
	ExtensionFailuresTotal prometheus.Counter
	ReleaseErrorsTotal     prometheus.Counter
}

// New builds a fresh, unregistered set of collectors.
func New() *Metrics {
	return &Metrics{
		AcquisitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runlock_acquisitions_total",
			Help: "Total number of lock acquisition attempts by outcome.",
		}, []string{"result"}),
		AcquisitionAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "runlock_acquisition_attempts",
			Help:    "Number of TryAcquire attempts per completed acquisition.",
			Buckets: prometheus.LinearBuckets(1, 1, 12),
		}),
		AcquisitionWaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "runlock_acquisition_wait_seconds",
			Help:    "Cumulative time spent waiting between acquisition attempts.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		HeldLeases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "runlock_held_leases",
			Help: "Current number of leases held by this process.",
		}),
		ExtensionFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runlock_extension_failures_total",
			Help: "Total number of auto-extension attempts that found the lease already lost.",
		}),
		ReleaseErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runlock_release_errors_total",
			Help: "Total number of store errors encountered while releasing a lease.",
		}),
	}
}

// Register registers every collector on reg.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.AcquisitionsTotal,
		m.AcquisitionAttempts,
		m.AcquisitionWaitSeconds,
		m.HeldLeases,
		m.ExtensionFailuresTotal,
		m.ReleaseErrorsTotal,
	)
}
