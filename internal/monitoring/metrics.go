// Package monitoring exposes pool and job metrics to Prometheus.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/smazurov/forklift/internal/events"
	"github.com/smazurov/forklift/pool"
)

var (
	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forklift",
		Subsystem: "jobs",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of finished jobs",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	})

	jobsNonZero = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forklift",
		Subsystem: "jobs",
		Name:      "nonzero_exits_total",
		Help:      "Jobs that finished with a non-zero exit code",
	})

	jobsUnstartable = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forklift",
		Subsystem: "jobs",
		Name:      "start_failures_total",
		Help:      "Jobs whose child process could not be created",
	})
)

// PoolCollector exposes a pool.Manager's counters as Prometheus
// metrics. Collection reads a stats snapshot, so it is safe while the
// pool is running.
type PoolCollector struct {
	pm *pool.Manager

	activeDesc   *prometheus.Desc
	maxProcsDesc *prometheus.Desc
	spawnedDesc  *prometheus.Desc
	reapedDesc   *prometheus.Desc
}

// NewPoolCollector creates a collector over pm.
func NewPoolCollector(pm *pool.Manager) *PoolCollector {
	return &PoolCollector{
		pm: pm,
		activeDesc: prometheus.NewDesc(
			"forklift_pool_active_children",
			"Children spawned but not yet reaped", nil, nil),
		maxProcsDesc: prometheus.NewDesc(
			"forklift_pool_max_procs",
			"Configured concurrency bound", nil, nil),
		spawnedDesc: prometheus.NewDesc(
			"forklift_pool_spawned_total",
			"Children spawned over the pool's lifetime", nil, nil),
		reapedDesc: prometheus.NewDesc(
			"forklift_pool_reaped_total",
			"Children reaped over the pool's lifetime", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.activeDesc
	ch <- c.maxProcsDesc
	ch <- c.spawnedDesc
	ch <- c.reapedDesc
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.pm.Stats()
	ch <- prometheus.MustNewConstMetric(c.activeDesc, prometheus.GaugeValue, float64(stats.Active))
	ch <- prometheus.MustNewConstMetric(c.maxProcsDesc, prometheus.GaugeValue, float64(stats.MaxProcs))
	ch <- prometheus.MustNewConstMetric(c.spawnedDesc, prometheus.CounterValue, float64(stats.Spawned))
	ch <- prometheus.MustNewConstMetric(c.reapedDesc, prometheus.CounterValue, float64(stats.Reaped))
}

// Register wires a pool into the default registry and subscribes the
// job counters to the event bus. Returns an unsubscribe function.
func Register(pm *pool.Manager, bus *events.Bus) func() {
	prometheus.MustRegister(NewPoolCollector(pm))

	unsubFinished := bus.Subscribe(func(e events.JobFinishedEvent) {
		jobDuration.Observe(e.Duration.Seconds())
		if e.ExitCode != 0 {
			jobsNonZero.Inc()
		}
	})
	unsubFailed := bus.Subscribe(func(events.JobFailedEvent) {
		jobsUnstartable.Inc()
	})
	return func() {
		unsubFinished()
		unsubFailed()
	}
}
