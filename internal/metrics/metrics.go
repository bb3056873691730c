// Package metrics collects per-run statistics of the sync job and pushes
// them to a Prometheus Pushgateway at the end of the run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/honeycarbs/contractsync/internal/domain/contract"
)

const (
	namespace = "contractsync"
	jobName   = "contractsync"
)

// Collector implements contract.Recorder on a private registry
type Collector struct {
	registry *prometheus.Registry

	pagesFetched    prometheus.Counter
	recordsFetched  prometheus.Counter
	recordsAdmitted prometheus.Counter
	recordsRejected prometheus.Counter
	rowsWritten     prometheus.Counter
	failures        *prometheus.CounterVec
	lastRetrieved   prometheus.Gauge
	runDuration     prometheus.Gauge
}

var _ contract.Recorder = (*Collector)(nil)

// NewCollector registers the job metrics on a fresh registry
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		pagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Non-empty pages retrieved from the contracts API",
		}),
		recordsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Records retrieved from the contracts API",
		}),
		recordsAdmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_new_total",
			Help:      "Records whose code was not known yet",
		}),
		recordsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Records skipped for lacking a code",
		}),
		rowsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows appended to the destination table",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Pipeline failures by stage",
		}, []string{"stage"}),
		lastRetrieved: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_write_timestamp_seconds",
			Help:      "Retrieved timestamp of the last successful append",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last sync run",
		}),
	}
}

func (c *Collector) ObservePage(fetched, admitted, rejected int) {
	c.pagesFetched.Inc()
	c.recordsFetched.Add(float64(fetched))
	c.recordsAdmitted.Add(float64(admitted))
	c.recordsRejected.Add(float64(rejected))
}

func (c *Collector) ObserveFailure(stage contract.Stage) {
	c.failures.WithLabelValues(string(stage)).Inc()
}

func (c *Collector) ObserveWrite(rows int, retrieved time.Time) {
	c.rowsWritten.Add(float64(rows))
	c.lastRetrieved.Set(float64(retrieved.Unix()))
}

func (c *Collector) ObserveRun(d time.Duration) {
	c.runDuration.Set(d.Seconds())
}

// Registry exposes the underlying registry, mostly for tests
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Push sends the collected metrics to the Pushgateway at url.
// An empty url disables pushing.
func (c *Collector) Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}

	if err := push.New(url, jobName).Gatherer(c.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}

	return nil
}
