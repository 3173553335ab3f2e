package metrics

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/weaveworks/promrus"
)

const MetricPrefix = "abilaunch_"

// LogMessagesMetric is the per-level log line counter maintained by the promrus hook.
const LogMessagesMetric = "log_messages_total"

type Outcome string

const (
	OutcomeDone   Outcome = "done"
	OutcomeFailed Outcome = "failed"
)

// Metrics collects counters for one process. All methods are no-ops on a nil *Metrics,
// so components can be built without metrics.
type Metrics struct {
	registry *prometheus.Registry

	jobs          *prometheus.CounterVec
	violations    prometheus.Counter
	runDuration   prometheus.Histogram
	batches       prometheus.Counter
	batchJobsSize prometheus.Histogram

	countsLogs bool
}

// The promrus hook registers its counter with the default registry, so one hook serves the process.
var logHook struct {
	sync.Mutex
	hook   *promrus.PrometheusHook
	hooked map[*logrus.Logger]bool
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: MetricPrefix + "jobs_total",
			Help: "Number of calculations handled, grouped by outcome and the last state reached",
		}, []string{"outcome", "state"}),
		violations: factory.NewCounter(prometheus.CounterOpts{
			Name: MetricPrefix + "approval_violations_total",
			Help: "Number of parameter violations reported by the approver",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricPrefix + "run_duration_seconds",
			Help:    "Wall-clock duration of synchronous simulation runs",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		batches: factory.NewCounter(prometheus.CounterOpts{
			Name: MetricPrefix + "batches_total",
			Help: "Number of batches launched",
		}),
		batchJobsSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricPrefix + "batch_jobs",
			Help:    "Number of jobs per batch",
			Buckets: prometheus.LinearBuckets(1, 5, 10),
		}),
	}
}

func (m *Metrics) RecordJob(outcome Outcome, state string) {
	if m == nil {
		return
	}
	m.jobs.With(map[string]string{"outcome": string(outcome), "state": state}).Inc()
}

func (m *Metrics) RecordViolations(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.violations.Add(float64(n))
}

func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordBatch(jobs int) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.batchJobsSize.Observe(float64(jobs))
}

// CountLogMessages counts the lines logged by logger per level. The counter is included in Gatherer
// and WriteTextfile.
func (m *Metrics) CountLogMessages(logger *logrus.Logger) error {
	if m == nil {
		return nil
	}
	logHook.Lock()
	defer logHook.Unlock()
	if logHook.hook == nil {
		hook, err := promrus.NewPrometheusHook()
		if err != nil {
			return errors.Wrap(err, "error registering log message counter")
		}
		logHook.hook = hook
		logHook.hooked = map[*logrus.Logger]bool{}
	}
	if !logHook.hooked[logger] {
		logger.AddHook(logHook.hook)
		logHook.hooked[logger] = true
	}
	m.countsLogs = true
	return nil
}

// Gatherer returns the metrics of this process: the registry the collectors were registered with,
// plus the log message counter if CountLogMessages was called.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if !m.countsLogs {
		return m.registry
	}
	return prometheus.Gatherers{m.registry, familyGatherer(prometheus.DefaultGatherer, LogMessagesMetric)}
}

// familyGatherer gathers only the metric family called name from g.
func familyGatherer(g prometheus.Gatherer, name string) prometheus.Gatherer {
	return prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		families, err := g.Gather()
		for _, family := range families {
			if family.GetName() == name {
				return []*dto.MetricFamily{family}, err
			}
		}
		return nil, err
	})
}

// WriteTextfile writes the current values in the text exposition format, e.g. for the node exporter
// textfile collector. Nothing is written for a nil *Metrics.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Gatherer()); err != nil {
		return errors.Wrapf(err, "error writing metrics to %s", path)
	}
	return nil
}
