package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ec2pull"

// Recorder collects the metrics of a single inventory run. Each run owns its
// registry, so nothing leaks between invocations or tests
type Recorder struct {
	registry *prometheus.Registry

	apiCallsTotal   *prometheus.CounterVec
	apiCallDuration *prometheus.HistogramVec
	hostsTotal      prometheus.Gauge
	groupsTotal     prometheus.Gauge
	skippedTotal    *prometheus.CounterVec
	defaultedFields *prometheus.CounterVec
	lastRunSuccess  prometheus.Gauge
	lastRunTime     prometheus.Gauge
}

// NewRecorder creates a recorder with a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		apiCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ec2",
				Name:      "api_calls_total",
				Help:      "Total number of EC2 API calls",
			},
			[]string{"operation", "status"},
		),

		apiCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ec2",
				Name:      "api_call_duration_seconds",
				Help:      "EC2 API call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),

		hostsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "inventory",
				Name:      "hosts",
				Help:      "Number of hosts in the emitted inventory",
			},
		),

		groupsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "inventory",
				Name:      "groups",
				Help:      "Number of tag groups in the emitted inventory",
			},
		),

		skippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "inventory",
				Name:      "skipped_instances_total",
				Help:      "Instances left out of the inventory",
			},
			[]string{"reason"},
		),

		defaultedFields: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "inventory",
				Name:      "defaulted_fields_total",
				Help:      "Host metadata fields substituted with an empty string",
			},
			[]string{"field"},
		),

		lastRunSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_success",
				Help:      "1 if the last run emitted an inventory, 0 otherwise",
			},
		),

		lastRunTime: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last run",
			},
		),
	}
}

// RecordAPICall records one EC2 API call and its outcome
func (r *Recorder) RecordAPICall(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.apiCallsTotal.WithLabelValues(operation, status).Inc()
	r.apiCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetInventorySize sets the host and group gauges
func (r *Recorder) SetInventorySize(hosts, groups int) {
	r.hostsTotal.Set(float64(hosts))
	r.groupsTotal.Set(float64(groups))
}

// RecordSkippedInstance counts an instance that was not added to the inventory
func (r *Recorder) RecordSkippedInstance(reason string) {
	r.skippedTotal.WithLabelValues(reason).Inc()
}

// RecordDefaultedField counts a metadata field that fell back to ""
func (r *Recorder) RecordDefaultedField(field string) {
	r.defaultedFields.WithLabelValues(field).Inc()
}

// RecordRun marks the end of a run
func (r *Recorder) RecordRun(success bool, at time.Time) {
	if success {
		r.lastRunSuccess.Set(1)
	} else {
		r.lastRunSuccess.Set(0)
	}
	r.lastRunTime.Set(float64(at.Unix()))
}

// Gatherer exposes the run registry
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry in the node_exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Gatherer())
}
