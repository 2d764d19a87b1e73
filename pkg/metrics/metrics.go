package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ContainersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_containers_total",
			Help: "Total number of known containers by state",
		},
		[]string{"state"},
	)

	ContainersStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_containers_started_total",
			Help: "Total number of containers successfully started",
		},
	)

	ContainersFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_containers_failed_total",
			Help: "Total number of containers that failed to start or exited non-zero",
		},
	)

	ContainerStartDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_container_start_duration_seconds",
			Help:    "Time taken to assemble rootfs, set up cgroups, and launch a container",
			Buckets: prometheus.DefBuckets,
		},
	)

	ContainerStopDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_container_stop_duration_seconds",
			Help:    "Time taken to stop a container, including the SIGTERM grace period",
			Buckets: prometheus.DefBuckets,
		},
	)

	MemoryCurrentBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_container_memory_current_bytes",
			Help: "Current memory.current reading for a container's cgroup",
		},
		[]string{"container_id"},
	)

	CPUUsageSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_container_cpu_usage_seconds_total",
			Help: "Cumulative cpu.stat usage_usec for a container's cgroup, in seconds",
		},
		[]string{"container_id"},
	)

	PIDsCurrent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_container_pids_current",
			Help: "Current pids.current reading for a container's cgroup",
		},
		[]string{"container_id"},
	)

	IOReadBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_container_io_read_bytes_total",
			Help: "Cumulative io.stat rbytes for a container's cgroup",
		},
		[]string{"container_id"},
	)

	IOWriteBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "burrow_container_io_write_bytes_total",
			Help: "Cumulative io.stat wbytes for a container's cgroup",
		},
		[]string{"container_id"},
	)
)

func init() {
	prometheus.MustRegister(ContainersTotal)
	prometheus.MustRegister(ContainersStartedTotal)
	prometheus.MustRegister(ContainersFailedTotal)
	prometheus.MustRegister(ContainerStartDuration)
	prometheus.MustRegister(ContainerStopDuration)
	prometheus.MustRegister(MemoryCurrentBytes)
	prometheus.MustRegister(CPUUsageSeconds)
	prometheus.MustRegister(PIDsCurrent)
	prometheus.MustRegister(IOReadBytes)
	prometheus.MustRegister(IOWriteBytes)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
