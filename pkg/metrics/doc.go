/*
Package metrics provides Prometheus metrics collection and exposition
for burrow.

Metrics are registered at package init and exposed over HTTP via
Handler() when burrow is started with --metrics-addr. Collector polls
the state store and every container's cgroup leaf on an interval and
republishes the result as gauges labeled by container ID, so a single
scrape covers every container currently known to this host.

# Metric Categories

  - burrow_containers_total{state}: count of known containers by state
  - burrow_containers_started_total / burrow_containers_failed_total: lifetime counters
  - burrow_container_start_duration_seconds / _stop_duration_seconds: operation latency
  - burrow_container_memory_current_bytes{container_id}: memory.current
  - burrow_container_cpu_usage_seconds_total{container_id}: cpu.stat usage_usec, in seconds
  - burrow_container_pids_current{container_id}: pids.current
  - burrow_container_io_{read,write}_bytes_total{container_id}: io.stat rbytes/wbytes

# Health

HealthChecker holds the health that callers register for burrow's own
components, independent of any individual container's health. The CLI
registers the state store and the cgroup subtree as healthy once the
lifecycle manager is built; nothing probes them again afterwards.
/health reflects the worst registered component; /live always returns
200 once the process is up.
*/
package metrics
