package metrics

import (
	"fmt"
	"time"

	"github.com/cuemby/burrow/pkg/cgroup"
	"github.com/cuemby/burrow/pkg/state"
	"github.com/cuemby/burrow/pkg/types"
)

// Collector polls the state store and each container's cgroup leaf on
// an interval and republishes the results as Prometheus gauges.
type Collector struct {
	store  *state.Store
	paths  types.Paths
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(store *state.Store, paths types.Paths) *Collector {
	return &Collector{
		store:  store,
		paths:  paths,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	records, err := c.store.List()
	if err != nil {
		return
	}

	counts := make(map[types.State]int)
	for _, rec := range records {
		counts[rec.State]++

		node := types.CgroupNode{Path: leafPathFor(c.paths, rec.PID)}
		m, err := cgroup.ReadMetrics(node)
		if err != nil {
			continue
		}
		MemoryCurrentBytes.WithLabelValues(rec.ID).Set(float64(m.MemoryCurrentBytes))
		CPUUsageSeconds.WithLabelValues(rec.ID).Set(float64(m.CPUUsageUsec) / 1e6)
		PIDsCurrent.WithLabelValues(rec.ID).Set(float64(m.PIDsCurrent))
		IOReadBytes.WithLabelValues(rec.ID).Set(float64(m.IOReadBytes))
		IOWriteBytes.WithLabelValues(rec.ID).Set(float64(m.IOWriteBytes))
	}

	for _, st := range []types.State{types.StateRunning, types.StateFrozen, types.StateStopped} {
		ContainersTotal.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
}

func leafPathFor(paths types.Paths, pid int) string {
	return fmt.Sprintf("%s/container_%d", paths.CgroupRoot, pid)
}
