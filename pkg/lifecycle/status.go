package lifecycle

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/cgroup"
	"github.com/cuemby/burrow/pkg/types"
)

// Status returns a container's record together with a live snapshot of
// its cgroup accounting counters. For a stopped container no counters
// are read: the record is returned with zero-valued metrics.
func (m *Manager) Status(pid int) (*types.Record, types.Metrics, error) {
	rec, err := m.Store.Get(pid)
	if err != nil {
		return nil, types.Metrics{}, fmt.Errorf("get record: %w", err)
	}
	m.resolveState(rec)

	if rec.State == types.StateStopped {
		return rec, types.Metrics{}, nil
	}

	node := types.CgroupNode{Path: leafPathFor(m.Paths, pid)}
	metrics, err := cgroup.ReadMetrics(node)
	if err != nil {
		return rec, types.Metrics{}, fmt.Errorf("read cgroup metrics: %w", err)
	}
	return rec, metrics, nil
}
