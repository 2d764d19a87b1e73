package lifecycle

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/cgroup"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/types"
)

// Freeze suspends every process in a running container's cgroup via
// the freezer controller, without sending any signal the container's
// own process could observe or need to handle.
func (m *Manager) Freeze(pid int) error {
	rec, err := m.Store.Get(pid)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	node := types.CgroupNode{Path: leafPathFor(m.Paths, pid)}
	if err := cgroup.Freeze(node); err != nil {
		return fmt.Errorf("freeze cgroup: %w", err)
	}

	rec.State = types.StateFrozen
	if err := m.Store.Update(rec); err != nil {
		logger := log.WithComponent("lifecycle")
		logger.Error().Err(err).Msg("update record after freeze")
	}

	m.publish(&events.Event{Type: events.EventContainerFrozen, ContainerID: rec.ID, PID: pid})
	return nil
}

// Thaw resumes a frozen container's cgroup.
func (m *Manager) Thaw(pid int) error {
	rec, err := m.Store.Get(pid)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	node := types.CgroupNode{Path: leafPathFor(m.Paths, pid)}
	if err := cgroup.Thaw(node); err != nil {
		return fmt.Errorf("thaw cgroup: %w", err)
	}

	rec.State = types.StateRunning
	if err := m.Store.Update(rec); err != nil {
		logger := log.WithComponent("lifecycle")
		logger.Error().Err(err).Msg("update record after thaw")
	}

	m.publish(&events.Event{Type: events.EventContainerThawed, ContainerID: rec.ID, PID: pid})
	return nil
}
