package lifecycle

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/cgroup"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/rootfs"
	"github.com/cuemby/burrow/pkg/types"
)

// Rm removes a stopped container's state directory, overlay, and
// cgroup leaf. It refuses to run against a still-live container:
// Stop must be called first.
func (m *Manager) Rm(pid int) error {
	rec, err := m.Store.Get(pid)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}
	if rec.PID != 0 && processAlive(rec.PID) {
		return fmt.Errorf("container is still running under pid %d, stop it first", rec.PID)
	}

	ov := types.Overlay{
		ID:     rec.OverlayID,
		Merged: fmt.Sprintf("%s/%s/merged", m.Paths.LayersRoot, rec.OverlayID),
		Upper:  fmt.Sprintf("%s/%s/upper", m.Paths.LayersRoot, rec.OverlayID),
		Work:   fmt.Sprintf("%s/%s/work", m.Paths.LayersRoot, rec.OverlayID),
	}
	if err := rootfs.Teardown(ov, rec.PropagateMountDir); err != nil {
		return fmt.Errorf("teardown overlay: %w", err)
	}

	node := types.CgroupNode{Path: leafPathFor(m.Paths, pid)}
	if err := cgroup.RemoveLeaf(node); err != nil {
		return fmt.Errorf("remove cgroup leaf: %w", err)
	}

	if err := m.Store.Delete(pid); err != nil {
		return fmt.Errorf("remove state directory: %w", err)
	}

	m.publish(&events.Event{Type: events.EventContainerRemoved, ContainerID: rec.ID, PID: pid})
	return nil
}
