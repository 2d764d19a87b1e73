package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/cuemby/burrow/pkg/cgroup"
	"github.com/cuemby/burrow/pkg/types"
)

// List returns every container record known to the state store, with
// State resolved against the live system rather than trusted blindly
// from disk: a record can outlive the process it describes if burrow
// was killed before it could mark the container stopped.
func (m *Manager) List() ([]*types.Record, error) {
	recs, err := m.Store.List()
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		m.resolveState(rec)
	}
	return recs, nil
}

// resolveState overwrites rec.State in place based on whether its PID
// is still alive and, if so, whether its cgroup is frozen. It does not
// persist the correction: callers that need the correction to stick
// call Store.Update themselves.
func (m *Manager) resolveState(rec *types.Record) {
	if rec.PID == 0 || !processAlive(rec.PID) {
		rec.State = types.StateStopped
		return
	}

	node := types.CgroupNode{Path: leafPathFor(m.Paths, rec.PID)}
	frozen, err := cgroup.IsFrozen(node)
	if err != nil {
		rec.State = types.StateRunning
		return
	}
	if frozen {
		rec.State = types.StateFrozen
	} else {
		rec.State = types.StateRunning
	}
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds; signal 0 probes liveness
	// without affecting the process. EPERM means the process exists but
	// belongs to a user we may not signal.
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func leafPathFor(paths types.Paths, pid int) string {
	return fmt.Sprintf("%s/container_%d", paths.CgroupRoot, pid)
}
