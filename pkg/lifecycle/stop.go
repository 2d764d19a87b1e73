package lifecycle

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/rootfs"
	"github.com/cuemby/burrow/pkg/types"
)

// gracePeriod is how long Stop waits after SIGTERM before escalating to
// SIGKILL. The source this runtime is modeled on sent SIGKILL
// unconditionally; a staged shutdown gives a well-behaved container a
// chance to exit cleanly first.
const gracePeriod = 10 * time.Second

// Stop terminates a running container: SIGTERM, a bounded grace
// period, then SIGKILL if the process is still alive. Once the
// process has been reaped, proc and any propagated bind mount inside
// the merged view are lazily unmounted along with the overlay itself.
// The record, cgroup node, and overlay directories are left on disk,
// per the stopped/rm split: rm is a separate, explicit step.
func (m *Manager) Stop(pid int) error {
	timer := metrics.NewTimer()
	logger := log.WithComponent("lifecycle")

	rec, err := m.Store.Get(pid)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	proc, err := os.FindProcess(pid)
	if err == nil {
		if err := proc.Signal(syscall.SIGTERM); err != nil && !processDead(err) {
			termLog := log.WithContainerID(rec.ID).With().Int("pid", pid).Logger()
			termLog.Warn().Err(err).Msg("send SIGTERM")
		}
	}

	if !waitForExit(pid, gracePeriod) {
		if proc != nil {
			if err := proc.Signal(syscall.SIGKILL); err != nil && !processDead(err) {
				return fmt.Errorf("send SIGKILL: %w", err)
			}
		}
		waitForExit(pid, gracePeriod)
	}

	ov := types.Overlay{
		ID:     rec.OverlayID,
		Merged: fmt.Sprintf("%s/%s/merged", m.Paths.LayersRoot, rec.OverlayID),
		Upper:  fmt.Sprintf("%s/%s/upper", m.Paths.LayersRoot, rec.OverlayID),
		Work:   fmt.Sprintf("%s/%s/work", m.Paths.LayersRoot, rec.OverlayID),
	}
	if err := rootfs.Unmount(ov, rec.PropagateMountDir); err != nil {
		logger.Error().Err(err).Msg("unmount rootfs on stop")
	}

	rec.State = types.StateStopped
	if err := m.Store.Update(rec); err != nil {
		logger.Error().Err(err).Msg("update record after stop")
	}

	timer.ObserveDuration(metrics.ContainerStopDuration)
	m.publish(&events.Event{Type: events.EventContainerStopped, ContainerID: rec.ID, PID: pid})
	return nil
}

// waitForExit polls /proc/<pid> until it disappears or the deadline
// passes, returning whether the process exited in time. There is no
// portable blocking wait for a process burrow did not fork directly
// once its *exec.Cmd handle has already been released by a prior
// invocation, so polling is the only option across separate CLI runs.
func waitForExit(pid int, deadline time.Duration) bool {
	const pollInterval = 100 * time.Millisecond
	elapsed := time.Duration(0)
	for elapsed < deadline {
		if _, err := os.Stat(fmt.Sprintf("/proc/%d", pid)); os.IsNotExist(err) {
			return true
		}
		time.Sleep(pollInterval)
		elapsed += pollInterval
	}
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return os.IsNotExist(err)
}

func processDead(err error) bool {
	return err == os.ErrProcessDone || err.Error() == "os: process already finished"
}

