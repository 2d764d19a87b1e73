package lifecycle

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cuemby/burrow/pkg/cgroup"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/launcher"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/rootfs"
	"github.com/cuemby/burrow/pkg/types"
)

// Start relaunches a stopped container from its persisted record,
// reusing its overlay (and therefore its upper layer's writes) and
// re-applying its original resource limits. The record's ID is
// preserved across the restart; the record's PID is not -- a fresh
// init process gets a fresh PID, and the state directory is
// re-keyed onto it.
func (m *Manager) Start(oldPID int) (*types.Record, error) {
	logger := log.WithComponent("lifecycle")

	rec, err := m.Store.Get(oldPID)
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	if rec.PID != 0 && processAlive(rec.PID) {
		return nil, fmt.Errorf("container is still running under pid %d", rec.PID)
	}

	ov := types.Overlay{
		ID:     rec.OverlayID,
		Merged: fmt.Sprintf("%s/%s/merged", m.Paths.LayersRoot, rec.OverlayID),
	}
	// The merged view was lazily unmounted on stop; remount it over the
	// same upper/work pair so prior writes survive the restart.
	if err := remountOverlay(rec, m.Paths); err != nil {
		return nil, fmt.Errorf("remount overlay: %w", err)
	}

	if err := rootfs.PrepareBind(rec.PropagateMountDir); err != nil {
		return nil, fmt.Errorf("prepare bind mount: %w", err)
	}

	uid, gid := identityForSudo()
	handle, err := launcher.Launch(launcher.Options{
		Merged:            ov.Merged,
		Argv:              rec.Argv,
		ShareIPC:          rec.ShareIPC,
		PinCPU:            rec.PinCPU,
		PinnedCPU:         rec.PinnedCPU,
		MapUID:            uid,
		MapGID:            gid,
		PropagateMountDir: rec.PropagateMountDir,
		Detach:            rec.Detach,
	})
	if err != nil {
		return nil, fmt.Errorf("launch container: %w", err)
	}

	newPID := handle.PID

	node, err := cgroup.CreateLeaf(m.Paths, newPID)
	if err != nil {
		return nil, fmt.Errorf("create cgroup leaf: %w", err)
	}
	if err := cgroup.ApplyLimits(node, rec); err != nil {
		return nil, fmt.Errorf("apply cgroup limits: %w", err)
	}
	if err := cgroup.Place(node, newPID); err != nil {
		return nil, fmt.Errorf("place pid in cgroup: %w", err)
	}

	rec.PID = newPID
	rec.State = types.StateRunning
	if err := m.Store.Rename(oldPID, newPID, rec); err != nil {
		return nil, fmt.Errorf("rename state directory to new pid: %w", err)
	}

	m.publish(&events.Event{Type: events.EventContainerStarted, ContainerID: rec.ID, PID: newPID})

	if rec.Detach {
		return rec, nil
	}

	waitErr := handle.Wait()
	rec.State = types.StateStopped
	if err := m.Store.Update(rec); err != nil {
		logger.Error().Err(err).Msg("update record after foreground restart exit")
	}
	return rec, waitErr
}

// remountOverlay re-mounts a previously torn-down overlay in place,
// reusing its existing upper layer so writes made before the last
// stop are preserved.
func remountOverlay(rec *types.Record, paths types.Paths) error {
	base := fmt.Sprintf("%s/%s", paths.LayersRoot, rec.OverlayID)
	lower := rec.Image
	upper := base + "/upper"
	work := base + "/work"
	merged := base + "/merged"

	if err := os.MkdirAll(merged, 0755); err != nil {
		return fmt.Errorf("create merged dir: %w", err)
	}
	opts := fmt.Sprintf("lowerdir=%s,upperdir=%s,workdir=%s", lower, upper, work)
	return rootfs.Mount(merged, opts)
}

// identityForSudo resolves the uid/gid start should map the container's
// root user to: the invoking user, unless burrow itself is running
// under sudo, in which case the original invoker (SUDO_UID/SUDO_GID)
// takes precedence. Run does not consult these variables, so under
// sudo a container first run as root is restarted mapped to the sudo
// invoker instead.
func identityForSudo() (int, int) {
	uid, gid := os.Getuid(), os.Getgid()
	if v := os.Getenv("SUDO_UID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			uid = n
		}
	}
	if v := os.Getenv("SUDO_GID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			gid = n
		}
	}
	return uid, gid
}
