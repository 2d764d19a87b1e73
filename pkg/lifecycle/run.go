package lifecycle

import (
	"fmt"
	"runtime"
	"time"

	"github.com/cuemby/burrow/pkg/cgroup"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/launcher"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/rootfs"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/google/uuid"
)

// RunOptions describes a container to start, the union of everything
// a `burrow run` invocation can set.
type RunOptions struct {
	Image             string
	Argv              []string
	Hostname          string
	MemLimitBytes     int64
	CPUQuotaUsec      int64
	IOReadBPS         int64
	IOWriteBPS        int64
	PinCPU            bool
	ShareIPC          bool
	Detach            bool
	PropagateMountDir string
}

// Run assembles a container's rootfs, creates and configures its
// cgroup, launches its init process, and persists the resulting
// record. On success the returned Record's PID is running (or, for a
// foreground run, has already exited by the time Run returns).
func (m *Manager) Run(opts RunOptions) (*types.Record, error) {
	timer := metrics.NewTimer()
	logger := log.WithComponent("lifecycle")

	ov, err := rootfs.Assemble(m.Paths, opts.Image)
	if err != nil {
		metrics.ContainersFailedTotal.Inc()
		return nil, fmt.Errorf("assemble rootfs: %w", err)
	}

	if err := rootfs.PrepareBind(opts.PropagateMountDir); err != nil {
		_ = rootfs.Teardown(ov, opts.PropagateMountDir)
		metrics.ContainersFailedTotal.Inc()
		return nil, fmt.Errorf("prepare bind mount: %w", err)
	}

	pinnedCPU := 0
	if opts.PinCPU {
		pinnedCPU, err = launcher.NextCPU(m.Paths, runtime.NumCPU())
		if err != nil {
			_ = rootfs.Teardown(ov, opts.PropagateMountDir)
			metrics.ContainersFailedTotal.Inc()
			return nil, fmt.Errorf("assign pinned cpu: %w", err)
		}
	}

	handle, err := launcher.Launch(launcher.Options{
		Merged:            ov.Merged,
		Hostname:          opts.Hostname,
		Argv:              opts.Argv,
		ShareIPC:          opts.ShareIPC,
		PinCPU:            opts.PinCPU,
		PinnedCPU:         pinnedCPU,
		PropagateMountDir: opts.PropagateMountDir,
		Detach:            opts.Detach,
	})
	if err != nil {
		_ = rootfs.Teardown(ov, opts.PropagateMountDir)
		metrics.ContainersFailedTotal.Inc()
		return nil, fmt.Errorf("launch container: %w", err)
	}

	rec := &types.Record{
		ID:                uuid.NewString(),
		PID:               handle.PID,
		Image:             opts.Image,
		OverlayID:         ov.ID,
		Argv:              opts.Argv,
		MemLimitBytes:     opts.MemLimitBytes,
		CPUQuotaUsec:      opts.CPUQuotaUsec,
		IOReadBPS:         opts.IOReadBPS,
		IOWriteBPS:        opts.IOWriteBPS,
		PinCPU:            opts.PinCPU,
		PinnedCPU:         pinnedCPU,
		ShareIPC:          opts.ShareIPC,
		Detach:            opts.Detach,
		PropagateMountDir: opts.PropagateMountDir,
		State:             types.StateRunning,
		CreatedAt:         time.Now(),
		StartedAt:         time.Now(),
	}

	if err := cgroup.EnsureRoot(m.Paths); err != nil {
		_ = handle.Cmd.Process.Kill()
		_ = rootfs.Teardown(ov, opts.PropagateMountDir)
		metrics.ContainersFailedTotal.Inc()
		return nil, fmt.Errorf("ensure cgroup root: %w", err)
	}

	node, err := cgroup.CreateLeaf(m.Paths, rec.PID)
	if err != nil {
		_ = handle.Cmd.Process.Kill()
		_ = rootfs.Teardown(ov, opts.PropagateMountDir)
		metrics.ContainersFailedTotal.Inc()
		return nil, fmt.Errorf("create cgroup leaf: %w", err)
	}

	if err := cgroup.ApplyLimits(node, rec); err != nil {
		_ = handle.Cmd.Process.Kill()
		_ = handle.Wait()
		_ = cgroup.RemoveLeaf(node)
		_ = rootfs.Teardown(ov, opts.PropagateMountDir)
		metrics.ContainersFailedTotal.Inc()
		return nil, fmt.Errorf("apply cgroup limits: %w", err)
	}

	if err := cgroup.Place(node, rec.PID); err != nil {
		_ = handle.Cmd.Process.Kill()
		_ = handle.Wait()
		_ = cgroup.RemoveLeaf(node)
		_ = rootfs.Teardown(ov, opts.PropagateMountDir)
		metrics.ContainersFailedTotal.Inc()
		return nil, fmt.Errorf("place pid in cgroup: %w", err)
	}

	if err := m.Store.Create(rec); err != nil {
		_ = handle.Cmd.Process.Kill()
		_ = handle.Wait()
		_ = cgroup.RemoveLeaf(node)
		_ = rootfs.Teardown(ov, opts.PropagateMountDir)
		metrics.ContainersFailedTotal.Inc()
		return nil, fmt.Errorf("persist record: %w", err)
	}

	startedLog := log.WithContainerID(rec.ID).With().Int("pid", rec.PID).Logger()
	startedLog.Info().Msg("container started")
	metrics.ContainersStartedTotal.Inc()
	timer.ObserveDuration(metrics.ContainerStartDuration)

	m.publish(&events.Event{
		Type:        events.EventContainerStarted,
		ContainerID: rec.ID,
		PID:         rec.PID,
	})

	if opts.Detach {
		return rec, nil
	}

	waitErr := handle.Wait()

	rec.State = types.StateStopped
	if err := m.Store.Update(rec); err != nil {
		logger.Error().Err(err).Msg("update record after foreground exit")
	}

	if err := rootfs.Unmount(ov, opts.PropagateMountDir); err != nil {
		logger.Error().Err(err).Msg("unmount rootfs after foreground exit")
	}

	m.publish(&events.Event{
		Type:        events.EventContainerStopped,
		ContainerID: rec.ID,
		Message:     exitMessage(waitErr),
	})

	return rec, waitErr
}

func exitMessage(err error) string {
	if err == nil {
		return "exited 0"
	}
	return err.Error()
}
