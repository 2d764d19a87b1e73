package types

import "time"

// Record is the persisted description of a single container. It is the
// unit the state store reads, writes, and enumerates; cgroup.ApplyLimits
// and the lifecycle manager also operate on a *Record, while rootfs and
// launcher take their own narrower inputs (Overlay, launcher.Options).
type Record struct {
	// ID is a stable identifier assigned at creation time (uuid), independent
	// of the host PID so a record survives process death for inspection.
	ID string

	// PID is the host PID of the container's init process and names its
	// state directory. It is kept after the container exits, so a
	// stopped record can still be addressed by start and rm.
	PID int

	Image     string
	OverlayID string
	// Argv is the full argv of the containerized command, persisted one
	// argument per line so arguments containing whitespace round-trip.
	Argv []string

	MemLimitBytes int64 // 0 means unlimited
	CPUQuotaUsec  int64 // 0 means unlimited; interpreted against a 100ms period
	IOReadBPS     int64 // 0 means unlimited
	IOWriteBPS    int64 // 0 means unlimited

	PinCPU            bool
	PinnedCPU         int
	ShareIPC          bool
	Detach            bool
	PropagateMountDir string // host directory bind-mounted and propagated into the container, empty if unused

	State State

	CreatedAt time.Time
	StartedAt time.Time
}

// State is the lifecycle state of a container, derived from the host PID
// and its cgroup's freezer state rather than stored as an independent
// source of truth.
type State string

const (
	StateRunning State = "running"
	StateFrozen  State = "frozen"
	StateStopped State = "stopped"
)

// Overlay describes the three directories that make up one container's
// root filesystem: the read-only image layer, the writable upper layer,
// and the merged view mounted for the container to use.
type Overlay struct {
	ID     string
	Lower  string
	Upper  string
	Work   string
	Merged string
}

// CgroupNode is the path to one container's leaf cgroup plus the
// controllers its subtree has delegated from the parent.
type CgroupNode struct {
	Path        string
	Controllers []string
}

// Paths is the set of filesystem roots burrow operates under. A single
// Paths value is threaded through state, cgroup, rootfs, and launcher so
// tests can point every package at a throwaway directory tree.
type Paths struct {
	// StateRoot holds one directory per Record, named by PID.
	StateRoot string
	// CgroupRoot is burrow's delegated cgroup v2 subtree, e.g.
	// /sys/fs/cgroup/burrow.
	CgroupRoot string
	// LayersRoot holds one directory per Overlay, named by OverlayID.
	LayersRoot string
	// NextCPUFile is an advisory-locked counter used to round-robin CPU
	// pinning across containers started with --pin-cpu.
	NextCPUFile string
}

// Metrics is a point-in-time snapshot of a container's cgroup counters,
// as read from the leaf's controller files.
type Metrics struct {
	MemoryCurrentBytes int64
	CPUUsageUsec       int64
	PIDsCurrent        int64
	IOReadBytes        int64
	IOWriteBytes       int64
}
