/*
Package types defines the core data structures shared across burrow.

types has no behavior of its own: it is the vocabulary every other
package imports so that a container Record, an Overlay triple, and a
CgroupNode mean the same thing in the state store, the cgroup
controller, the rootfs assembler, the namespace launcher, and the
lifecycle manager.

# Core Types

Paths holds the handful of filesystem roots burrow operates under
(state directory, delegated cgroup subtree, overlay layers directory,
CPU-pinning counter file) so every package can be pointed at a
throwaway tree in tests.

Record is the persisted description of one container: its image name,
overlay ID, argv, resource limits, and lifecycle flags. It is keyed on
disk by host PID but carries its own stable ID so it can still be
inspected after the process has exited.

Overlay is the upper/work/merged directory triple for one container's
root filesystem, named by a uuid rather than an incrementing counter.

CgroupNode is the path to a container's leaf cgroup and the controllers
delegated to it.

State is one of running, frozen, or stopped, derived from the host PID
and the leaf cgroup's freezer state rather than stored independently.
*/
package types
