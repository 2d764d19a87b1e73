/*
Package lifecycle implements burrow's container lifecycle state
machine: run, list, status, freeze, thaw, stop, start, and rm. It is
the only package that knows how state, cgroup, rootfs, and launcher
compose -- each of those packages only knows its own slice of the
system.

A container's identity (types.Record.ID) is stable across its entire
life, including a stop/start cycle that gives it a new host PID. The
state directory is keyed by PID rather than ID, so Start atomically
renames the old PID's directory onto the new PID once the new child is
running (state.Store.Rename); Run and Stop always operate on a
container's current PID.

List never reaps a dead container's record: only Rm does, and only
once /proc/<pid> is confirmed absent.
*/
package lifecycle
