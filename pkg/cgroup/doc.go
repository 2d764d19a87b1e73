/*
Package cgroup wraps the cgroup v2 unified hierarchy attribute files
burrow writes to and reads from, grounded on the direct
memory.max/cpu.weight/pids.max writes of a minimal container runtime
rather than a generic multi-version cgroup abstraction -- this runtime
only ever targets v2.

Every accessor returns an *AttrError on failure instead of a bare
wrapped error, so a caller (or a log line) can tell "the memory.max
write failed because the controller isn't delegated" apart from "the
pids.current read failed because the leaf is gone" without string
matching.

# Leaf Naming

Leaves are named container_<pid> under Paths.CgroupRoot, mirroring the
PID-keyed naming the state store uses for its own directories.
*/
package cgroup
