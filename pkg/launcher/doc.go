/*
Package launcher starts and supervises a container's init process.

# Re-exec Pattern

Launch re-execs the running burrow binary with a hidden marker argument
(InitMarker) instead of forking a generic child: the re-exec'd process
enters RunInit, which is the only code path that ever calls
pivot_root, mounts /proc, or execs a user command. main() must check
for InitMarker before cobra parses argv.

# Synchronization

The parent and child share a pipe passed through cmd.ExtraFiles. The
child blocks on a one-byte read immediately after Start() returns; the
parent writes /proc/<pid>/{setgroups,uid_map,gid_map} and, if
requested, pins the child to a CPU, then writes one byte to release it.
This reproduces the handshake a raw clone()-based runtime performs
between fork and exec, using exec.Cmd instead of cloning by hand.

# Namespaces

Every container gets its own PID, mount, UTS, network, and user
namespace. IPC is namespaced unless the caller asked to share the
host's IPC namespace.
*/
package launcher
