package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/cuemby/burrow/pkg/rootfs"
	"golang.org/x/sys/unix"
)

// RunInit is the child-side entry point burrow re-execs into when
// os.Args[1] == InitMarker. It must run before any namespace-sensitive
// standard library initialization assumes a normal process, so main()
// dispatches to it before cobra ever sees argv.
//
// argv layout: [InitMarker, merged, hostname, shareIPC, propagateMount, cmd, args...]
func RunInit(args []string) error {
	if len(args) < 5 {
		return fmt.Errorf("init: expected at least 5 arguments, got %d", len(args))
	}
	merged, hostname, shareIPC, propagateMount := args[0], args[1], args[2], args[3]
	if propagateMount == "-" {
		propagateMount = ""
	}
	command := args[4:]

	// Block until the parent has finished writing uid_map/gid_map (and,
	// if requested, pinned our CPU) over the inherited pipe at fd 3.
	sync := os.NewFile(3, "sync-pipe")
	buf := make([]byte, 1)
	if _, err := sync.Read(buf); err != nil {
		return fmt.Errorf("wait for parent handshake: %w", err)
	}
	sync.Close()

	bringUpLoopback()

	if propagateMount != "" {
		if err := rootfs.ApplyBindInside(merged, propagateMount); err != nil {
			return fmt.Errorf("apply propagated mount: %w", err)
		}
	}

	if hostname != "" {
		if err := syscall.Sethostname([]byte(hostname)); err != nil {
			return fmt.Errorf("sethostname: %w", err)
		}
	}

	if err := syscall.Mount("", "/", "", syscall.MS_PRIVATE|syscall.MS_REC, ""); err != nil {
		return fmt.Errorf("remount / private: %w", err)
	}

	if err := pivotRoot(merged); err != nil {
		return fmt.Errorf("pivot_root: %w", err)
	}

	if err := mountProc(); err != nil {
		return fmt.Errorf("mount proc: %w", err)
	}

	_ = shareIPC // IPC namespacing is already decided by Cloneflags at Launch time

	if len(command) == 0 {
		return fmt.Errorf("init: no command to exec")
	}
	binary, err := exec.LookPath(command[0])
	if err != nil {
		return fmt.Errorf("lookup %q: %w", command[0], err)
	}
	if err := syscall.Exec(binary, command, os.Environ()); err != nil {
		return fmt.Errorf("exec %q: %w", binary, err)
	}
	return nil
}

// pivotRoot replaces the current root with newRoot, following the
// bind-mount-onto-itself, pivot_root, chdir, lazy-unmount-old-root
// sequence pivot_root(2) requires.
func pivotRoot(newRoot string) error {
	absRoot, err := filepath.Abs(newRoot)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", newRoot, err)
	}

	if err := syscall.Mount(absRoot, absRoot, "", syscall.MS_BIND|syscall.MS_REC, ""); err != nil {
		return fmt.Errorf("bind-mount %q onto itself: %w", absRoot, err)
	}

	oldRoot := filepath.Join(absRoot, ".burrow-old-root")
	if err := os.MkdirAll(oldRoot, 0700); err != nil {
		return fmt.Errorf("mkdir %q: %w", oldRoot, err)
	}

	if err := syscall.PivotRoot(absRoot, oldRoot); err != nil {
		return fmt.Errorf("pivot_root(%q, %q): %w", absRoot, oldRoot, err)
	}

	if err := syscall.Chdir("/"); err != nil {
		return fmt.Errorf("chdir /: %w", err)
	}

	oldRootAfterPivot := "/.burrow-old-root"
	if err := unix.Unmount(oldRootAfterPivot, unix.MNT_DETACH); err != nil {
		return fmt.Errorf("unmount %q: %w", oldRootAfterPivot, err)
	}
	if err := os.RemoveAll(oldRootAfterPivot); err != nil {
		return fmt.Errorf("remove %q: %w", oldRootAfterPivot, err)
	}

	return nil
}

// mountProc mounts a fresh procfs so /proc reflects the container's own
// PID namespace rather than the host's.
func mountProc() error {
	if err := os.MkdirAll("/proc", 0555); err != nil {
		return fmt.Errorf("mkdir /proc: %w", err)
	}
	if err := syscall.Mount("proc", "/proc", "proc", 0, ""); err != nil {
		return fmt.Errorf("mount procfs: %w", err)
	}
	return nil
}

// bringUpLoopback shells out to ip (falling back to ifconfig) to bring
// the loopback interface up inside the new network namespace. Both are
// best-effort: a container whose image lacks networking tools simply
// starts with lo down, same as any runtime shelling out for this step.
func bringUpLoopback() {
	if ipPath, err := exec.LookPath("ip"); err == nil {
		_ = exec.Command(ipPath, "link", "set", "lo", "up").Run()
		return
	}
	if ifconfigPath, err := exec.LookPath("ifconfig"); err == nil {
		_ = exec.Command(ifconfigPath, "lo", "up").Run()
	}
}
