// Package launcher starts a container's init process inside a fresh set
// of namespaces and tears it down again.
//
// Go's exec.Cmd can write uid_map/gid_map itself via
// SysProcAttr.UidMappings, but it does so with its own internal
// synchronization that is opaque to the caller. burrow instead passes
// its own pipe through cmd.ExtraFiles: the parent creates the user
// namespace via Cloneflags, waits for Start() to hand back the child's
// PID, writes /proc/<pid>/{setgroups,uid_map,gid_map} itself, and only
// then signals the child over the pipe to proceed. This is the same
// handshake a clone()-based runtime performs by hand, reproduced with
// exec.Cmd instead of a raw clone syscall.
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/cuemby/burrow/pkg/types"
	"golang.org/x/sys/unix"
)

// InitMarker is the argv[1] value burrow re-execs itself with to enter
// the child-side setup path. It is never a real user command because
// Launch only ever passes user commands after the marker and its four
// setup arguments, starting at argv[6].
const InitMarker = "__burrow_init__"

// Handle is a running (or exited, not yet reaped) container's process
// and its host PID. The synchronization pipe is already closed by the
// time Launch returns it.
type Handle struct {
	Cmd *exec.Cmd
	PID int
}

// Options configures one Launch call. It mirrors the launch-relevant
// fields of types.Record so callers don't need to reach into the
// record's full shape.
type Options struct {
	Merged            string // path to the assembled overlay's merged view
	Hostname          string
	Argv              []string
	ShareIPC          bool
	PinCPU            bool
	PinnedCPU         int
	PropagateMountDir string // host directory to bind-mount into the container at the same path

	// Detach requests session detachment: the child gets its own
	// session via setsid instead of inheriting the caller's controlling
	// terminal, and its stdio is redirected to /dev/null so it survives
	// the invoking shell exiting (and the SIGHUP that follows).
	Detach bool

	// MapUID/MapGID are the host identity the container's root user
	// maps to. Zero value means "unset"; Launch falls back to the
	// calling process's own uid/gid. Start uses this to honor
	// SUDO_UID/SUDO_GID, mapping a restarted container to the user who
	// invoked sudo rather than to root; Run leaves both unset.
	MapUID int
	MapGID int
}

// Launch re-execs the running binary with the hidden init marker,
// placing the child in new PID, mount, UTS, network, and (unless
// ShareIPC) IPC namespaces, plus a fresh user namespace so the mapped
// uid/gid handshake below has somewhere to write. The child blocks
// immediately after Start() until the parent finishes the handshake.
func Launch(opts Options) (*Handle, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve self executable: %w", err)
	}

	readPipe, writePipe, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create sync pipe: %w", err)
	}

	propagateMount := opts.PropagateMountDir
	if propagateMount == "" {
		propagateMount = "-"
	}
	childArgs := append([]string{InitMarker, opts.Merged, opts.Hostname, boolString(opts.ShareIPC), propagateMount}, opts.Argv...)
	cmd := exec.Command(self, childArgs...)
	cmd.ExtraFiles = []*os.File{readPipe}

	cloneflags := uintptr(syscall.CLONE_NEWPID | syscall.CLONE_NEWNS | syscall.CLONE_NEWUTS |
		syscall.CLONE_NEWNET | syscall.CLONE_NEWUSER)
	if !opts.ShareIPC {
		cloneflags |= syscall.CLONE_NEWIPC
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Cloneflags: cloneflags}

	if opts.Detach {
		cmd.SysProcAttr.Setsid = true
		devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			writePipe.Close()
			readPipe.Close()
			return nil, fmt.Errorf("open %s: %w", os.DevNull, err)
		}
		defer devNull.Close()
		cmd.Stdin, cmd.Stdout, cmd.Stderr = devNull, devNull, devNull
	} else {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	}

	if err := cmd.Start(); err != nil {
		writePipe.Close()
		readPipe.Close()
		return nil, fmt.Errorf("start container process: %w", err)
	}
	// The child end only needs to live in the child; closing our copy
	// lets the child observe EOF if the parent dies before signaling.
	readPipe.Close()

	pid := cmd.Process.Pid
	uid, gid := opts.MapUID, opts.MapGID
	if uid == 0 {
		uid = os.Getuid()
	}
	if gid == 0 {
		gid = os.Getgid()
	}
	if err := mapIDs(pid, uid, gid); err != nil {
		writePipe.Close()
		_ = cmd.Process.Kill()
		return nil, err
	}

	if opts.PinCPU {
		if err := pinCPU(pid, opts.PinnedCPU); err != nil {
			writePipe.Close()
			_ = cmd.Process.Kill()
			return nil, err
		}
	}

	if _, err := writePipe.Write([]byte{'\x00'}); err != nil {
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("signal container to proceed: %w", err)
	}
	writePipe.Close()

	return &Handle{Cmd: cmd, PID: pid}, nil
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// mapIDs writes the single-entry uid_map/gid_map burrow relies on: the
// root inside the container namespace maps to the given host uid/gid.
// setgroups must be denied before gid_map can be written unless the
// caller genuinely has CAP_SETGID.
func mapIDs(pid, uid, gid int) error {
	procDir := fmt.Sprintf("/proc/%d", pid)

	if err := os.WriteFile(filepath.Join(procDir, "setgroups"), []byte("deny"), 0644); err != nil {
		return fmt.Errorf("write setgroups: %w", err)
	}

	uidMap := fmt.Sprintf("0 %d 1\n", uid)
	if err := os.WriteFile(filepath.Join(procDir, "uid_map"), []byte(uidMap), 0644); err != nil {
		return fmt.Errorf("write uid_map: %w", err)
	}

	gidMap := fmt.Sprintf("0 %d 1\n", gid)
	if err := os.WriteFile(filepath.Join(procDir, "gid_map"), []byte(gidMap), 0644); err != nil {
		return fmt.Errorf("write gid_map: %w", err)
	}

	return nil
}

// pinCPU restricts the container's init process to a single CPU and
// requests the SCHED_RR real-time scheduling policy for it, so a
// container started with --pin-cpu gets predictable, isolated
// scheduling rather than competing for every core.
func pinCPU(pid, cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(pid, &set); err != nil {
		return fmt.Errorf("pin pid %d to cpu %d: %w", pid, cpu, err)
	}

	param := &unix.SchedParam{Priority: 1}
	if err := unix.SchedSetscheduler(pid, unix.SCHED_RR, param); err != nil {
		return fmt.Errorf("set SCHED_RR for pid %d: %w", pid, err)
	}
	return nil
}

// Wait blocks until the container's init process exits.
func (h *Handle) Wait() error {
	return h.Cmd.Wait()
}

// Signal delivers sig to the container's init process.
func (h *Handle) Signal(sig os.Signal) error {
	return h.Cmd.Process.Signal(sig)
}

// NextCPU reads, increments, and rewrites an advisory-locked counter
// file so CPU pins are handed out round-robin across containers
// started concurrently with --pin-cpu, without two launches racing on
// the same core.
func NextCPU(paths types.Paths, numCPU int) (int, error) {
	f, err := os.OpenFile(paths.NextCPUFile, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return 0, fmt.Errorf("open next-cpu file: %w", err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return 0, fmt.Errorf("lock next-cpu file: %w", err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	buf := make([]byte, 32)
	n, _ := f.ReadAt(buf, 0)
	cur := 0
	if n > 0 {
		cur, _ = strconv.Atoi(string(buf[:n]))
	}

	next := (cur + 1) % numCPU
	if err := f.Truncate(0); err != nil {
		return 0, fmt.Errorf("truncate next-cpu file: %w", err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(next)), 0); err != nil {
		return 0, fmt.Errorf("write next-cpu file: %w", err)
	}

	return cur % numCPU, nil
}
