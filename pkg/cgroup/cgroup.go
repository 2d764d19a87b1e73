// Package cgroup manages a container's cgroup v2 leaf: creating it,
// applying resource limits, placing the init process, freezing and
// thawing it, and reading back its accounting counters.
package cgroup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cuemby/burrow/pkg/types"
)

const cpuPeriodUsec = 100000

// defaultDevice is the block device burrow applies io.max limits
// against. A real deployment would resolve this from the rootfs's
// backing device; fixing it keeps the scope to a single-disk host.
const defaultDevice = "8:0"

// EnsureRoot creates burrow's delegated cgroup subtree and enables the
// controllers leaves will need. It is idempotent: calling it again once
// the subtree already exists is a no-op.
func EnsureRoot(paths types.Paths) error {
	if err := os.MkdirAll(paths.CgroupRoot, 0755); err != nil {
		return attrErr("write", paths.CgroupRoot, "mkdir", err)
	}

	subtreeControl := filepath.Join(paths.CgroupRoot, "cgroup.subtree_control")
	if err := os.WriteFile(subtreeControl, []byte("+memory +cpu +pids +io"), 0644); err != nil {
		return attrErr("write", subtreeControl, "cgroup.subtree_control", err)
	}
	return nil
}

// CreateLeaf creates the leaf cgroup for one container, named
// container_<pid>, and returns the types.CgroupNode describing it.
func CreateLeaf(paths types.Paths, pid int) (types.CgroupNode, error) {
	leaf := leafPath(paths, pid)
	if err := os.Mkdir(leaf, 0755); err != nil {
		return types.CgroupNode{}, attrErr("write", leaf, "mkdir", err)
	}
	return types.CgroupNode{
		Path:        leaf,
		Controllers: []string{"memory", "cpu", "pids", "io"},
	}, nil
}

func leafPath(paths types.Paths, pid int) string {
	return filepath.Join(paths.CgroupRoot, fmt.Sprintf("container_%d", pid))
}

// ApplyLimits writes the resource limits from rec onto the leaf cgroup.
// A zero limit is interpreted as "unlimited" and the corresponding
// attribute is left at the controller's default (max).
func ApplyLimits(node types.CgroupNode, rec *types.Record) error {
	if rec.MemLimitBytes > 0 {
		if err := writeAttr(node.Path, "memory.max", strconv.FormatInt(rec.MemLimitBytes, 10)); err != nil {
			return err
		}
		// Disallow swap once a hard memory cap is set so the limit is
		// actually enforced rather than papered over by swapping.
		if err := writeAttr(node.Path, "memory.swap.max", "0"); err != nil {
			return err
		}
	}

	if rec.CPUQuotaUsec > 0 {
		quota := fmt.Sprintf("%d %d", rec.CPUQuotaUsec, cpuPeriodUsec)
		if err := writeAttr(node.Path, "cpu.max", quota); err != nil {
			return err
		}
	}

	if rec.IOReadBPS > 0 || rec.IOWriteBPS > 0 {
		rbps, wbps := "max", "max"
		if rec.IOReadBPS > 0 {
			rbps = strconv.FormatInt(rec.IOReadBPS, 10)
		}
		if rec.IOWriteBPS > 0 {
			wbps = strconv.FormatInt(rec.IOWriteBPS, 10)
		}
		fields := []string{defaultDevice, fmt.Sprintf("rbps=%s", rbps), fmt.Sprintf("wbps=%s", wbps)}
		if err := writeAttr(node.Path, "io.max", strings.Join(fields, " ")); err != nil {
			return err
		}
	}

	return nil
}

// Place moves pid into the leaf cgroup by writing cgroup.procs.
func Place(node types.CgroupNode, pid int) error {
	return writeAttr(node.Path, "cgroup.procs", strconv.Itoa(pid))
}

// Freeze suspends every process in the leaf cgroup.
func Freeze(node types.CgroupNode) error {
	return writeAttr(node.Path, "cgroup.freeze", "1")
}

// Thaw resumes a frozen leaf cgroup.
func Thaw(node types.CgroupNode) error {
	return writeAttr(node.Path, "cgroup.freeze", "0")
}

// IsFrozen reports whether the leaf cgroup's freezer state is currently
// frozen.
func IsFrozen(node types.CgroupNode) (bool, error) {
	val, err := readAttr(node.Path, "cgroup.events")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(val, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "frozen" {
			return fields[1] == "1", nil
		}
	}
	return false, nil
}

// ReadMetrics reads the leaf cgroup's accounting counters.
func ReadMetrics(node types.CgroupNode) (types.Metrics, error) {
	var m types.Metrics

	if v, err := readAttr(node.Path, "memory.current"); err == nil {
		m.MemoryCurrentBytes, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}

	if v, err := readAttr(node.Path, "cpu.stat"); err == nil {
		for _, line := range strings.Split(v, "\n") {
			fields := strings.Fields(line)
			if len(fields) == 2 && fields[0] == "usage_usec" {
				m.CPUUsageUsec, _ = strconv.ParseInt(fields[1], 10, 64)
			}
		}
	}

	if v, err := readAttr(node.Path, "pids.current"); err == nil {
		m.PIDsCurrent, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}

	if v, err := readAttr(node.Path, "io.stat"); err == nil {
		for _, line := range strings.Split(v, "\n") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			for _, f := range fields[1:] {
				kv := strings.SplitN(f, "=", 2)
				if len(kv) != 2 {
					continue
				}
				switch kv[0] {
				case "rbytes":
					n, _ := strconv.ParseInt(kv[1], 10, 64)
					m.IOReadBytes += n
				case "wbytes":
					n, _ := strconv.ParseInt(kv[1], 10, 64)
					m.IOWriteBytes += n
				}
			}
		}
	}

	return m, nil
}

// RemoveLeaf removes a container's leaf cgroup directory. The kernel
// refuses to rmdir a cgroup with processes still attached, so callers
// must ensure the init process has already exited.
func RemoveLeaf(node types.CgroupNode) error {
	if err := os.Remove(node.Path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return attrErr("write", node.Path, "rmdir", err)
	}
	return nil
}

func writeAttr(dir, attr, value string) error {
	path := filepath.Join(dir, attr)
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return attrErr("write", path, attr, err)
	}
	return nil
}

func readAttr(dir, attr string) (string, error) {
	path := filepath.Join(dir, attr)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", attrErr("read", path, attr, err)
	}
	return string(data), nil
}
