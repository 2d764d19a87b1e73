package cgroup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/burrow/pkg/types"
)

func newTestRoot(t *testing.T) types.Paths {
	t.Helper()
	root := t.TempDir()
	return types.Paths{CgroupRoot: root}
}

func TestEnsureRootWritesSubtreeControl(t *testing.T) {
	paths := newTestRoot(t)
	if err := EnsureRoot(paths); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(paths.CgroupRoot, "cgroup.subtree_control"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "+memory +cpu +pids +io" {
		t.Errorf("subtree_control = %q", data)
	}
}

func TestCreateLeafNaming(t *testing.T) {
	paths := newTestRoot(t)
	if err := EnsureRoot(paths); err != nil {
		t.Fatalf("EnsureRoot() error = %v", err)
	}

	node, err := CreateLeaf(paths, 4211)
	if err != nil {
		t.Fatalf("CreateLeaf() error = %v", err)
	}
	want := filepath.Join(paths.CgroupRoot, "container_4211")
	if node.Path != want {
		t.Errorf("leaf path = %q, want %q", node.Path, want)
	}
}

func TestApplyLimitsWritesExpectedFormats(t *testing.T) {
	paths := newTestRoot(t)
	node, err := CreateLeaf(paths, 1)
	if err != nil {
		t.Fatalf("CreateLeaf() error = %v", err)
	}

	rec := &types.Record{
		MemLimitBytes: 512 * 1024 * 1024,
		CPUQuotaUsec:  50000,
		IOReadBPS:     1048576,
		IOWriteBPS:    2097152,
	}
	if err := ApplyLimits(node, rec); err != nil {
		t.Fatalf("ApplyLimits() error = %v", err)
	}

	assertAttr(t, node.Path, "memory.max", "536870912")
	assertAttr(t, node.Path, "memory.swap.max", "0")
	assertAttr(t, node.Path, "cpu.max", "50000 100000")
	assertAttr(t, node.Path, "io.max", "8:0 rbps=1048576 wbps=2097152")
}

func TestApplyLimitsUnlimitedLeavesAttributeUnset(t *testing.T) {
	paths := newTestRoot(t)
	node, err := CreateLeaf(paths, 1)
	if err != nil {
		t.Fatalf("CreateLeaf() error = %v", err)
	}

	if err := ApplyLimits(node, &types.Record{}); err != nil {
		t.Fatalf("ApplyLimits() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(node.Path, "memory.max")); !os.IsNotExist(err) {
		t.Errorf("memory.max should not be written when MemLimitBytes is 0")
	}
}

func TestPlaceWritesPID(t *testing.T) {
	paths := newTestRoot(t)
	node, err := CreateLeaf(paths, 1)
	if err != nil {
		t.Fatalf("CreateLeaf() error = %v", err)
	}

	if err := Place(node, 4211); err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	assertAttr(t, node.Path, "cgroup.procs", "4211")
}

func TestFreezeThaw(t *testing.T) {
	paths := newTestRoot(t)
	node, err := CreateLeaf(paths, 1)
	if err != nil {
		t.Fatalf("CreateLeaf() error = %v", err)
	}

	if err := Freeze(node); err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	assertAttr(t, node.Path, "cgroup.freeze", "1")

	if err := Thaw(node); err != nil {
		t.Fatalf("Thaw() error = %v", err)
	}
	assertAttr(t, node.Path, "cgroup.freeze", "0")
}

func TestReadMetricsParsesCounters(t *testing.T) {
	paths := newTestRoot(t)
	node, err := CreateLeaf(paths, 1)
	if err != nil {
		t.Fatalf("CreateLeaf() error = %v", err)
	}

	writeTestFile(t, node.Path, "memory.current", "1048576")
	writeTestFile(t, node.Path, "cpu.stat", "usage_usec 250000\nuser_usec 100000\nsystem_usec 150000\n")
	writeTestFile(t, node.Path, "pids.current", "3")
	writeTestFile(t, node.Path, "io.stat", "8:0 rbytes=4096 wbytes=8192 rios=1 wios=2\n")

	m, err := ReadMetrics(node)
	if err != nil {
		t.Fatalf("ReadMetrics() error = %v", err)
	}
	if m.MemoryCurrentBytes != 1048576 {
		t.Errorf("MemoryCurrentBytes = %d, want 1048576", m.MemoryCurrentBytes)
	}
	if m.CPUUsageUsec != 250000 {
		t.Errorf("CPUUsageUsec = %d, want 250000", m.CPUUsageUsec)
	}
	if m.PIDsCurrent != 3 {
		t.Errorf("PIDsCurrent = %d, want 3", m.PIDsCurrent)
	}
	if m.IOReadBytes != 4096 || m.IOWriteBytes != 8192 {
		t.Errorf("IO = read %d write %d, want 4096/8192", m.IOReadBytes, m.IOWriteBytes)
	}
}

func TestRemoveLeafTolerant(t *testing.T) {
	paths := newTestRoot(t)
	node, err := CreateLeaf(paths, 1)
	if err != nil {
		t.Fatalf("CreateLeaf() error = %v", err)
	}
	if err := RemoveLeaf(node); err != nil {
		t.Fatalf("RemoveLeaf() error = %v", err)
	}
	// Removing again should not error: the kernel directory is already gone.
	if err := RemoveLeaf(node); err != nil {
		t.Fatalf("second RemoveLeaf() error = %v", err)
	}
}

func TestAttrErrorNamesAttribute(t *testing.T) {
	paths := newTestRoot(t)
	node := types.CgroupNode{Path: filepath.Join(paths.CgroupRoot, "does-not-exist")}

	err := Place(node, 1)
	if err == nil {
		t.Fatal("Place() into missing leaf should fail")
	}
	var attrErr *AttrError
	if !asAttrError(err, &attrErr) {
		t.Fatalf("error is not *AttrError: %v", err)
	}
	if attrErr.Attr != "cgroup.procs" {
		t.Errorf("Attr = %q, want cgroup.procs", attrErr.Attr)
	}
}

func asAttrError(err error, target **AttrError) bool {
	ae, ok := err.(*AttrError)
	if ok {
		*target = ae
	}
	return ok
}

func assertAttr(t *testing.T, dir, attr, want string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		t.Fatalf("read %s: %v", attr, err)
	}
	if string(data) != want {
		t.Errorf("%s = %q, want %q", attr, data, want)
	}
}

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
