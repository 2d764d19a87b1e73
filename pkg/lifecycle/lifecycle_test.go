package lifecycle

import (
	"testing"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		StateRoot:   dir + "/state",
		CgroupRoot:  dir + "/cgroup",
		LayersRoot:  dir + "/layers",
		NextCPUFile: dir + "/next-cpu",
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestNewManagerCreatesStateRoot(t *testing.T) {
	m := newTestManager(t)
	recs, err := m.Store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty store, got %d records", len(recs))
	}
}

func TestStopUnknownContainerErrors(t *testing.T) {
	m := newTestManager(t)
	if err := m.Stop(99999); err == nil {
		t.Fatal("expected error stopping a container with no record")
	}
}

func TestFreezeUnknownContainerErrors(t *testing.T) {
	m := newTestManager(t)
	if err := m.Freeze(99999); err == nil {
		t.Fatal("expected error freezing a container with no record")
	}
}

func TestRmRefusesLiveContainer(t *testing.T) {
	m := newTestManager(t)
	rec := &types.Record{
		ID:    "test-container",
		PID:   1, // pid 1 always exists
		Image: "/tmp/image",
		Argv:  []string{"/bin/true"},
		State: types.StateRunning,
	}
	if err := m.Store.Create(rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := m.Rm(1); err == nil {
		t.Fatal("expected Rm to refuse a live container")
	}
}

func TestStartRefusesLiveContainer(t *testing.T) {
	m := newTestManager(t)
	rec := &types.Record{
		ID:    "test-container",
		PID:   1,
		Image: "/tmp/image",
		Argv:  []string{"/bin/true"},
		State: types.StateRunning,
	}
	if err := m.Store.Create(rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := m.Start(1); err == nil {
		t.Fatal("expected Start to refuse a live container")
	}
}

func TestListResolvesStoppedStateForDeadPID(t *testing.T) {
	m := newTestManager(t)
	rec := &types.Record{
		ID:    "test-container",
		PID:   999999, // exceedingly unlikely to be a live pid
		Image: "/tmp/image",
		Argv:  []string{"/bin/true"},
		State: types.StateRunning,
	}
	if err := m.Store.Create(rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	recs, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].State != types.StateStopped {
		t.Errorf("expected resolved state %q, got %q", types.StateStopped, recs[0].State)
	}
}

func TestExitMessage(t *testing.T) {
	if got := exitMessage(nil); got != "exited 0" {
		t.Errorf("exitMessage(nil) = %q, want %q", got, "exited 0")
	}
}

func TestLeafPathFor(t *testing.T) {
	paths := types.Paths{CgroupRoot: "/sys/fs/cgroup/burrow"}
	got := leafPathFor(paths, 42)
	want := "/sys/fs/cgroup/burrow/container_42"
	if got != want {
		t.Errorf("leafPathFor = %q, want %q", got, want)
	}
}
