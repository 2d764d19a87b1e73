package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir := t.TempDir()
	s, err := New(types.Paths{StateRoot: tmpDir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestStoreCreateGet(t *testing.T) {
	s := newTestStore(t)

	rec := &types.Record{
		ID:        "11111111-1111-1111-1111-111111111111",
		PID:       4211,
		Image:     "alpine",
		OverlayID: "22222222-2222-2222-2222-222222222222",
		Argv:      []string{"/bin/sh", "-c", "echo hello world"},
		State:     types.StateRunning,
		CreatedAt: time.Now(),
	}

	if err := s.Create(rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Get(4211)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != rec.ID || got.Image != rec.Image {
		t.Errorf("Get() = %+v, want %+v", got, rec)
	}
	if len(got.Argv) != 3 || got.Argv[2] != "echo hello world" {
		t.Errorf("Argv = %q, want embedded-whitespace argument preserved", got.Argv)
	}
}

func TestStoreCreateDuplicatePID(t *testing.T) {
	s := newTestStore(t)
	rec := &types.Record{PID: 100, Argv: []string{"true"}}

	if err := s.Create(rec); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	if err := s.Create(rec); err == nil {
		t.Fatal("second Create() with same PID should fail")
	}
}

func TestStoreUpdate(t *testing.T) {
	s := newTestStore(t)
	rec := &types.Record{PID: 200, Argv: []string{"true"}, State: types.StateRunning}
	if err := s.Create(rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rec.State = types.StateFrozen
	if err := s.Update(rec); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := s.Get(200)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.State != types.StateFrozen {
		t.Errorf("State = %v, want %v", got.State, types.StateFrozen)
	}
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore(t)
	rec := &types.Record{PID: 300, Argv: []string{"true"}}
	if err := s.Create(rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.Delete(300); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(300); err == nil {
		t.Fatal("Get() after Delete() should fail")
	}
}

func TestStoreRename(t *testing.T) {
	s := newTestStore(t)
	rec := &types.Record{PID: 400, Argv: []string{"/bin/true"}, State: types.StateRunning}
	if err := s.Create(rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rec.PID = 401
	rec.State = types.StateStopped
	if err := s.Rename(400, 401, rec); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if _, err := s.Get(400); err == nil {
		t.Error("old PID directory should no longer exist after Rename()")
	}
	got, err := s.Get(401)
	if err != nil {
		t.Fatalf("Get(401) error = %v", err)
	}
	if got.PID != 401 || got.State != types.StateStopped {
		t.Errorf("Get(401) = %+v, want PID 401, state stopped", got)
	}
}

func TestStoreRenameFailsIfDestinationExists(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create(&types.Record{PID: 402, Argv: []string{"true"}}); err != nil {
		t.Fatalf("Create(402) error = %v", err)
	}
	if err := s.Create(&types.Record{PID: 403, Argv: []string{"true"}}); err != nil {
		t.Fatalf("Create(403) error = %v", err)
	}

	if err := s.Rename(402, 403, &types.Record{PID: 403}); err == nil {
		t.Fatal("Rename() should fail when destination PID directory already exists")
	}
}

func TestStoreList(t *testing.T) {
	s := newTestStore(t)
	for _, pid := range []int{500, 100, 300} {
		if err := s.Create(&types.Record{PID: pid, Argv: []string{"true"}}); err != nil {
			t.Fatalf("Create(%d) error = %v", pid, err)
		}
	}

	recs, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("List() returned %d records, want 3", len(recs))
	}
	if recs[0].PID != 100 || recs[1].PID != 300 || recs[2].PID != 500 {
		t.Errorf("List() not sorted by PID: %d, %d, %d", recs[0].PID, recs[1].PID, recs[2].PID)
	}
}

func TestStoreListNeverReaps(t *testing.T) {
	s := newTestStore(t)
	rec := &types.Record{PID: 999999, Argv: []string{"true"}}
	if err := s.Create(rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	recs, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("List() = %d records, want 1 even though PID 999999 is not alive", len(recs))
	}
}

func TestReadCommandFallsBackToWhitespaceSplit(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "1")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, commandFile), []byte("/bin/echo hi\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	argv, err := readCommand(dir)
	if err != nil {
		t.Fatalf("readCommand() error = %v", err)
	}
	want := []string{"/bin/echo", "hi"}
	if len(argv) != len(want) || argv[0] != want[0] || argv[1] != want[1] {
		t.Errorf("readCommand() = %v, want %v", argv, want)
	}
}
