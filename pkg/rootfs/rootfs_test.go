package rootfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/burrow/pkg/types"
)

func TestAssembleCreatesLayerDirectories(t *testing.T) {
	layersRoot := t.TempDir()
	imageDir := t.TempDir()
	paths := types.Paths{LayersRoot: layersRoot}

	// unix.Mount requires privileges this test environment may not have;
	// Assemble's directory setup runs before the mount call, so failure
	// past that point is expected and only the precondition is checked.
	ov, err := Assemble(paths, imageDir)
	if err == nil {
		t.Cleanup(func() { _ = Teardown(ov, "") })
	}

	base := filepath.Join(layersRoot, "")
	entries, readErr := os.ReadDir(base)
	if readErr != nil {
		t.Fatalf("ReadDir(%q) error = %v", base, readErr)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one overlay directory, got %d", len(entries))
	}

	id := entries[0].Name()
	for _, sub := range []string{"upper", "work", "merged"} {
		if _, statErr := os.Stat(filepath.Join(base, id, sub)); statErr != nil {
			t.Errorf("missing overlay subdirectory %q: %v", sub, statErr)
		}
	}
}

func TestPrepareBindEmptyIsNoop(t *testing.T) {
	if err := PrepareBind(""); err != nil {
		t.Fatalf("PrepareBind(\"\") error = %v", err)
	}
}

func TestPrepareBindCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bind-src")
	if err := PrepareBind(dir); err != nil {
		t.Fatalf("PrepareBind() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("bind source directory was not created")
	}
}

func TestApplyBindInsideEmptyIsNoop(t *testing.T) {
	if err := ApplyBindInside(t.TempDir(), ""); err != nil {
		t.Fatalf("ApplyBindInside with empty hostDir error = %v", err)
	}
}

func TestApplyBindInsideCreatesTargetDirectory(t *testing.T) {
	merged := t.TempDir()
	hostDir := filepath.Join(t.TempDir(), "shared")
	if err := os.MkdirAll(hostDir, 0755); err != nil {
		t.Fatalf("MkdirAll(%q) error = %v", hostDir, err)
	}

	// The bind mount itself requires privileges this test environment
	// may not have; only the precondition (target directory creation)
	// is checked here.
	_ = ApplyBindInside(merged, hostDir)

	target := filepath.Join(merged, hostDir)
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Errorf("bind target directory %q was not created", target)
	}
}

func TestTeardownRemovesOverlayDirectoryEvenWithoutMount(t *testing.T) {
	layersRoot := t.TempDir()
	base := filepath.Join(layersRoot, "test-id")
	ov := types.Overlay{
		ID:     "test-id",
		Upper:  filepath.Join(base, "upper"),
		Work:   filepath.Join(base, "work"),
		Merged: filepath.Join(base, "merged"),
	}
	for _, dir := range []string{ov.Upper, ov.Work, ov.Merged} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("MkdirAll(%q) error = %v", dir, err)
		}
	}

	if err := Teardown(ov, ""); err != nil {
		t.Fatalf("Teardown() error = %v", err)
	}
	if _, err := os.Stat(base); !os.IsNotExist(err) {
		t.Errorf("overlay directory %q still exists after Teardown", base)
	}
}

func TestUnmountPreservesOverlayDirectory(t *testing.T) {
	layersRoot := t.TempDir()
	base := filepath.Join(layersRoot, "test-id")
	ov := types.Overlay{
		ID:     "test-id",
		Upper:  filepath.Join(base, "upper"),
		Work:   filepath.Join(base, "work"),
		Merged: filepath.Join(base, "merged"),
	}
	for _, dir := range []string{ov.Upper, ov.Work, ov.Merged} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("MkdirAll(%q) error = %v", dir, err)
		}
	}

	// Stop calls Unmount, not Teardown: a stopped container's upper
	// layer must survive on disk so a later start can remount it.
	if err := Unmount(ov, ""); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}
	if _, err := os.Stat(ov.Upper); err != nil {
		t.Errorf("upper layer %q should survive Unmount: %v", ov.Upper, err)
	}
	if _, err := os.Stat(base); err != nil {
		t.Errorf("overlay directory %q should survive Unmount: %v", base, err)
	}
}
