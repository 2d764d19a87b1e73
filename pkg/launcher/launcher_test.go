package launcher

import (
	"path/filepath"
	"testing"

	"github.com/cuemby/burrow/pkg/types"
)

func TestNextCPURoundRobins(t *testing.T) {
	paths := types.Paths{NextCPUFile: filepath.Join(t.TempDir(), "next-cpu")}

	seen := make([]int, 0, 8)
	for i := 0; i < 8; i++ {
		cpu, err := NextCPU(paths, 4)
		if err != nil {
			t.Fatalf("NextCPU() error = %v", err)
		}
		seen = append(seen, cpu)
	}

	want := []int{0, 1, 2, 3, 0, 1, 2, 3}
	for i, w := range want {
		if seen[i] != w {
			t.Errorf("NextCPU() call %d = %d, want %d", i, seen[i], w)
		}
	}
}

func TestBoolString(t *testing.T) {
	if boolString(true) != "1" {
		t.Errorf("boolString(true) = %q, want 1", boolString(true))
	}
	if boolString(false) != "0" {
		t.Errorf("boolString(false) = %q, want 0", boolString(false))
	}
}
