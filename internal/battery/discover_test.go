package battery

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestFindBatteries_FiltersByPrefix(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"BAT0", "BAT1", "AC0", "ucsi-source-psy-1"} {
		if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}

	got := FindBatteries(root)
	sort.Strings(got)

	want := []string{
		filepath.Join(root, "BAT0"),
		filepath.Join(root, "BAT1"),
	}
	if len(got) != len(want) {
		t.Fatalf("FindBatteries() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FindBatteries()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindBatteries_MissingRoot(t *testing.T) {
	got := FindBatteries(filepath.Join(t.TempDir(), "does-not-exist"))
	if len(got) != 0 {
		t.Fatalf("FindBatteries() = %q, want empty for missing root", got)
	}
}

func TestFindBatteries_EmptyRoot(t *testing.T) {
	got := FindBatteries(t.TempDir())
	if len(got) != 0 {
		t.Fatalf("FindBatteries() = %q, want empty for root with no devices", got)
	}
}
