package presets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Questions) != 10 || len(got.Remarks) != 12 {
		t.Fatalf("unexpected default sizes: %d questions, %d remarks", len(got.Questions), len(got.Remarks))
	}
}

func TestLoadOverridesListsPresentInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	content := "remarks:\n  - \"  Busy, call at 6pm \"\n  - Busy, call at 6pm\n  - \"\"\n  - Wrong number\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Remarks) != 2 || got.Remarks[0] != "Busy, call at 6pm" || got.Remarks[1] != "Wrong number" {
		t.Fatalf("Remarks = %q", got.Remarks)
	}
	if len(got.Questions) != len(Default().Questions) {
		t.Fatalf("questions missing from the file must keep the defaults")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte("remarks: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
