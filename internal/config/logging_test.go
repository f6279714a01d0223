package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetupLogFilePrunesOldFiles(t *testing.T) {
	dir := t.TempDir()
	stale := []string{
		"workmarket-2026-01-01T00-00-00.log",
		"workmarket-2026-01-02T00-00-00.log",
		"workmarket-2026-01-03T00-00-00.log",
	}
	for _, name := range stale {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	f, err := SetupLogFile(dir, "workmarket", 2)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "workmarket-*.log"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d log files, want 2: %v", len(files), files)
	}
	// The two oldest must be gone; the new file survives.
	for _, name := range stale[:2] {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should have been pruned", name)
		}
	}
	if _, err := os.Stat(f.Name()); err != nil {
		t.Errorf("fresh log file missing: %v", err)
	}
}

func TestSetupLogFileIgnoresOtherPrefixes(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "seed-2026-01-01T00-00-00.log")
	if err := os.WriteFile(other, nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := SetupLogFile(dir, "workmarket", 1)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	defer f.Close()

	if _, err := os.Stat(other); err != nil {
		t.Errorf("file with a different prefix was touched: %v", err)
	}
}
