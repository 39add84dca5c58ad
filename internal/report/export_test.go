package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestExportFiles tests the timestamped JSON/CSV export.
func TestExportFiles(t *testing.T) {
	t.Parallel()

	t.Run("creates json and csv files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		report := createTestReport()

		jsonPath, csvPath, err := ExportFiles(dir, "audit", report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.HasPrefix(filepath.Base(jsonPath), "audit_") {
			t.Errorf("expected json file name to start with prefix, got %q", filepath.Base(jsonPath))
		}
		if !strings.HasSuffix(jsonPath, ".json") {
			t.Errorf("expected .json suffix, got %q", jsonPath)
		}
		if !strings.HasSuffix(csvPath, ".csv") {
			t.Errorf("expected .csv suffix, got %q", csvPath)
		}

		data, err := os.ReadFile(jsonPath) //nolint:gosec // Test-created path
		if err != nil {
			t.Fatalf("failed to read exported JSON: %v", err)
		}

		var parsed JSONReport
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("exported JSON is not valid: %v", err)
		}
		if parsed.Meta.Target != "scanme.example.com" {
			t.Errorf("expected meta target, got %q", parsed.Meta.Target)
		}

		f, err := os.Open(csvPath) //nolint:gosec // Test-created path
		if err != nil {
			t.Fatalf("failed to open exported CSV: %v", err)
		}
		defer f.Close() //nolint:errcheck // Test cleanup

		records, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatalf("exported CSV is not valid: %v", err)
		}
		if len(records) != 5 {
			t.Errorf("expected header + 4 rows, got %d records", len(records))
		}
	})

	t.Run("creates files readable only by owner", func(t *testing.T) {
		// Skip on Windows as it doesn't support Unix-style file permissions
		if runtime.GOOS == "windows" {
			t.Skip("skipping permission test on Windows")
		}
		t.Parallel()

		dir := t.TempDir()
		jsonPath, csvPath, err := ExportFiles(dir, "scan", createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, path := range []string{jsonPath, csvPath} {
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("failed to stat %s: %v", path, err)
			}
			if perm := info.Mode().Perm(); perm != 0600 {
				t.Errorf("expected 0600 permissions for %s, got %o", path, perm)
			}
		}
	})

	t.Run("empty prefix falls back to scan", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		jsonPath, _, err := ExportFiles(dir, "", createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.HasPrefix(filepath.Base(jsonPath), "scan_") {
			t.Errorf("expected default scan_ prefix, got %q", filepath.Base(jsonPath))
		}
	})

	t.Run("returns error for missing directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := ExportFiles("/nonexistent/export/dir", "scan", createTestReport())
		if err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
