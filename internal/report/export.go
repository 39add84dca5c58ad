package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/portscan/internal/model"
)

// exportTimestampFormat produces file names like scan_20240131_154500.json.
const exportTimestampFormat = "20060102_150405"

// ExportFiles writes timestamped JSON and CSV exports of the report into dir.
// File names follow the pattern {prefix}_{UTC timestamp}.{json,csv} so
// repeated exports of the same target never overwrite each other.
// It returns the paths of the JSON and CSV files it created.
func ExportFiles(dir, prefix string, report *model.ScanReport) (string, string, error) {
	if prefix == "" {
		prefix = "scan"
	}

	stamp := time.Now().UTC().Format(exportTimestampFormat)
	jsonPath := filepath.Join(dir, fmt.Sprintf("%s_%s.json", prefix, stamp))
	csvPath := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, stamp))

	if err := exportFile(jsonPath, func(f *os.File) error {
		_, err := NewFullJSONWriter(f, WithPrettyPrint()).Write(report)
		return err
	}); err != nil {
		return "", "", err
	}

	if err := exportFile(csvPath, func(f *os.File) error {
		_, err := NewCSVWriter(f).Write(report)
		return err
	}); err != nil {
		return "", "", err
	}

	return jsonPath, csvPath, nil
}

// exportFile creates path and hands it to write.
// Exports use 0600 permissions because scan results describe the target's
// attack surface and should only be readable by the owner.
func exportFile(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close() //nolint:errcheck,gosec // Best effort cleanup on write failure
		return fmt.Errorf("failed to write export file %s: %w", path, err)
	}

	return f.Close()
}
