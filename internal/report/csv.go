package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/portscan/internal/model"
)

// CSVWriter outputs per-port results as CSV rows.
// This format is designed for spreadsheets and ad-hoc analysis with
// standard command line tools.
//
// Design decision: We always write every scanned port, open and closed.
// The status column makes filtering trivial downstream, and dropping rows
// here would lose information that cannot be recovered from the file.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one CSV row per scanned port, preceded by a header row.
// Banners are flattened to a single line so each result stays on one
// visual row even in viewers that ignore CSV quoting.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{"port", "status", "service", "banner"}); err != nil {
		return 0, err
	}

	for _, r := range report.Results {
		record := []string{
			strconv.Itoa(r.Port),
			string(r.Status),
			r.Service,
			flattenBanner(r.Banner),
		}
		if err := cw.Write(record); err != nil {
			return 0, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}

// WriteSummary outputs a single CSV row with the scan totals.
func (w *CSVWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{"target", "ip", "scanned_at", "ports_scanned", "open_count", "closed_count"}); err != nil {
		return 0, err
	}

	record := []string{
		summary.Target,
		summary.IP,
		summary.ScannedAt.UTC().Format(time.RFC3339),
		strconv.Itoa(summary.PortsScanned),
		strconv.Itoa(summary.OpenCount),
		strconv.Itoa(summary.ClosedCount),
	}
	if err := cw.Write(record); err != nil {
		return 0, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
