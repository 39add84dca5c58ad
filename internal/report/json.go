package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/portscan/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in JSON format.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	return w.writeJSON(report)
}

// WriteSummary outputs only the summary in JSON format.
func (w *JSONWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	return w.writeJSON(summary)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// ExportMeta describes the scan a JSON export belongs to.
// The timestamp is normalized to UTC so exports compare cleanly across hosts.
type ExportMeta struct {
	// Target is the host as the user supplied it.
	Target string `json:"target"`

	// ScannedAt is when the scan started, in UTC.
	ScannedAt time.Time `json:"scanned_at"`

	// PortsScanned is the number of ports probed.
	PortsScanned int `json:"ports_scanned"`
}

// JSONReport is a wrapper pairing scan metadata with the per-port results.
// This is the shape written by file exports.
//
// Design decision: We wrap the results rather than reusing ScanReport
// directly because exports need a stable, self-describing envelope that
// can grow output-specific fields without polluting the core data structure.
type JSONReport struct {
	// Meta identifies the scan that produced these results.
	Meta ExportMeta `json:"meta"`

	// Results holds one record per scanned port, ascending by port number.
	Results []model.PortResult `json:"results"`
}

// NewJSONReport creates a JSONReport wrapper for the given report.
func NewJSONReport(report *model.ScanReport) *JSONReport {
	return &JSONReport{
		Meta: ExportMeta{
			Target:       report.Target,
			ScannedAt:    report.ScannedAt.UTC(),
			PortsScanned: report.PortsScanned,
		},
		Results: report.Results,
	}
}

// FullJSONWriter outputs complete reports wrapped with scan metadata.
type FullJSONWriter struct {
	*JSONWriter
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
	}
}

// Write outputs the full report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.ScanReport) (int, error) {
	return w.writeJSON(NewJSONReport(report))
}
