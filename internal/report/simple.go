package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/portscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting, one line per scanned port.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// onlyOpen controls whether closed ports are listed in the results
	// section. The summary counts always include them.
	onlyOpen bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithOnlyOpen configures the writer to list only open ports.
func WithOnlyOpen(onlyOpen bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.onlyOpen = onlyOpen
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		onlyOpen:   false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	summary := model.NewScanSummary(report)

	var sb strings.Builder

	// Header
	w.writeHeader(&sb, report)

	// Summary counts
	w.writeSummary(&sb, summary)

	// Per-port results
	w.writeResults(&sb, report)

	// Footer
	w.writeFooter(&sb)

	// Write to output
	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs the condensed summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         PORT SCAN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:         %s\n", summary.Target))
	sb.WriteString(fmt.Sprintf("Resolved IP:    %s\n", summary.IP))
	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", summary.ScannedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Ports Scanned:  %d\n", summary.PortsScanned))
	sb.WriteString("\n")

	w.writeSummary(&sb, summary)

	if summary.HasOpenPorts() {
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		sb.WriteString("OPEN SERVICES\n")
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n\n")

		for _, service := range summary.OpenServices {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", service))
		}
		sb.WriteString("\n")
	}

	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         PORT SCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:         %s\n", report.Target))
	sb.WriteString(fmt.Sprintf("Resolved IP:    %s\n", report.IP))
	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", report.ScannedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Ports Scanned:  %d\n", report.PortsScanned))

	if report.Elapsed > 0 {
		sb.WriteString(fmt.Sprintf("Elapsed:        %s\n", report.Elapsed.Round(time.Millisecond)))
	}

	sb.WriteString("\n")
}

// writeSummary writes the open/closed count section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, summary *model.ScanSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  OPEN:     %d\n", summary.OpenCount))
	sb.WriteString(fmt.Sprintf("  CLOSED:   %d\n", summary.ClosedCount))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d ports\n", summary.PortsScanned))
	sb.WriteString("\n")
}

// writeResults writes one line per scanned port.
func (w *SimpleWriter) writeResults(sb *strings.Builder, report *model.ScanReport) {
	results := report.Results
	if w.onlyOpen {
		results = report.OpenPorts()
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESULTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(results) == 0 {
		if w.onlyOpen {
			sb.WriteString("  No open ports detected\n")
		} else {
			sb.WriteString("  No ports scanned\n")
		}
		sb.WriteString("\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  %-11s %-8s %-12s %s\n", "PORT", "STATUS", "SERVICE", "BANNER"))
	for _, r := range results {
		port := fmt.Sprintf("%d/tcp", r.Port)
		line := fmt.Sprintf("  %-11s %-8s %-12s %s", port, r.Status, r.Service, flattenBanner(r.Banner))
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by portscan\n")
	sb.WriteString("https://github.com/nao1215/portscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
