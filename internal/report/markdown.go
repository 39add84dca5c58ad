package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/portscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	summary := model.NewScanSummary(report)
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, report)

	// Summary with status distribution
	w.writeSummary(md, summary)

	// Open ports table
	w.writeOpenPorts(md, report)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs the condensed summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Port Scan Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + summary.Target + "`"},
			{"Resolved IP", "`" + summary.IP + "`"},
			{"Scan Date", summary.ScannedAt.Format("2006-01-02 15:04:05 MST")},
			{"Ports Scanned", strconv.Itoa(summary.PortsScanned)},
		},
	})
	md.PlainText("")

	w.writeCounts(md, summary)

	md.H2("Open Services")
	md.PlainText("")
	if len(summary.OpenServices) == 0 {
		md.PlainText("No open ports detected.")
	} else {
		md.BulletList(summary.OpenServices...)
	}
	md.PlainText("")

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Port Scan Report")
	md.PlainText("")

	rows := [][]string{
		{"Target", "`" + report.Target + "`"},
		{"Resolved IP", "`" + report.IP + "`"},
		{"Scan Date", report.ScannedAt.Format("2006-01-02 15:04:05 MST")},
		{"Ports Scanned", strconv.Itoa(report.PortsScanned)},
	}
	if report.Elapsed > 0 {
		rows = append(rows, []string{"Elapsed", report.Elapsed.Round(time.Millisecond).String()})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the open/closed summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.ScanSummary) {
	w.writeCounts(md, summary)

	// Add pie chart if anything was scanned
	if summary.PortsScanned > 0 {
		w.writePieChart(md, summary)
	}
}

// writeCounts writes the summary table and an alert sized to the exposure.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, summary *model.ScanSummary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows: [][]string{
			{"🟢 Open", strconv.Itoa(summary.OpenCount)},
			{"🔴 Closed", strconv.Itoa(summary.ClosedCount)},
			{"**Total**", "**" + strconv.Itoa(summary.PortsScanned) + "**"},
		},
	})
	md.PlainText("")

	switch {
	case summary.OpenCount > 10:
		md.Warningf(
			"%d open ports detected. Review whether every service needs to be exposed.",
			summary.OpenCount,
		)
	case summary.OpenCount > 0:
		md.Importantf("%d open port(s) detected.", summary.OpenCount)
	default:
		md.Tip("No open ports detected.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart for the status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.ScanSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Port Status Distribution"),
		piechart.WithShowData(true),
	)

	if summary.OpenCount > 0 {
		chart.LabelAndIntValue("Open", uint64(summary.OpenCount))
	}
	if summary.ClosedCount > 0 {
		chart.LabelAndIntValue("Closed", uint64(summary.ClosedCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeOpenPorts writes the open ports table with service and banner details.
func (w *MarkdownWriter) writeOpenPorts(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Open Ports")
	md.PlainText("")

	open := report.OpenPorts()
	if len(open) == 0 {
		md.PlainText("No open ports detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(open))
	for i, r := range open {
		service := r.Service
		if service == "" {
			service = "-"
		}
		banner := flattenBanner(r.Banner)
		if banner == "" {
			banner = "-"
		}

		rows[i] = []string{
			strconv.Itoa(r.Port) + "/tcp",
			service,
			truncateString(banner, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Port", "Service", "Banner"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [portscan](https://github.com/nao1215/portscan)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
