package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nao1215/portscan/internal/model"
	"github.com/nao1215/portscan/internal/report"
)

// Column widths for the fixed table layout.
const (
	colPort    = 11
	colStatus  = 8
	colService = 12
	// Banner takes the rest
)

// chromeLines is the number of non-table lines in the view:
// 2 header + 1 column header + 1 separator + 1 footer + 1 help.
const chromeLines = 6

// Model is the bubbletea model for browsing a completed scan report.
// The scan has already finished when the model is constructed; the
// report is read-only and the model only tracks view state.
type Model struct {
	// Data
	report  *model.ScanReport
	summary *model.ScanSummary
	rows    []model.PortResult // filtered view of report.Results

	// View state
	onlyOpen bool
	cursor   int // index into rows
	offset   int // scroll offset

	// Export
	exportDir    string
	exportPrefix string
	saveMsg      string
	saveErr      error

	// Terminal
	width, height int
	quitting      bool
}

// NewModel creates a model over a completed scan report. Pressing "s"
// exports the report as a timestamped JSON and CSV pair into exportDir.
func NewModel(rep *model.ScanReport, exportDir, exportPrefix string) Model {
	m := Model{
		report:       rep,
		summary:      model.NewScanSummary(rep),
		exportDir:    exportDir,
		exportPrefix: exportPrefix,
	}
	m.rebuildRows()
	return m
}

// Run displays the report in an interactive viewer and blocks until the
// user quits.
func Run(rep *model.ScanReport, exportDir, exportPrefix string) error {
	p := tea.NewProgram(NewModel(rep, exportDir, exportPrefix), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive display failed: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureVisible()
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "o":
		m.onlyOpen = !m.onlyOpen
		m.rebuildRows()
	case "s":
		m.saveResults()
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.ensureVisible()
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureVisible()
	case "pgdown", "ctrl+d":
		m.cursor += m.visibleRows()
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.ensureVisible()
	case "pgup", "ctrl+u":
		m.cursor -= m.visibleRows()
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.ensureVisible()
	case "g", "home":
		m.cursor = 0
		m.offset = 0
	case "G", "end":
		m.cursor = len(m.rows) - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
		m.ensureVisible()
	}
	return m, nil
}

// rebuildRows recomputes the filtered view after a toggle.
func (m *Model) rebuildRows() {
	if m.onlyOpen {
		m.rows = m.report.OpenPorts()
	} else {
		m.rows = m.report.Results
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	vis := m.visibleRows()
	if vis <= 0 {
		vis = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vis {
		m.offset = m.cursor - vis + 1
	}
}

// visibleRows returns how many table rows fit on screen.
func (m Model) visibleRows() int {
	if m.height == 0 {
		// Before the first WindowSizeMsg arrives, show everything.
		return len(m.rows)
	}
	rows := m.height - chromeLines
	if rows < 1 {
		rows = 1
	}
	return rows
}

// saveResults exports the report as a timestamped JSON and CSV pair and
// records the outcome for the footer.
func (m *Model) saveResults() {
	jsonPath, csvPath, err := report.ExportFiles(m.exportDir, m.exportPrefix, m.report)
	if err != nil {
		m.saveErr = err
		m.saveMsg = ""
		return
	}
	m.saveErr = nil
	m.saveMsg = fmt.Sprintf("saved %s and %s", filepath.Base(jsonPath), filepath.Base(csvPath))
}

// ── View ──────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 40 {
		w = 80
	}

	var b strings.Builder

	m.renderHeader(&b, w)
	m.renderColHeader(&b, w)
	m.renderTable(&b, w)
	m.renderFooter(&b)
	m.renderHelp(&b)

	return b.String()
}

func (m Model) renderHeader(b *strings.Builder, w int) {
	title := styleAccent.Render("portscan")
	meta := styleDim.Render(fmt.Sprintf(" %s (%s) · %s",
		truncStr(m.report.Target, 40),
		m.report.IP,
		m.report.ScannedAt.Format("2006-01-02 15:04:05 MST")))
	b.WriteString(" " + title + meta + "\n")

	counts := fmt.Sprintf(" %d ports scanned · %d open · %d closed",
		m.summary.PortsScanned, m.summary.OpenCount, m.summary.ClosedCount)
	if m.report.Elapsed > 0 {
		counts += fmt.Sprintf(" · %s", m.report.Elapsed.Round(time.Millisecond))
	}
	line := styleDim.Render(counts)
	if m.onlyOpen {
		line += styleFilterBox.Render("  [open only]")
	}
	b.WriteString(line + "\n")
}

func (m Model) renderColHeader(b *strings.Builder, w int) {
	line := fmt.Sprintf(" %-*s %-*s %-*s %s",
		colPort, "PORT",
		colStatus, "STATUS",
		colService, "SERVICE",
		"BANNER")
	b.WriteString(styleColHeader.Render(line))
	b.WriteString("\n")

	sep := styleSep.Render(" " + strings.Repeat("─", w-2))
	b.WriteString(sep + "\n")
}

func (m Model) renderTable(b *strings.Builder, w int) {
	vis := m.visibleRows()
	banW := w - colPort - colStatus - colService - 5
	if banW < 10 {
		banW = 10
	}

	if len(m.rows) == 0 {
		if m.onlyOpen {
			b.WriteString(styleDim.Render(" no open ports") + "\n")
		} else {
			b.WriteString(styleDim.Render(" no results") + "\n")
		}
		for i := 1; i < vis; i++ {
			b.WriteString(styleDim.Render(" ~") + "\n")
		}
		return
	}

	end := m.offset + vis
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		row := m.rows[i]

		port := padRight(fmt.Sprintf("%d/tcp", row.Port), colPort)
		status := padRight(string(row.Status), colStatus)
		svc := padRight(row.Service, colService)
		ban := truncStr(flattenBanner(row.Banner), banW)

		if i == m.cursor {
			marker := styleAccent.Render("▸")
			content := fmt.Sprintf("%s %s %s %s", port, status, svc, ban)
			b.WriteString(marker + styleCursor.Render(truncStr(content, w-2)) + "\n")
			continue
		}

		if row.Open() {
			b.WriteString(fmt.Sprintf(" %s %s %s %s\n",
				styleOpen.Render(port),
				styleOpen.Render(status),
				styleService.Render(svc),
				styleBanTxt.Render(ban)))
		} else {
			b.WriteString(fmt.Sprintf(" %s %s %s %s\n",
				styleClosed.Render(port),
				styleClosed.Render(status),
				styleClosed.Render(svc),
				styleClosed.Render(ban)))
		}
	}

	// Fill empty space
	for i := end - m.offset; i < vis; i++ {
		b.WriteString(styleDim.Render(" ~") + "\n")
	}
}

func (m Model) renderFooter(b *strings.Builder) {
	switch {
	case m.saveErr != nil:
		b.WriteString(" " + styleSaveErr.Render("save failed: "+m.saveErr.Error()) + "\n")
	case m.saveMsg != "":
		b.WriteString(" " + styleSaveOK.Render(m.saveMsg) + "\n")
	default:
		b.WriteString("\n")
	}
}

func (m Model) renderHelp(b *strings.Builder) {
	b.WriteString(styleHelp.Render(" j/k move · o open only · s save json+csv · q quit"))
}

// ── Helpers ───────────────────────────────────────────────────────────

var bannerFlattener = strings.NewReplacer("\r", " ", "\n", " ")

// flattenBanner collapses a multi-line banner onto one table row.
func flattenBanner(banner string) string {
	return strings.TrimSpace(bannerFlattener.Replace(banner))
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s[:w]
	}
	return s + strings.Repeat(" ", w-len(s))
}

// truncStr shortens s to at most w screen cells, rune-aware because
// banners may carry multi-byte characters.
func truncStr(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}
