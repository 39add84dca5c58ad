package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nao1215/portscan/internal/model"
)

// testReport creates a report with two open and two closed ports.
func testReport() *model.ScanReport {
	rep := model.NewScanReport("scanme.example.com", "192.0.2.10")
	rep.ScannedAt = time.Date(2024, 1, 31, 15, 45, 12, 0, time.UTC)
	rep.Elapsed = 1250 * time.Millisecond
	rep.SetResults([]model.PortResult{
		{Port: 22, Status: model.StatusOpen, Service: "ssh", Banner: "SSH-2.0-OpenSSH_9.6"},
		{Port: 23, Status: model.StatusClosed},
		{Port: 80, Status: model.StatusOpen, Service: "http"},
		{Port: 443, Status: model.StatusClosed},
	})
	return rep
}

// keyMsg builds a plain character key press.
func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestNewModel tests model construction over a completed report.
func TestNewModel(t *testing.T) {
	t.Parallel()

	m := NewModel(testReport(), t.TempDir(), "scan")

	if len(m.rows) != 4 {
		t.Errorf("expected 4 rows, got %d", len(m.rows))
	}
	if m.onlyOpen {
		t.Error("expected only-open filter off by default")
	}
	if m.summary.OpenCount != 2 {
		t.Errorf("expected 2 open ports in summary, got %d", m.summary.OpenCount)
	}
}

// TestModelUpdate tests key handling.
func TestModelUpdate(t *testing.T) {
	t.Parallel()

	t.Run("q quits", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")

		_, cmd := m.Update(keyMsg("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected tea.QuitMsg, got %T", cmd())
		}
	})

	t.Run("ctrl+c quits", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected tea.QuitMsg, got %T", cmd())
		}
	})

	t.Run("o toggles only-open filter", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")

		newModel, _ := m.Update(keyMsg("o"))
		m = newModel.(Model)

		if !m.onlyOpen {
			t.Error("expected only-open filter on after toggle")
		}
		if len(m.rows) != 2 {
			t.Errorf("expected 2 rows with filter on, got %d", len(m.rows))
		}

		newModel, _ = m.Update(keyMsg("o"))
		m = newModel.(Model)

		if m.onlyOpen {
			t.Error("expected only-open filter off after second toggle")
		}
		if len(m.rows) != 4 {
			t.Errorf("expected 4 rows with filter off, got %d", len(m.rows))
		}
	})

	t.Run("cursor stays in range after filtering", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")
		m.cursor = 3 // last of 4 rows

		newModel, _ := m.Update(keyMsg("o"))
		m = newModel.(Model)

		if m.cursor >= len(m.rows) {
			t.Errorf("cursor %d out of range for %d rows", m.cursor, len(m.rows))
		}
	})

	t.Run("j and k move the cursor", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")

		newModel, _ := m.Update(keyMsg("j"))
		m = newModel.(Model)
		if m.cursor != 1 {
			t.Errorf("expected cursor 1 after j, got %d", m.cursor)
		}

		newModel, _ = m.Update(keyMsg("k"))
		m = newModel.(Model)
		if m.cursor != 0 {
			t.Errorf("expected cursor 0 after k, got %d", m.cursor)
		}

		// k at the top stays put
		newModel, _ = m.Update(keyMsg("k"))
		m = newModel.(Model)
		if m.cursor != 0 {
			t.Errorf("expected cursor to stay at 0, got %d", m.cursor)
		}
	})

	t.Run("G jumps to the last row", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")

		newModel, _ := m.Update(keyMsg("G"))
		m = newModel.(Model)
		if m.cursor != 3 {
			t.Errorf("expected cursor 3 after G, got %d", m.cursor)
		}
	})

	t.Run("window size updates dimensions", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")

		newModel, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
		m = newModel.(Model)

		if m.width != 120 {
			t.Errorf("expected width 120, got %d", m.width)
		}
		if m.height != 40 {
			t.Errorf("expected height 40, got %d", m.height)
		}
	})

	t.Run("scrolling keeps the cursor visible", func(t *testing.T) {
		t.Parallel()

		rep := model.NewScanReport("scanme.example.com", "192.0.2.10")
		results := make([]model.PortResult, 0, 20)
		for port := 8000; port < 8020; port++ {
			results = append(results, model.PortResult{Port: port, Status: model.StatusOpen})
		}
		rep.SetResults(results)

		m := NewModel(rep, t.TempDir(), "scan")
		m.width = 80
		m.height = chromeLines + 3 // three visible table rows

		for i := 0; i < 5; i++ {
			newModel, _ := m.Update(keyMsg("j"))
			m = newModel.(Model)
		}

		if m.cursor != 5 {
			t.Fatalf("expected cursor 5, got %d", m.cursor)
		}
		if m.offset == 0 {
			t.Error("expected view to scroll after moving past the visible rows")
		}
		if m.cursor < m.offset || m.cursor >= m.offset+m.visibleRows() {
			t.Errorf("cursor %d not within visible window [%d, %d)", m.cursor, m.offset, m.offset+m.visibleRows())
		}
	})
}

// TestModelView tests rendering.
func TestModelView(t *testing.T) {
	t.Parallel()

	t.Run("renders header and result rows", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")
		m.width = 100
		m.height = 30

		v := m.View()
		if !strings.Contains(v, "portscan") {
			t.Error("view should contain the title")
		}
		if !strings.Contains(v, "scanme.example.com (192.0.2.10)") {
			t.Error("view should contain target and IP")
		}
		if !strings.Contains(v, "4 ports scanned") {
			t.Error("view should contain the scanned count")
		}
		if !strings.Contains(v, "22/tcp") {
			t.Error("view should contain the first open port")
		}
		if !strings.Contains(v, "SSH-2.0-OpenSSH_9.6") {
			t.Error("view should contain the banner")
		}
	})

	t.Run("only-open filter hides closed ports", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")
		m.width = 100
		m.height = 30

		newModel, _ := m.Update(keyMsg("o"))
		m = newModel.(Model)

		v := m.View()
		if strings.Contains(v, "23/tcp") {
			t.Error("closed port 23 should be hidden with filter on")
		}
		if !strings.Contains(v, "80/tcp") {
			t.Error("open port 80 should remain visible")
		}
		if !strings.Contains(v, "[open only]") {
			t.Error("view should show the filter indicator")
		}
	})

	t.Run("shows placeholder when nothing matches", func(t *testing.T) {
		t.Parallel()

		rep := model.NewScanReport("scanme.example.com", "192.0.2.10")
		rep.SetResults([]model.PortResult{
			{Port: 22, Status: model.StatusClosed},
		})

		m := NewModel(rep, t.TempDir(), "scan")
		m.width = 100
		m.height = 30

		newModel, _ := m.Update(keyMsg("o"))
		m = newModel.(Model)

		v := m.View()
		if !strings.Contains(v, "no open ports") {
			t.Error("view should show the no-open-ports placeholder")
		}
	})

	t.Run("quitting renders nothing", func(t *testing.T) {
		t.Parallel()

		m := NewModel(testReport(), t.TempDir(), "scan")
		m.quitting = true

		if v := m.View(); v != "" {
			t.Errorf("expected empty view while quitting, got %q", v)
		}
	})
}

// TestModelSave tests the save keybinding.
func TestModelSave(t *testing.T) {
	t.Parallel()

	t.Run("s exports a json and csv pair", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		m := NewModel(testReport(), dir, "tuitest")
		m.width = 100
		m.height = 30

		newModel, _ := m.Update(keyMsg("s"))
		m = newModel.(Model)

		if m.saveErr != nil {
			t.Fatalf("unexpected save error: %v", m.saveErr)
		}
		if !strings.Contains(m.saveMsg, "saved") {
			t.Errorf("expected save feedback, got %q", m.saveMsg)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read export dir: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 exported files, got %d", len(entries))
		}
		for _, entry := range entries {
			if !strings.HasPrefix(entry.Name(), "tuitest_") {
				t.Errorf("expected tuitest_ prefix, got %q", entry.Name())
			}
		}

		if v := m.View(); !strings.Contains(v, "saved") {
			t.Error("view should show the save feedback")
		}
	})

	t.Run("save failure is reported in the footer", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "does-not-exist")
		m := NewModel(testReport(), missing, "tuitest")
		m.width = 100
		m.height = 30

		newModel, _ := m.Update(keyMsg("s"))
		m = newModel.(Model)

		if m.saveErr == nil {
			t.Fatal("expected save error for missing directory")
		}
		if v := m.View(); !strings.Contains(v, "save failed") {
			t.Error("view should show the save failure")
		}
	})
}

// TestTruncStr tests rune-aware truncation.
func TestTruncStr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    string
		w    int
		want string
	}{
		{"", 10, ""},
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a long banner string", 10, "a long ba…"},
		{"ascii", 0, ""},
		{"ab", 1, "…"},
		{"naïve text value here", 10, "naïve tex…"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.s, func(t *testing.T) {
			t.Parallel()

			got := truncStr(tt.s, tt.w)
			if got != tt.want {
				t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.w, got, tt.want)
			}
		})
	}
}

// TestFlattenBanner tests banner flattening for table rows.
func TestFlattenBanner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single line unchanged",
			input: "SSH-2.0-OpenSSH_9.6",
			want:  "SSH-2.0-OpenSSH_9.6",
		},
		{
			name:  "crlf collapsed",
			input: "220 mail ready\r\n250 ok",
			want:  "220 mail ready  250 ok",
		},
		{
			name:  "trailing newline trimmed",
			input: "HTTP/1.1 200 OK\r\n",
			want:  "HTTP/1.1 200 OK",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := flattenBanner(tt.input)
			if got != tt.want {
				t.Errorf("flattenBanner(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
