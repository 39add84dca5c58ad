// Package tui provides an interactive terminal viewer for completed
// scan reports, built on bubbletea and lipgloss.
//
// The viewer renders the port table with cursor navigation, an
// only-open filter toggled with "o", and a save keybinding "s" that
// exports the report as a timestamped JSON and CSV pair. The scan
// itself has already finished before the viewer starts; the model only
// tracks view state over an immutable report.
package tui
