package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Header / chrome
	styleAccent    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true) // blue
	styleDim       = lipgloss.NewStyle().Faint(true)
	styleSep       = lipgloss.NewStyle().Faint(true)
	styleHelp      = lipgloss.NewStyle().Faint(true)
	styleFilterBox = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	// Table header
	styleColHeader = lipgloss.NewStyle().Bold(true).Faint(true)

	// Row states
	styleOpen    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))  // green
	styleClosed  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))   // dark gray
	styleService = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))  // magenta
	styleBanTxt  = lipgloss.NewStyle().Foreground(lipgloss.Color("250")) // light gray

	// Selection
	styleCursor = lipgloss.NewStyle().Background(lipgloss.Color("236")).Bold(true) // subtle bg

	// Footer feedback
	styleSaveOK  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleSaveErr = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)
