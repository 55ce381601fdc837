// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for player UI
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run creates the TUI program; the caller runs it and owns shutdown
func Run(ctrl Controller, interval time.Duration) *tea.Program {
	return tea.NewProgram(NewModel(ctrl, interval), tea.WithAltScreen())
}
