// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Renders the now-playing snapshot and maps keys to playback controls
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/radiohyrule-go/internal/player"
)

// Controller is the playback surface the TUI drives
type Controller interface {
	Snapshot() player.Snapshot
	TogglePause() bool
	AdjustVolume(delta int) int
	ToggleMute() bool
}

// volumeStep is the change per up/down key press
const volumeStep = 5

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	artistStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C8C8C8"))
	listenersStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4E4E4E"))
	barStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8080"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#7B7B7B"))
	frameStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7B7B7B")).
			Padding(0, 1)
)

// tickMsg triggers a snapshot refresh
type tickMsg time.Time

// Model represents the TUI state
type Model struct {
	ctrl     Controller
	interval time.Duration
	snap     player.Snapshot

	// Dimensions
	width  int
	height int
}

// NewModel creates a TUI model refreshing every interval
func NewModel(ctrl Controller, interval time.Duration) Model {
	if interval == 0 {
		interval = 100 * time.Millisecond
	}
	return Model{
		ctrl:     ctrl,
		interval: interval,
	}
}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.snap = m.ctrl.Snapshot()
		return m, tea.Batch(m.tick(), tea.SetWindowTitle(windowTitle(m.snap.Buffered)))
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTrack())
	b.WriteString("\n")
	b.WriteString(m.renderProgress())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return frameStyle.Render(b.String()) + "\n" + m.renderHelp()
}

// renderTrack renders title, artist, and listener count
func (m Model) renderTrack() string {
	width := m.textWidth()

	title := "Nothing playing"
	if m.snap.HasTrack && m.snap.Track.Title != "" {
		title = m.snap.Track.Title
	}
	s := titleStyle.Render(truncate(title, width)) + "\n"

	if artist := m.snap.Track.FirstArtist(); artist != "" {
		s += artistStyle.Render(truncate("By "+artist, width)) + "\n"
	}

	if m.snap.HasTrack {
		s += listenersStyle.Render(fmt.Sprintf("%d listeners", m.snap.Track.Listeners)) + "\n"
	}

	return s
}

// renderProgress renders the play glyph and, when the duration is known,
// the progress bar
func (m Model) renderProgress() string {
	glyph := "▶"
	if m.snap.Playing {
		glyph = "⏸"
	}

	if !m.snap.HasProgress {
		return glyph
	}

	p := player.Clamp01(m.snap.Progress)
	elapsed, total := trackTimes(m.snap)
	return fmt.Sprintf("%s %s %s / %s", glyph,
		barStyle.Render(renderBar(int(p*1000), 1000, 30)),
		formatClock(elapsed), formatClock(total))
}

// renderStatus renders volume, buffer, and art status
func (m Model) renderStatus() string {
	muteIcon := ""
	if m.snap.Muted {
		muteIcon = " 🔇"
	}

	art := "no cover"
	if len(m.snap.Cover) > 0 {
		art = fmt.Sprintf("cover %s", formatSize(len(m.snap.Cover)))
	}

	stream := "live"
	if m.snap.AudioEnded {
		stream = "stream ended"
	}

	return dimStyle.Render(fmt.Sprintf("Volume: [%s] %d%%%s\nBuffer: %s  %s  %s",
		renderBar(m.snap.Volume, 100, 10), m.snap.Volume, muteIcon,
		formatSize(m.snap.Buffered), art, stream))
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return dimStyle.Render("space:Play/Pause  ↑/↓:Volume  m:Mute  q:Quit")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.snap.Playing = m.ctrl.TogglePause()
	case "up":
		m.snap.Volume = m.ctrl.AdjustVolume(volumeStep)
	case "down":
		m.snap.Volume = m.ctrl.AdjustVolume(-volumeStep)
	case "m":
		m.snap.Muted = m.ctrl.ToggleMute()
	}

	return m, nil
}

func (m Model) textWidth() int {
	if m.width > 10 {
		return m.width - 6
	}
	return 60
}

// windowTitle shows the output queue depth the way the station's desktop
// client did
func windowTitle(queued int) string {
	return fmt.Sprintf("Radio Hyrule (%s)", formatSize(queued))
}

func formatSize(n int) string {
	switch {
	case n <= 2048:
		return fmt.Sprintf("%d", n)
	case n <= 2048*1024:
		return fmt.Sprintf("%dKB", n/1024)
	default:
		return fmt.Sprintf("%.2fMB", float64(n)/1048576)
	}
}

func trackTimes(snap player.Snapshot) (elapsed, total time.Duration) {
	if snap.Track.Duration == nil {
		return 0, 0
	}
	total = time.Duration(*snap.Track.Duration * float64(time.Second))
	elapsed = time.Duration(player.Clamp01(snap.Progress) * float64(total))
	return elapsed, total
}

func formatClock(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}
