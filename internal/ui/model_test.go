// ABOUTME: Tests for TUI model and rendering
// ABOUTME: Tests key handling, snapshot refresh, and formatting helpers
package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/radiohyrule-go/internal/metadata"
	"github.com/harperreed/radiohyrule-go/internal/player"
)

type fakeController struct {
	snap    player.Snapshot
	toggles int
	volume  int
	muted   bool
}

func (c *fakeController) Snapshot() player.Snapshot { return c.snap }

func (c *fakeController) TogglePause() bool {
	c.toggles++
	c.snap.Playing = !c.snap.Playing
	return c.snap.Playing
}

func (c *fakeController) AdjustVolume(delta int) int {
	c.volume += delta
	if c.volume > 100 {
		c.volume = 100
	}
	if c.volume < 0 {
		c.volume = 0
	}
	return c.volume
}

func (c *fakeController) ToggleMute() bool {
	c.muted = !c.muted
	return c.muted
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func refreshed(t *testing.T, m Model) Model {
	t.Helper()
	updated, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected tick to schedule the next refresh")
	}
	return updated.(Model)
}

func TestNewModelDefaults(t *testing.T) {
	model := NewModel(&fakeController{}, 0)

	if model.interval != 100*time.Millisecond {
		t.Errorf("expected 100ms refresh, got %v", model.interval)
	}
	if model.Init() == nil {
		t.Error("expected Init to start the ticker")
	}
}

func TestViewNothingPlaying(t *testing.T) {
	model := refreshed(t, NewModel(&fakeController{}, time.Millisecond))

	view := model.View()
	if !strings.Contains(view, "Nothing playing") {
		t.Errorf("expected placeholder title, got:\n%s", view)
	}
	if strings.Contains(view, "listeners") {
		t.Error("expected no listener line before first update")
	}
}

func TestViewTrack(t *testing.T) {
	duration := 180.0
	ctrl := &fakeController{snap: player.Snapshot{
		Track: metadata.TrackMetadata{
			Title:     "Gerudo Valley",
			Artist:    []string{"Koji Kondo", "Orchestra"},
			Listeners: 17,
			Started:   1000,
			Duration:  &duration,
		},
		HasTrack:    true,
		Progress:    0.5,
		HasProgress: true,
		Playing:     true,
		Cover:       []byte("jpeg"),
		Volume:      80,
	}}
	model := refreshed(t, NewModel(ctrl, time.Millisecond))

	view := model.View()
	for _, want := range []string{"Gerudo Valley", "By Koji Kondo", "17 listeners", "1:30 / 3:00", "cover 4", "80%"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Orchestra") {
		t.Error("expected only the first artist")
	}
}

func TestViewHidesProgressWithoutDuration(t *testing.T) {
	ctrl := &fakeController{snap: player.Snapshot{
		Track:    metadata.TrackMetadata{Title: "Live Request Hour", Listeners: 3},
		HasTrack: true,
	}}
	model := refreshed(t, NewModel(ctrl, time.Millisecond))

	if line := model.renderProgress(); strings.Contains(line, "░") || strings.Contains(line, "█") {
		t.Errorf("expected no progress bar without duration, got %q", line)
	}
	if !strings.Contains(model.View(), "no cover") {
		t.Error("expected cover absence shown")
	}
}

func TestPlayGlyph(t *testing.T) {
	ctrl := &fakeController{snap: player.Snapshot{Playing: true}}
	model := refreshed(t, NewModel(ctrl, time.Millisecond))
	if !strings.HasPrefix(model.renderProgress(), "⏸") {
		t.Errorf("expected pause glyph while playing, got %q", model.renderProgress())
	}

	ctrl.snap.Playing = false
	model = refreshed(t, model)
	if !strings.HasPrefix(model.renderProgress(), "▶") {
		t.Errorf("expected play glyph while paused, got %q", model.renderProgress())
	}
}

func TestHandleKeys(t *testing.T) {
	ctrl := &fakeController{volume: 50, snap: player.Snapshot{Playing: true}}
	var model tea.Model = NewModel(ctrl, time.Millisecond)

	model, _ = model.Update(key(" "))
	if ctrl.toggles != 1 || model.(Model).snap.Playing {
		t.Errorf("expected space to pause, toggles=%d", ctrl.toggles)
	}

	model, _ = model.Update(key("up"))
	if model.(Model).snap.Volume != 55 {
		t.Errorf("expected volume 55, got %d", model.(Model).snap.Volume)
	}

	model, _ = model.Update(key("down"))
	model, _ = model.Update(key("down"))
	if model.(Model).snap.Volume != 45 {
		t.Errorf("expected volume 45, got %d", model.(Model).snap.Volume)
	}

	model, _ = model.Update(key("m"))
	if !model.(Model).snap.Muted || !ctrl.muted {
		t.Error("expected m to mute")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		model := NewModel(&fakeController{}, time.Millisecond)
		_, cmd := model.Update(key(k))
		if cmd == nil {
			t.Errorf("%s: expected quit command", k)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestWindowSize(t *testing.T) {
	model := NewModel(&fakeController{}, time.Millisecond)
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	m := updated.(Model)
	if m.width != 40 || m.height != 12 {
		t.Errorf("expected 40x12, got %dx%d", m.width, m.height)
	}
	if m.textWidth() != 34 {
		t.Errorf("expected text width 34, got %d", m.textWidth())
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{0, "0"},
		{2048, "2048"},
		{2049, "2KB"},
		{2097152, "2048KB"},
		{3 * 1048576, "3.00MB"},
	}

	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.expected {
			t.Errorf("formatSize(%d) = %q, expected %q", tt.n, got, tt.expected)
		}
	}

	if windowTitle(4096) != "Radio Hyrule (4KB)" {
		t.Errorf("unexpected window title %q", windowTitle(4096))
	}
}

func TestFormatClock(t *testing.T) {
	if formatClock(0) != "0:00" || formatClock(185*time.Second) != "3:05" {
		t.Error("unexpected clock formatting")
	}
}

func TestRenderBar(t *testing.T) {
	if renderBar(50, 100, 10) != "█████░░░░░" {
		t.Errorf("unexpected half bar %q", renderBar(50, 100, 10))
	}
	if renderBar(0, 100, 4) != "░░░░" || renderBar(100, 100, 4) != "████" {
		t.Error("unexpected empty/full bar")
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
		{"ゼルダの伝説 時のオカリナ", 8, "ゼルダの伝..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}
