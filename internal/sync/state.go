// ABOUTME: Shared playback state passed to every background loop
// ABOUTME: Holds the clock offset and play/pause flag behind independent locks
package sync

import "sync"

// PlaybackFlag is true while audio should be emitted
type PlaybackFlag struct {
	mu      sync.RWMutex
	playing bool
}

// Playing returns the current flag value
func (f *PlaybackFlag) Playing() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.playing
}

// SetPlaying overwrites the flag
func (f *PlaybackFlag) SetPlaying(playing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = playing
}

// Toggle flips the flag and returns the new value
func (f *PlaybackFlag) Toggle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = !f.playing
	return f.playing
}

// State is the process-wide playback context.
//
// Offset is written once by the metadata poller at startup and read by the
// consumer for progress math. Flag is read by the stream loop on every frame
// and written by user input. The two are never updated together, so each
// carries its own lock.
type State struct {
	Offset ClockOffset
	Flag   PlaybackFlag
}

// NewState returns a state with a zero offset and playback enabled
func NewState() *State {
	s := &State{}
	s.Flag.SetPlaying(true)
	return s
}
