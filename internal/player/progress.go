// ABOUTME: Playback progress math for the current track
// ABOUTME: Converts server start time and duration into a fraction using the clock offset
package player

import (
	"time"

	"github.com/harperreed/radiohyrule-go/internal/metadata"
)

// Progress returns how far through the track playback is, as
// (now - started - offset) / duration. The result is not clamped; a stale
// snapshot may report more than 1. ok is false when the duration is unknown.
func Progress(meta metadata.TrackMetadata, offset int64, now time.Time) (float64, bool) {
	if meta.Duration == nil || *meta.Duration <= 0 {
		return 0, false
	}

	local := float64(now.UnixMilli()) / 1000
	elapsed := local - float64(meta.Started) - float64(offset)
	return elapsed / *meta.Duration, true
}

// Clamp01 limits p to [0, 1] for display
func Clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
