// ABOUTME: Now-playing metadata types
// ABOUTME: Mirrors the station's nowplaying.json document and the song change event
package metadata

import "fmt"

// TrackMetadata is one snapshot of what is playing. Snapshots are replaced
// wholesale, never edited.
type TrackMetadata struct {
	Album      *string  `json:"album"`
	AlbumURL   *string  `json:"album_url"`
	AlbumCover *string  `json:"albumcover"`
	Artist     []string `json:"artist"`
	ArtistURL  []string `json:"artist_url"`
	Duration   *float64 `json:"duration"` // seconds, nil for live/indefinite
	Listeners  int      `json:"listeners"`
	SongNID    *string  `json:"song_nid"`
	SongURL    *string  `json:"song_url"`
	Source     *string  `json:"source"`
	Started    int64    `json:"started"` // server epoch seconds
	Title      string   `json:"title"`
}

// SameTrack reports whether two snapshots describe the same song.
// Only the title counts; listener churn is not a change.
func (m TrackMetadata) SameTrack(other TrackMetadata) bool {
	return m.Title == other.Title
}

// FirstArtist returns the lead artist or ""
func (m TrackMetadata) FirstArtist() string {
	if len(m.Artist) == 0 {
		return ""
	}
	return m.Artist[0]
}

// CoverName returns the album art reference or ""
func (m TrackMetadata) CoverName() string {
	if m.AlbumCover == nil {
		return ""
	}
	return *m.AlbumCover
}

// Info is the one-line summary logged on every track change
func (m TrackMetadata) Info() string {
	if artist := m.FirstArtist(); artist != "" {
		return fmt.Sprintf("%s - %s with %d listeners", artist, m.Title, m.Listeners)
	}
	return fmt.Sprintf("%s with %d listeners", m.Title, m.Listeners)
}

// SongUpdate is emitted once per detected track change
type SongUpdate struct {
	Track TrackMetadata
	Cover []byte // nil when there is no art or it could not be fetched
}
