// ABOUTME: Fixed-cadence consumer that drains the sample and song queues
// ABOUTME: Feeds the audio sink and keeps the now-playing snapshot for rendering
package player

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/harperreed/radiohyrule-go/internal/audio"
	"github.com/harperreed/radiohyrule-go/internal/metadata"
	"github.com/harperreed/radiohyrule-go/internal/queue"
	internalsync "github.com/harperreed/radiohyrule-go/internal/sync"
)

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	// Interval is the drain cadence, 10ms by default
	Interval time.Duration

	// Volume is the initial sink volume (0-100)
	Volume int

	// OnSong is called from the consumer goroutine for every song update
	OnSong func(metadata.SongUpdate)

	// Now defaults to time.Now
	Now func() time.Time
}

// ConsumerStats tracks consumer metrics
type ConsumerStats struct {
	Batches int64
	Dropped int64
	Songs   int64
	Errors  int64
}

// Snapshot is everything a renderer needs for one frame
type Snapshot struct {
	Track       metadata.TrackMetadata
	HasTrack    bool
	Cover       []byte
	Progress    float64
	HasProgress bool
	Playing     bool
	Buffered    int
	Volume      int
	Muted       bool
	AudioEnded  bool
}

// Consumer is the only reader of both queues
type Consumer struct {
	config  ConsumerConfig
	state   *internalsync.State
	samples queue.Receiver[audio.SampleBatch]
	songs   queue.Receiver[metadata.SongUpdate]
	sink    Sink

	// outMu orders sink writes against pause, so a batch that passed the
	// playing check cannot land after the sink was cleared
	outMu sync.Mutex

	mu         sync.Mutex
	track      *metadata.TrackMetadata
	cover      []byte
	volume     int
	muted      bool
	audioEnded bool
	stats      ConsumerStats
}

// NewConsumer creates a consumer feeding sink
func NewConsumer(config ConsumerConfig, state *internalsync.State, samples queue.Receiver[audio.SampleBatch], songs queue.Receiver[metadata.SongUpdate], sink Sink) *Consumer {
	if config.Interval == 0 {
		config.Interval = 10 * time.Millisecond
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	volume := clampVolume(config.Volume)
	sink.SetVolume(volume)

	return &Consumer{
		config:  config,
		state:   state,
		samples: samples,
		songs:   songs,
		sink:    sink,
		volume:  volume,
	}
}

// Run drains both queues every interval until the song queue disconnects
// or ctx ends
func (c *Consumer) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !c.tick() {
				log.Printf("Metadata source disconnected, stopping consumer")
				return nil
			}
		}
	}
}

// tick performs one drain pass; it reports whether to keep running
func (c *Consumer) tick() bool {
	c.drainSamples()

	update, res := c.songs.TryRecv()
	switch res {
	case queue.Received:
		c.applySong(update)
	case queue.Disconnected:
		return false
	}
	return true
}

func (c *Consumer) drainSamples() {
	for {
		batch, res := c.samples.TryRecv()
		switch res {
		case queue.Empty:
			return
		case queue.Disconnected:
			c.mu.Lock()
			if !c.audioEnded {
				c.audioEnded = true
				log.Printf("Audio stream ended")
			}
			c.mu.Unlock()
			return
		}

		c.outMu.Lock()
		// Batches that were in flight when playback paused are discarded
		if !c.state.Flag.Playing() {
			c.outMu.Unlock()
			c.mu.Lock()
			c.stats.Dropped++
			c.mu.Unlock()
			continue
		}

		err := c.sink.Write(batch)
		c.outMu.Unlock()

		c.mu.Lock()
		if err != nil {
			c.stats.Errors++
			if c.stats.Errors <= 5 {
				log.Printf("Audio output error: %v", err)
			}
		} else {
			c.stats.Batches++
		}
		c.mu.Unlock()
	}
}

func (c *Consumer) applySong(update metadata.SongUpdate) {
	c.mu.Lock()
	track := update.Track
	c.track = &track
	c.cover = update.Cover
	c.stats.Songs++
	c.mu.Unlock()

	if c.config.OnSong != nil {
		c.config.OnSong(update)
	}
}

// TogglePause flips the shared playback flag. Pausing also stops and
// empties the device so resume starts from live audio.
func (c *Consumer) TogglePause() bool {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	playing := c.state.Flag.Toggle()
	if playing {
		c.sink.Resume()
		log.Printf("Playback resumed")
	} else {
		c.sink.Pause()
		c.sink.Clear()
		log.Printf("Playback paused")
	}
	return playing
}

// AdjustVolume changes the volume by delta and returns the new level
func (c *Consumer) AdjustVolume(delta int) int {
	c.mu.Lock()
	c.volume = clampVolume(c.volume + delta)
	volume := c.volume
	c.mu.Unlock()

	c.sink.SetVolume(volume)
	return volume
}

// ToggleMute flips mute and returns the new state
func (c *Consumer) ToggleMute() bool {
	c.mu.Lock()
	c.muted = !c.muted
	muted := c.muted
	c.mu.Unlock()

	c.sink.SetMuted(muted)
	return muted
}

// Snapshot returns the current display state
func (c *Consumer) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Cover:      c.cover,
		Volume:     c.volume,
		Muted:      c.muted,
		AudioEnded: c.audioEnded,
	}
	if c.track != nil {
		snap.Track = *c.track
		snap.HasTrack = true
	}
	c.mu.Unlock()

	snap.Playing = c.state.Flag.Playing()
	snap.Buffered = c.sink.Buffered() + c.samples.Len()*frameBytes
	if snap.HasTrack {
		snap.Progress, snap.HasProgress = Progress(snap.Track, c.state.Offset.Get(), c.config.Now())
	}
	return snap
}

// Stats returns consumer statistics
func (c *Consumer) Stats() ConsumerStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// frameBytes approximates one queued batch: a full MPEG-1 Layer III frame
// of 16-bit stereo
const frameBytes = 1152 * 2 * 2
