// ABOUTME: Metadata polling loop with track-change detection
// ABOUTME: Estimates the clock offset once, then re-polls around each song's end
package metadata

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/harperreed/radiohyrule-go/internal/queue"
	internalsync "github.com/harperreed/radiohyrule-go/internal/sync"
)

// Phase is a stage of the poller
type Phase int32

const (
	PhaseInit Phase = iota
	PhasePolling
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhasePolling:
		return "POLLING"
	case PhaseTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Fetcher retrieves one metadata snapshot
type Fetcher interface {
	Fetch(ctx context.Context, cacheBust bool) (TrackMetadata, http.Header, error)
}

// ArtFetcher retrieves cover art bytes by reference name
type ArtFetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// PollerConfig holds poller configuration
type PollerConfig struct {
	// Interval is the fixed sleep between due-checks
	Interval time.Duration

	// Now defaults to time.Now
	Now func() time.Time
}

// Poller owns the metadata client and the previous-title bookkeeping
type Poller struct {
	config PollerConfig
	meta   Fetcher
	art    ArtFetcher
	state  *internalsync.State
	out    queue.Sender[SongUpdate]

	phase    atomic.Int32
	fetches  atomic.Int64
	previous TrackMetadata
	// dueAt is the local second after which the current song should
	// have ended; zero means re-check on every tick
	dueAt int64
}

// NewPoller creates a poller that emits song updates onto out
func NewPoller(config PollerConfig, meta Fetcher, art ArtFetcher, state *internalsync.State, out queue.Sender[SongUpdate]) *Poller {
	if config.Interval == 0 {
		config.Interval = 3 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Poller{
		config: config,
		meta:   meta,
		art:    art,
		state:  state,
		out:    out,
	}
}

// Phase returns the current stage
func (p *Poller) Phase() Phase {
	return Phase(p.phase.Load())
}

// Fetches returns how many metadata requests have been made
func (p *Poller) Fetches() int64 {
	return p.fetches.Load()
}

// Run performs the startup fetch and then polls until the receiver goes
// away or the context ends (nil), or a fetch fails (the error).
func (p *Poller) Run(ctx context.Context) error {
	defer p.out.CloseSend()
	defer p.phase.Store(int32(PhaseTerminated))

	p.phase.Store(int32(PhaseInit))
	gone, err := p.init(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if gone {
		return nil
	}

	p.phase.Store(int32(PhasePolling))
	for {
		gone, err := p.tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if gone {
			return nil
		}

		if !sleep(ctx, p.config.Interval) {
			return nil
		}
	}
}

// init fetches the first snapshot, records the clock offset and emits
// unconditionally
func (p *Poller) init(ctx context.Context) (bool, error) {
	local := p.config.Now()
	p.fetches.Add(1)
	meta, header, err := p.meta.Fetch(ctx, false)
	if err != nil {
		return false, fmt.Errorf("initial metadata fetch: %w", err)
	}

	offset, err := internalsync.OffsetFromHeader(local, header)
	if err != nil {
		return false, fmt.Errorf("initial metadata fetch: %w", err)
	}
	p.state.Offset.Set(offset)
	log.Printf("Clock offset: %ds (local - server)", offset)

	p.previous = meta
	p.dueAt = p.nextCheck(meta)

	return p.emit(ctx, meta), nil
}

// tick re-fetches once the current song should have ended
func (p *Poller) tick(ctx context.Context) (bool, error) {
	if p.config.Now().Unix() <= p.dueAt {
		return false, nil
	}

	p.fetches.Add(1)
	meta, _, err := p.meta.Fetch(ctx, true)
	if err != nil {
		return false, fmt.Errorf("metadata poll: %w", err)
	}

	changed := !meta.SameTrack(p.previous)
	p.previous = meta
	if !changed {
		// Same song still reported; keep polling every tick until it changes
		return false, nil
	}

	p.dueAt = p.nextCheck(meta)
	return p.emit(ctx, meta), nil
}

// emit fetches art and sends the update; it reports whether the receiver
// is gone
func (p *Poller) emit(ctx context.Context, meta TrackMetadata) bool {
	log.Printf("Now playing: %s", meta.Info())

	update := SongUpdate{Track: meta}
	if name := meta.CoverName(); name != "" && p.art != nil {
		cover, err := p.art.Fetch(ctx, name)
		if err != nil {
			log.Printf("Artwork unavailable for %q: %v", meta.Title, err)
		} else {
			update.Cover = cover
		}
	}

	if p.out.Send(update) == queue.ReceiverGone {
		log.Printf("Song receiver gone, stopping metadata poller")
		return true
	}
	return false
}

// nextCheck returns started + duration - offset, or zero when the
// duration is unknown
func (p *Poller) nextCheck(meta TrackMetadata) int64 {
	if meta.Duration == nil {
		return 0
	}
	return meta.Started + int64(*meta.Duration) - p.state.Offset.Get()
}

// sleep waits d or until ctx ends; it reports whether the full wait elapsed
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
