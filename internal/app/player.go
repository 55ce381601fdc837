// ABOUTME: Main player application orchestration
// ABOUTME: Wires the stream loop, metadata poller, and consumer around shared state
package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/harperreed/radiohyrule-go/internal/artwork"
	"github.com/harperreed/radiohyrule-go/internal/audio"
	"github.com/harperreed/radiohyrule-go/internal/config"
	"github.com/harperreed/radiohyrule-go/internal/metadata"
	"github.com/harperreed/radiohyrule-go/internal/player"
	"github.com/harperreed/radiohyrule-go/internal/queue"
	"github.com/harperreed/radiohyrule-go/internal/stream"
	internalsync "github.com/harperreed/radiohyrule-go/internal/sync"
	"github.com/harperreed/radiohyrule-go/internal/version"
)

// Options overrides components, mostly for tests
type Options struct {
	// Sink defaults to an OtoSink opened on Start
	Sink player.Sink

	// NewDecoder defaults to the MP3 decoder
	NewDecoder audio.DecoderFactory

	// OnSong is called for every track change the consumer applies
	OnSong func(metadata.SongUpdate)
}

// Player represents the main player application
type Player struct {
	config  *config.Config
	options Options

	state   *internalsync.State
	samples *queue.Queue[audio.SampleBatch]
	songs   *queue.Queue[metadata.SongUpdate]

	meta     *metadata.Client
	loop     *stream.Loop
	poller   *metadata.Poller
	consumer *player.Consumer
	sink     player.Sink

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}

	stopOnce sync.Once
}

// New creates a player from validated configuration
func New(cfg *config.Config, options Options) *Player {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Player{
		config:  cfg,
		options: options,
		state:   internalsync.NewState(),
		samples: queue.New[audio.SampleBatch](),
		songs:   queue.New[metadata.SongUpdate](),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	p.meta = metadata.NewClient(metadata.ClientConfig{
		URL:       cfg.Metadata.URL,
		Timeout:   cfg.MetadataTimeout(),
		UserAgent: version.UserAgent(),
	})

	p.loop = stream.NewLoop(stream.Config{
		Addr:           cfg.StreamAddr(),
		Path:           cfg.Stream.Path,
		UserAgent:      version.UserAgent(),
		SuccessStatus:  cfg.Stream.SuccessStatus,
		ConnectTimeout: cfg.ConnectTimeout(),
		Attenuation:    cfg.Audio.Attenuation,
		OutputRate:     cfg.Audio.SampleRate,
		NewDecoder:     options.NewDecoder,
	}, p.state, p.samples)

	var art metadata.ArtFetcher
	if cfg.Metadata.ArtBaseURL != "" {
		art = artwork.NewDownloader(cfg.Metadata.ArtBaseURL, version.UserAgent(), cfg.MetadataTimeout())
	}
	p.poller = metadata.NewPoller(metadata.PollerConfig{
		Interval: cfg.PollInterval(),
	}, p.meta, art, p.state, p.songs)

	return p
}

// Start opens the output device and launches the background loops
func (p *Player) Start() error {
	sink := p.options.Sink
	if sink == nil {
		format := audio.Format{
			SampleRate: p.config.Audio.SampleRate,
			Channels:   p.config.Audio.Channels,
			BitDepth:   16,
		}
		s, err := player.NewOtoSink(format, p.config.Audio.Volume)
		if err != nil {
			return fmt.Errorf("failed to initialize output: %w", err)
		}
		sink = s
	}
	p.sink = sink

	p.consumer = player.NewConsumer(player.ConsumerConfig{
		Volume: p.config.Audio.Volume,
		OnSong: p.options.OnSong,
	}, p.state, p.samples, p.songs, p.sink)

	log.Printf("Starting %s %s (session %s)", version.Product, version.Version, p.meta.SessionID())

	p.wg.Add(3)
	go func() {
		defer p.wg.Done()
		if err := p.loop.Run(p.ctx); err != nil {
			log.Printf("Stream loop stopped: %v", err)
			return
		}
		log.Printf("Stream loop finished")
	}()

	go func() {
		defer p.wg.Done()
		if err := p.poller.Run(p.ctx); err != nil {
			log.Printf("Metadata poller stopped: %v", err)
			return
		}
		log.Printf("Metadata poller finished")
	}()

	go func() {
		defer p.wg.Done()
		defer close(p.done)
		if err := p.consumer.Run(p.ctx); err != nil {
			log.Printf("Consumer stopped: %v", err)
		}
	}()

	return nil
}

// Consumer returns the playback controller for the UI. Valid after Start.
func (p *Player) Consumer() *player.Consumer {
	return p.consumer
}

// State returns the shared playback state
func (p *Player) State() *internalsync.State {
	return p.state
}

// StreamState returns the stream loop stage
func (p *Player) StreamState() stream.State {
	return p.loop.State()
}

// Done is closed when the consumer exits, which happens when the metadata
// source goes away
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Stop drops both receivers so the producers stop on their next send,
// cancels blocking I/O, and releases the output device
func (p *Player) Stop() {
	p.stopOnce.Do(func() {
		p.samples.Close()
		p.songs.Close()
		p.cancel()
		p.wg.Wait()

		if p.sink != nil {
			if err := p.sink.Close(); err != nil {
				log.Printf("Error closing output: %v", err)
			}
		}

		stats := p.loop.Stats()
		log.Printf("Stream stats: decoded=%d emitted=%d paused=%d corrupt=%d",
			stats.Decoded, stats.Emitted, stats.Paused, stats.Corrupt)
	})
}
