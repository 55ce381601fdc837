// ABOUTME: Audio output using oto library
// ABOUTME: Streams queued PCM to the device with software volume control
package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/harperreed/radiohyrule-go/internal/audio"
)

// Sink is an audio device that accepts interleaved 16-bit samples
type Sink interface {
	Write(samples []int16) error
	Pause()
	Resume()
	Clear()
	Buffered() int
	SetVolume(volume int)
	SetMuted(muted bool)
	Close() error
}

// devicePlayer is the part of *oto.Player the sink drives
type devicePlayer interface {
	Play()
	Pause()
	Seek(offset int64, whence int) (int64, error)
	BufferedSize() int
	Close() error
}

// OtoSink plays samples through a single long-lived oto player
type OtoSink struct {
	mu     sync.Mutex
	otoCtx *oto.Context
	player devicePlayer
	pcm    *pcmBuffer
	format audio.Format
	volume int
	muted  bool
	closed bool
}

// NewOtoSink opens the audio device for format. oto allows one context per
// process, so only one sink may exist.
func NewOtoSink(format audio.Format, volume int) (*OtoSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	s := &OtoSink{
		otoCtx: ctx,
		pcm:    newPCMBuffer(),
		format: format,
		volume: clampVolume(volume),
	}
	s.player = ctx.NewPlayer(s.pcm)
	s.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels",
		format.SampleRate, format.Channels)

	return s, nil
}

// Write queues samples for playback
func (s *OtoSink) Write(samples []int16) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("output closed")
	}
	volume, muted := s.volume, s.muted
	s.mu.Unlock()

	s.pcm.Write(encodePCM(applyVolume(samples, volume, muted)))
	return nil
}

// Pause stops the device from pulling audio
func (s *OtoSink) Pause() {
	s.player.Pause()
}

// Resume restarts device playback
func (s *OtoSink) Resume() {
	s.player.Play()
}

// Clear drops everything queued, including the audio oto has already
// pulled into its own buffer. Seeking resets that buffer.
func (s *OtoSink) Clear() {
	s.pcm.Clear()
	if _, err := s.player.Seek(0, io.SeekCurrent); err != nil {
		log.Printf("Failed to flush device buffer: %v", err)
	}
}

// Buffered returns queued bytes, including what the device already holds
func (s *OtoSink) Buffered() int {
	return s.pcm.Len() + s.player.BufferedSize()
}

// SetVolume sets the volume (0-100)
func (s *OtoSink) SetVolume(volume int) {
	volume = clampVolume(volume)
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (s *OtoSink) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
	log.Printf("Muted: %v", muted)
}

// Close stops playback and suspends the device
func (s *OtoSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.pcm.Close()
	err := s.player.Close()
	if s.otoCtx != nil {
		if suspendErr := s.otoCtx.Suspend(); err == nil {
			err = suspendErr
		}
	}
	return err
}

// pcmBuffer is the reader oto pulls from. It returns silence when nothing
// is queued so the device never reaches EOF while the stream is live.
type pcmBuffer struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

func newPCMBuffer() *pcmBuffer {
	return &pcmBuffer{}
}

func (b *pcmBuffer) Write(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.data = append(b.data, p...)
}

func (b *pcmBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, io.EOF
	}

	n := copy(p, b.data)
	b.data = b.data[n:]
	if len(b.data) == 0 {
		b.data = nil
	}
	clear(p[n:])
	return len(p), nil
}

func (b *pcmBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Seek lets oto reset its buffer. The stream has no position, so the
// offset is ignored.
func (b *pcmBuffer) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}

func (b *pcmBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
}

func (b *pcmBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.data = nil
}

// encodePCM converts samples to signed 16-bit little-endian bytes
func encodePCM(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(sample))
	}
	return out
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}

// applyVolume applies volume and mute to samples
func applyVolume(samples []int16, volume int, muted bool) []int16 {
	multiplier := getVolumeMultiplier(volume, muted)

	result := make([]int16, len(samples))
	for i, sample := range samples {
		result[i] = int16(float64(sample) * multiplier)
	}

	return result
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
