// ABOUTME: Tests for audio output
// ABOUTME: Tests volume control, PCM encoding, and the silence-padding reader
package player

import (
	"io"
	"testing"
)

func TestVolumeMultiplier(t *testing.T) {
	tests := []struct {
		volume   int
		muted    bool
		expected float64
	}{
		{100, false, 1.0},
		{50, false, 0.5},
		{0, false, 0.0},
		{80, true, 0.0}, // Muted overrides volume
	}

	for _, tt := range tests {
		result := getVolumeMultiplier(tt.volume, tt.muted)
		if result != tt.expected {
			t.Errorf("volume=%d, muted=%v: expected %f, got %f",
				tt.volume, tt.muted, tt.expected, result)
		}
	}
}

func TestApplyVolume(t *testing.T) {
	samples := []int16{1000, -1000, 500, -500}

	result := applyVolume(samples, 50, false)

	if result[0] != 500 {
		t.Errorf("expected 500, got %d", result[0])
	}
	if result[1] != -500 {
		t.Errorf("expected -500, got %d", result[1])
	}
	if samples[0] != 1000 {
		t.Error("expected input samples untouched")
	}

	muted := applyVolume(samples, 100, true)
	for i, s := range muted {
		if s != 0 {
			t.Errorf("sample %d: expected silence when muted, got %d", i, s)
		}
	}
}

func TestClampVolume(t *testing.T) {
	if clampVolume(-5) != 0 || clampVolume(150) != 100 || clampVolume(42) != 42 {
		t.Error("unexpected volume clamping")
	}
}

func TestEncodePCM(t *testing.T) {
	got := encodePCM([]int16{1, -1, 0x1234})
	expected := []byte{0x01, 0x00, 0xFF, 0xFF, 0x34, 0x12}

	if len(got) != len(expected) {
		t.Fatalf("expected %d bytes, got %d", len(expected), len(got))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("byte %d: expected %#x, got %#x", i, expected[i], got[i])
		}
	}
}

func TestPCMBufferPadsWithSilence(t *testing.T) {
	b := newPCMBuffer()
	b.Write([]byte{1, 2, 3})

	p := []byte{9, 9, 9, 9, 9, 9}
	n, err := b.Read(p)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if n != len(p) {
		t.Errorf("expected full read of %d, got %d", len(p), n)
	}

	expected := []byte{1, 2, 3, 0, 0, 0}
	for i := range expected {
		if p[i] != expected[i] {
			t.Errorf("byte %d: expected %d, got %d", i, expected[i], p[i])
		}
	}
	if b.Len() != 0 {
		t.Errorf("expected empty buffer, got %d", b.Len())
	}
}

func TestPCMBufferPartialRead(t *testing.T) {
	b := newPCMBuffer()
	b.Write([]byte{1, 2, 3, 4, 5})

	p := make([]byte, 2)
	b.Read(p)
	if p[0] != 1 || p[1] != 2 {
		t.Errorf("unexpected first read %v", p)
	}
	if b.Len() != 3 {
		t.Errorf("expected 3 bytes left, got %d", b.Len())
	}

	b.Write([]byte{6})
	rest := make([]byte, 4)
	b.Read(rest)
	if rest[0] != 3 || rest[3] != 6 {
		t.Errorf("expected FIFO order, got %v", rest)
	}
}

func TestPCMBufferClearAndClose(t *testing.T) {
	b := newPCMBuffer()
	b.Write(make([]byte, 100))
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("expected cleared buffer, got %d", b.Len())
	}

	b.Close()
	b.Write([]byte{1})
	if b.Len() != 0 {
		t.Error("expected writes after close to be ignored")
	}
	if _, err := b.Read(make([]byte, 4)); err != io.EOF {
		t.Errorf("expected EOF after close, got %v", err)
	}
}

// fakeDevice stands in for the oto player and its internal buffer
type fakeDevice struct {
	playing  bool
	buffered int
	seeks    int
}

func (d *fakeDevice) Play() { d.playing = true }
func (d *fakeDevice) Pause() { d.playing = false }
func (d *fakeDevice) Seek(offset int64, whence int) (int64, error) {
	d.seeks++
	d.buffered = 0
	return 0, nil
}
func (d *fakeDevice) BufferedSize() int { return d.buffered }
func (d *fakeDevice) Close() error { return nil }

func TestOtoSinkClearFlushesDeviceBuffer(t *testing.T) {
	device := &fakeDevice{playing: true}
	s := &OtoSink{player: device, pcm: newPCMBuffer(), volume: 100}

	if err := s.Write(make([]int16, 100)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	device.buffered = 88200

	s.Pause()
	s.Clear()

	if device.seeks != 1 {
		t.Errorf("expected Clear to seek the player once, got %d", device.seeks)
	}
	if s.Buffered() != 0 {
		t.Errorf("expected nothing buffered after clear, got %d", s.Buffered())
	}

	s.Resume()
	if !device.playing {
		t.Error("expected player to resume")
	}
}

func TestPCMBufferIsSeekable(t *testing.T) {
	var src io.Reader = newPCMBuffer()
	seeker, ok := src.(io.Seeker)
	if !ok {
		t.Fatal("expected pcm buffer to implement io.Seeker")
	}
	if pos, err := seeker.Seek(0, io.SeekCurrent); err != nil || pos != 0 {
		t.Errorf("expected (0, nil), got (%d, %v)", pos, err)
	}
}
