// ABOUTME: MP3 frame decoder for the live stream
// ABOUTME: Wraps go-mp3 and separates transport failures from corrupt frames
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/go-mp3"
)

// samplesPerFrame is the MPEG-1 Layer III frame length per channel
const samplesPerFrame = 1152

var (
	// ErrTransport means the underlying connection failed or ended
	ErrTransport = errors.New("stream transport failed")
	// ErrCorruptFrame means a single frame could not be decoded
	ErrCorruptFrame = errors.New("corrupt frame")
)

// FrameDecoder pulls one compressed frame at a time and returns its PCM
type FrameDecoder interface {
	// NextFrame decodes the next frame into interleaved samples
	NextFrame() ([]int16, error)

	// SampleRate reports the decoded sample rate
	SampleRate() int
}

// DecoderFactory builds a FrameDecoder over a byte stream
type DecoderFactory func(r io.Reader) (FrameDecoder, error)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct {
	src     *trackingReader
	decoder *mp3.Decoder
	buf     []byte
}

// NewMP3Decoder creates a decoder reading from r. go-mp3 scans for the
// first frame header, so a stream joined mid-frame is fine.
func NewMP3Decoder(r io.Reader) (_ FrameDecoder, err error) {
	src := &trackingReader{r: r}

	// go-mp3 indexes past its tables on some malformed frames
	defer func() {
		if rec := recover(); rec != nil {
			err = src.classify(fmt.Errorf("decoder panic: %v", rec))
		}
	}()

	dec, err := mp3.NewDecoder(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", src.classify(err))
	}

	return &MP3Decoder{
		src:     src,
		decoder: dec,
		buf:     make([]byte, samplesPerFrame*StreamFormat.Channels*2),
	}, nil
}

// NextFrame converts the next MP3 frame to int16 samples. A frame that
// makes go-mp3 panic is reported as ErrCorruptFrame.
func (d *MP3Decoder) NextFrame() (samples []int16, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			samples, err = nil, d.src.classify(fmt.Errorf("decoder panic: %v", rec))
		}
	}()

	n, err := io.ReadFull(d.decoder, d.buf)
	if err != nil {
		return nil, d.src.classify(err)
	}

	samples = make([]int16, n/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(d.buf[i*2:]))
	}
	return samples, nil
}

// SampleRate returns the rate found in the first frame header
func (d *MP3Decoder) SampleRate() int {
	return d.decoder.SampleRate()
}

// trackingReader remembers the first error from the transport so decode
// failures can be attributed to the network or to the data
type trackingReader struct {
	r   io.Reader
	mu  sync.Mutex
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil {
		t.mu.Lock()
		if t.err == nil {
			t.err = err
		}
		t.mu.Unlock()
	}
	return n, err
}

func (t *trackingReader) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// classify blames the transport when it has failed, otherwise the frame
func (t *trackingReader) classify(err error) error {
	if srcErr := t.Err(); srcErr != nil {
		return fmt.Errorf("%w: %v", ErrTransport, srcErr)
	}
	return fmt.Errorf("%w: %v", ErrCorruptFrame, err)
}
