// ABOUTME: Decode/stream loop for the live MP3 broadcast
// ABOUTME: Connects over TCP, validates the status line, decodes and emits sample batches
package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/harperreed/radiohyrule-go/internal/audio"
	"github.com/harperreed/radiohyrule-go/internal/queue"
	"github.com/harperreed/radiohyrule-go/internal/sync"
)

// maxHeaderBytes bounds the response header scan
const maxHeaderBytes = 16 * 1024

// ErrStreamNotFound means the server answered with anything but the success line
var ErrStreamNotFound = errors.New("stream not found")

// State is a stage of the stream loop
type State int32

const (
	StateConnecting State = iota
	StateHeaderWait
	StateStreaming
	StateTerminated
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateHeaderWait:
		return "HEADER_WAIT"
	case StateStreaming:
		return "STREAMING"
	case StateTerminated:
		return "TERMINATED"
	case StateErrored:
		return "ERRORED"
	default:
		return "UNKNOWN"
	}
}

// Config holds stream loop configuration
type Config struct {
	Addr           string // host:port
	Path           string
	UserAgent      string
	SuccessStatus  string
	ConnectTimeout time.Duration
	Attenuation    float64

	// OutputRate is the device rate; other broadcast rates are resampled
	OutputRate int

	// NewDecoder defaults to audio.NewMP3Decoder
	NewDecoder audio.DecoderFactory
}

// Stats counts frames seen by the loop
type Stats struct {
	Decoded int64
	Emitted int64
	Paused  int64
	Corrupt int64
}

// Loop owns the transport connection and the decoder
type Loop struct {
	config Config
	state  *sync.State
	out    queue.Sender[audio.SampleBatch]
	dialer *net.Dialer

	current atomic.Int32
	decoded atomic.Int64
	emitted atomic.Int64
	paused  atomic.Int64
	corrupt atomic.Int64

	headers atomic.Pointer[map[string]string]
}

// NewLoop creates a stream loop that emits batches onto out
func NewLoop(config Config, state *sync.State, out queue.Sender[audio.SampleBatch]) *Loop {
	if config.Path == "" {
		config.Path = "/"
	}
	if config.SuccessStatus == "" {
		config.SuccessStatus = "HTTP/1.0 200 OK"
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.Attenuation == 0 {
		config.Attenuation = audio.DefaultAttenuation
	}
	if config.OutputRate == 0 {
		config.OutputRate = audio.StreamFormat.SampleRate
	}
	if config.NewDecoder == nil {
		config.NewDecoder = audio.NewMP3Decoder
	}

	return &Loop{
		config: config,
		state:  state,
		out:    out,
		dialer: &net.Dialer{Timeout: config.ConnectTimeout},
	}
}

// State returns the current stage
func (l *Loop) State() State {
	return State(l.current.Load())
}

// Stats returns frame counters
func (l *Loop) Stats() Stats {
	return Stats{
		Decoded: l.decoded.Load(),
		Emitted: l.emitted.Load(),
		Paused:  l.paused.Load(),
		Corrupt: l.corrupt.Load(),
	}
}

// Headers returns the response headers seen during HeaderWait
func (l *Loop) Headers() map[string]string {
	if h := l.headers.Load(); h != nil {
		return *h
	}
	return nil
}

func (l *Loop) setState(s State) {
	prev := State(l.current.Swap(int32(s)))
	if prev != s {
		log.Printf("Stream state: %s -> %s", prev, s)
	}
}

// Run drives the loop until the receiver goes away, the context is
// cancelled, or a fatal error occurs. A nil return means clean termination.
func (l *Loop) Run(ctx context.Context) error {
	defer l.out.CloseSend()

	err := l.run(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		l.setState(StateTerminated)
		return nil
	case err != nil:
		l.setState(StateErrored)
		return err
	default:
		l.setState(StateTerminated)
		return nil
	}
}

func (l *Loop) run(ctx context.Context) error {
	l.setState(StateConnecting)
	conn, err := l.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock reads when the context ends
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	reader := bufio.NewReader(conn)

	l.setState(StateHeaderWait)
	if err := l.readHeader(reader); err != nil {
		return err
	}

	l.setState(StateStreaming)
	return l.stream(reader)
}

// connect dials the stream host and sends the request
func (l *Loop) connect(ctx context.Context) (net.Conn, error) {
	log.Printf("Connecting to stream %s%s", l.config.Addr, l.config.Path)

	conn, err := l.dialer.DialContext(ctx, "tcp", l.config.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	var req bytes.Buffer
	fmt.Fprintf(&req, "GET %s HTTP/1.1\r\n", l.config.Path)
	if l.config.UserAgent != "" {
		fmt.Fprintf(&req, "User-Agent: %s\r\n", l.config.UserAgent)
	}
	req.WriteString("\r\n")

	if _, err := conn.Write(req.Bytes()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return conn, nil
}

// readHeader scans one byte at a time until the blank line, then checks
// the status line
func (l *Loop) readHeader(r *bufio.Reader) error {
	var buf []byte
	for !bytes.HasSuffix(buf, []byte("\r\n\r\n")) {
		if len(buf) >= maxHeaderBytes {
			return fmt.Errorf("%w: header exceeds %d bytes", ErrStreamNotFound, maxHeaderBytes)
		}
		b, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("failed to read header: %w", err)
		}
		buf = append(buf, b)
	}

	status, rest, _ := strings.Cut(string(buf), "\r\n")
	if !l.statusOK(status) {
		return fmt.Errorf("%w: %q", ErrStreamNotFound, status)
	}

	headers := parseHeaders(rest)
	l.headers.Store(&headers)
	log.Printf("Stream accepted: %s (name=%q, type=%q)",
		status, headers["icy-name"], headers["content-type"])

	return nil
}

func (l *Loop) statusOK(status string) bool {
	if status == l.config.SuccessStatus {
		return true
	}
	// Shoutcast servers answer with their own protocol tag
	return status == "ICY 200 OK"
}

// parseHeaders splits "Key: value" lines, lower-casing keys
func parseHeaders(block string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(block, "\r\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return headers
}

// stream decodes frames and emits them while playback is enabled.
// Decoding never stops while paused: the source is live and cannot be
// rewound, so paused frames are decoded and dropped.
func (l *Loop) stream(r io.Reader) error {
	decoder, err := l.config.NewDecoder(r)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	log.Printf("Decoder ready: %dHz", decoder.SampleRate())

	resampler := audio.NewResampler(decoder.SampleRate(), l.config.OutputRate, audio.StreamFormat.Channels)
	if !resampler.Passthrough() {
		log.Printf("Resampling %dHz -> %dHz", decoder.SampleRate(), l.config.OutputRate)
	}

	for {
		pcm, err := decoder.NextFrame()
		if err != nil {
			if errors.Is(err, audio.ErrCorruptFrame) {
				if l.corrupt.Add(1) <= 5 {
					log.Printf("Skipping frame: %v", err)
				}
				continue
			}
			return fmt.Errorf("stream read failed: %w", err)
		}
		l.decoded.Add(1)

		pcm = resampler.Resample(pcm)
		if len(pcm) == 0 {
			continue
		}
		batch := audio.Attenuate(pcm, l.config.Attenuation)

		if !l.state.Flag.Playing() {
			l.paused.Add(1)
			continue
		}

		if l.out.Send(batch) == queue.ReceiverGone {
			log.Printf("Sample receiver gone, stopping stream loop")
			return nil
		}
		l.emitted.Add(1)
	}
}
