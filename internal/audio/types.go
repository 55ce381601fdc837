// ABOUTME: Audio type definitions
// ABOUTME: Defines the stream format and decoded sample batches
package audio

import "math"

// DefaultAttenuation is the fixed gain applied to every decoded sample.
// Chosen by ear against the station's mastering level.
const DefaultAttenuation = 0.07

// Format describes audio stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// StreamFormat is what the MP3 decoder produces: interleaved 16-bit stereo
var StreamFormat = Format{
	SampleRate: 44100,
	Channels:   2,
	BitDepth:   16,
}

// SampleBatch is one decoded, attenuated frame of interleaved PCM
type SampleBatch []int16

// Bytes returns the size of the batch as signed 16-bit little-endian PCM
func (b SampleBatch) Bytes() int {
	return len(b) * 2
}

// Attenuate scales every sample by factor, truncating toward zero and
// saturating at the int16 range. The input slice is left untouched.
func Attenuate(samples []int16, factor float64) SampleBatch {
	f := float32(factor)
	out := make(SampleBatch, len(samples))
	for i, s := range samples {
		v := float32(s) * f
		switch {
		case v > math.MaxInt16:
			out[i] = math.MaxInt16
		case v < math.MinInt16:
			out[i] = math.MinInt16
		default:
			out[i] = int16(v)
		}
	}
	return out
}
