// ABOUTME: Streaming linear resampler for decoded PCM
// ABOUTME: Converts the broadcast sample rate to the output rate across frame boundaries
package audio

// Resampler performs linear interpolation between sample rates. It carries
// the last input frame between calls so consecutive batches join without
// a gap.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64 // read head, in input frames relative to last
	last       []int16 // final frame of the previous batch
	primed     bool
}

// NewResampler creates a resampler for interleaved samples
func NewResampler(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		last:       make([]int16, channels),
	}
}

// Passthrough reports whether the rates match and input is returned as is
func (r *Resampler) Passthrough() bool {
	return r.inputRate == r.outputRate
}

// Resample converts one batch of interleaved samples
func (r *Resampler) Resample(input []int16) []int16 {
	if r.Passthrough() || len(input) < r.channels {
		return input
	}

	inputFrames := len(input) / r.channels
	frames := inputFrames
	if r.primed {
		frames++
	}

	sample := func(frame, ch int) int16 {
		if r.primed {
			if frame == 0 {
				return r.last[ch]
			}
			frame--
		}
		return input[frame*r.channels+ch]
	}

	output := make([]int16, 0, (int(float64(frames)/r.ratio)+2)*r.channels)
	for {
		idx := int(r.position)
		if idx+1 >= frames {
			break
		}

		// Linear interpolation factor
		frac := r.position - float64(idx)
		for ch := 0; ch < r.channels; ch++ {
			s1 := float64(sample(idx, ch))
			s2 := float64(sample(idx+1, ch))
			output = append(output, int16(s1*(1.0-frac)+s2*frac))
		}

		r.position += r.ratio
	}

	// Rebase the read head onto the frame carried into the next batch
	r.position -= float64(frames - 1)
	copy(r.last, input[(inputFrames-1)*r.channels:inputFrames*r.channels])
	r.primed = true

	return output
}

// Reset forgets carried state
func (r *Resampler) Reset() {
	r.position = 0
	r.primed = false
	clear(r.last)
}
