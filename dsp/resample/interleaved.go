package resample

import "math"

// Interleaved converts interleaved float32 audio from inRate to outRate,
// channel by channel. The filter group delay is compensated so the output is
// time-aligned with the input and holds round(frames*outRate/inRate) frames.
// Equal rates return src unchanged.
func Interleaved(src []float32, channels int, inRate, outRate float64, opts ...Option) ([]float32, error) {
	if channels <= 0 {
		return nil, ErrInvalidRatio
	}

	if !validRate(inRate) || !validRate(outRate) {
		return nil, ErrInvalidRate
	}

	if inRate == outRate || len(src) == 0 {
		return src, nil
	}

	frames := len(src) / channels

	var out []float32

	for ch := range channels {
		r, err := NewForRates(inRate, outRate, opts...)
		if err != nil {
			return nil, err
		}

		up, down := r.Ratio()
		want := int(math.Round(float64(frames) * float64(up) / float64(down)))
		skip := int(math.Round(r.Latency()))
		pad := int(math.Ceil(r.center/float64(up))) + 2

		mono := make([]float64, frames+pad)
		for i := range frames {
			mono[i] = float64(src[i*channels+ch])
		}

		converted := r.Process(mono)

		if out == nil {
			out = make([]float32, want*channels)
		}

		for i := range want {
			j := i + skip
			if j >= len(converted) {
				break
			}

			out[i*channels+ch] = float32(converted[j])
		}
	}

	return out, nil
}
