package core

// EnsureLen returns buf resliced to n, allocating only when its capacity is
// too small. The contents are not cleared.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]float64, n)
}

// Downmix averages up to len(dst) frames of interleaved src into mono dst
// and returns the frames written. channels below 1 write nothing.
func Downmix(dst []float64, src []float32, channels int) int {
	if channels < 1 {
		return 0
	}

	n := min(len(dst), len(src)/channels)
	scale := 1 / float64(channels)

	for i := range n {
		sum := 0.0
		for _, s := range src[i*channels : (i+1)*channels] {
			sum += float64(s)
		}

		dst[i] = sum * scale
	}

	return n
}
