package dsp

import "math"

// SpectrumMagnitudes returns |FFT(xs)| after zero-padding xs to the
// next power of two. The result covers the full padded spectrum
// including mirrored bins; callers wanting physical frequencies use
// the first half and map bin i to i*rate/len(result).
func SpectrumMagnitudes(xs []float64) []float64 {
	n := nextPow2(len(xs))
	re := make([]float64, n)
	im := make([]float64, n)
	copy(re, xs)
	fft(re, im)
	mags := make([]float64, n)
	for i := range mags {
		mags[i] = math.Hypot(re[i], im[i])
	}
	return mags
}

// DFTMagnitudes returns |DFT(xs)| at the input's natural length by
// direct evaluation, so bin indices map one-to-one onto positions in
// xs with no padding. Cost is O(n^2); intended for short sequences
// such as embedding vectors.
func DFTMagnitudes(xs []float64) []float64 {
	n := len(xs)
	mags := make([]float64, n)
	for k := 0; k < n; k++ {
		var re, im float64
		step := -2 * math.Pi * float64(k) / float64(n)
		for t, x := range xs {
			angle := step * float64(t)
			re += x * math.Cos(angle)
			im += x * math.Sin(angle)
		}
		mags[k] = math.Hypot(re, im)
	}
	return mags
}

// fft runs an in-place iterative radix-2 decimation-in-time transform
// with the e^{-2πi kn/N} sign convention. len(re) and len(im) must be
// an equal power of two.
func fft(re, im []float64) {
	n := len(re)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		step := -2 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				angle := step * float64(k)
				wr, wi := math.Cos(angle), math.Sin(angle)
				i := start + k
				j := i + half
				tr := wr*re[j] - wi*im[j]
				ti := wr*im[j] + wi*re[j]
				re[j] = re[i] - tr
				im[j] = im[i] - ti
				re[i] += tr
				im[i] += ti
			}
		}
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
