package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/pkg/errors"
)

// Spectrum returns the single-sided amplitude spectrum of a series
// sampled every dt seconds, with the frequency in Hz of each bin.
func Spectrum(data []float64, dt float64) (freqs, amps []float64, err error) {
	n := len(data)
	if n < 2 {
		return nil, nil, errors.Errorf("spectrum needs at least 2 samples, got %d", n)
	}
	if dt <= 0 {
		return nil, nil, errors.Errorf("sample interval must be positive, got %v", dt)
	}

	coeffs := fft.FFTReal(data)
	bins := n/2 + 1
	freqs = make([]float64, bins)
	amps = make([]float64, bins)
	for k := 0; k < bins; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		a := cmplx.Abs(coeffs[k]) / float64(n)
		if k != 0 && !(n%2 == 0 && k == n/2) {
			a *= 2
		}
		amps[k] = a
	}
	return freqs, amps, nil
}

// DominantFrequency is the non-DC bin with the largest amplitude.
func DominantFrequency(freqs, amps []float64) (freq, amp float64) {
	for k := 1; k < len(amps) && k < len(freqs); k++ {
		if amps[k] > amp {
			freq, amp = freqs[k], amps[k]
		}
	}
	return freq, amp
}
