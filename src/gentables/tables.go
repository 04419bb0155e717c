package main

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/jinjor/wavetable-osc/src/wavetable"
)

// harmonics below this are treated as silent (-120 dB)
const minHarmonic = 0.000001

// spectrum fills the harmonic amplitudes of one waveform cycle. re and im have
// numSamples entries laid out like an FFT result.
type spectrum func(re, im []float64)

var spectra = map[string]spectrum{
	"saw":      sawSpectrum,
	"square":   squareSpectrum,
	"triangle": triangleSpectrum,
}

func sawSpectrum(re, im []float64) {
	n := len(re)
	for i := 1; i < n>>1; i++ {
		temp := -1.0 / float64(i)
		re[i] = -temp
		re[n-i] = temp
	}
}

func squareSpectrum(re, im []float64) {
	n := len(re)
	for i := 1; i < n>>1; i += 2 {
		temp := 1.0 / float64(i)
		re[i] = temp
		re[n-i] = -temp
	}
}

func triangleSpectrum(re, im []float64) {
	n := len(re)
	sign := 1.0
	for i := 1; i < n>>1; i += 2 {
		temp := sign / float64(i*i)
		im[i] = temp
		im[n-i] = temp
		sign = -sign
	}
}

// makeSet builds one table per octave from a harmonic spectrum. Each table
// keeps half the harmonics of the one before it and covers twice its
// frequency range.
func makeSet(numSamples int, fill spectrum) (*wavetable.Set, error) {
	if numSamples < 4 || numSamples&(numSamples-1) != 0 {
		return nil, fmt.Errorf("number of samples must be a power of two >= 4, got %d", numSamples)
	}
	re := make([]float64, numSamples)
	im := make([]float64, numSamples)
	fill(re, im)

	// no DC offset, nothing at Nyquist
	re[0], im[0] = 0, 0
	re[numSamples>>1], im[numSamples>>1] = 0, 0

	maxHarmonic := numSamples >> 1
	for maxHarmonic > 0 && math.Abs(re[maxHarmonic])+math.Abs(im[maxHarmonic]) < minHarmonic {
		maxHarmonic--
	}
	if maxHarmonic == 0 {
		return nil, fmt.Errorf("spectrum has no harmonics")
	}

	// The highest harmonic may alias up to the point where it would meet
	// the lowest harmonic of the next octave's table.
	topFreq := 2.0 / 3.0 / float64(maxHarmonic)

	set := &wavetable.Set{}
	scale := 0.0
	freqs := make([]complex128, numSamples)
	for maxHarmonic > 0 {
		if len(set.Tables) == wavetable.MaxTables {
			return nil, wavetable.ErrCapacityExceeded
		}
		for i := range freqs {
			freqs[i] = 0
		}
		for i := 1; i <= maxHarmonic; i++ {
			freqs[i] = complex(re[i], im[i])
			freqs[numSamples-i] = complex(re[numSamples-i], im[numSamples-i])
		}
		wave := make([]float64, numSamples)
		for i, v := range fft.IFFT(freqs) {
			wave[i] = imag(v)
		}
		if scale == 0 {
			peak := math.Max(floats.Max(wave), -floats.Min(wave))
			if peak == 0 {
				return nil, fmt.Errorf("silent table")
			}
			scale = 0.999 / peak
		}
		floats.Scale(scale, wave)

		samples := make([]float32, numSamples)
		for i, v := range wave {
			samples[i] = float32(v)
		}
		set.Append(topFreq, samples)

		topFreq *= 2
		maxHarmonic >>= 1
	}
	return set, nil
}
