package analysis

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mrac/internal/dynamo"
)

const minSamples = 4

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled signal.
type Spectrum struct {
	// Freq is in Hz.
	Freq      []float64
	Amplitude []float64
}

// PowerSpectrum removes the mean from data and returns its amplitude
// spectrum. A pure sine of amplitude A on an exact bin reads A.
func PowerSpectrum(data []float64, dt float64) (Spectrum, error) {
	if len(data) < minSamples {
		return Spectrum{}, errors.Errorf("spectrum needs at least %d samples, got %d", minSamples, len(data))
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return Spectrum{}, errors.Wrapf(dynamo.ErrInvalidConfig, "sample interval %v", dt)
	}
	if !dynamo.Finite(data...) {
		return Spectrum{}, errors.Wrap(dynamo.ErrInvalidState, "signal has non-finite samples")
	}

	n := len(data)
	centered := make([]float64, n)
	copy(centered, data)
	floats.AddConst(-stat.Mean(centered, nil), centered)

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	s := Spectrum{
		Freq:      make([]float64, len(coeff)),
		Amplitude: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freq[i] = fft.Freq(i) / dt
		s.Amplitude[i] = 2 * cmplx.Abs(c) / float64(n)
	}
	return s, nil
}

// Dominant returns the strongest bin above DC.
func (s Spectrum) Dominant() (freq, amplitude float64) {
	if len(s.Amplitude) < 2 {
		return 0, 0
	}
	i := floats.MaxIdx(s.Amplitude[1:]) + 1
	return s.Freq[i], s.Amplitude[i]
}

// Period is 1/f of the dominant bin, or +Inf for a flat signal.
func (s Spectrum) Period() float64 {
	f, amp := s.Dominant()
	if f == 0 || amp == 0 {
		return math.Inf(1)
	}
	return 1 / f
}
