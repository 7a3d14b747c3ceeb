package analysis

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/san-kum/mrac/internal/dynamo"
)

func sine(n int, dt, freq, amp, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + amp*math.Sin(2*math.Pi*freq*float64(i)*dt)
	}
	return out
}

func TestPowerSpectrumFindsOscillation(t *testing.T) {
	g := NewWithT(t)

	// 40 s at 50 Hz holds exactly 20 cycles of 0.5 Hz.
	s, err := PowerSpectrum(sine(2000, 0.02, 0.5, 3, 100), 0.02)
	g.Expect(err).NotTo(HaveOccurred())

	f, amp := s.Dominant()
	g.Expect(f).To(BeNumerically("~", 0.5, 1e-9))
	g.Expect(amp).To(BeNumerically("~", 3, 1e-6))
	g.Expect(s.Period()).To(BeNumerically("~", 2, 1e-9))
	g.Expect(s.Amplitude[0]).To(BeNumerically("~", 0, 1e-9))
}

func TestPowerSpectrumFlatSignal(t *testing.T) {
	g := NewWithT(t)

	data := make([]float64, 64)
	for i := range data {
		data[i] = 7
	}
	s, err := PowerSpectrum(data, 0.1)
	g.Expect(err).NotTo(HaveOccurred())
	_, amp := s.Dominant()
	g.Expect(amp).To(BeNumerically("~", 0, 1e-12))
	g.Expect(math.IsInf(s.Period(), 1)).To(BeTrue())
}

func TestPowerSpectrumRejects(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		dt     float64
		target error
	}{
		{"too short", []float64{1, 2}, 0.1, nil},
		{"zero dt", make([]float64, 8), 0, dynamo.ErrInvalidConfig},
		{"nan dt", make([]float64, 8), math.NaN(), dynamo.ErrInvalidConfig},
		{"nan sample", []float64{0, 1, math.NaN(), 3}, 0.1, dynamo.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PowerSpectrum(tt.data, tt.dt)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error %v does not wrap %v", err, tt.target)
			}
		})
	}
}
