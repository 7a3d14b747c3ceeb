package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mrac/internal/sim"
)

// EstimateMagnitude tracks the largest disturbance estimate norm seen, a
// cheap monitor for adaptation drift.
type EstimateMagnitude struct {
	peak float64
}

func NewEstimateMagnitude() *EstimateMagnitude { return &EstimateMagnitude{} }

func (m *EstimateMagnitude) Name() string { return "disturbance_peak" }

func (m *EstimateMagnitude) Observe(s sim.Sample) {
	d := s.Output.Estimates.Disturbance
	if n := floats.Norm(d[:], 2); n > m.peak {
		m.peak = n
	}
}

func (m *EstimateMagnitude) Value() float64 { return m.peak }
func (m *EstimateMagnitude) Reset()         { m.peak = 0 }
