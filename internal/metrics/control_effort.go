package metrics

import (
	"math"

	"github.com/san-kum/mrac/internal/sim"
)

// ControlEffort is the mean L1 norm of the commanded wrench over active
// ticks.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s sim.Sample) {
	if !s.Output.Active {
		return
	}
	for _, val := range s.Output.Wrench.Vector() {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// Saturation is the fraction of active ticks on which any wrench component
// sat at the clamp limit.
type Saturation struct {
	limit     [3]float64
	saturated int
	samples   int
}

func NewSaturation(limit [3]float64) *Saturation {
	return &Saturation{limit: limit}
}

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(sample sim.Sample) {
	if !sample.Output.Active {
		return
	}
	s.samples++
	for i, v := range sample.Output.Wrench.Vector() {
		if math.Abs(v) >= s.limit[i] {
			s.saturated++
			return
		}
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
