package metrics

import (
	"math"

	"github.com/san-kum/mrac/internal/sim"
)

// TrackingError is the RMS planar distance between the vehicle and the
// reference over active ticks.
type TrackingError struct {
	sumSq   float64
	samples int
}

func NewTrackingError() *TrackingError { return &TrackingError{} }

func (m *TrackingError) Name() string { return "tracking_rms" }

func (m *TrackingError) Observe(s sim.Sample) {
	if !s.Output.Active {
		return
	}
	e := s.Output.Tracking.PositionError()
	m.sumSq += e * e
	m.samples++
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingError) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// GoalDistance reports the distance to the waypoint on the latest tick.
type GoalDistance struct {
	last float64
}

func NewGoalDistance() *GoalDistance { return &GoalDistance{} }

func (m *GoalDistance) Name() string { return "goal_distance" }

func (m *GoalDistance) Observe(s sim.Sample) {
	if s.HasWaypoint {
		m.last = s.GoalDistance()
	}
}

func (m *GoalDistance) Value() float64 { return m.last }
func (m *GoalDistance) Reset()         { m.last = 0 }

// HeadingError reports the absolute heading error to the waypoint on the
// latest tick, in radians.
type HeadingError struct {
	last float64
}

func NewHeadingError() *HeadingError { return &HeadingError{} }

func (m *HeadingError) Name() string { return "heading_error" }

func (m *HeadingError) Observe(s sim.Sample) {
	if s.HasWaypoint {
		m.last = math.Abs(s.HeadingError())
	}
}

func (m *HeadingError) Value() float64 { return m.last }
func (m *HeadingError) Reset()         { m.last = 0 }

// Settling is the time after which the vehicle stays within tolerance of
// the waypoint. It reports -1 while the vehicle has not settled.
type Settling struct {
	tolerance float64
	since     float64
	inside    bool
}

func NewSettling(tolerance float64) *Settling {
	return &Settling{tolerance: tolerance}
}

func (m *Settling) Name() string { return "settling_time" }

func (m *Settling) Observe(s sim.Sample) {
	if !s.HasWaypoint || s.GoalDistance() > m.tolerance {
		m.inside = false
		return
	}
	if !m.inside {
		m.inside = true
		m.since = s.Time
	}
}

func (m *Settling) Value() float64 {
	if !m.inside {
		return -1
	}
	return m.since
}

func (m *Settling) Reset() {
	m.since = 0
	m.inside = false
}
