package metrics

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/san-kum/mrac/internal/control"
	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/sim"
)

func sampleAt(t, x, y float64, active bool) sim.Sample {
	return sim.Sample{
		Time: t,
		Vehicle: dynamo.VehicleState{
			Pose: dynamo.Pose{Position: r2.Point{X: x, Y: y}, Orientation: dynamo.YawQuat(0)},
		},
		Output:      control.Output{Active: active},
		Waypoint:    control.Waypoint{Position: r2.Point{X: 10}, Orientation: dynamo.YawQuat(math.Pi / 2)},
		HasWaypoint: active,
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()

	s := sampleAt(0, 0, 0, true)
	s.Output.Wrench = dynamo.Wrench{Force: r2.Point{X: 100, Y: -50}, Torque: 10}
	m.Observe(s)
	m.Observe(sampleAt(0.02, 0, 0, false))

	if m.Value() != 160 {
		t.Errorf("expected 160, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSaturation(t *testing.T) {
	m := NewSaturation([3]float64{600, 600, 600})

	s := sampleAt(0, 0, 0, true)
	s.Output.Wrench = dynamo.Wrench{Force: r2.Point{X: 600}}
	m.Observe(s)
	m.Observe(sampleAt(0.02, 0, 0, true))

	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestTrackingError(t *testing.T) {
	m := NewTrackingError()
	for _, e := range []float64{3, 4} {
		s := sampleAt(0, 0, 0, true)
		s.Output.Tracking = control.Tracking{Err: [3]float64{e, 0, 0}}
		m.Observe(s)
	}
	want := math.Sqrt((9.0 + 16.0) / 2)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}
}

func TestGoalAndHeading(t *testing.T) {
	g := NewGoalDistance()
	h := NewHeadingError()
	for _, s := range []sim.Sample{sampleAt(0, 0, 0, true), sampleAt(1, 7, 4, true)} {
		g.Observe(s)
		h.Observe(s)
	}
	if math.Abs(g.Value()-5) > 1e-12 {
		t.Errorf("goal distance = %f, want 5", g.Value())
	}
	if math.Abs(h.Value()-math.Pi/2) > 1e-9 {
		t.Errorf("heading error = %f, want pi/2", h.Value())
	}
}

func TestSettling(t *testing.T) {
	m := NewSettling(1)
	if m.Value() != -1 {
		t.Fatalf("expected -1 before settling, got %f", m.Value())
	}

	m.Observe(sampleAt(1, 9.5, 0, true))
	m.Observe(sampleAt(2, 5, 0, true))
	m.Observe(sampleAt(3, 9.8, 0, true))
	m.Observe(sampleAt(4, 10, 0, true))

	if m.Value() != 3 {
		t.Errorf("expected settling at 3, got %f", m.Value())
	}
}

func TestEstimateMagnitude(t *testing.T) {
	m := NewEstimateMagnitude()
	s := sampleAt(0, 0, 0, true)
	s.Output.Estimates.Disturbance = [3]float64{3, 4, 0}
	m.Observe(s)
	m.Observe(sampleAt(1, 0, 0, true))

	if m.Value() != 5 {
		t.Errorf("expected 5, got %f", m.Value())
	}
}
