package models

import (
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/san-kum/mrac/internal/sim"
	"github.com/san-kum/mrac/internal/thrusters"
)

func TestBoatDims(t *testing.T) {
	b := NewBoat()
	if b.StateDim() != 6 {
		t.Errorf("expected 6 states, got %d", b.StateDim())
	}
	if b.ControlDim() != 3 {
		t.Errorf("expected 3 controls, got %d", b.ControlDim())
	}
}

func TestBoatAtRest(t *testing.T) {
	b := NewBoat()
	dx := b.Derivative(InitialState(3, 4, 30), sim.Control{0, 0, 0}, 0)
	for i, v := range dx {
		if v != 0 {
			t.Errorf("dx[%d] = %f, want 0", i, v)
		}
	}
}

func TestBoatControlConvention(t *testing.T) {
	b := NewBoat()
	x := InitialState(0, 0, 0)

	// surge and forward-right-down sway/yaw inputs
	dx := b.Derivative(x, sim.Control{300, 150, 30}, 0)
	if math.Abs(dx[3]-1.0) > 1e-12 {
		t.Errorf("surge accel = %f, want 1", dx[3])
	}
	if math.Abs(dx[4]+0.5) > 1e-12 {
		t.Errorf("sway accel = %f, want -0.5", dx[4])
	}
	if math.Abs(dx[5]+0.1) > 1e-12 {
		t.Errorf("yaw accel = %f, want -0.1", dx[5])
	}
}

func TestBoatKinematics(t *testing.T) {
	b := NewBoat()
	x := sim.State{0, 0, math.Pi / 2, 2, 0, 0}
	dx := b.Derivative(x, nil, 0)
	if math.Abs(dx[0]) > 1e-12 || math.Abs(dx[1]-2) > 1e-12 {
		t.Errorf("world velocity = (%f, %f), want (0, 2)", dx[0], dx[1])
	}
	if dx[3] >= 0 {
		t.Errorf("drag should decelerate surge, got %f", dx[3])
	}
}

func TestBoatCurrentDrag(t *testing.T) {
	b := NewBoat()
	b.Current = r2.Point{X: 0.5}

	// hull at rest in a current is pushed downstream
	dx := b.Derivative(InitialState(0, 0, 0), nil, 0)
	if dx[3] <= 0 {
		t.Errorf("expected downstream acceleration, got %f", dx[3])
	}

	// hull drifting with the current feels no drag
	dx = b.Derivative(sim.State{0, 0, 0, 0.5, 0, 0}, nil, 0)
	if math.Abs(dx[3]) > 1e-12 {
		t.Errorf("expected zero relative drag, got %f", dx[3])
	}
}

func TestBoatThrusterSaturation(t *testing.T) {
	layout := []thrusters.Thruster{
		{Position: r3.Vector{X: -1.9, Y: 1.0}, Direction: r3.Vector{X: 1, Y: 1}},
		{Position: r3.Vector{X: -1.9, Y: -1.0}, Direction: r3.Vector{X: 1, Y: -1}},
		{Position: r3.Vector{X: 1.6, Y: -0.6}, Direction: r3.Vector{X: 1, Y: 1}},
		{Position: r3.Vector{X: 1.6, Y: 0.6}, Direction: r3.Vector{X: 1, Y: -1}},
	}
	geom, err := thrusters.NewGeometry(layout, 220, [3]float64{1.5, 0.5, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBoat().WithThrusters(thrusters.NewAllocator(geom))

	w := b.Applied(sim.Control{5000, 0, 0})
	if w[0] > geom.MaxWrench[0]+1e-9 {
		t.Errorf("applied surge %f exceeds envelope %f", w[0], geom.MaxWrench[0])
	}
	if w[0] <= 0 {
		t.Errorf("applied surge should be positive, got %f", w[0])
	}
}

func TestBoatVehicleState(t *testing.T) {
	b := NewBoat()
	stamp := time.Unix(10, 0)
	vs := b.VehicleState(sim.State{1, 2, 0.3, 0.4, 0.1, 0.05}, stamp)

	if !vs.Stamp.Equal(stamp) {
		t.Errorf("stamp = %v", vs.Stamp)
	}
	if math.Abs(vs.Pose.Heading()-0.3) > 1e-12 {
		t.Errorf("heading = %f", vs.Pose.Heading())
	}
	if vs.BodyLinear.X != 0.4 || vs.BodyAngular.Z != 0.05 {
		t.Errorf("body twist = %v %v", vs.BodyLinear, vs.BodyAngular)
	}
	if err := vs.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestBoatEnergy(t *testing.T) {
	b := NewBoat()
	e := b.Energy(sim.State{0, 0, 0, 1, 0, 1})
	if math.Abs(e-(0.5*b.Mass+0.5*b.Inertia)) > 1e-12 {
		t.Errorf("energy = %f", e)
	}
}
