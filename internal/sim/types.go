package sim

import (
	"time"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mrac/internal/control"
	"github.com/san-kum/mrac/internal/dynamo"
)

// State is the plant's integration vector.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	return dynamo.Finite(s...)
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

func (s State) Add(o State) State {
	return State(floats.AddTo(make([]float64, len(s)), s, o))
}

func (s State) Sub(o State) State {
	return State(floats.SubTo(make([]float64, len(s)), s, o))
}

func (s State) Scale(k float64) State {
	return State(floats.ScaleTo(make([]float64, len(s)), k, s))
}

// Control is the input held constant over one integration step.
type Control []float64

type Dynamics interface {
	Derivative(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Vehicle is a plant whose state can be reported as a vehicle state
// estimate and that accepts the controller's body wrench as its control.
type Vehicle interface {
	Dynamics
	VehicleState(x State, stamp time.Time) dynamo.VehicleState
}

type Integrator interface {
	Step(dyn Dynamics, x State, u Control, t float64, dt float64) State
}

type EnergyComputer interface {
	Energy(x State) float64
}

// Sample is everything observed on one tick of the closed loop.
type Sample struct {
	Step     int
	Time     float64
	State    State
	Vehicle  dynamo.VehicleState
	Output   control.Output
	Waypoint control.Waypoint
	// HasWaypoint is false until the first scheduled waypoint fires.
	HasWaypoint bool
}

// GoalDistance is the planar distance from the vehicle to the waypoint.
func (s Sample) GoalDistance() float64 {
	if !s.HasWaypoint {
		return 0
	}
	return s.Waypoint.Position.Sub(s.Vehicle.Pose.Position).Norm()
}

// HeadingError is the signed angle from the vehicle heading to the
// waypoint heading.
func (s Sample) HeadingError() float64 {
	if !s.HasWaypoint {
		return 0
	}
	return dynamo.HeadingError(s.Waypoint.Orientation, s.Vehicle.Pose.Orientation)
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Sample)

func (f ObserverFunc) OnStep(s Sample) { f(s) }

// ScheduledWaypoint is a waypoint command issued at a given sim time.
type ScheduledWaypoint struct {
	At      float64                `yaml:"at" json:"at"`
	Command dynamo.WaypointCommand `yaml:"command" json:"command"`
}

type Config struct {
	Dt            float64
	Duration      float64
	Epoch         time.Time
	ValidateState bool
	Waypoints     []ScheduledWaypoint
	// RecordEvery keeps one of every N samples in the result; 0 keeps all.
	RecordEvery int
}

func DefaultConfig() Config {
	return Config{
		Dt:            control.DefaultDt,
		Duration:      60,
		Epoch:         time.Unix(0, 0).UTC(),
		ValidateState: true,
	}
}

type Result struct {
	Samples     []Sample
	Metrics     map[string]float64
	StepsTaken  int
	EnergyDrift float64
	Final       dynamo.VehicleState
	Goal        r2.Point
}

// Times returns the sample times.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}
