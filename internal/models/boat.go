package models

import (
	"math"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/sim"
	"github.com/san-kum/mrac/internal/thrusters"
)

const (
	DefaultBoatMass    = 300.0
	DefaultBoatInertia = 300.0
)

// Boat is a 3-DOF surface vessel.
//
// State: [x, y, yaw, u, v, r] with world position, yaw, and body-frame
// surge, sway and yaw rate (forward-left-up).
// Control: [fx, fy, tz], the controller's body wrench in forward-right-down.
type Boat struct {
	Mass, Inertia float64
	LinearDrag    [3]float64
	QuadraticDrag [3]float64
	// Current is the world-frame water velocity; drag acts on the velocity
	// relative to it.
	Current r2.Point
	// Disturbance is a constant world-frame force and torque.
	Disturbance [3]float64

	alloc *thrusters.Allocator
}

func NewBoat() *Boat {
	return &Boat{
		Mass:          DefaultBoatMass,
		Inertia:       DefaultBoatInertia,
		LinearDrag:    [3]float64{40, 80, 80},
		QuadraticDrag: [3]float64{60, 150, 150},
	}
}

// WithThrusters routes every command through the thruster allocator so the
// plant only ever sees achievable wrenches.
func (b *Boat) WithThrusters(a *thrusters.Allocator) *Boat {
	b.alloc = a
	return b
}

func (b *Boat) StateDim() int   { return 6 }
func (b *Boat) ControlDim() int { return 3 }

// Applied returns the body wrench (forward-left-up) the plant actually
// receives for control u.
func (b *Boat) Applied(u sim.Control) [3]float64 {
	var w [3]float64
	if len(u) >= 3 {
		w = [3]float64{u[0], -u[1], -u[2]}
	}
	if b.alloc != nil {
		w, _ = b.alloc.Body(w)
	}
	return w
}

func (b *Boat) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	yaw, su, sv, r := x[2], x[3], x[4], x[5]
	w := b.Applied(u)

	sin, cos := math.Sincos(yaw)
	cu := cos*b.Current.X + sin*b.Current.Y
	cv := -sin*b.Current.X + cos*b.Current.Y
	rel := [3]float64{su - cu, sv - cv, r}

	var drag [3]float64
	for i, v := range rel {
		drag[i] = b.LinearDrag[i]*v + b.QuadraticDrag[i]*v*math.Abs(v)
	}

	dx := cos*b.Disturbance[0] + sin*b.Disturbance[1]
	dy := -sin*b.Disturbance[0] + cos*b.Disturbance[1]

	du := (w[0]+dx-drag[0])/b.Mass + r*sv
	dv := (w[1]+dy-drag[1])/b.Mass - r*su
	dr := (w[2] + b.Disturbance[2] - drag[2]) / b.Inertia

	return sim.State{cos*su - sin*sv, sin*su + cos*sv, r, du, dv, dr}
}

// VehicleState reports x as the estimation source would.
func (b *Boat) VehicleState(x sim.State, stamp time.Time) dynamo.VehicleState {
	return dynamo.VehicleState{
		Stamp: stamp,
		Pose: dynamo.Pose{
			Position:    r2.Point{X: x[0], Y: x[1]},
			Orientation: dynamo.YawQuat(x[2]),
		},
		BodyLinear:  r3.Vector{X: x[3], Y: x[4]},
		BodyAngular: r3.Vector{Z: x[5]},
	}
}

// Energy is the kinetic energy of the hull.
func (b *Boat) Energy(x sim.State) float64 {
	su, sv, r := x[3], x[4], x[5]
	return 0.5*b.Mass*(su*su+sv*sv) + 0.5*b.Inertia*r*r
}

// InitialState builds a resting state at the given pose.
func InitialState(x, y, yawDeg float64) sim.State {
	return sim.State{x, y, yawDeg * math.Pi / 180, 0, 0, 0}
}
