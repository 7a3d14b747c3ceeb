package control

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/thrusters"
)

// ReferenceState is the instantaneous state of the virtual vehicle.
type ReferenceState struct {
	Position            r2.Point
	Velocity            r2.Point
	Orientation         quat.Number
	AngularVelocity     float64
	Acceleration        r2.Point
	AngularAcceleration float64
}

func (s ReferenceState) Pose() dynamo.Pose {
	return dynamo.Pose{Position: s.Position, Orientation: s.Orientation}
}

// Waypoint is the desired final pose.
type Waypoint struct {
	Position    r2.Point
	Orientation quat.Number
	// Traversal is the straight-line distance from the vehicle to Position
	// when the waypoint was assigned.
	Traversal float64
}

func (w Waypoint) Pose() dynamo.Pose {
	return dynamo.Pose{Position: w.Position, Orientation: w.Orientation}
}

// ReferenceModel integrates an idealized vehicle with the real vehicle's
// inertia and thrusters toward the waypoint. Its drag is calibrated so the
// terminal velocities under full thrust equal the configured caps.
type ReferenceModel struct {
	geom      *thrusters.Allocator
	kp, kd    *mat.DiagDense
	threshold float64
	mass      float64
	inertia   float64

	state       ReferenceState
	goal        Waypoint
	initialized bool
}

func NewReferenceModel(cfg Config, geom *thrusters.Geometry) *ReferenceModel {
	return &ReferenceModel{
		geom:      thrusters.NewAllocator(geom),
		kp:        mat.NewDiagDense(3, cfg.Kp[:]),
		kd:        mat.NewDiagDense(3, cfg.Kd[:]),
		threshold: cfg.HeadingThreshold,
		mass:      cfg.Mass,
		inertia:   cfg.Inertia,
	}
}

// Reset restarts the trajectory from the given pose and world twist toward wp.
func (m *ReferenceModel) Reset(pose dynamo.Pose, twist dynamo.Twist, wp Waypoint) {
	m.state = ReferenceState{
		Position:        pose.Position,
		Velocity:        twist.Linear,
		Orientation:     pose.Orientation,
		AngularVelocity: twist.Angular,
	}
	m.goal = wp
	m.initialized = true
}

func (m *ReferenceModel) Initialized() bool {
	return m.initialized
}

func (m *ReferenceModel) State() ReferenceState {
	return m.state
}

func (m *ReferenceModel) Goal() Waypoint {
	return m.goal
}

// HeadingTarget returns the heading the next step steers toward: the
// bearing to the goal while farther than the threshold, the commanded
// heading otherwise.
func (m *ReferenceModel) HeadingTarget() quat.Number {
	d := m.goal.Position.Sub(m.state.Position)
	if d.Norm() > m.threshold {
		return dynamo.YawQuat(math.Atan2(d.Y, d.X))
	}
	return m.goal.Orientation
}

// Step advances the virtual vehicle by dt with forward Euler.
func (m *ReferenceModel) Step(dt float64) {
	if !m.initialized {
		return
	}
	s := &m.state
	r := dynamo.Rotation(s.Orientation)
	yaw := dynamo.Yaw(s.Orientation)

	// target state is stationary at the goal
	pErr := m.goal.Position.Sub(s.Position)
	err := [3]float64{pErr.X, pErr.Y, dynamo.HeadingError(m.HeadingTarget(), s.Orientation)}
	errDot := [3]float64{-s.Velocity.X, -s.Velocity.Y, -s.AngularVelocity}
	wrench := pd(r, m.kp, m.kd, err, errDot)

	achieved, _ := m.geom.Rotated(wrench, r)

	twistBody := dynamo.ApplyT(r, [3]float64{s.Velocity.X, s.Velocity.Y, s.AngularVelocity})
	drag := m.geom.Geometry().Drag
	var dragBody [3]float64
	for i, v := range twistBody {
		dragBody[i] = drag[i] * v * math.Abs(v)
	}
	dragWorld := dynamo.Apply(r, dragBody)

	s.Acceleration = r2.Point{
		X: (achieved[0] - dragWorld[0]) / m.mass,
		Y: (achieved[1] - dragWorld[1]) / m.mass,
	}
	s.AngularAcceleration = (achieved[2] - dragWorld[2]) / m.inertia

	s.Position = s.Position.Add(s.Velocity.Mul(dt))
	s.Orientation = dynamo.YawQuat(yaw + s.AngularVelocity*dt)
	s.Velocity = s.Velocity.Add(s.Acceleration.Mul(dt))
	s.AngularVelocity += s.AngularAcceleration * dt
}

// pd is the PD law with body-frame gains expressed through rotation r.
func pd(r mat.Matrix, kp, kd mat.Matrix, err, errDot [3]float64) [3]float64 {
	p := dynamo.Apply(dynamo.Conjugate(r, kp), err)
	d := dynamo.Apply(dynamo.Conjugate(r, kd), errDot)
	return [3]float64{p[0] + d[0], p[1] + d[1], p[2] + d[2]}
}
