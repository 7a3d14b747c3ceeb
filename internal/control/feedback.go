package control

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mrac/internal/dynamo"
)

// Tracking holds the error terms of one feedback evaluation, reference minus
// actual, in the world frame. The estimator adapts from the same terms.
type Tracking struct {
	Err       [3]float64
	ErrDot    [3]float64
	Regressor *mat.Dense
}

// PositionError is the planar distance between reference and vehicle.
func (t Tracking) PositionError() float64 {
	return math.Hypot(t.Err[0], t.Err[1])
}

// Feedback evaluates the control law for a fixed configuration.
type Feedback struct {
	kp, kd      *mat.DiagDense
	mass        float64
	inertia     float64
	pdOnly      bool
	wrenchLimit [3]float64
}

func NewFeedback(cfg Config) *Feedback {
	return &Feedback{
		kp:          mat.NewDiagDense(3, cfg.Kp[:]),
		kd:          mat.NewDiagDense(3, cfg.Kd[:]),
		mass:        cfg.Mass,
		inertia:     cfg.Inertia,
		pdOnly:      cfg.PDOnly,
		wrenchLimit: cfg.WrenchLimit,
	}
}

// Compute returns the saturated body-frame wrench for the vehicle at pose
// with world twist, tracking ref, together with the tracking terms.
func (f *Feedback) Compute(pose dynamo.Pose, twist dynamo.Twist, ref ReferenceState, est *Estimator) (dynamo.Wrench, Tracking) {
	r := dynamo.Rotation(pose.Orientation)
	yaw := dynamo.Yaw(pose.Orientation)

	pErr := ref.Position.Sub(pose.Position)
	vErr := ref.Velocity.Sub(twist.Linear)
	tr := Tracking{
		Err:       [3]float64{pErr.X, pErr.Y, dynamo.HeadingError(ref.Orientation, pose.Orientation)},
		ErrDot:    [3]float64{vErr.X, vErr.Y, ref.AngularVelocity - twist.Angular},
		Regressor: DragRegressor(twist.Linear, twist.Angular, yaw),
	}

	wrench := pd(r, f.kp, f.kd, tr.Err, tr.ErrDot)
	if !f.pdOnly {
		ff := est.Feedforward(tr.Regressor)
		wrench[0] += ref.Acceleration.X*f.mass + ff[0]
		wrench[1] += ref.Acceleration.Y*f.mass + ff[1]
		wrench[2] += ref.AngularAcceleration*f.inertia + ff[2]
	}

	body := dynamo.ApplyT(r, wrench)
	// The wrench consumer expects forward-right-down axes, so lateral force
	// and yaw torque are negated at the boundary.
	body[1], body[2] = -body[1], -body[2]

	for i := range body {
		body[i] = clamp(body[i], -f.wrenchLimit[i], f.wrenchLimit[i])
	}
	return dynamo.WrenchFromVector(body), tr
}

// clamp keeps value inside [lo, hi].
func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
