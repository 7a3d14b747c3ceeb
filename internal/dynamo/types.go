package dynamo

import (
	"fmt"
	"math"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

type Pose struct {
	Position    r2.Point
	Orientation quat.Number
}

// Heading returns the yaw of the pose in radians.
func (p Pose) Heading() float64 {
	return Yaw(p.Orientation)
}

// Twist is a world-frame planar velocity.
type Twist struct {
	Linear  r2.Point
	Angular float64
}

// VehicleState is one state estimate as delivered by the estimation source.
// Velocities are expressed in the vehicle body frame; only the horizontal
// linear components and the vertical angular component are used.
type VehicleState struct {
	Stamp       time.Time
	Pose        Pose
	BodyLinear  r3.Vector
	BodyAngular r3.Vector
}

// Validate normalizes the orientation in place and rejects non-finite
// fields.
func (vs *VehicleState) Validate() error {
	vals := []float64{
		vs.Pose.Position.X, vs.Pose.Position.Y,
		vs.Pose.Orientation.Real, vs.Pose.Orientation.Imag, vs.Pose.Orientation.Jmag, vs.Pose.Orientation.Kmag,
		vs.BodyLinear.X, vs.BodyLinear.Y, vs.BodyLinear.Z,
		vs.BodyAngular.X, vs.BodyAngular.Y, vs.BodyAngular.Z,
	}
	if !Finite(vals...) {
		return ErrInvalidState
	}
	q, err := Normalize(vs.Pose.Orientation)
	if err != nil {
		return err
	}
	vs.Pose.Orientation = q
	return nil
}

// WorldTwist rotates the body-frame velocities into the world frame.
func (vs VehicleState) WorldTwist() Twist {
	r := Rotation(vs.Pose.Orientation)
	lin := rotate(r, vs.BodyLinear)
	ang := rotate(r, vs.BodyAngular)
	return Twist{
		Linear:  r2.Point{X: lin.X, Y: lin.Y},
		Angular: ang.Z,
	}
}

// Wrench is a planar force/torque command in the vehicle body frame.
type Wrench struct {
	Force  r2.Point
	Torque float64
}

func (w Wrench) Vector() [3]float64 {
	return [3]float64{w.Force.X, w.Force.Y, w.Torque}
}

func WrenchFromVector(v [3]float64) Wrench {
	return Wrench{Force: r2.Point{X: v[0], Y: v[1]}, Torque: v[2]}
}

func (w Wrench) String() string {
	return fmt.Sprintf("(fx=%.2f fy=%.2f tz=%.2f)", w.Force.X, w.Force.Y, w.Torque)
}

// WaypointCommand is the "go here and stay" input: a world-frame position
// and a final heading in degrees about the vertical axis.
type WaypointCommand struct {
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	HeadingDeg float64 `json:"heading_deg" yaml:"heading_deg"`
}

func (c WaypointCommand) Position() r2.Point {
	return r2.Point{X: c.X, Y: c.Y}
}

func (c WaypointCommand) Orientation() quat.Number {
	return YawQuat(c.HeadingDeg * math.Pi / 180)
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
