// Package thrusters describes the vehicle's actuator layout and maps desired
// planar wrenches onto thruster commands within hardware limits.
//
// The same allocation routine serves the simulated vehicle and the
// controller's reference model, so generated trajectories stay
// actuator-feasible.
package thrusters

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mrac/internal/dynamo"
)

// Rows of the full allocation matrix.
const (
	RowFx = iota
	RowFy
	RowFz
	RowTx
	RowTy
	RowTz
)

// planarRows selects surge force, sway force and yaw torque.
var planarRows = [3]int{RowFx, RowFy, RowTz}

// Thruster is a mounting position and unit thrust direction in the body frame.
type Thruster struct {
	Position  r3.Vector `yaml:"position"`
	Direction r3.Vector `yaml:"direction"`
}

// Geometry is the static force/torque envelope derived from a thruster layout.
type Geometry struct {
	Thrusters []Thruster
	LeverArms []r3.Vector
	ThrustMax float64
	// B maps per-thruster force magnitudes to the body-frame 6-DOF wrench.
	B *mat.Dense
	// MaxWrench is the achievable surge force, sway force and yaw torque
	// with every thruster pushing at ThrustMax toward that axis.
	MaxWrench [3]float64
	// Drag is the per-axis quadratic drag that makes the terminal velocity
	// under MaxWrench equal to the configured velocity cap.
	Drag [3]float64
}

func NewGeometry(ts []Thruster, thrustMax float64, velMax [3]float64) (*Geometry, error) {
	if len(ts) == 0 {
		return nil, errors.Wrap(dynamo.ErrInvalidConfig, "no thrusters")
	}
	if !(thrustMax > 0) || math.IsInf(thrustMax, 0) {
		return nil, errors.Wrapf(dynamo.ErrInvalidConfig, "thrust max must be positive, got %v", thrustMax)
	}
	for i, v := range velMax {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(dynamo.ErrInvalidConfig, "max body velocity %d must be positive, got %v", i, v)
		}
	}

	g := &Geometry{
		Thrusters: make([]Thruster, len(ts)),
		LeverArms: make([]r3.Vector, len(ts)),
		ThrustMax: thrustMax,
		B:         mat.NewDense(6, len(ts), nil),
	}
	for i, t := range ts {
		if !dynamo.Finite(t.Position.X, t.Position.Y, t.Position.Z, t.Direction.X, t.Direction.Y, t.Direction.Z) {
			return nil, errors.Wrapf(dynamo.ErrInvalidConfig, "thruster %d has non-finite geometry", i)
		}
		if t.Direction.Norm() == 0 {
			return nil, errors.Wrapf(dynamo.ErrInvalidConfig, "thruster %d has zero direction", i)
		}
		t.Direction = t.Direction.Normalize()
		arm := t.Position.Cross(t.Direction)
		g.Thrusters[i] = t
		g.LeverArms[i] = arm
		g.B.SetCol(i, []float64{t.Direction.X, t.Direction.Y, t.Direction.Z, arm.X, arm.Y, arm.Z})
	}

	for a, row := range planarRows {
		cmd := make([]float64, len(ts))
		for i := range cmd {
			cmd[i] = thrustMax * sign(g.B.At(row, i))
		}
		var w mat.VecDense
		w.MulVec(g.B, mat.NewVecDense(len(cmd), cmd))
		g.MaxWrench[a] = w.AtVec(row)
		if g.MaxWrench[a] == 0 {
			return nil, errors.Wrapf(dynamo.ErrInvalidConfig, "thruster layout cannot actuate axis %d", a)
		}
		g.Drag[a] = math.Abs(g.MaxWrench[a]) / (velMax[a] * velMax[a])
	}
	return g, nil
}

// Len returns the number of thrusters.
func (g *Geometry) Len() int {
	return len(g.Thrusters)
}

// Rotated returns the allocation matrix with thrust directions and lever
// arms rotated by r (3x3), e.g. body to world.
func (g *Geometry) Rotated(r mat.Matrix) *mat.Dense {
	n := g.Len()
	out := mat.NewDense(6, n, nil)
	var force, torque mat.Dense
	force.Mul(r, g.B.Slice(0, 3, 0, n))
	torque.Mul(r, g.B.Slice(3, 6, 0, n))
	out.Slice(0, 3, 0, n).(*mat.Dense).Copy(&force)
	out.Slice(3, 6, 0, n).(*mat.Dense).Copy(&torque)
	return out
}

// Reduced extracts the surge, sway and yaw-torque rows of a 6xN matrix.
func Reduced(b mat.Matrix) *mat.Dense {
	_, n := b.Dims()
	out := mat.NewDense(3, n, nil)
	for i, row := range planarRows {
		for j := 0; j < n; j++ {
			out.Set(i, j, b.At(row, j))
		}
	}
	return out
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
