package thrusters

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mrac/internal/dynamo"
)

// rcond is the relative singular-value cutoff used to pick the numerical rank.
const rcond = 1e-12

// Allocate maps a desired planar wrench (surge force, sway force, yaw
// torque) to per-thruster commands through the 3xN matrix b.
//
// The command is the minimum-norm least-squares solution. When any
// component exceeds thrustMax the whole vector is scaled down uniformly, so
// the achieved wrench b·command keeps the requested direction but not its
// magnitude. A degenerate mapping or non-finite result yields a zero command.
func Allocate(w [3]float64, b mat.Matrix, thrustMax float64) ([3]float64, []float64) {
	r, n := b.Dims()
	cmd := make([]float64, n)
	if r != 3 || n == 0 || !dynamo.Finite(w[:]...) {
		return [3]float64{}, cmd
	}

	var svd mat.SVD
	if !svd.Factorize(b, mat.SVDThin) {
		return [3]float64{}, cmd
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return [3]float64{}, cmd
	}
	sol := mat.NewVecDense(n, cmd)
	svd.SolveVecTo(sol, mat.NewVecDense(3, w[:]), rank)

	peak := 0.0
	for _, c := range cmd {
		peak = math.Max(peak, math.Abs(c))
	}
	if !dynamo.Finite(peak) {
		return [3]float64{}, make([]float64, n)
	}
	if peak > thrustMax {
		sol.ScaleVec(thrustMax/peak, sol)
	}

	var achieved mat.VecDense
	achieved.MulVec(b, sol)
	return [3]float64{achieved.AtVec(0), achieved.AtVec(1), achieved.AtVec(2)}, cmd
}

// Allocator binds Allocate to a geometry.
type Allocator struct {
	geom *Geometry
}

func NewAllocator(g *Geometry) *Allocator {
	return &Allocator{geom: g}
}

func (a *Allocator) Geometry() *Geometry {
	return a.geom
}

// Body allocates a body-frame wrench on the unrotated layout.
func (a *Allocator) Body(w [3]float64) ([3]float64, []float64) {
	return Allocate(w, Reduced(a.geom.B), a.geom.ThrustMax)
}

// Rotated allocates a wrench expressed in the frame r maps the body into.
func (a *Allocator) Rotated(w [3]float64, r mat.Matrix) ([3]float64, []float64) {
	return Allocate(w, Reduced(a.geom.Rotated(r)), a.geom.ThrustMax)
}
