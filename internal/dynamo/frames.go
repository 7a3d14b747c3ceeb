package dynamo

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// YawQuat returns the unit quaternion for a rotation of yaw radians about
// the vertical axis.
func YawQuat(yaw float64) quat.Number {
	s, c := math.Sincos(yaw / 2)
	return quat.Number{Real: c, Kmag: s}
}

// Yaw extracts the ZYX Euler yaw of q, in (-pi, pi].
func Yaw(q quat.Number) float64 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
}

// HeadingError is the yaw of the relative rotation target·current⁻¹, i.e.
// the shortest signed angle that turns current onto target.
func HeadingError(target, current quat.Number) float64 {
	return Yaw(quat.Mul(target, quat.Inv(current)))
}

// Normalize scales q to unit norm.
func Normalize(q quat.Number) (quat.Number, error) {
	n := quat.Abs(q)
	if n == 0 || !Finite(n) {
		return quat.Number{}, ErrInvalidState
	}
	return quat.Scale(1/n, q), nil
}

// Rotation returns the 3x3 rotation matrix of the unit quaternion q.
func Rotation(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
}

// Conjugate returns R·K·Rᵀ, expressing a body-frame gain matrix in the
// frame R maps into.
func Conjugate(r, k mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Product(r, k, r.T())
	return &out
}

// Apply returns m·v for a 3x3 matrix.
func Apply(m mat.Matrix, v [3]float64) [3]float64 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, v[:]))
	return [3]float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

// ApplyT returns mᵀ·v for a 3x3 matrix.
func ApplyT(m mat.Matrix, v [3]float64) [3]float64 {
	return Apply(m.T(), v)
}

func rotate(r mat.Matrix, v r3.Vector) r3.Vector {
	out := Apply(r, [3]float64{v.X, v.Y, v.Z})
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}
