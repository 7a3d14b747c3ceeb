package control

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mrac/internal/dynamo"
)

// Estimates are the learned world-frame disturbance (x force, y force, yaw
// torque) and the coefficients of the drag model [d1 d2 Lc1 Lc2 Lr].
type Estimates struct {
	Disturbance [3]float64
	Drag        [5]float64
}

// Estimator adapts Estimates by gradient descent on tracking error.
// Estimates are never reset by waypoint changes.
type Estimator struct {
	ki    [3]float64
	kg    [5]float64
	adapt bool
	est   Estimates
}

func NewEstimator(cfg Config) *Estimator {
	return &Estimator{
		ki:    cfg.Ki,
		kg:    cfg.Kg,
		adapt: cfg.Adapt,
		est: Estimates{
			Disturbance: cfg.InitialDisturbance,
			Drag:        cfg.InitialDrag,
		},
	}
}

func (e *Estimator) Estimates() Estimates {
	return e.est
}

// DragRegressor builds the 3x5 matrix that expresses world-frame drag as a
// linear function of the drag coefficients, from world velocity v, yaw rate
// w and heading yaw.
func DragRegressor(v r2.Point, w, yaw float64) *mat.Dense {
	s, c := math.Sincos(yaw)
	s2, c2 := math.Sincos(2 * yaw)
	return mat.NewDense(3, 5, []float64{
		v.X*c*c + v.Y*s*c, v.X/2 - v.X*c2/2 - v.Y*s2/2, -w * s, -w * c, 0,
		v.Y/2 - v.Y*c2/2 + v.X*s2/2, v.Y*c*c - v.X*c*s, w * c, -w * s, 0,
		0, 0, v.Y*c - v.X*s, -v.X*c - v.Y*s, w,
	})
}

// Feedforward returns disturbance + Y·drag.
func (e *Estimator) Feedforward(y mat.Matrix) [3]float64 {
	var d mat.VecDense
	d.MulVec(y, mat.NewVecDense(5, e.est.Drag[:]))
	return [3]float64{
		e.est.Disturbance[0] + d.AtVec(0),
		e.est.Disturbance[1] + d.AtVec(1),
		e.est.Disturbance[2] + d.AtVec(2),
	}
}

// Update integrates one tick of adaptation:
//
//	dist += ki ⊙ err · dt
//	drag += kg ⊙ (Yᵀ(err + errDot)) · dt
//
// An update that would leave any estimate non-finite is discarded and
// reported as ErrInvalidState.
func (e *Estimator) Update(err, errDot [3]float64, y mat.Matrix, dt float64) error {
	if !e.adapt {
		return nil
	}
	next := e.est
	for i := range next.Disturbance {
		next.Disturbance[i] += e.ki[i] * err[i] * dt
	}

	sum := make([]float64, 3)
	floats.AddTo(sum, err[:], errDot[:])
	var grad mat.VecDense
	grad.MulVec(y.T(), mat.NewVecDense(3, sum))
	for i := range next.Drag {
		next.Drag[i] += e.kg[i] * grad.AtVec(i) * dt
	}

	if !dynamo.Finite(next.Disturbance[:]...) || !dynamo.Finite(next.Drag[:]...) {
		return dynamo.ErrInvalidState
	}
	e.est = next
	return nil
}

// Magnitudes returns the Euclidean norms of the disturbance and drag
// estimates, for external divergence monitoring.
func (e *Estimator) Magnitudes() (dist, drag float64) {
	return floats.Norm(e.est.Disturbance[:], 2), floats.Norm(e.est.Drag[:], 2)
}
