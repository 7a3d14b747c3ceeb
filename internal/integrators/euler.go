package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mrac/internal/sim"
)

// Euler is forward Euler, the scheme the reference model itself uses.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t float64, dt float64) sim.State {
	dx := dyn.Derivative(x, u, t)
	result := make(sim.State, len(x))
	floats.AddScaledTo(result, x, dt, dx)
	return result
}
