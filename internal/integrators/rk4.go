package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mrac/internal/sim"
)

// RK4 is the classic fourth-order Runge-Kutta scheme with the control held
// constant across the step. Scratch buffers are reused between steps, so
// an RK4 must not be shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4 sim.State
	scratch        sim.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(sim.State, n)
		r.k2 = make(sim.State, n)
		r.k3 = make(sim.State, n)
		r.k4 = make(sim.State, n)
		r.scratch = make(sim.State, n)
	}
}

func (r *RK4) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, dyn.Derivative(x, u, t))

	floats.AddScaledTo(r.scratch, x, dt*0.5, r.k1)
	copy(r.k2, dyn.Derivative(r.scratch, u, t+dt*0.5))

	floats.AddScaledTo(r.scratch, x, dt*0.5, r.k2)
	copy(r.k3, dyn.Derivative(r.scratch, u, t+dt*0.5))

	floats.AddScaledTo(r.scratch, x, dt, r.k3)
	copy(r.k4, dyn.Derivative(r.scratch, u, t+dt))

	result := make(sim.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result
}
