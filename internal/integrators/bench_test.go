package integrators

import (
	"testing"

	"github.com/san-kum/mrac/internal/models"
	"github.com/san-kum/mrac/internal/sim"
)

func benchmarkBoat(b *testing.B, integ sim.Integrator) {
	boat := models.NewBoat()
	x := models.InitialState(0, 0, 0)
	u := sim.Control{300, 50, 20}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(boat, x, u, 0, 0.02)
	}
}

func BenchmarkEuler(b *testing.B) { benchmarkBoat(b, NewEuler()) }
func BenchmarkRK4(b *testing.B)   { benchmarkBoat(b, NewRK4()) }
