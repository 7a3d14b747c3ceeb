package control

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/thrusters"
)

const (
	DefaultDt          = 0.02
	DefaultMinDt       = 1e-3
	DefaultWrenchLimit = 600.0
)

// Config is the immutable tuning of a controller. Gains are diagonal and
// expressed in the body frame; adaptation rates act in the world frame.
type Config struct {
	Kp [3]float64
	Kd [3]float64
	// Ki is the disturbance adaptation rate, Kg the drag adaptation rate.
	Ki [3]float64
	Kg [5]float64

	InitialDisturbance [3]float64
	InitialDrag        [5]float64

	// VelMaxBody caps surge, sway (m/s) and yaw rate (rad/s) of the reference.
	VelMaxBody       [3]float64
	HeadingThreshold float64

	// PDOnly leaves feedforward and estimates out of the wrench.
	PDOnly bool
	// Adapt enables estimator updates.
	Adapt bool

	Mass      float64
	Inertia   float64
	ThrustMax float64
	Thrusters []thrusters.Thruster

	// WrenchLimit is a software safety clamp on each body wrench component.
	WrenchLimit [3]float64

	DefaultDt float64
	MinDt     float64
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf(format, args...))
		}
	}
	positive := func(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

	for i := range c.Kp {
		check(positive(c.Kp[i]), "kp[%d] must be positive, got %v", i, c.Kp[i])
		check(c.Kd[i] >= 0 && dynamo.Finite(c.Kd[i]), "kd[%d] must be non-negative, got %v", i, c.Kd[i])
		check(positive(c.VelMaxBody[i]), "vel_max_body[%d] must be positive, got %v", i, c.VelMaxBody[i])
		check(positive(c.WrenchLimit[i]), "wrench_limit[%d] must be positive, got %v", i, c.WrenchLimit[i])
	}
	if c.Adapt {
		for i, k := range c.Ki {
			check(positive(k), "ki[%d] must be positive when adapting, got %v", i, k)
		}
		for i, k := range c.Kg {
			check(positive(k), "kg[%d] must be positive when adapting, got %v", i, k)
		}
	}
	check(dynamo.Finite(c.InitialDisturbance[:]...), "initial disturbance must be finite")
	check(dynamo.Finite(c.InitialDrag[:]...), "initial drag must be finite")
	check(positive(c.HeadingThreshold), "heading threshold must be positive, got %v", c.HeadingThreshold)
	check(positive(c.Mass), "mass must be positive, got %v", c.Mass)
	check(positive(c.Inertia), "inertia must be positive, got %v", c.Inertia)
	check(positive(c.ThrustMax), "thrust max must be positive, got %v", c.ThrustMax)
	check(len(c.Thrusters) > 0, "at least one thruster is required")
	check(positive(c.DefaultDt), "default dt must be positive, got %v", c.DefaultDt)
	check(positive(c.MinDt), "min dt must be positive, got %v", c.MinDt)

	if err != nil {
		return errors.Wrap(dynamo.ErrInvalidConfig, err.Error())
	}
	return nil
}
