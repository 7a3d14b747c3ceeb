package control

import (
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/thrusters"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		Kp:               [3]float64{600, 700, 700},
		Kd:               [3]float64{650, 750, 750},
		Ki:               [3]float64{0.1, 0.1, 0.1},
		Kg:               [5]float64{3, 3, 3, 3, 3},
		VelMaxBody:       [3]float64{1.5, 0.5, 0.5},
		HeadingThreshold: 500,
		PDOnly:           true,
		Adapt:            true,
		Mass:             300,
		Inertia:          300,
		ThrustMax:        220,
		Thrusters: []thrusters.Thruster{
			{Position: r3.Vector{X: -1.9, Y: 1.0, Z: -0.0123}, Direction: r3.Vector{X: 0.7071, Y: 0.7071}},
			{Position: r3.Vector{X: -1.9, Y: -1.0, Z: -0.0123}, Direction: r3.Vector{X: 0.7071, Y: -0.7071}},
			{Position: r3.Vector{X: 1.6, Y: -0.6, Z: -0.0123}, Direction: r3.Vector{X: 0.7071, Y: 0.7071}},
			{Position: r3.Vector{X: 1.6, Y: 0.6, Z: -0.0123}, Direction: r3.Vector{X: 0.7071, Y: -0.7071}},
		},
		WrenchLimit: [3]float64{DefaultWrenchLimit, DefaultWrenchLimit, DefaultWrenchLimit},
		DefaultDt:   DefaultDt,
		MinDt:       DefaultMinDt,
	}
}

func newController(t *testing.T, cfg Config) *Controller {
	t.Helper()
	c, err := NewController(cfg, zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	return c
}

func newQuietController(cfg Config) *Controller {
	c, err := NewController(cfg, zap.NewNop().Sugar())
	if err != nil {
		panic(err)
	}
	return c
}

func stateAt(t float64, x, y, yaw float64) dynamo.VehicleState {
	return dynamo.VehicleState{
		Stamp: epoch.Add(time.Duration(t * float64(time.Second))),
		Pose: dynamo.Pose{
			Position:    r2.Point{X: x, Y: y},
			Orientation: dynamo.YawQuat(yaw),
		},
	}
}
