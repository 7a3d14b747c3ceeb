package config

import (
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mrac/internal/control"
	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/logging"
	"github.com/san-kum/mrac/internal/sim"
	"github.com/san-kum/mrac/internal/thrusters"
)

const (
	DefaultDuration         = 120.0
	DefaultHeadingThreshold = 500.0
	DefaultMass             = 300.0
	DefaultInertia          = 300.0
	DefaultThrustMax        = 220.0
	DefaultIntegrator       = "rk4"
	DefaultStateAddr        = ":7400"
	DefaultWaypointAddr     = ":7401"
	DefaultWrenchAddr       = "127.0.0.1:7402"
)

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Vehicle    VehicleConfig    `yaml:"vehicle"`
	Plant      PlantConfig      `yaml:"plant"`
	Sim        SimConfig        `yaml:"sim"`
	Live       LiveConfig       `yaml:"live"`
	Log        logging.Config   `yaml:"log"`
}

type ControllerConfig struct {
	Kp                 [3]float64 `yaml:"kp"`
	Kd                 [3]float64 `yaml:"kd"`
	Ki                 [3]float64 `yaml:"ki"`
	Kg                 [5]float64 `yaml:"kg"`
	InitialDisturbance [3]float64 `yaml:"initial_disturbance"`
	InitialDrag        [5]float64 `yaml:"initial_drag"`
	VelMaxBody         [3]float64 `yaml:"vel_max_body"`
	HeadingThreshold   float64    `yaml:"heading_threshold"`
	PDOnly             bool       `yaml:"pd_only"`
	Adapt              bool       `yaml:"adapt"`
	WrenchLimit        [3]float64 `yaml:"wrench_limit"`
	DefaultDt          float64    `yaml:"default_dt"`
	MinDt              float64    `yaml:"min_dt"`
}

type VehicleConfig struct {
	Mass      float64              `yaml:"mass"`
	Inertia   float64              `yaml:"inertia"`
	ThrustMax float64              `yaml:"thrust_max"`
	Thrusters []thrusters.Thruster `yaml:"thrusters"`
}

// PlantConfig describes the simulated hull. It is deliberately separate
// from VehicleConfig: the controller's model and the true boat differ.
type PlantConfig struct {
	Mass          float64    `yaml:"mass"`
	Inertia       float64    `yaml:"inertia"`
	LinearDrag    [3]float64 `yaml:"linear_drag"`
	QuadraticDrag [3]float64 `yaml:"quadratic_drag"`
	Current       r2.Point   `yaml:"current"`
	Disturbance   [3]float64 `yaml:"disturbance"`
	UseThrusters  bool       `yaml:"use_thrusters"`
}

type InitialPose struct {
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	HeadingDeg float64 `yaml:"heading_deg"`
}

type SimConfig struct {
	Dt          float64                 `yaml:"dt"`
	Duration    float64                 `yaml:"duration"`
	Integrator  string                  `yaml:"integrator"`
	RecordEvery int                     `yaml:"record_every"`
	Initial     InitialPose             `yaml:"initial"`
	Waypoints   []sim.ScheduledWaypoint `yaml:"waypoints"`
}

type LiveConfig struct {
	StateAddr     string `yaml:"state_addr"`
	WaypointAddr  string `yaml:"waypoint_addr"`
	WrenchAddr    string `yaml:"wrench_addr"`
	ReferenceAddr string `yaml:"reference_addr,omitempty"`
	// StaleAfter is how long, in seconds, the bridge tolerates silence on
	// the state socket before warning.
	StaleAfter float64 `yaml:"stale_after"`
}

// DefaultThrusters is the four-thruster vectored layout of the original
// hull: two aft and two forward, each angled 45 degrees.
func DefaultThrusters() []thrusters.Thruster {
	const d = 0.7071
	const z = -0.0123
	return []thrusters.Thruster{
		{Position: r3.Vector{X: -1.9, Y: 1.0, Z: z}, Direction: r3.Vector{X: d, Y: d}},
		{Position: r3.Vector{X: -1.9, Y: -1.0, Z: z}, Direction: r3.Vector{X: d, Y: -d}},
		{Position: r3.Vector{X: 1.6, Y: -0.6, Z: z}, Direction: r3.Vector{X: d, Y: d}},
		{Position: r3.Vector{X: 1.6, Y: 0.6, Z: z}, Direction: r3.Vector{X: d, Y: -d}},
	}
}

func DefaultConfig() *Config {
	limit := control.DefaultWrenchLimit
	return &Config{
		Controller: ControllerConfig{
			Kp:               [3]float64{600, 700, 700},
			Kd:               [3]float64{650, 750, 750},
			Ki:               [3]float64{0.1, 0.1, 0.1},
			Kg:               [5]float64{3, 3, 3, 3, 3},
			VelMaxBody:       [3]float64{1.5, 0.5, 0.5},
			HeadingThreshold: DefaultHeadingThreshold,
			PDOnly:           true,
			Adapt:            true,
			WrenchLimit:      [3]float64{limit, limit, limit},
			DefaultDt:        control.DefaultDt,
			MinDt:            control.DefaultMinDt,
		},
		Vehicle: VehicleConfig{
			Mass:      DefaultMass,
			Inertia:   DefaultInertia,
			ThrustMax: DefaultThrustMax,
			Thrusters: DefaultThrusters(),
		},
		Plant: PlantConfig{
			Mass:          DefaultMass,
			Inertia:       DefaultInertia,
			LinearDrag:    [3]float64{40, 80, 80},
			QuadraticDrag: [3]float64{60, 150, 150},
			UseThrusters:  true,
		},
		Sim: SimConfig{
			Dt:         control.DefaultDt,
			Duration:   DefaultDuration,
			Integrator: DefaultIntegrator,
			Waypoints: []sim.ScheduledWaypoint{
				{At: 0, Command: dynamo.WaypointCommand{X: 20, Y: 10, HeadingDeg: 90}},
			},
		},
		Live: LiveConfig{
			StateAddr:    DefaultStateAddr,
			WaypointAddr: DefaultWaypointAddr,
			WrenchAddr:   DefaultWrenchAddr,
			StaleAfter:   1,
		},
		Log: logging.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults, so a partial file only
// overrides what it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToControl builds the immutable controller configuration.
func (c *Config) ToControl() control.Config {
	ts := make([]thrusters.Thruster, len(c.Vehicle.Thrusters))
	copy(ts, c.Vehicle.Thrusters)
	return control.Config{
		Kp:                 c.Controller.Kp,
		Kd:                 c.Controller.Kd,
		Ki:                 c.Controller.Ki,
		Kg:                 c.Controller.Kg,
		InitialDisturbance: c.Controller.InitialDisturbance,
		InitialDrag:        c.Controller.InitialDrag,
		VelMaxBody:         c.Controller.VelMaxBody,
		HeadingThreshold:   c.Controller.HeadingThreshold,
		PDOnly:             c.Controller.PDOnly,
		Adapt:              c.Controller.Adapt,
		Mass:               c.Vehicle.Mass,
		Inertia:            c.Vehicle.Inertia,
		ThrustMax:          c.Vehicle.ThrustMax,
		Thrusters:          ts,
		WrenchLimit:        c.Controller.WrenchLimit,
		DefaultDt:          c.Controller.DefaultDt,
		MinDt:              c.Controller.MinDt,
	}
}

// SimSettings converts the sim section for the simulator.
func (c *Config) SimSettings() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Dt = c.Sim.Dt
	cfg.Duration = c.Sim.Duration
	cfg.RecordEvery = c.Sim.RecordEvery
	cfg.Waypoints = append([]sim.ScheduledWaypoint(nil), c.Sim.Waypoints...)
	return cfg
}

// GetInitState returns the plant's resting state at the configured pose.
func (c *Config) GetInitState() []float64 {
	p := c.Sim.Initial
	return []float64{p.X, p.Y, p.HeadingDeg * math.Pi / 180, 0, 0, 0}
}

// Validate reports every problem in the file at once.
func (c *Config) Validate() error {
	var errs error
	if err := c.ToControl().Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	positive := func(v float64) bool { return v > 0 && !math.IsInf(v, 0) }
	if !positive(c.Plant.Mass) || !positive(c.Plant.Inertia) {
		errs = multierr.Append(errs, errors.Wrap(dynamo.ErrInvalidConfig, "plant mass and inertia must be positive"))
	}
	if !dynamo.Finite(append(c.Plant.LinearDrag[:], c.Plant.QuadraticDrag[:]...)...) {
		errs = multierr.Append(errs, errors.Wrap(dynamo.ErrInvalidConfig, "plant drag must be finite"))
	}
	if !positive(c.Sim.Dt) || !positive(c.Sim.Duration) {
		errs = multierr.Append(errs, errors.Wrap(dynamo.ErrInvalidConfig, "sim dt and duration must be positive"))
	}
	if c.Sim.RecordEvery < 0 {
		errs = multierr.Append(errs, errors.Wrap(dynamo.ErrInvalidConfig, "sim record_every must not be negative"))
	}
	for i, wp := range c.Sim.Waypoints {
		if wp.At < 0 {
			errs = multierr.Append(errs, errors.Wrapf(dynamo.ErrInvalidConfig, "waypoint %d scheduled at negative time", i))
		}
	}
	if errs != nil {
		return errors.Wrap(errs, "config")
	}
	return nil
}
