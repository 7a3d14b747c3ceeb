package experiment

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/mrac/internal/config"
	"github.com/san-kum/mrac/internal/control"
	"github.com/san-kum/mrac/internal/models"
	"github.com/san-kum/mrac/internal/sim"
	"github.com/san-kum/mrac/internal/thrusters"
)

// Experiment is one configured closed-loop simulation.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
	plant     *models.Boat
}

// New validates cfg and wires the plant, controller, integrator and
// metrics into a simulator.
func New(cfg *config.Config, logger *zap.SugaredLogger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	reg := NewRegistry()

	integ, err := reg.GetIntegrator(cfg.Sim.Integrator)
	if err != nil {
		return nil, err
	}
	cc := cfg.ToControl()
	ctrl, err := control.NewController(cc, logger.Named("control"))
	if err != nil {
		return nil, errors.Wrap(err, "controller")
	}

	plant := NewPlant(cfg, ctrl.Geometry())
	s := sim.New(plant, integ, ctrl, logger.Named("sim"))
	for _, m := range reg.DefaultMetrics(cc) {
		s.AddMetric(m)
	}
	return &Experiment{cfg: cfg, simulator: s, plant: plant}, nil
}

// NewPlant builds the simulated hull described by the plant section.
func NewPlant(cfg *config.Config, geom *thrusters.Geometry) *models.Boat {
	p := cfg.Plant
	b := models.NewBoat()
	b.Mass, b.Inertia = p.Mass, p.Inertia
	b.LinearDrag, b.QuadraticDrag = p.LinearDrag, p.QuadraticDrag
	b.Current = p.Current
	b.Disturbance = p.Disturbance
	if p.UseThrusters {
		b.WithThrusters(thrusters.NewAllocator(geom))
	}
	return b
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.cfg.GetInitState(), e.cfg.SimSettings())
}

// Session starts a step-at-a-time run for interactive front ends.
func (e *Experiment) Session() (*sim.Session, error) {
	return e.simulator.NewSession(e.cfg.GetInitState(), e.cfg.SimSettings())
}

func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Plant() *models.Boat {
	return e.plant
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}
