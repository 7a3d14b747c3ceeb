package sim

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/mrac/internal/control"
	"github.com/san-kum/mrac/internal/dynamo"
)

// Simulator closes the loop between a plant and the adaptive controller:
// every tick the plant state is reported to the controller and the
// resulting wrench is held over one integration step.
type Simulator struct {
	plant      Vehicle
	integrator Integrator
	controller *control.Controller
	metrics    []Metric
	observers  []Observer
	logger     *zap.SugaredLogger
}

func New(plant Vehicle, integrator Integrator, controller *control.Controller, logger *zap.SugaredLogger) *Simulator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Simulator{
		plant:      plant,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Controller() *control.Controller { return s.controller }
func (s *Simulator) Plant() Vehicle                  { return s.plant }

// Run simulates cfg.Duration seconds from x0.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	sess, err := s.NewSession(x0, cfg)
	if err != nil {
		return nil, err
	}

	every := cfg.RecordEvery
	if every <= 0 {
		every = 1
	}
	result := &Result{
		Samples: make([]Sample, 0, sess.steps/every+1),
		Metrics: make(map[string]float64),
	}
	initialEnergy := s.computeEnergy(x0)

	for !sess.Done() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		sample, err := sess.Step()
		if err != nil {
			s.logger.Errorw("simulation stopped", "error", err)
			s.finish(result, sess)
			return result, err
		}
		if sample.Step%every == 0 {
			result.Samples = append(result.Samples, sample)
		}
	}

	s.finish(result, sess)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(s.computeEnergy(sess.x)-initialEnergy) / math.Abs(initialEnergy)
	}
	return result, nil
}

func (s *Simulator) finish(result *Result, sess *Session) {
	result.StepsTaken = sess.step
	result.Final = s.plant.VehicleState(sess.x, sess.stamp())
	if wp, ok := s.controller.Waypoint(); ok {
		result.Goal = wp.Position
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback is like Run but hands every sample to callback and stops
// early when it returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(Sample) bool) error {
	sess, err := s.NewSession(x0, cfg)
	if err != nil {
		return err
	}
	for !sess.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		sample, err := sess.Step()
		if err != nil {
			return err
		}
		if !callback(sample) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return errors.Wrapf(dynamo.ErrInvalidConfig, "dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return errors.Wrapf(dynamo.ErrInvalidConfig, "duration must be positive, got %f", cfg.Duration)
	}
	for i, wp := range cfg.Waypoints {
		if wp.At < 0 || !dynamo.Finite(wp.At, wp.Command.X, wp.Command.Y, wp.Command.HeadingDeg) {
			return errors.Wrapf(dynamo.ErrInvalidConfig, "waypoint %d is invalid", i)
		}
	}
	return nil
}

func (s *Simulator) computeEnergy(x State) float64 {
	if ec, ok := s.plant.(EnergyComputer); ok {
		return ec.Energy(x)
	}
	return 0
}

// Session steps a simulation one tick at a time. It is used by Run and by
// interactive front ends that pace the loop themselves.
type Session struct {
	sim      *Simulator
	cfg      Config
	schedule []ScheduledWaypoint
	next     int

	x     State
	t     float64
	step  int
	steps int
	last  Sample
}

func (s *Simulator) NewSession(x0 State, cfg Config) (*Session, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.plant.StateDim() {
		return nil, errors.Wrapf(dynamo.ErrDimensionMismatch, "initial state has %d entries, plant wants %d", len(x0), s.plant.StateDim())
	}
	schedule := append([]ScheduledWaypoint(nil), cfg.Waypoints...)
	sort.SliceStable(schedule, func(i, j int) bool { return schedule[i].At < schedule[j].At })

	for _, m := range s.metrics {
		m.Reset()
	}
	return &Session{
		sim:      s,
		cfg:      cfg,
		schedule: schedule,
		x:        x0.Clone(),
		steps:    int(math.Round(cfg.Duration / cfg.Dt)),
	}, nil
}

func (ss *Session) Done() bool     { return ss.step >= ss.steps }
func (ss *Session) Time() float64  { return ss.t }
func (ss *Session) State() State   { return ss.x.Clone() }
func (ss *Session) Last() Sample   { return ss.last }
func (ss *Session) Steps() int     { return ss.steps }
func (ss *Session) Config() Config { return ss.cfg }

func (ss *Session) stamp() time.Time {
	return ss.cfg.Epoch.Add(time.Duration(ss.t * float64(time.Second)))
}

// Inject issues a waypoint immediately, ahead of the schedule.
func (ss *Session) Inject(cmd dynamo.WaypointCommand) control.Waypoint {
	return ss.sim.controller.OnWaypoint(cmd)
}

// Step runs one control tick and integrates the plant over dt.
func (ss *Session) Step() (Sample, error) {
	s := ss.sim
	for ss.next < len(ss.schedule) && ss.schedule[ss.next].At <= ss.t+1e-9 {
		cmd := ss.schedule[ss.next].Command
		s.controller.OnWaypoint(cmd)
		s.logger.Debugw("scheduled waypoint", "t", ss.t, "x", cmd.X, "y", cmd.Y, "heading_deg", cmd.HeadingDeg)
		ss.next++
	}

	vs := s.plant.VehicleState(ss.x, ss.stamp())
	out, err := s.controller.OnVehicleState(vs)
	if err != nil {
		return ss.last, &dynamo.SimulationError{Step: ss.step, Time: ss.t, Wrapped: err}
	}

	sample := Sample{Step: ss.step, Time: ss.t, State: ss.x.Clone(), Vehicle: vs, Output: out}
	sample.Waypoint, sample.HasWaypoint = s.controller.Waypoint()

	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, obs := range s.observers {
		obs.OnStep(sample)
	}

	w := out.Wrench
	u := Control{w.Force.X, w.Force.Y, w.Torque}
	next := s.integrator.Step(s.plant, ss.x, u, ss.t, ss.cfg.Dt)
	if ss.cfg.ValidateState && !next.IsValid() {
		ss.last = sample
		return sample, &dynamo.SimulationError{Step: ss.step, Time: ss.t, Wrapped: dynamo.ErrUnstable}
	}

	ss.x = next
	ss.step++
	ss.t = float64(ss.step) * ss.cfg.Dt
	ss.last = sample
	return sample, nil
}
