package control

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/thrusters"
)

// Output is the result of one control tick.
type Output struct {
	Stamp     time.Time
	Dt        float64
	Wrench    dynamo.Wrench
	Reference dynamo.Pose
	Estimates Estimates
	Tracking  Tracking
	// Active is false until the first waypoint takes effect; the wrench is
	// zero while inactive.
	Active bool
}

// Controller holds the persistent state of the model-reference adaptive
// controller and runs the per-tick sequence: feedback law, estimator
// update, reference step. Calls are serialized by an internal lock.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	logger *zap.SugaredLogger

	geom     *thrusters.Geometry
	feedback *Feedback
	est      *Estimator
	ref      *ReferenceModel

	last    dynamo.VehicleState
	hasLast bool
	// pending holds a waypoint received before any vehicle state.
	pending *Waypoint
}

func NewController(cfg Config, logger *zap.SugaredLogger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	geom, err := thrusters.NewGeometry(cfg.Thrusters, cfg.ThrustMax, cfg.VelMaxBody)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Controller{
		cfg:      cfg,
		logger:   logger,
		geom:     geom,
		feedback: NewFeedback(cfg),
		est:      NewEstimator(cfg),
		ref:      NewReferenceModel(cfg, geom),
	}, nil
}

func (c *Controller) Config() Config {
	return c.cfg
}

func (c *Controller) Geometry() *thrusters.Geometry {
	return c.geom
}

// OnWaypoint replaces the desired pose and restarts the reference trajectory
// from the latest vehicle state. Estimates are kept. The returned waypoint
// is the new desired pose.
func (c *Controller) OnWaypoint(cmd dynamo.WaypointCommand) Waypoint {
	c.mu.Lock()
	defer c.mu.Unlock()

	wp := Waypoint{Position: cmd.Position(), Orientation: cmd.Orientation()}
	if !c.hasLast {
		c.pending = &wp
		c.logger.Infow("waypoint queued until first state", "x", cmd.X, "y", cmd.Y, "heading_deg", cmd.HeadingDeg)
		return wp
	}
	return c.setWaypoint(wp, c.last)
}

func (c *Controller) setWaypoint(wp Waypoint, vs dynamo.VehicleState) Waypoint {
	wp.Traversal = wp.Position.Sub(vs.Pose.Position).Norm()
	c.ref.Reset(vs.Pose, vs.WorldTwist(), wp)
	c.logger.Infow("waypoint set",
		"x", wp.Position.X, "y", wp.Position.Y,
		"heading", dynamo.Yaw(wp.Orientation), "traversal", wp.Traversal)
	return wp
}

// OnVehicleState runs one control tick for a new state estimate.
func (c *Controller) OnVehicleState(vs dynamo.VehicleState) (Output, error) {
	if err := vs.Validate(); err != nil {
		return Output{Stamp: vs.Stamp}, errors.Wrap(err, "vehicle state")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dt := c.timestep(vs.Stamp)
	c.last, c.hasLast = vs, true
	if c.pending != nil {
		c.setWaypoint(*c.pending, vs)
		c.pending = nil
	}

	out := Output{Stamp: vs.Stamp, Dt: dt, Estimates: c.est.Estimates()}
	if !c.ref.Initialized() {
		out.Reference = vs.Pose
		return out, nil
	}

	wrench, tr := c.feedback.Compute(vs.Pose, vs.WorldTwist(), c.ref.State(), c.est)
	if err := c.est.Update(tr.Err, tr.ErrDot, tr.Regressor, dt); err != nil {
		c.logger.Warnw("estimator update rejected", "error", err)
	}
	c.ref.Step(dt)

	out.Active = true
	out.Wrench = wrench
	out.Tracking = tr
	out.Reference = c.ref.State().Pose()
	out.Estimates = c.est.Estimates()
	return out, nil
}

// timestep derives dt from the stamp delta, falling back to the default dt
// on the first tick and clamping to MinDt.
func (c *Controller) timestep(stamp time.Time) float64 {
	if !c.hasLast {
		return c.cfg.DefaultDt
	}
	dt := stamp.Sub(c.last.Stamp).Seconds()
	if dt < c.cfg.MinDt {
		c.logger.Debugw("clamping timestep", "dt", dt, "min_dt", c.cfg.MinDt)
		dt = c.cfg.MinDt
	}
	return dt
}

func (c *Controller) Reference() ReferenceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ref.State()
}

// HeadingTarget is the heading the reference model currently steers toward.
func (c *Controller) HeadingTarget() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dynamo.Yaw(c.ref.HeadingTarget())
}

// Waypoint returns the active waypoint and whether one has taken effect.
func (c *Controller) Waypoint() (Waypoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ref.Goal(), c.ref.Initialized()
}

func (c *Controller) Estimates() Estimates {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.est.Estimates()
}

// EstimateMagnitudes returns the norms of the disturbance and drag estimates.
func (c *Controller) EstimateMagnitudes() (dist, drag float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.est.Magnitudes()
}
