package optim

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/san-kum/mrac/internal/config"
	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/experiment"
)

// Builder turns one grid point into a runnable experiment.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, errors.Wrapf(dynamo.ErrInvalidConfig, "grid has %d names for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, errors.Wrapf(dynamo.ErrInvalidConfig, "empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point and returns the one minimizing metricName,
// along with all trials in grid order. Failed trials are kept with their
// error; Search fails only if none succeeded or ctx was cancelled.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &trials)
	if err := ctx.Err(); err != nil {
		return nil, 0, trials, err
	}

	var errs error
	for _, t := range trials {
		if t.Err != nil {
			errs = multierr.Append(errs, t.Err)
			continue
		}
		if t.Value < best {
			best = t.Value
			bestParams = t.Params
		}
	}
	if bestParams == nil {
		return nil, 0, trials, errors.Wrap(errs, "no trial succeeded")
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	metricName string,
	trials *[]Trial,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		*trials = append(*trials, runTrial(ctx, current, build, metricName))
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, build, metricName, trials)
	}
}

func runTrial(ctx context.Context, params map[string]float64, build Builder, metricName string) Trial {
	t := Trial{Params: params, Value: math.Inf(1)}
	exp, err := build(params)
	if err != nil {
		t.Err = err
		return t
	}
	result, err := exp.Run(ctx)
	if err != nil {
		t.Err = err
		return t
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		t.Err = errors.Errorf("run produced no %q metric", metricName)
		return t
	}
	t.Value = val
	return t
}

// GainParams are the knobs GainBuilder understands. The scale factors
// multiply every axis of the base gain.
var GainParams = map[string]func(c *config.ControllerConfig, v float64){
	"kp_scale": func(c *config.ControllerConfig, v float64) { scale(c.Kp[:], v) },
	"kd_scale": func(c *config.ControllerConfig, v float64) { scale(c.Kd[:], v) },
	"ki":       func(c *config.ControllerConfig, v float64) { fill(c.Ki[:], v) },
	"kg":       func(c *config.ControllerConfig, v float64) { fill(c.Kg[:], v) },
}

// ListGainParams returns the GainParams names in sorted order.
func ListGainParams() []string {
	names := make([]string, 0, len(GainParams))
	for name := range GainParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GainBuilder varies controller gains over a fixed scenario.
func GainBuilder(base *config.Config, logger *zap.SugaredLogger) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		for name, v := range params {
			apply, ok := GainParams[name]
			if !ok {
				return nil, errors.Wrapf(dynamo.ErrInvalidConfig, "unknown gain parameter %q", name)
			}
			apply(&cfg.Controller, v)
		}
		return experiment.New(&cfg, logger)
	}
}

func scale(v []float64, k float64) {
	for i := range v {
		v[i] *= k
	}
}

func fill(v []float64, x float64) {
	for i := range v {
		v[i] = x
	}
}
