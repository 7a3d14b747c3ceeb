package experiment

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/mrac/internal/control"
	"github.com/san-kum/mrac/internal/integrators"
	"github.com/san-kum/mrac/internal/metrics"
	"github.com/san-kum/mrac/internal/sim"
)

type Registry struct {
	integrators map[string]func() sim.Integrator
	metrics     map[string]func(control.Config) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() sim.Integrator),
		metrics:     make(map[string]func(control.Config) sim.Metric),
	}

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }

	r.metrics["tracking_rms"] = func(control.Config) sim.Metric { return metrics.NewTrackingError() }
	r.metrics["goal_distance"] = func(control.Config) sim.Metric { return metrics.NewGoalDistance() }
	r.metrics["heading_error"] = func(control.Config) sim.Metric { return metrics.NewHeadingError() }
	r.metrics["settling_time"] = func(control.Config) sim.Metric { return metrics.NewSettling(0.5) }
	r.metrics["control_effort"] = func(control.Config) sim.Metric { return metrics.NewControlEffort() }
	r.metrics["saturation"] = func(c control.Config) sim.Metric { return metrics.NewSaturation(c.WrenchLimit) }
	r.metrics["disturbance_peak"] = func(control.Config) sim.Metric { return metrics.NewEstimateMagnitude() }

	return r
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, errors.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

// DefaultMetrics instantiates every registered metric.
func (r *Registry) DefaultMetrics(cfg control.Config) []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range sortedKeys(r.metrics) {
		out = append(out, r.metrics[name](cfg))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
