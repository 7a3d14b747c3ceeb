package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mrac/internal/config"
	"github.com/san-kum/mrac/internal/experiment"
	"github.com/san-kum/mrac/internal/sim"
	"github.com/san-kum/mrac/internal/storage"
)

// Scenario is a scripted batch of simulation runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or a config file and overrides the
// fields it sets.
type ScenarioStep struct {
	Preset     string                  `yaml:"preset"`
	Config     string                  `yaml:"config"`
	Integrator string                  `yaml:"integrator"`
	Duration   float64                 `yaml:"duration"`
	Dt         float64                 `yaml:"dt"`
	PDOnly     *bool                   `yaml:"pd_only"`
	Adapt      *bool                   `yaml:"adapt"`
	Current    *r2.Point               `yaml:"current"`
	Waypoints  []sim.ScheduledWaypoint `yaml:"waypoints"`
	SaveAs     string                  `yaml:"save_as"`
}

// StepResult is one finished step. RunID is empty when nothing was stored.
type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scenario %s", path)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	if len(scenario.Steps) == 0 {
		return nil, errors.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Name identifies the step in logs and run IDs.
func (s ScenarioStep) Name(i int) string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return s.Preset
	default:
		return fmt.Sprintf("step%d", i+1)
	}
}

// Build resolves the step's configuration.
func (s ScenarioStep) Build() (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, errors.Errorf("unknown preset %q", s.Preset)
		}
	}

	if s.Integrator != "" {
		cfg.Sim.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Sim.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Sim.Dt = s.Dt
	}
	if s.PDOnly != nil {
		cfg.Controller.PDOnly = *s.PDOnly
	}
	if s.Adapt != nil {
		cfg.Controller.Adapt = *s.Adapt
	}
	if s.Current != nil {
		cfg.Plant.Current = *s.Current
	}
	if len(s.Waypoints) > 0 {
		cfg.Sim.Waypoints = s.Waypoints
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first failure.
// Results go to store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, logger *zap.SugaredLogger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name(i)
		logger.Infow("running step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := step.Build()
		if err != nil {
			return results, errors.Wrapf(err, "step %d", i+1)
		}

		exp, err := experiment.New(cfg, logger.Named(name))
		if err != nil {
			return results, errors.Wrapf(err, "step %d setup", i+1)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, errors.Wrapf(err, "step %d run", i+1)
		}

		sr := StepResult{Name: name, Result: result}
		if store != nil {
			sr.RunID, err = store.Save(name, cfg.Sim.Integrator, cfg.SimSettings(), result)
			if err != nil {
				return results, errors.Wrapf(err, "step %d save", i+1)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}
