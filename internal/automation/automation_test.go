package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/mrac/internal/storage"
)

const batchYAML = `
name: current check
steps:
  - preset: station_hold
    duration: 3
    save_as: hold_pd
  - preset: station_hold
    duration: 3
    pd_only: false
    current: {x: 0.2, y: 0}
    waypoints:
      - at: 0
        command: {x: 2, y: 1, heading_deg: 45}
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	g := NewWithT(t)

	sc, err := LoadScenario(writeScenario(t, batchYAML))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sc.Name).To(Equal("current check"))
	g.Expect(sc.Steps).To(HaveLen(2))
	g.Expect(sc.Steps[0].Name(0)).To(Equal("hold_pd"))
	g.Expect(sc.Steps[1].Name(1)).To(Equal("station_hold"))

	cfg, err := sc.Steps[1].Build()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Controller.PDOnly).To(BeFalse())
	g.Expect(cfg.Plant.Current.X).To(Equal(0.2))
	g.Expect(cfg.Sim.Duration).To(Equal(3.0))
	g.Expect(cfg.Sim.Waypoints).To(HaveLen(1))
	g.Expect(cfg.Sim.Waypoints[0].Command.HeadingDeg).To(Equal(45.0))
}

func TestLoadScenarioRejectsEmpty(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: nothing\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
}

func TestRunScenarioStoresEachStep(t *testing.T) {
	g := NewWithT(t)

	sc, err := LoadScenario(writeScenario(t, batchYAML))
	g.Expect(err).NotTo(HaveOccurred())

	store := storage.New(t.TempDir())
	g.Expect(store.Init()).To(Succeed())

	results, err := RunScenario(context.Background(), sc, store, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(2))
	for _, r := range results {
		g.Expect(r.RunID).NotTo(BeEmpty())
		g.Expect(r.Result.StepsTaken).To(Equal(150))
	}

	runs, err := store.List()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(runs).To(HaveLen(2))
}

func TestRunScenarioStopsOnBadStep(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Preset: "station_hold", Duration: 1}, {Preset: "nope"}}}
	results, err := RunScenario(context.Background(), sc, nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown preset")
	}
	if len(results) != 1 || results[0].RunID != "" {
		t.Errorf("results = %+v", results)
	}
}
