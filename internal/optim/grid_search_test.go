package optim

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/san-kum/mrac/internal/config"
	"github.com/san-kum/mrac/internal/dynamo"
)

func shortTransit() *config.Config {
	cfg := config.GetPreset("transit")
	cfg.Sim.Duration = 4
	return cfg
}

func TestGridSearchEvaluatesEveryPoint(t *testing.T) {
	g := NewWithT(t)

	gs, err := NewGridSearch([]string{"kp_scale", "kd_scale"}, [][]float64{{0.5, 1}, {0.5, 1, 2}})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(gs.Size()).To(Equal(6))

	best, val, trials, err := gs.Search(context.Background(), GainBuilder(shortTransit(), nil), "tracking_rms")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(trials).To(HaveLen(6))
	g.Expect(best).To(HaveKey("kp_scale"))
	g.Expect(best).To(HaveKey("kd_scale"))

	for _, tr := range trials {
		g.Expect(tr.Err).NotTo(HaveOccurred())
		g.Expect(val).To(BeNumerically("<=", tr.Value))
	}
}

func TestGainBuilderScalesBase(t *testing.T) {
	g := NewWithT(t)

	base := shortTransit()
	exp, err := GainBuilder(base, nil)(map[string]float64{"kp_scale": 2, "kg": 0.5})
	g.Expect(err).NotTo(HaveOccurred())

	got := exp.Config().Controller
	g.Expect(got.Kp[0]).To(Equal(2 * base.Controller.Kp[0]))
	g.Expect(got.Kg).To(Equal([5]float64{0.5, 0.5, 0.5, 0.5, 0.5}))
	g.Expect(base.Controller.Kg).NotTo(Equal(got.Kg), "base config must not change")
}

func TestGridSearchReportsFailures(t *testing.T) {
	gs, err := NewGridSearch([]string{"bogus"}, [][]float64{{1}})
	if err != nil {
		t.Fatal(err)
	}
	_, _, trials, err := gs.Search(context.Background(), GainBuilder(shortTransit(), nil), "tracking_rms")
	if err == nil {
		t.Fatal("expected failure when every trial errors")
	}
	if len(trials) != 1 || !errors.Is(trials[0].Err, dynamo.ErrInvalidConfig) {
		t.Errorf("trials = %+v", trials)
	}
}

func TestGridSearchHonorsCancel(t *testing.T) {
	gs, err := NewGridSearch([]string{"ki"}, [][]float64{{0.1, 0.2}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, _, err := gs.Search(ctx, GainBuilder(shortTransit(), nil), "tracking_rms"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		ranges [][]float64
	}{
		{"empty", nil, nil},
		{"mismatch", []string{"ki"}, nil},
		{"empty range", []string{"ki"}, [][]float64{{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGridSearch(tt.params, tt.ranges); !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("err = %v", err)
			}
		})
	}
}
