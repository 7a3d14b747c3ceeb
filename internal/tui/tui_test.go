package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/geo/r2"

	"github.com/san-kum/mrac/internal/control"
	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/sim"
)

func TestCanvasFitKeepsPointsInside(t *testing.T) {
	c := newCanvas(42, 12)
	pts := []r2.Point{{X: -10, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 4}}
	c.fit(pts...)
	for _, p := range pts {
		x, y := c.cell(p)
		if x < 0 || x >= c.w || y < 0 || y >= c.h {
			t.Errorf("point %v mapped outside canvas to (%d,%d)", p, x, y)
		}
	}
	x, y := c.cell(c.center)
	if x != c.w/2 || y != c.h/2 {
		t.Errorf("center mapped to (%d,%d)", x, y)
	}
}

func TestCanvasPoseDrawsHeadingTick(t *testing.T) {
	c := newCanvas(20, 10)
	c.fit(r2.Point{})
	c.pose(dynamo.Pose{Orientation: dynamo.YawQuat(0)}, 'X', '=')

	row := string(c.cells[c.h/2])
	if row[c.w/2] != 'X' {
		t.Fatalf("body not at center: %q", row)
	}
	if !strings.Contains(row[c.w/2:], "X===") {
		t.Errorf("heading tick should point east: %q", row)
	}
}

func TestCanvasSetClipsOutOfRange(t *testing.T) {
	c := newCanvas(4, 2)
	c.set(-1, 0, '#')
	c.set(4, 1, '#')
	c.set(0, 2, '#')
	if strings.Contains(c.String(), "#") {
		t.Error("out of range cells were drawn")
	}
}

func sampleAt(step int, x, y float64) sim.Sample {
	return sim.Sample{
		Step: step,
		Time: float64(step) * 0.02,
		Vehicle: dynamo.VehicleState{
			Pose: dynamo.Pose{Position: r2.Point{X: x, Y: y}, Orientation: dynamo.YawQuat(0)},
		},
		Waypoint:    control.Waypoint{Position: r2.Point{X: 20, Y: 10}, Orientation: dynamo.YawQuat(0)},
		HasWaypoint: true,
	}
}

func TestLiveRendererRateLimits(t *testing.T) {
	var buf bytes.Buffer
	now := time.Unix(100, 0)
	r := NewLiveRenderer("transit", 10)
	r.out = &buf
	r.now = func() time.Time { return now }

	r.OnStep(sampleAt(1, 0, 0))
	first := buf.Len()
	if first == 0 {
		t.Fatal("first step should draw a frame")
	}
	if !strings.Contains(buf.String(), "transit") || !strings.Contains(buf.String(), "goal=") {
		t.Errorf("frame missing header or stats:\n%s", buf.String())
	}

	now = now.Add(10 * time.Millisecond)
	r.OnStep(sampleAt(2, 0.1, 0))
	if buf.Len() != first {
		t.Error("frame drawn faster than the frame rate")
	}
	if len(r.trail) != 2 {
		t.Errorf("trail length = %d", len(r.trail))
	}

	now = now.Add(100 * time.Millisecond)
	r.OnStep(sampleAt(3, 0.2, 0))
	if buf.Len() == first {
		t.Error("expected a second frame")
	}
}

func TestInteractiveStartsPresetAndSteps(t *testing.T) {
	app := NewInteractiveApp(nil)
	if len(app.presets) == 0 {
		t.Fatal("no presets listed")
	}

	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := next.(model)
	if m.state != stateSim || m.sess == nil {
		t.Fatalf("expected running session, err=%v", m.err)
	}

	next, _ = m.Update(tickMsg(time.Now()))
	m = next.(model)
	if m.sess.Time() <= 0 {
		t.Errorf("session did not advance, t=%v", m.sess.Time())
	}
	if !strings.Contains(m.View(), m.selected) {
		t.Error("sim view should name the running preset")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = next.(model)
	if m.speed != 2 {
		t.Errorf("speed = %v", m.speed)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(model)
	if m.state != stateMenu || m.sess != nil {
		t.Error("esc should return to the menu")
	}
}
