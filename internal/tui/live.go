package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang/geo/r2"

	"github.com/san-kum/mrac/internal/sim"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a sim.Observer that redraws a plain-terminal frame at a
// bounded rate.
type LiveRenderer struct {
	name      string
	frameRate int
	lastFrame time.Time
	canvas    *canvas
	trail     []r2.Point
	out       io.Writer
	now       func() time.Time
}

func NewLiveRenderer(name string, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		name:      name,
		frameRate: frameRate,
		canvas:    newCanvas(width, height),
		trail:     make([]r2.Point, 0, 200),
		out:       os.Stdout,
		now:       time.Now,
	}
}

func (r *LiveRenderer) OnStep(s sim.Sample) {
	r.trail = append(r.trail, s.Vehicle.Pose.Position)
	if len(r.trail) > 200 {
		r.trail = r.trail[1:]
	}

	now := r.now()
	if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now
	fmt.Fprint(r.out, r.frame(s))
}

func (r *LiveRenderer) frame(s sim.Sample) string {
	drawScene(r.canvas, s, r.trail)

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", r.name, s.Time))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range strings.SplitAfter(r.canvas.String(), "\n") {
		if row != "" {
			b.WriteString("  " + row)
		}
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	pose := s.Vehicle.Pose
	b.WriteString(fmt.Sprintf("  x=%.2f y=%.2f hdg=%.1f°  goal=%.2fm  wrench %s\n",
		pose.Position.X, pose.Position.Y, degrees(pose.Heading()), s.GoalDistance(), s.Output.Wrench))
	return b.String()
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
