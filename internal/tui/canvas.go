package tui

import (
	"math"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/san-kum/mrac/internal/dynamo"
)

// cellAspect is the height/width ratio of a terminal cell.
const cellAspect = 2.0

// canvas is a top-down character map of the water around the vessel,
// east to the right and north up.
type canvas struct {
	w, h   int
	cells  [][]rune
	center r2.Point
	// scale is meters per column.
	scale float64
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, scale: 1}
	c.cells = make([][]rune, h)
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.clear()
	return c
}

func (c *canvas) clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

// fit centers the view on the given points and zooms to keep all of them
// inside with a margin. The scale never drops below one meter per ten
// columns.
func (c *canvas) fit(points ...r2.Point) {
	if len(points) == 0 {
		return
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo = r2.Point{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
		hi = r2.Point{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
	}
	c.center = lo.Add(hi).Mul(0.5)
	span := hi.Sub(lo)
	sx := span.X / float64(c.w-4)
	sy := span.Y * cellAspect / float64(c.h-2)
	c.scale = math.Max(0.1, math.Max(sx, sy)*1.2)
}

// cell maps a world point to a column and row.
func (c *canvas) cell(p r2.Point) (int, int) {
	d := p.Sub(c.center)
	x := c.w/2 + int(math.Round(d.X/c.scale))
	y := c.h/2 - int(math.Round(d.Y/(c.scale*cellAspect)))
	return x, y
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

func (c *canvas) plot(p r2.Point, r rune) {
	x, y := c.cell(p)
	c.set(x, y, r)
}

func (c *canvas) line(x1, y1, x2, y2 int, r rune) {
	dx := intAbs(x2 - x1)
	dy := intAbs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// pose draws a marker with a short heading tick.
func (c *canvas) pose(p dynamo.Pose, body, tick rune) {
	x, y := c.cell(p.Position)
	s, co := math.Sincos(p.Heading())
	tx := x + int(math.Round(3*co))
	ty := y - int(math.Round(3*s/cellAspect))
	c.line(x, y, tx, ty, tick)
	c.set(x, y, body)
}

func (c *canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func intAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
