package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/san-kum/mrac/internal/storage"
)

const (
	vehicleStroke   = "#00ff88"
	referenceStroke = "#888888"
	goalFill        = "#ff4488"
)

// TrajectorySVG draws the vessel track, the reference track and the goals
// of a run, north up, with equal scale on both axes.
func TrajectorySVG(ticks []storage.Tick, goals []r2.Point, width, height int) string {
	if len(ticks) < 2 {
		return ""
	}

	// Find bounds
	pts := make([]r2.Point, 0, 2*len(ticks)+len(goals))
	for _, t := range ticks {
		pts = append(pts, r2.Point{X: t.X, Y: t.Y}, r2.Point{X: t.RefX, Y: t.RefY})
	}
	pts = append(pts, goals...)
	rect := r2.RectFromPoints(pts...)

	// Add padding
	span := math.Max(rect.X.Length(), rect.Y.Length())
	if span == 0 {
		span = 1
	}
	rect = rect.ExpandedByMargin(span * 0.1)
	scale := math.Min(float64(width)/rect.X.Length(), float64(height)/rect.Y.Length())
	project := func(p r2.Point) (float64, float64) {
		return (p.X - rect.X.Lo) * scale, float64(height) - (p.Y-rect.Y.Lo)*scale
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	path := func(stroke, extra string, at func(storage.Tick) r2.Point) {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="M`, stroke, extra))
		for i, t := range ticks {
			x, y := project(at(t))
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}
	path(referenceStroke, ` stroke-dasharray="4 3"`, func(t storage.Tick) r2.Point { return r2.Point{X: t.RefX, Y: t.RefY} })
	path(vehicleStroke, "", func(t storage.Tick) r2.Point { return r2.Point{X: t.X, Y: t.Y} })

	for _, g := range goals {
		x, y := project(g)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
`, x, y, goalFill))
	}

	// final heading
	last := ticks[len(ticks)-1]
	x, y := project(r2.Point{X: last.X, Y: last.Y})
	s, c := math.Sincos(last.Yaw)
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>
`, x, y, x+12*c, y-12*s, vehicleStroke))

	sb.WriteString("</svg>")
	return sb.String()
}
