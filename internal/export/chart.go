package export

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/mrac/internal/storage"
)

// Series picks one value out of a tick.
type Series struct {
	Name  string
	Value func(storage.Tick) float64
}

// TrackingSeries are the position and reference channels of a run.
var TrackingSeries = []Series{
	{"x", func(t storage.Tick) float64 { return t.X }},
	{"ref x", func(t storage.Tick) float64 { return t.RefX }},
	{"y", func(t storage.Tick) float64 { return t.Y }},
	{"ref y", func(t storage.Tick) float64 { return t.RefY }},
	{"goal distance", func(t storage.Tick) float64 { return t.GoalDistance }},
}

// TimeSeriesPlot builds a line plot of the given series against time.
func TimeSeriesPlot(title string, ticks []storage.Tick, series []Series) (*plot.Plot, error) {
	if len(ticks) < 2 {
		return nil, fmt.Errorf("not enough data to plot: %d ticks", len(ticks))
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no series to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts := make(plotter.XYs, len(ticks))
		for j, t := range ticks {
			pts[j].X = t.Time
			pts[j].Y = s.Value(t)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	return p, nil
}

// WritePNG renders p as a PNG of the given size in inches.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}
