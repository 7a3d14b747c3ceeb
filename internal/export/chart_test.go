package export

import (
	"bytes"
	"testing"

	"github.com/san-kum/mrac/internal/storage"
)

func TestWritePNG(t *testing.T) {
	ticks := make([]storage.Tick, 50)
	for i := range ticks {
		ticks[i] = storage.Tick{Time: float64(i) * 0.02, X: float64(i) * 0.1, RefX: float64(i) * 0.11, GoalDistance: 5 - float64(i)*0.1}
	}

	p, err := TimeSeriesPlot("tracking", ticks, TrackingSeries)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, p, 4, 3); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("output is not a png, first bytes %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestTimeSeriesPlotRejects(t *testing.T) {
	if _, err := TimeSeriesPlot("x", []storage.Tick{{}}, TrackingSeries); err == nil {
		t.Error("expected error for a single tick")
	}
	if _, err := TimeSeriesPlot("x", make([]storage.Tick, 3), nil); err == nil {
		t.Error("expected error for no series")
	}
}
