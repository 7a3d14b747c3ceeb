package export

import (
	"strings"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/san-kum/mrac/internal/storage"
)

func TestTrajectorySVG(t *testing.T) {
	ticks := []storage.Tick{
		{Time: 0, X: 0, Y: 0, RefX: 0, RefY: 0},
		{Time: 1, X: 5, Y: 2, RefX: 6, RefY: 2},
		{Time: 2, X: 10, Y: 5, RefX: 10, RefY: 5},
	}
	goals := []r2.Point{{X: 10, Y: 5}, {X: 0, Y: 10}}

	svg := TrajectorySVG(ticks, goals, 400, 300)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("paths = %d, want vehicle and reference", got)
	}
	if got := strings.Count(svg, "<circle"); got != len(goals) {
		t.Errorf("circles = %d, want %d", got, len(goals))
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("reference track should be dashed")
	}
}

func TestTrajectorySVGNeedsTwoTicks(t *testing.T) {
	if svg := TrajectorySVG([]storage.Tick{{}}, nil, 100, 100); svg != "" {
		t.Errorf("expected empty output, got %q", svg)
	}
}
