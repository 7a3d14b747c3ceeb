package dynamo

import (
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

const eps = 1e-12

func TestYawRoundTrip(t *testing.T) {
	for _, yaw := range []float64{0, 0.3, -1.2, math.Pi / 2, 3.1, -3.1} {
		got := Yaw(YawQuat(yaw))
		if math.Abs(got-yaw) > eps {
			t.Errorf("Yaw(YawQuat(%v)) = %v", yaw, got)
		}
	}
}

func TestHeadingErrorWraps(t *testing.T) {
	tests := []struct {
		name            string
		target, current float64
		want            float64
	}{
		{"zero", 0.5, 0.5, 0},
		{"left", 0.5, 0.2, 0.3},
		{"right", -0.4, 0.1, -0.5},
		{"across pi", -3.0, 3.0, 2*math.Pi - 6.0},
		{"across pi reversed", 3.0, -3.0, 6.0 - 2*math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeadingError(YawQuat(tt.target), YawQuat(tt.current))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HeadingError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotationMatchesYaw(t *testing.T) {
	r := Rotation(YawQuat(math.Pi / 2))
	got := Apply(r, [3]float64{1, 0, 0})
	want := [3]float64{0, 1, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("R·x = %v, want %v", got, want)
		}
	}
	back := ApplyT(r, got)
	if math.Abs(back[0]-1) > eps || math.Abs(back[1]) > eps {
		t.Errorf("Rᵀ·R·x = %v", back)
	}
}

func TestNormalizeRejectsZero(t *testing.T) {
	if _, err := Normalize(quat.Number{}); err != ErrInvalidState {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	q, err := Normalize(quat.Number{Real: 2})
	if err != nil {
		t.Fatal(err)
	}
	if q.Real != 1 {
		t.Errorf("normalized real = %v", q.Real)
	}
}

func TestVehicleStateValidate(t *testing.T) {
	vs := VehicleState{
		Stamp: time.Unix(0, 0),
		Pose:  Pose{Position: r2.Point{X: 1}, Orientation: quat.Number{Real: 0, Kmag: 3}},
	}
	if err := vs.Validate(); err != nil {
		t.Fatal(err)
	}
	if math.Abs(quat.Abs(vs.Pose.Orientation)-1) > eps {
		t.Errorf("orientation not normalized: %v", vs.Pose.Orientation)
	}

	vs.BodyLinear.X = math.NaN()
	if err := vs.Validate(); err != ErrInvalidState {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestWorldTwist(t *testing.T) {
	vs := VehicleState{
		Pose:        Pose{Orientation: YawQuat(math.Pi / 2)},
		BodyLinear:  r3.Vector{X: 1, Y: 0.5, Z: 9},
		BodyAngular: r3.Vector{Z: 0.2},
	}
	tw := vs.WorldTwist()
	if math.Abs(tw.Linear.X+0.5) > eps || math.Abs(tw.Linear.Y-1) > eps {
		t.Errorf("linear = %v", tw.Linear)
	}
	if math.Abs(tw.Angular-0.2) > eps {
		t.Errorf("angular = %v", tw.Angular)
	}
}

func TestWaypointCommandOrientation(t *testing.T) {
	cmd := WaypointCommand{X: 3, Y: 4, HeadingDeg: 90}
	if got := Yaw(cmd.Orientation()); math.Abs(got-math.Pi/2) > eps {
		t.Errorf("yaw = %v", got)
	}
	if cmd.Position() != (r2.Point{X: 3, Y: 4}) {
		t.Errorf("position = %v", cmd.Position())
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 0.06, Wrapped: ErrUnstable}
	if err.Error() == "" {
		t.Fatal("empty message")
	}
	if err.Unwrap() != ErrUnstable {
		t.Errorf("unwrap = %v", err.Unwrap())
	}
}
