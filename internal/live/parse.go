// Package live bridges the controller to UDP: vehicle state estimates and
// waypoints arrive as CSV datagrams and every state produces a wrench
// datagram.
package live

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/san-kum/mrac/internal/dynamo"
)

// ErrMalformed is returned for datagrams that do not parse.
var ErrMalformed = errors.New("malformed datagram")

// ParseState parses "stamp,x,y,qw,qx,qy,qz,vx,vy,vz,wx,wy,wz". The
// stampless 12-field form is stamped with now.
func ParseState(b []byte, now time.Time) (dynamo.VehicleState, error) {
	vals, err := parseFields(b, 12, 13)
	if err != nil {
		return dynamo.VehicleState{}, err
	}
	stamp := now
	if len(vals) == 13 {
		stamp = fromSeconds(vals[0])
		vals = vals[1:]
	}
	return dynamo.VehicleState{
		Stamp: stamp,
		Pose: dynamo.Pose{
			Position:    r2.Point{X: vals[0], Y: vals[1]},
			Orientation: quat.Number{Real: vals[2], Imag: vals[3], Jmag: vals[4], Kmag: vals[5]},
		},
		BodyLinear:  r3.Vector{X: vals[6], Y: vals[7], Z: vals[8]},
		BodyAngular: r3.Vector{X: vals[9], Y: vals[10], Z: vals[11]},
	}, nil
}

// ParseWaypoint parses "x,y,heading_deg".
func ParseWaypoint(b []byte) (dynamo.WaypointCommand, error) {
	vals, err := parseFields(b, 3)
	if err != nil {
		return dynamo.WaypointCommand{}, err
	}
	if !dynamo.Finite(vals...) {
		return dynamo.WaypointCommand{}, errors.Wrap(ErrMalformed, "waypoint is not finite")
	}
	return dynamo.WaypointCommand{X: vals[0], Y: vals[1], HeadingDeg: vals[2]}, nil
}

// FormatWrench renders "stamp,fx,fy,tz".
func FormatWrench(stamp time.Time, w dynamo.Wrench) []byte {
	return []byte(fmt.Sprintf("%.6f,%.4f,%.4f,%.4f", toSeconds(stamp), w.Force.X, w.Force.Y, w.Torque))
}

// FormatReference renders "stamp,x,y,yaw_deg".
func FormatReference(stamp time.Time, p dynamo.Pose) []byte {
	return []byte(fmt.Sprintf("%.6f,%.4f,%.4f,%.3f", toSeconds(stamp), p.Position.X, p.Position.Y, p.Heading()*180/math.Pi))
}

func parseFields(b []byte, counts ...int) ([]float64, error) {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return nil, errors.Wrap(ErrMalformed, "empty payload")
	}
	parts := strings.Split(s, ",")
	ok := false
	for _, n := range counts {
		ok = ok || len(parts) == n
	}
	if !ok {
		return nil, errors.Wrapf(ErrMalformed, "expected %v fields, got %d", counts, len(parts))
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "field %d: %v", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func fromSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

func toSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
