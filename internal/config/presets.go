package config

import (
	"sort"

	"github.com/golang/geo/r2"

	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/sim"
)

// Preset is a named simulation scenario applied over the defaults.
type Preset struct {
	Description string
	apply       func(*Config)
}

func at(t, x, y, headingDeg float64) sim.ScheduledWaypoint {
	return sim.ScheduledWaypoint{At: t, Command: dynamo.WaypointCommand{X: x, Y: y, HeadingDeg: headingDeg}}
}

var Presets = map[string]Preset{
	"station_hold": {
		Description: "hold the start pose against a light current",
		apply: func(c *Config) {
			c.Sim.Duration = 60
			c.Sim.Waypoints = []sim.ScheduledWaypoint{at(0, 0, 0, 0)}
			c.Plant.Current = r2.Point{X: 0.1, Y: 0.1}
		},
	},
	"transit": {
		Description: "short transit with a final heading change",
		apply: func(c *Config) {
			c.Sim.Duration = 120
			c.Sim.Waypoints = []sim.ScheduledWaypoint{at(0, 40, 20, 90)}
		},
	},
	"long_transit": {
		Description: "transit beyond the heading threshold, bow on the goal first",
		apply: func(c *Config) {
			c.Sim.Duration = 600
			c.Sim.RecordEvery = 5
			c.Sim.Waypoints = []sim.ScheduledWaypoint{at(0, 600, 0, 180)}
		},
	},
	"current": {
		Description: "cross current with adaptive feedforward",
		apply: func(c *Config) {
			c.Sim.Duration = 180
			c.Sim.Waypoints = []sim.ScheduledWaypoint{at(0, 30, 0, 0)}
			c.Plant.Current = r2.Point{Y: 0.3}
			c.Controller.PDOnly = false
		},
	},
	"disturbance": {
		Description: "constant push and torque, adaptive feedforward",
		apply: func(c *Config) {
			c.Sim.Duration = 180
			c.Sim.Waypoints = []sim.ScheduledWaypoint{at(0, 10, 10, 45)}
			c.Plant.Disturbance = [3]float64{50, -30, 10}
			c.Controller.PDOnly = false
		},
	},
	"square": {
		Description: "four corners of a 20 m square, one per minute",
		apply: func(c *Config) {
			c.Sim.Duration = 240
			c.Sim.Waypoints = []sim.ScheduledWaypoint{
				at(0, 20, 0, 90),
				at(60, 20, 20, 180),
				at(120, 0, 20, -90),
				at(180, 0, 0, 0),
			}
		},
	},
}

// GetPreset returns the defaults with the named scenario applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
