package scenario

import (
	"fmt"
	"sort"
)

// Presets are self-contained scenarios for quick runs and demos.
// Velocities are circular-orbit speeds for the given radii.
var Presets = map[string]*Scenario{
	"two_body_circular": {
		Name:     "two_body_circular",
		G:        6.6743e-11,
		Dt:       3600.0,
		Duration: 86400.0 * 30,
		Bodies: []Body{
			{
				Name:   "earth",
				Mass:   5.97e24,
				Major:  true,
				Motive: Model{Kind: "fixed"},
			},
			{
				Name: "sat",
				Mass: 1.0,
				Motive: Model{
					Kind:     "newtonian",
					Position: Vec{X: 1.5e11},
					Velocity: Vec{Y: 51.54},
				},
			},
		},
	},

	"release": {
		Name:     "release",
		G:        6.6743e-11,
		Dt:       1.0,
		Duration: 7200.0,
		Bodies: []Body{
			{
				Name:   "earth",
				Mass:   5.97e24,
				Major:  true,
				Motive: Model{Kind: "fixed"},
			},
			{
				Name:   "station",
				Mass:   4.2e5,
				Motive: Model{Kind: "fixed", Parent: "earth", Offset: Vec{X: 7e6}},
			},
			{
				Name:   "probe",
				Mass:   120.0,
				Motive: Model{Kind: "fixed", Parent: "station"},
				Events: []Event{
					{
						Time:  100.0,
						Event: "release",
						Model: Model{Velocity: Vec{Y: 7544.7}},
					},
				},
			},
		},
	},

	"impulse_burn": {
		Name:     "impulse_burn",
		G:        6.6743e-11,
		Dt:       1.0,
		Duration: 14400.0,
		Bodies: []Body{
			{
				Name:   "earth",
				Mass:   5.97e24,
				Major:  true,
				Motive: Model{Kind: "fixed"},
			},
			{
				Name: "ship",
				Mass: 2.0e4,
				Motive: Model{
					Kind:     "newtonian",
					Position: Vec{X: 7e6},
					Velocity: Vec{Y: 7544.7},
				},
				Events: []Event{
					{
						Time:  1800.0,
						Event: "impulse",
						Model: Model{Velocity: Vec{Y: 500.0}},
					},
				},
			},
		},
	},

	"soi_handoff": {
		Name:     "soi_handoff",
		G:        6.6743e-11,
		Dt:       1.0,
		Duration: 21600.0,
		Bodies: []Body{
			{
				Name:   "earth",
				Mass:   5.97e24,
				Major:  true,
				Motive: Model{Kind: "fixed"},
			},
			{
				Name: "capsule",
				Mass: 800.0,
				Motive: Model{
					Kind:     "newtonian",
					Position: Vec{X: 7e6},
					Velocity: Vec{Y: 7544.7},
				},
				Events: []Event{
					{
						Time:  3600.0,
						Event: "soi_change",
						Model: Model{Primary: "earth"},
					},
				},
			},
		},
	},
}

func GetPreset(name string) (*Scenario, error) {
	sc, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("scenario: unknown preset %q", name)
	}
	return sc, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
