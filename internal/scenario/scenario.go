// Package scenario loads and saves simulation setups: physics
// constants plus bodies with their initial motives and scheduled
// transition events. Bodies reference parents and primaries by name;
// referenced bodies must be declared first.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/gravity"
	"github.com/maren-k/orbitlab/internal/kepler"
	"github.com/maren-k/orbitlab/internal/motive"
	"github.com/maren-k/orbitlab/internal/sim"
	"github.com/maren-k/orbitlab/internal/vec"
)

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec) V3() vec.Vec3 { return vec.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

type Elements struct {
	SemiMajorAxis float64 `yaml:"semi_major_axis"`
	Eccentricity  float64 `yaml:"eccentricity"`
	Inclination   float64 `yaml:"inclination"`
	AscendingNode float64 `yaml:"ascending_node"`
	ArgPeriapsis  float64 `yaml:"arg_periapsis"`
	MeanAnomaly   float64 `yaml:"mean_anomaly"`
}

type Model struct {
	Kind     string   `yaml:"kind"`
	Parent   string   `yaml:"parent,omitempty"`
	Offset   Vec      `yaml:"offset,omitempty"`
	Position Vec      `yaml:"position,omitempty"`
	Velocity Vec      `yaml:"velocity,omitempty"`
	Primary  string   `yaml:"primary,omitempty"`
	Elements Elements `yaml:"elements,omitempty"`
}

type Event struct {
	Time  float64 `yaml:"time"`
	Event string  `yaml:"event"`
	Model Model   `yaml:"model"`
}

type Body struct {
	Name        string   `yaml:"name"`
	Designation string   `yaml:"designation,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Mass        float64  `yaml:"mass"`
	Major       bool     `yaml:"major"`
	Motive      Model    `yaml:"motive"`
	Events      []Event  `yaml:"events,omitempty"`
}

type Scenario struct {
	Name     string  `yaml:"name"`
	G        float64 `yaml:"g"`
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Bodies   []Body  `yaml:"bodies"`
}

func Default() *Scenario {
	return &Scenario{
		Name:     "empty",
		G:        gravity.G,
		Dt:       1.0,
		Duration: 3600.0,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := Default()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func Save(path string, sc *Scenario) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build spawns the scenario's bodies into a fresh universe. Name
// references resolve against bodies declared earlier in the file.
func (sc *Scenario) Build() (*sim.Universe, error) {
	g := sc.G
	if g == 0 {
		g = gravity.G
	}
	u := sim.NewUniverse(g)

	for _, b := range sc.Bodies {
		base, err := buildModel(u, b.Motive)
		if err != nil {
			return nil, fmt.Errorf("scenario: body %q: %w", b.Name, err)
		}
		m := motive.New(0, base)
		for _, ev := range b.Events {
			seg, err := buildEvent(u, ev)
			if err != nil {
				return nil, fmt.Errorf("scenario: body %q: %w", b.Name, err)
			}
			if err := m.Insert(seg); err != nil {
				return nil, fmt.Errorf("scenario: body %q: %w", b.Name, err)
			}
		}
		info := body.Info{
			Name:        b.Name,
			Designation: b.Designation,
			Tags:        b.Tags,
			Mass:        b.Mass,
			Major:       b.Major,
		}
		if _, err := u.Spawn(info, m); err != nil {
			return nil, fmt.Errorf("scenario: body %q: %w", b.Name, err)
		}
	}
	return u, nil
}

func resolveName(u *sim.Universe, name string) (body.ID, error) {
	if name == "" {
		return body.None, nil
	}
	id, ok := u.ByName(name)
	if !ok {
		return body.None, fmt.Errorf("reference to undeclared body %q", name)
	}
	return id, nil
}

func buildModel(u *sim.Universe, m Model) (motive.Model, error) {
	switch m.Kind {
	case "fixed":
		parent, err := resolveName(u, m.Parent)
		if err != nil {
			return motive.Model{}, err
		}
		return motive.FixedModel(parent, m.Offset.V3()), nil

	case "newtonian":
		return motive.NewtonianModel(m.Position.V3(), m.Velocity.V3()), nil

	case "keplerian":
		primary, err := resolveName(u, m.Primary)
		if err != nil {
			return motive.Model{}, err
		}
		if primary == body.None {
			return motive.Model{}, fmt.Errorf("keplerian motive needs a primary")
		}
		el, err := kepler.NewElements(
			m.Elements.SemiMajorAxis,
			m.Elements.Eccentricity,
			m.Elements.Inclination,
			m.Elements.AscendingNode,
			m.Elements.ArgPeriapsis,
			m.Elements.MeanAnomaly,
		)
		if err != nil {
			return motive.Model{}, err
		}
		return motive.KeplerianModel(primary, el), nil
	}
	return motive.Model{}, fmt.Errorf("unknown motive kind %q", m.Kind)
}

// buildEvent maps a scheduled event to a segment. Release and impulse
// segments are Newtonian whose position (and base velocity) will be
// derived when the transition fires; only the velocity parameter is
// taken from the file. SOI changes carry just the new primary.
func buildEvent(u *sim.Universe, ev Event) (motive.Segment, error) {
	switch ev.Event {
	case "epoch":
		model, err := buildModel(u, ev.Model)
		if err != nil {
			return motive.Segment{}, err
		}
		return motive.Segment{Start: ev.Time, Event: motive.Epoch, Model: model}, nil

	case "release":
		return motive.Segment{
			Start: ev.Time,
			Event: motive.Release,
			Model: motive.NewtonianModel(vec.Zero, ev.Model.Velocity.V3()),
		}, nil

	case "impulse":
		return motive.Segment{
			Start: ev.Time,
			Event: motive.Impulse,
			Model: motive.NewtonianModel(vec.Zero, ev.Model.Velocity.V3()),
		}, nil

	case "soi_change":
		primary, err := resolveName(u, ev.Model.Primary)
		if err != nil {
			return motive.Segment{}, err
		}
		if primary == body.None {
			return motive.Segment{}, fmt.Errorf("soi_change event needs a primary")
		}
		return motive.Segment{
			Start: ev.Time,
			Event: motive.SOIChange,
			Model: motive.Model{Kind: motive.KindKeplerian, Primary: primary, Parent: body.None},
		}, nil
	}
	return motive.Segment{}, fmt.Errorf("unknown event %q", ev.Event)
}
