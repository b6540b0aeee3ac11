// Package motive implements the per-body dynamics state machine: a
// time-ordered sequence of model segments (Fixed, Newtonian, Keplerian)
// joined by transition events. The package answers "which model governs
// this body at time t" and owns the segment bookkeeping; firing the
// transitions (deriving the incoming segment's parameters from the
// outgoing segment's terminal state) is the simulation's job, since it
// needs the kinematics of other bodies.
package motive

import (
	"errors"
	"fmt"
	"sort"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/kepler"
	"github.com/maren-k/orbitlab/internal/vec"
)

var (
	// ErrEmptyMotive indicates a motive with no segments. A body is
	// unusable without at least an epoch segment.
	ErrEmptyMotive = errors.New("motive: no segments")

	// ErrBeforeEpoch indicates a query or insert before the first
	// segment's start time.
	ErrBeforeEpoch = errors.New("motive: time precedes the epoch segment")
)

// Event describes how a segment's initial parameters are derived from
// the previous segment's terminal state when the boundary is crossed.
type Event int

const (
	// Epoch segments carry fully specified parameters; nothing is
	// derived. Every motive starts with one.
	Epoch Event = iota

	// SOIChange re-parents a Keplerian segment. The new elements are
	// derived from the terminal state relative to the new primary; the
	// primary selection itself is supplied externally.
	SOIChange

	// Impulse applies an instantaneous delta-v to a Newtonian body.
	// The segment's Velocity field is the delta-v; position stays
	// continuous.
	Impulse

	// Release converts a Fixed body to Newtonian. The segment's
	// Velocity field is LOCAL velocity relative to the parent's frame;
	// position and the parent's velocity are inherited.
	Release
)

func (e Event) String() string {
	switch e {
	case Epoch:
		return "epoch"
	case SOIChange:
		return "soi_change"
	case Impulse:
		return "impulse"
	case Release:
		return "release"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Kind tags the dynamics-model variant of a segment.
type Kind int

const (
	KindFixed Kind = iota
	KindNewtonian
	KindKeplerian
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindNewtonian:
		return "newtonian"
	case KindKeplerian:
		return "keplerian"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Model is the tagged union of the three dynamics models. Only the
// fields of the active variant are meaningful.
type Model struct {
	Kind Kind

	// Fixed: constant offset from Parent (body.None means world origin).
	Parent body.ID
	Offset vec.Vec3

	// Newtonian: free-body state. The interpretation of Velocity
	// depends on the segment's event; see the Event constants.
	Position vec.Vec3
	Velocity vec.Vec3

	// Keplerian: elements relative to Primary.
	Primary  body.ID
	Elements kepler.Elements
}

func FixedModel(parent body.ID, offset vec.Vec3) Model {
	return Model{Kind: KindFixed, Parent: parent, Offset: offset, Primary: body.None}
}

func NewtonianModel(position, velocity vec.Vec3) Model {
	return Model{Kind: KindNewtonian, Position: position, Velocity: velocity, Parent: body.None, Primary: body.None}
}

func KeplerianModel(primary body.ID, el kepler.Elements) Model {
	return Model{Kind: KindKeplerian, Primary: primary, Elements: el, Parent: body.None}
}

// Segment is one (start time, event, model) entry of a motive.
type Segment struct {
	Start float64
	Event Event
	Model Model
}

// Motive is an ordered, non-overlapping sequence of segments. Segments
// are totally ordered by start time; the first is always the epoch.
type Motive struct {
	segments []Segment
}

// New creates a motive whose epoch segment starts at the given time.
func New(start float64, model Model) *Motive {
	return &Motive{segments: []Segment{{Start: start, Event: Epoch, Model: model}}}
}

// NewFixed creates a motive held at a constant offset from a parent
// body (or the world origin) from simulation start.
func NewFixed(parent body.ID, offset vec.Vec3) *Motive {
	return New(0, FixedModel(parent, offset))
}

// NewNewtonian creates a free-body motive from simulation start.
func NewNewtonian(position, velocity vec.Vec3) *Motive {
	return New(0, NewtonianModel(position, velocity))
}

// NewKeplerian creates an analytic orbit motive from simulation start.
func NewKeplerian(primary body.ID, el kepler.Elements) *Motive {
	return New(0, KeplerianModel(primary, el))
}

func (m *Motive) Len() int      { return len(m.segments) }
func (m *Motive) IsEmpty() bool { return len(m.segments) == 0 }

// index returns the position of the last segment with Start <= t,
// or -1 if t precedes all segments.
func (m *Motive) index(t float64) int {
	return sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].Start > t
	}) - 1
}

// ActiveAt returns the segment governing the body at time t and the
// elapsed local time within it. A motive with zero segments, or a time
// before the epoch, is a configuration error.
func (m *Motive) ActiveAt(t float64) (Segment, float64, error) {
	if len(m.segments) == 0 {
		return Segment{}, 0, ErrEmptyMotive
	}
	i := m.index(t)
	if i < 0 {
		return Segment{}, 0, fmt.Errorf("%w: t=%g, epoch=%g", ErrBeforeEpoch, t, m.segments[0].Start)
	}
	seg := m.segments[i]
	return seg, t - seg.Start, nil
}

// Before returns the segment immediately preceding the one active at t.
func (m *Motive) Before(t float64) (Segment, bool) {
	i := m.index(t)
	if i < 1 {
		return Segment{}, false
	}
	return m.segments[i-1], true
}

// HasEventInRange reports whether any segment starts in (start, end].
func (m *Motive) HasEventInRange(start, end float64) bool {
	for _, seg := range m.segments {
		if seg.Start > start && seg.Start <= end {
			return true
		}
	}
	return false
}

// EventsInRange returns the segments starting in (start, end], in order.
func (m *Motive) EventsInRange(start, end float64) []Segment {
	var out []Segment
	for _, seg := range m.segments {
		if seg.Start > start && seg.Start <= end {
			out = append(out, seg)
		}
	}
	return out
}

// Insert adds a segment, keeping segments ordered by start time. A
// segment at an existing start time replaces it; inserting before the
// epoch is rejected rather than reordering the epoch away.
func (m *Motive) Insert(seg Segment) error {
	if len(m.segments) == 0 {
		if seg.Event != Epoch {
			return fmt.Errorf("%w: first segment must be an epoch", ErrEmptyMotive)
		}
		m.segments = append(m.segments, seg)
		return nil
	}
	if seg.Start < m.segments[0].Start {
		return fmt.Errorf("%w: insert at t=%g", ErrBeforeEpoch, seg.Start)
	}
	i := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].Start >= seg.Start
	})
	if i < len(m.segments) && m.segments[i].Start == seg.Start {
		m.segments[i] = seg
		return nil
	}
	m.segments = append(m.segments, Segment{})
	copy(m.segments[i+1:], m.segments[i:])
	m.segments[i] = seg
	return nil
}

// Remove deletes the segment starting exactly at t, if any.
func (m *Motive) Remove(t float64) bool {
	for i, seg := range m.segments {
		if seg.Start == t {
			m.segments = append(m.segments[:i], m.segments[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAfter drops every segment starting strictly after t and returns
// how many were removed.
func (m *Motive) RemoveAfter(t float64) int {
	i := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].Start > t
	})
	removed := len(m.segments) - i
	m.segments = m.segments[:i]
	return removed
}

// SetModel replaces the model of the segment starting exactly at start.
// The simulation uses this to seed derived parameters when a transition
// fires.
func (m *Motive) SetModel(start float64, model Model) bool {
	for i := range m.segments {
		if m.segments[i].Start == start {
			m.segments[i].Model = model
			return true
		}
	}
	return false
}

// Segments returns a copy of the segment list in time order.
func (m *Motive) Segments() []Segment {
	out := make([]Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

func (m *Motive) Clone() *Motive {
	return &Motive{segments: m.Segments()}
}
