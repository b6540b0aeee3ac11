package motive

import (
	"errors"
	"testing"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/vec"
)

func newtonianAt(start float64) Segment {
	return Segment{Start: start, Event: Epoch, Model: NewtonianModel(vec.Zero, vec.Zero)}
}

func TestActiveAtSelectsGoverningSegment(t *testing.T) {
	m := NewFixed(body.None, vec.New(1, 0, 0))
	if err := m.Insert(Segment{Start: 10, Event: Release, Model: NewtonianModel(vec.Zero, vec.New(0, 5, 0))}); err != nil {
		t.Fatal(err)
	}
	if err := m.Insert(Segment{Start: 20, Event: Impulse, Model: NewtonianModel(vec.Zero, vec.New(1, 0, 0))}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		t           float64
		wantStart   float64
		wantElapsed float64
	}{
		{0, 0, 0},
		{9.999, 0, 9.999},
		{10, 10, 0},
		{15, 10, 5},
		{20, 20, 0},
		{1e6, 20, 1e6 - 20},
	}
	for _, tc := range cases {
		seg, elapsed, err := m.ActiveAt(tc.t)
		if err != nil {
			t.Fatalf("ActiveAt(%g): %v", tc.t, err)
		}
		if seg.Start != tc.wantStart || elapsed != tc.wantElapsed {
			t.Errorf("ActiveAt(%g) = start %g elapsed %g, want %g %g",
				tc.t, seg.Start, elapsed, tc.wantStart, tc.wantElapsed)
		}
	}
}

func TestActiveAtErrors(t *testing.T) {
	empty := &Motive{}
	if _, _, err := empty.ActiveAt(0); !errors.Is(err, ErrEmptyMotive) {
		t.Errorf("empty motive: err = %v, want ErrEmptyMotive", err)
	}

	m := New(5, NewtonianModel(vec.Zero, vec.Zero))
	if _, _, err := m.ActiveAt(4.9); !errors.Is(err, ErrBeforeEpoch) {
		t.Errorf("before epoch: err = %v, want ErrBeforeEpoch", err)
	}
	if _, _, err := m.ActiveAt(5); err != nil {
		t.Errorf("at epoch: err = %v", err)
	}
}

func TestInsertReplacesEqualStart(t *testing.T) {
	m := NewNewtonian(vec.Zero, vec.Zero)
	if err := m.Insert(Segment{Start: 10, Event: Impulse, Model: NewtonianModel(vec.Zero, vec.New(1, 0, 0))}); err != nil {
		t.Fatal(err)
	}
	if err := m.Insert(Segment{Start: 10, Event: Impulse, Model: NewtonianModel(vec.Zero, vec.New(2, 0, 0))}); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	seg, _, _ := m.ActiveAt(10)
	if seg.Model.Velocity.X != 2 {
		t.Errorf("replacement not applied: velocity %v", seg.Model.Velocity)
	}
}

func TestInsertBeforeEpochRejected(t *testing.T) {
	m := New(10, NewtonianModel(vec.Zero, vec.Zero))
	err := m.Insert(Segment{Start: 5, Event: Impulse, Model: NewtonianModel(vec.Zero, vec.Zero)})
	if !errors.Is(err, ErrBeforeEpoch) {
		t.Errorf("err = %v, want ErrBeforeEpoch", err)
	}
}

func TestEventRangeBounds(t *testing.T) {
	m := NewNewtonian(vec.Zero, vec.Zero)
	m.Insert(Segment{Start: 10, Event: Impulse, Model: NewtonianModel(vec.Zero, vec.Zero)})
	m.Insert(Segment{Start: 20, Event: Impulse, Model: NewtonianModel(vec.Zero, vec.Zero)})

	cases := []struct {
		start, end float64
		want       int
	}{
		{0, 9, 0},
		{0, 10, 1},  // end inclusive
		{10, 20, 1}, // start exclusive
		{9, 21, 2},
		{20, 30, 0},
	}
	for _, tc := range cases {
		got := len(m.EventsInRange(tc.start, tc.end))
		if got != tc.want {
			t.Errorf("EventsInRange(%g, %g) = %d segments, want %d", tc.start, tc.end, got, tc.want)
		}
		if has := m.HasEventInRange(tc.start, tc.end); has != (tc.want > 0) {
			t.Errorf("HasEventInRange(%g, %g) = %v", tc.start, tc.end, has)
		}
	}
}

func TestRemoveAndRemoveAfter(t *testing.T) {
	m := NewNewtonian(vec.Zero, vec.Zero)
	for _, s := range []float64{10, 20, 30} {
		m.Insert(Segment{Start: s, Event: Impulse, Model: NewtonianModel(vec.Zero, vec.Zero)})
	}

	if !m.Remove(20) {
		t.Error("Remove(20) = false")
	}
	if m.Remove(20) {
		t.Error("second Remove(20) = true")
	}

	if n := m.RemoveAfter(10); n != 1 {
		t.Errorf("RemoveAfter removed %d, want 1", n)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}

func TestSetModel(t *testing.T) {
	m := NewFixed(body.None, vec.Zero)
	m.Insert(Segment{Start: 10, Event: Release, Model: NewtonianModel(vec.Zero, vec.New(0, 1, 0))})

	seeded := NewtonianModel(vec.New(5, 0, 0), vec.New(0, 2, 0))
	if !m.SetModel(10, seeded) {
		t.Fatal("SetModel(10) = false")
	}
	if m.SetModel(11, seeded) {
		t.Error("SetModel(11) = true for missing segment")
	}
	seg, _, _ := m.ActiveAt(10)
	if seg.Model.Position != seeded.Position {
		t.Errorf("model not replaced: %v", seg.Model.Position)
	}
	if seg.Event != Release {
		t.Errorf("event changed to %v", seg.Event)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewNewtonian(vec.Zero, vec.Zero)
	c := m.Clone()
	c.Insert(newtonianAt(10))
	if m.Len() != 1 {
		t.Errorf("original mutated: Len = %d", m.Len())
	}
}
