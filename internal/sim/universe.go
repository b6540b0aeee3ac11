// Package sim ties the body registry, the motive state machine, the
// gravity integrator and the Keplerian solver into a tick-driven
// simulation. The simulated clock is always an explicit parameter;
// nothing here keeps ambient time, so trajectory precomputation can
// replay the same machinery against a hypothetical future clock.
package sim

import (
	"fmt"
	"sync"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/gravity"
	"github.com/maren-k/orbitlab/internal/motive"
	"github.com/maren-k/orbitlab/internal/timemap"
	"github.com/maren-k/orbitlab/internal/vec"
)

// Universe owns every body's identity, motive and state cache. It is
// mutated only by Advance (the tick) and by explicit edits between
// ticks; it is not safe for concurrent mutation. The trajectory slots
// have their own lock so background precompute jobs can deliver
// results without racing readers.
type Universe struct {
	G        float64
	registry *body.Registry
	motives  map[body.ID]*motive.Motive
	states   map[body.ID]*body.State
	faults   map[body.ID]error
	primed   bool

	trajMu       sync.Mutex
	trajectories map[body.ID]*timemap.TimeMap[vec.Vec3]
	trajGen      map[body.ID]uint64
}

func NewUniverse(g float64) *Universe {
	return &Universe{
		G:            g,
		registry:     body.NewRegistry(),
		motives:      make(map[body.ID]*motive.Motive),
		states:       make(map[body.ID]*body.State),
		faults:       make(map[body.ID]error),
		trajectories: make(map[body.ID]*timemap.TimeMap[vec.Vec3]),
		trajGen:      make(map[body.ID]uint64),
	}
}

// Spawn registers a body with its initial motive. The motive must have
// an epoch segment and all parent/primary references must be to bodies
// spawned earlier; a malformed motive is rejected here, not defaulted.
func (u *Universe) Spawn(info body.Info, m *motive.Motive) (body.ID, error) {
	if m == nil || m.IsEmpty() {
		return body.None, motive.ErrEmptyMotive
	}
	for _, seg := range m.Segments() {
		if err := u.checkRefs(seg.Model); err != nil {
			return body.None, err
		}
	}
	id, err := u.registry.Spawn(info)
	if err != nil {
		return body.None, err
	}
	u.motives[id] = m
	u.states[id] = &body.State{}
	u.primed = false
	return id, nil
}

func (u *Universe) checkRefs(model motive.Model) error {
	check := func(id body.ID, role string) error {
		if id == body.None {
			return nil
		}
		if _, ok := u.registry.Get(id); !ok {
			return fmt.Errorf("%w: %s id %d", body.ErrUnknownBody, role, id)
		}
		return nil
	}
	switch model.Kind {
	case motive.KindFixed:
		return check(model.Parent, "parent")
	case motive.KindKeplerian:
		if model.Primary == body.None {
			return fmt.Errorf("%w: keplerian model needs a primary", body.ErrUnknownBody)
		}
		return check(model.Primary, "primary")
	}
	return nil
}

// State returns a read-only snapshot of the body's current kinematics,
// decorated with the cached trajectory if one was precomputed.
func (u *Universe) State(id body.ID) (body.State, error) {
	st, ok := u.states[id]
	if !ok {
		return body.State{}, body.ErrUnknownBody
	}
	out := *st
	u.trajMu.Lock()
	out.Trajectory = u.trajectories[id]
	u.trajMu.Unlock()
	return out, nil
}

// Info returns the registry record for a body.
func (u *Universe) Info(id body.ID) (body.Info, error) {
	info, ok := u.registry.Get(id)
	if !ok {
		return body.Info{}, body.ErrUnknownBody
	}
	return info, nil
}

// Motive returns the body's motive. Callers must not mutate it while a
// tick is in flight; use EditMotive for scenario edits.
func (u *Universe) Motive(id body.ID) (*motive.Motive, error) {
	m, ok := u.motives[id]
	if !ok {
		return nil, body.ErrUnknownBody
	}
	return m, nil
}

// Fault returns the error that excluded the body from integration, or
// nil if the body is healthy.
func (u *Universe) Fault(id body.ID) error {
	return u.faults[id]
}

func (u *Universe) Bodies() []body.ID { return u.registry.IDs() }

func (u *Universe) ByName(name string) (body.ID, bool) {
	return u.registry.ByName(name)
}

// Mu returns G times the body's mass.
func (u *Universe) Mu(id body.ID) (float64, error) {
	info, ok := u.registry.Get(id)
	if !ok {
		return 0, body.ErrUnknownBody
	}
	return u.G * info.Mass, nil
}

// EditMotive inserts (or replaces) a segment in a body's motive. This
// is the scenario/editor mutation point: it must never run concurrently
// with an in-flight tick. Any cached trajectory is invalidated, and a
// previously faulted body gets another chance.
func (u *Universe) EditMotive(id body.ID, seg motive.Segment) error {
	m, ok := u.motives[id]
	if !ok {
		return body.ErrUnknownBody
	}
	if err := u.checkRefs(seg.Model); err != nil {
		return err
	}
	if err := m.Insert(seg); err != nil {
		return err
	}
	if st := u.states[id]; st.NewtonianInit && seg.Start <= st.NewtonianInitTime {
		// The edit rewrites history at or before the seeded instant;
		// force a reseed on the next tick.
		st.NewtonianInit = false
	}
	delete(u.faults, id)
	u.InvalidateTrajectory(id)
	return nil
}

// CachedTrajectory returns the precomputed sample map for a body, if a
// job has delivered one since the last invalidation.
func (u *Universe) CachedTrajectory(id body.ID) (*timemap.TimeMap[vec.Vec3], bool) {
	u.trajMu.Lock()
	defer u.trajMu.Unlock()
	tm, ok := u.trajectories[id]
	return tm, ok
}

// TrajectoryGeneration returns the supersession counter for a body's
// trajectory slot. Precompute jobs capture it at request time.
func (u *Universe) TrajectoryGeneration(id body.ID) uint64 {
	u.trajMu.Lock()
	defer u.trajMu.Unlock()
	return u.trajGen[id]
}

// SetTrajectory stores a precomputed sample map if gen still matches
// the slot's generation. Results from superseded jobs are discarded,
// never merged.
func (u *Universe) SetTrajectory(id body.ID, tm *timemap.TimeMap[vec.Vec3], gen uint64) bool {
	u.trajMu.Lock()
	defer u.trajMu.Unlock()
	if u.trajGen[id] != gen {
		return false
	}
	u.trajectories[id] = tm
	return true
}

// InvalidateTrajectory drops the cached map and bumps the generation so
// in-flight jobs for the old parameters are discarded on completion.
func (u *Universe) InvalidateTrajectory(id body.ID) {
	u.trajMu.Lock()
	defer u.trajMu.Unlock()
	delete(u.trajectories, id)
	u.trajGen[id]++
}

// Clone deep-copies the universe: registry, motives, state caches and
// fault flags, but not trajectory caches. Precomputation replays ticks
// against such a scratch copy so live state is never touched.
func (u *Universe) Clone() *Universe {
	out := NewUniverse(u.G)
	out.registry = u.registry.Clone()
	for id, m := range u.motives {
		out.motives[id] = m.Clone()
	}
	for id, st := range u.states {
		c := *st
		c.Trajectory = nil
		out.states[id] = &c
	}
	for id, err := range u.faults {
		out.faults[id] = err
	}
	out.primed = u.primed
	return out
}

// attractors collects every Major body as a gravity source at its
// current cached position. Minor bodies never contribute.
func (u *Universe) attractors() []gravity.Attractor {
	var out []gravity.Attractor
	for _, id := range u.registry.IDs() {
		info, _ := u.registry.Get(id)
		if !info.Major {
			continue
		}
		out = append(out, gravity.Attractor{
			ID:       id,
			Mu:       u.G * info.Mass,
			Position: u.states[id].CurrentPosition,
		})
	}
	return out
}
