package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/gravity"
	"github.com/maren-k/orbitlab/internal/kepler"
	"github.com/maren-k/orbitlab/internal/motive"
	"github.com/maren-k/orbitlab/internal/vec"
)

// ErrInvalidState indicates a body's position went non-finite.
var ErrInvalidState = errors.New("sim: invalid state (NaN or Inf)")

// Prime establishes the state cache at simulated time t without
// advancing anything. Advance calls it implicitly on the first tick.
func (u *Universe) Prime(t float64) error {
	var errs []error
	fail := func(id body.ID, err error) {
		werr := u.wrap(id, t, err)
		u.faults[id] = werr
		errs = append(errs, werr)
	}

	for _, id := range u.registry.IDs() {
		if u.faults[id] != nil {
			continue
		}
		seg, _, err := u.motives[id].ActiveAt(t)
		if err != nil {
			fail(id, err)
			continue
		}
		if seg.Model.Kind == motive.KindNewtonian {
			if err := u.seedNewtonian(u.states[id], seg); err != nil {
				fail(id, err)
			}
		}
	}

	res := u.newResolver(t, nil)
	for _, id := range u.registry.IDs() {
		if u.faults[id] != nil {
			continue
		}
		if err := u.writeState(id, t, res, nil); err != nil {
			fail(id, err)
			continue
		}
		st := u.states[id]
		st.LastStepPosition = st.CurrentPosition
	}

	u.primed = true
	return errors.Join(errs...)
}

// Advance runs one fixed tick from simulated time t to t+dt: Newtonian
// bodies integrate under Major-body gravity, transitions scheduled in
// (t, t+dt] fire with their continuity rules, and the state cache is
// rewritten exactly once. A failing body is flagged and excluded from
// further ticks; the others continue, and every error is returned.
func (u *Universe) Advance(t, dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) || math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: dt=%g", ErrBadTimestep, dt)
	}

	var errs []error
	if !u.primed {
		if err := u.Prime(t); err != nil {
			errs = append(errs, err)
		}
	}

	newTime := t + dt
	fail := func(id body.ID, err error) {
		werr := u.wrap(id, newTime, err)
		u.faults[id] = werr
		errs = append(errs, werr)
	}

	// Phase A: integrate Newtonian bodies under their outgoing motives,
	// using Major positions at the start of the step.
	attr := u.attractors()
	pending := make(map[body.ID]kin)
	for _, id := range u.registry.IDs() {
		if u.faults[id] != nil {
			continue
		}
		seg, _, err := u.motives[id].ActiveAt(t)
		if err != nil {
			fail(id, err)
			continue
		}
		if seg.Model.Kind != motive.KindNewtonian {
			continue
		}
		st := u.states[id]
		if err := u.seedNewtonian(st, seg); err != nil {
			fail(id, err)
			continue
		}
		pos, vel := gravity.VerletStep(st.CurrentPosition, st.CurrentVelocity, id, attr, dt)
		pending[id] = kin{pos: pos, vel: vel}
	}

	// Phase B: fire transitions whose scheduled time fell inside the tick.
	for _, id := range u.registry.IDs() {
		if u.faults[id] != nil {
			continue
		}
		m := u.motives[id]
		for _, ev := range m.EventsInRange(t, newTime) {
			if err := u.fireTransition(id, m, ev, pending); err != nil {
				fail(id, err)
				break
			}
		}
	}

	// Phase C: resolve final kinematics at t+dt and publish the cache.
	res := u.newResolver(newTime, pending)
	for _, id := range u.registry.IDs() {
		if u.faults[id] != nil {
			continue
		}
		if err := u.writeState(id, newTime, res, pending); err != nil {
			fail(id, err)
		}
	}

	return errors.Join(errs...)
}

func (u *Universe) wrap(id body.ID, t float64, err error) error {
	info, _ := u.registry.Get(id)
	return &BodyError{ID: id, Name: info.DisplayName(), Time: t, Err: err}
}

// seedNewtonian makes sure the live Newtonian state matches the active
// segment. Epoch segments carry absolute parameters and self-seed; any
// other segment must have been seeded when its transition fired, so
// finding it unseeded is a sequencing bug.
func (u *Universe) seedNewtonian(st *body.State, seg motive.Segment) error {
	if st.NewtonianInit && st.NewtonianInitTime >= seg.Start {
		return nil
	}
	if seg.Event == motive.Epoch {
		st.CurrentPosition = seg.Model.Position
		st.CurrentVelocity = seg.Model.Velocity
		st.HasVelocity = true
		st.HasLocal = false
		st.NewtonianInit = true
		st.NewtonianInitTime = seg.Start
		return nil
	}
	return fmt.Errorf("%w: segment %s at t=%g", ErrStaleState, seg.Event, seg.Start)
}

// fireTransition derives the incoming segment's parameters from the
// outgoing segment's terminal state so position (and velocity, where
// the event demands it) is continuous across the boundary.
func (u *Universe) fireTransition(id body.ID, m *motive.Motive, ev motive.Segment, pending map[body.ID]kin) error {
	st := u.states[id]

	if ev.Event == motive.Epoch {
		// Self-contained parameters; Newtonian epochs reseed the live state.
		if ev.Model.Kind == motive.KindNewtonian {
			if err := u.seedNewtonian(st, ev); err != nil {
				return err
			}
			pending[id] = kin{pos: st.CurrentPosition, vel: st.CurrentVelocity}
		}
		return nil
	}

	outgoing, ok := m.Before(ev.Start)
	if !ok {
		return fmt.Errorf("%w: %s event at t=%g has no prior segment", motive.ErrEmptyMotive, ev.Event, ev.Start)
	}
	term, err := u.terminalKin(id, outgoing, ev.Start, pending)
	if err != nil {
		return err
	}

	seed := func(pos, vel vec.Vec3) {
		m.SetModel(ev.Start, motive.NewtonianModel(pos, vel))
		st.CurrentPosition = pos
		st.CurrentVelocity = vel
		st.HasVelocity = true
		st.HasLocal = false
		st.NewtonianInit = true
		st.NewtonianInitTime = ev.Start
		pending[id] = kin{pos: pos, vel: vel}
	}

	switch ev.Event {
	case motive.Release:
		// The model's velocity parameter is local to the parent frame.
		parent := kin{}
		if outgoing.Model.Kind == motive.KindFixed && outgoing.Model.Parent != body.None {
			r := u.newResolver(ev.Start, pending)
			parent, err = r.kinOf(outgoing.Model.Parent)
			if err != nil {
				return err
			}
		}
		seed(term.pos, parent.vel.Add(ev.Model.Velocity))

	case motive.Impulse:
		// Instantaneous delta-v; position stays continuous by construction.
		seed(term.pos, term.vel.Add(ev.Model.Velocity))

	case motive.SOIChange:
		prim := ev.Model.Primary
		r := u.newResolver(ev.Start, pending)
		pk, err := r.kinOf(prim)
		if err != nil {
			return err
		}
		mu, err := u.Mu(prim)
		if err != nil {
			return err
		}
		el, err := kepler.ElementsFromState(term.pos.Sub(pk.pos), term.vel.Sub(pk.vel), mu)
		if err != nil {
			return err
		}
		m.SetModel(ev.Start, motive.KeplerianModel(prim, el))

	default:
		return fmt.Errorf("motive: unhandled transition event %v", ev.Event)
	}
	return nil
}

// terminalKin evaluates the outgoing model at the transition instant.
// Hierarchical models are exact; a Newtonian body's terminal state is
// this tick's integration result, so an event landing mid-tick resolves
// at tick granularity.
func (u *Universe) terminalKin(id body.ID, outgoing motive.Segment, evTime float64, pending map[body.ID]kin) (kin, error) {
	if outgoing.Model.Kind == motive.KindNewtonian {
		if k, ok := pending[id]; ok {
			return k, nil
		}
		st := u.states[id]
		return kin{pos: st.CurrentPosition, vel: st.CurrentVelocity}, nil
	}
	r := u.newResolver(evTime, pending)
	return r.modelKin(id, outgoing.Model, evTime-outgoing.Start)
}

// writeState publishes a body's snapshot for time t. This is the only
// place the externally visible cache is mutated, and it runs exactly
// once per body per tick.
func (u *Universe) writeState(id body.ID, t float64, res *resolver, pending map[body.ID]kin) error {
	st := u.states[id]
	seg, elapsed, err := u.motives[id].ActiveAt(t)
	if err != nil {
		return err
	}

	prev := st.CurrentPosition
	switch seg.Model.Kind {
	case motive.KindFixed:
		k, err := res.kinOf(id)
		if err != nil {
			return err
		}
		st.CurrentPosition = k.pos
		st.HasVelocity = false
		st.HasLocal = false

	case motive.KindKeplerian:
		prim, err := res.kinOf(seg.Model.Primary)
		if err != nil {
			return err
		}
		mu, err := u.Mu(seg.Model.Primary)
		if err != nil {
			return err
		}
		local, _, err := seg.Model.Elements.StateAt(elapsed, mu)
		if err != nil {
			return err
		}
		st.CurrentPosition = prim.pos.Add(local)
		st.CurrentLocalPosition = local
		st.CurrentPrimaryPosition = prim.pos
		st.HasLocal = true
		st.HasVelocity = false

	case motive.KindNewtonian:
		k, ok := pending[id]
		if !ok {
			k = kin{pos: st.CurrentPosition, vel: st.CurrentVelocity}
		}
		st.CurrentPosition = k.pos
		st.CurrentVelocity = k.vel
		st.HasVelocity = true
		st.HasLocal = false
	}
	st.LastStepPosition = prev

	if !st.CurrentPosition.IsValid() {
		return ErrInvalidState
	}
	return nil
}
