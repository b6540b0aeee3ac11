// Package trajectory precomputes future position sample maps for
// visualization. It replays the same motive transition logic, gravity
// integrator and Keplerian solver as the live simulation, but against a
// scratch clone of the universe, so live state is never mutated and the
// samples match what the live integrator will later produce under
// identical inputs.
package trajectory

import (
	"fmt"
	"math"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/sim"
	"github.com/maren-k/orbitlab/internal/timemap"
	"github.com/maren-k/orbitlab/internal/vec"
)

// Options controls replay stepping and sample density.
type Options struct {
	// Step is the physics tick of the replay. It must equal the live
	// tick for precompute/live consistency.
	Step float64

	// NewtonCadence records every Nth replay tick while the body is
	// Newtonian.
	NewtonCadence int

	// MaxAngle is the largest angular advance of the local position
	// between recorded samples while the body is Keplerian. Angular
	// advance per unit time peaks at periapsis, so this yields denser
	// sampling exactly where curvature is highest.
	MaxAngle float64

	// MaxGap caps the time between recorded samples regardless of the
	// governing model.
	MaxGap float64
}

func DefaultOptions(step float64) Options {
	return Options{
		Step:          step,
		NewtonCadence: 4,
		MaxAngle:      2 * math.Pi / 256,
		MaxGap:        step * 64,
	}
}

// Precompute samples the absolute position of one body from `from` over
// `horizon`, firing any transitions scheduled inside the window. The
// result is reproducible bit-for-bit for identical inputs: the replay
// uses the same fixed step and the same code paths as the live tick.
func Precompute(u *sim.Universe, id body.ID, from, horizon float64, opts Options) (*timemap.TimeMap[vec.Vec3], error) {
	if opts.Step <= 0 || horizon <= 0 {
		return nil, fmt.Errorf("%w: step=%g horizon=%g", sim.ErrBadTimestep, opts.Step, horizon)
	}
	if opts.NewtonCadence < 1 {
		opts.NewtonCadence = 1
	}

	scratch := u.Clone()
	if err := scratch.Prime(from); err != nil {
		if ferr := scratch.Fault(id); ferr != nil {
			return nil, ferr
		}
	}

	out := timemap.New[vec.Vec3]()
	st, err := scratch.State(id)
	if err != nil {
		return nil, err
	}
	out.Insert(from, st.CurrentPosition)

	lastRecorded := from
	lastDir := localDirection(st)

	steps := int(math.Round(horizon / opts.Step))
	if steps < 1 {
		steps = 1
	}

	t := from
	for i := 1; i <= steps; i++ {
		next := from + float64(i)*opts.Step

		m, err := scratch.Motive(id)
		if err != nil {
			return nil, err
		}
		crossed := m.HasEventInRange(t, next)

		// Other bodies may fault during replay without sinking this
		// job; only this body's fault aborts it.
		scratch.Advance(t, next-t)
		if ferr := scratch.Fault(id); ferr != nil {
			return nil, ferr
		}

		st, err = scratch.State(id)
		if err != nil {
			return nil, err
		}

		if crossed || i == steps || shouldRecord(st, i, next, lastRecorded, lastDir, opts) {
			out.Insert(next, st.CurrentPosition)
			lastRecorded = next
			lastDir = localDirection(st)
		}
		t = next
	}
	return out, nil
}

// shouldRecord decides sample density: fixed cadence for Newtonian
// segments, angular spacing (dense near periapsis) for Keplerian ones,
// and a gap cap for everything else.
func shouldRecord(st body.State, tick int, t, lastRecorded float64, lastDir vec.Vec3, opts Options) bool {
	if t-lastRecorded >= opts.MaxGap {
		return true
	}
	switch {
	case st.HasVelocity:
		return tick%opts.NewtonCadence == 0
	case st.HasLocal:
		dir := st.CurrentLocalPosition.Normalized()
		if lastDir == (vec.Vec3{}) {
			return true
		}
		cos := dir.Dot(lastDir)
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		return math.Acos(cos) >= opts.MaxAngle
	}
	return false
}

func localDirection(st body.State) vec.Vec3 {
	if st.HasLocal {
		return st.CurrentLocalPosition.Normalized()
	}
	return vec.Vec3{}
}

// Get returns the cached trajectory for a body, or synchronously
// computes, caches and returns one. `from` must be the caller's current
// simulated time.
func Get(u *sim.Universe, id body.ID, from, horizon float64, opts Options) (*timemap.TimeMap[vec.Vec3], error) {
	if tm, ok := u.CachedTrajectory(id); ok {
		return tm, nil
	}
	gen := u.TrajectoryGeneration(id)
	tm, err := Precompute(u, id, from, horizon, opts)
	if err != nil {
		return nil, err
	}
	u.SetTrajectory(id, tm, gen)
	return tm, nil
}
