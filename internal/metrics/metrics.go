// Package metrics provides per-tick observers over a running universe.
// Observers follow the Observe/Value/Reset pattern; the CLI attaches
// them to a run and reports their final values.
package metrics

import (
	"math"

	"github.com/maren-k/orbitlab/internal/sim"
)

type Observer interface {
	Name() string
	Observe(u *sim.Universe, t float64)
	Value() float64
	Reset()
}

// totalEnergy sums kinetic energy over bodies with defined velocity and
// pairwise potential energy over pairs where at least one side is a
// gravity source. For a fixed primary plus Newtonian orbiters this is
// the conserved two-body energy.
func totalEnergy(u *sim.Universe) float64 {
	ids := u.Bodies()
	ke := 0.0
	pe := 0.0
	for i, id := range ids {
		info, err := u.Info(id)
		if err != nil {
			continue
		}
		st, err := u.State(id)
		if err != nil {
			continue
		}
		if st.HasVelocity {
			ke += 0.5 * info.Mass * st.CurrentVelocity.NormSq()
		}
		for _, jd := range ids[i+1:] {
			jnfo, err := u.Info(jd)
			if err != nil {
				continue
			}
			if !info.Major && !jnfo.Major {
				continue
			}
			jst, err := u.State(jd)
			if err != nil {
				continue
			}
			r := st.CurrentPosition.Distance(jst.CurrentPosition)
			if r == 0 {
				continue
			}
			pe -= u.G * info.Mass * jnfo.Mass / r
		}
	}
	return ke + pe
}

// EnergyDrift tracks the maximum relative deviation of total energy
// from its first observed value.
type EnergyDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(u *sim.Universe, t float64) {
	energy := totalEnergy(u)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++
	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// AngularMomentumDrift tracks the maximum relative deviation of the
// total angular momentum magnitude (about the world origin, bodies with
// defined velocity only).
type AngularMomentumDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift { return &AngularMomentumDrift{} }

func (a *AngularMomentumDrift) Name() string { return "angular_momentum_drift" }

func (a *AngularMomentumDrift) Observe(u *sim.Universe, t float64) {
	var lx, ly, lz float64
	for _, id := range u.Bodies() {
		info, err := u.Info(id)
		if err != nil {
			continue
		}
		st, err := u.State(id)
		if err != nil || !st.HasVelocity {
			continue
		}
		l := st.CurrentPosition.Cross(st.CurrentVelocity).Scale(info.Mass)
		lx += l.X
		ly += l.Y
		lz += l.Z
	}
	mag := math.Sqrt(lx*lx + ly*ly + lz*lz)
	if a.samples == 0 {
		a.initial = mag
	}
	a.samples++
	if a.initial != 0 {
		drift := math.Abs(mag-a.initial) / a.initial
		a.maxDrift = math.Max(a.maxDrift, drift)
	}
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
