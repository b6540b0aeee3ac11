// Package gravity advances Newtonian bodies under pairwise inverse-
// square attraction from Major bodies, one fixed timestep at a time.
// The step is velocity-Verlet, which bounds long-run energy drift far
// better than explicit Euler for orbital motion.
package gravity

import (
	"math"

	"github.com/maren-k/orbitlab/internal/body"
	"github.com/maren-k/orbitlab/internal/vec"
)

// G is the gravitational constant in SI units (m^3 kg^-1 s^-2).
// Scenarios may override it, e.g. to run in normalized units.
const G = 6.6743e-11

// Attractor is a gravity source: a Major body's mu (G times mass) and
// its position at the start of the step. Minor bodies never appear here.
type Attractor struct {
	ID       body.ID
	Mu       float64
	Position vec.Vec3
}

// Acceleration sums the gravitational acceleration at point p from all
// attractors, excluding the body's own contribution.
func Acceleration(p vec.Vec3, self body.ID, attractors []Attractor) vec.Vec3 {
	var acc vec.Vec3
	for _, a := range attractors {
		if a.ID == self {
			continue
		}
		toSelf := p.Sub(a.Position)
		r2 := toSelf.NormSq()
		if r2 == 0 {
			continue
		}
		r := math.Sqrt(r2)
		acc = acc.Add(toSelf.Scale(-a.Mu / (r2 * r)))
	}
	return acc
}

// VerletStep advances one body by dt with velocity-Verlet. Attractor
// positions are held over the step; the caller supplies a consistent
// snapshot, which keeps repeated runs bit-for-bit identical.
func VerletStep(pos, vel vec.Vec3, self body.ID, attractors []Attractor, dt float64) (vec.Vec3, vec.Vec3) {
	a0 := Acceleration(pos, self, attractors)
	newPos := pos.Add(vel.Scale(dt)).Add(a0.Scale(0.5 * dt * dt))
	a1 := Acceleration(newPos, self, attractors)
	newVel := vel.Add(a0.Add(a1).Scale(0.5 * dt))
	return newPos, newVel
}
