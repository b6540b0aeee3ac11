package kepler

import (
	"fmt"
	"math"

	"github.com/maren-k/orbitlab/internal/vec"
)

// StateAt computes the local position and velocity relative to the
// primary, elapsed seconds after the element epoch. The result is in
// the primary's reference frame; callers add the primary's absolute
// state to obtain absolute coordinates.
func (el Elements) StateAt(elapsed, mu float64) (vec.Vec3, vec.Vec3, error) {
	M := el.MeanAnomalyAt(elapsed, mu)
	E, err := EccentricFromMean(M, el.Eccentricity)
	if err != nil {
		return vec.Vec3{}, vec.Vec3{}, err
	}

	a := el.SemiMajorAxis
	e := el.Eccentricity
	n := el.MeanMotion(mu)
	cosE := math.Cos(E)
	sinE := math.Sin(E)
	sqrtTerm := math.Sqrt(1 - e*e)

	// In-plane state. The (1 - e*cosE) factor is r/a.
	x := a * (cosE - e)
	y := a * sqrtTerm * sinE
	denom := 1 - e*cosE
	vx := -a * n * sinE / denom
	vy := a * n * sqrtTerm * cosE / denom

	pos, vel := el.rotateToFrame(x, y, vx, vy)
	return pos, vel, nil
}

// rotateToFrame applies the 3-1-3 rotation (ascending node, inclination,
// argument of periapsis) taking in-plane coordinates to the primary's frame.
func (el Elements) rotateToFrame(x, y, vx, vy float64) (vec.Vec3, vec.Vec3) {
	cosO := math.Cos(el.LongitudeOfAscendingNode)
	sinO := math.Sin(el.LongitudeOfAscendingNode)
	cosI := math.Cos(el.Inclination)
	sinI := math.Sin(el.Inclination)
	cosW := math.Cos(el.ArgumentOfPeriapsis)
	sinW := math.Sin(el.ArgumentOfPeriapsis)

	r11 := cosO*cosW - sinO*sinW*cosI
	r12 := -cosO*sinW - sinO*cosW*cosI
	r21 := sinO*cosW + cosO*sinW*cosI
	r22 := -sinO*sinW + cosO*cosW*cosI
	r31 := sinW * sinI
	r32 := cosW * sinI

	pos := vec.Vec3{
		X: r11*x + r12*y,
		Y: r21*x + r22*y,
		Z: r31*x + r32*y,
	}
	vel := vec.Vec3{
		X: r11*vx + r12*vy,
		Y: r21*vx + r22*vy,
		Z: r31*vx + r32*vy,
	}
	return pos, vel
}

// nearZero guards the circular/equatorial special cases below.
const nearZero = 1e-11

// ElementsFromState derives orbital elements from a local position and
// velocity relative to the primary. The epoch of the returned elements
// is the instant the state was taken. Unbound or rectilinear states are
// rejected as degenerate.
func ElementsFromState(pos, vel vec.Vec3, mu float64) (Elements, error) {
	r := pos.Norm()
	v2 := vel.NormSq()
	if r == 0 || mu <= 0 {
		return Elements{}, fmt.Errorf("%w: zero radius or non-positive mu", ErrDegenerateOrbit)
	}

	h := pos.Cross(vel)
	hMag := h.Norm()
	if hMag < nearZero {
		return Elements{}, fmt.Errorf("%w: rectilinear trajectory", ErrDegenerateOrbit)
	}

	energy := v2/2 - mu/r
	if energy >= 0 {
		return Elements{}, fmt.Errorf("%w: unbound trajectory (specific energy %g)", ErrDegenerateOrbit, energy)
	}
	a := -mu / (2 * energy)

	eVec := pos.Scale(v2 - mu/r).Sub(vel.Scale(pos.Dot(vel))).Scale(1 / mu)
	e := eVec.Norm()
	if e >= 1 {
		return Elements{}, fmt.Errorf("%w: eccentricity %g", ErrDegenerateOrbit, e)
	}

	inc := math.Acos(clamp(h.Z/hMag, -1, 1))

	// Node vector: z-hat cross h.
	node := vec.Vec3{X: -h.Y, Y: h.X}
	nMag := node.Norm()

	var raan float64
	equatorial := nMag < nearZero
	if !equatorial {
		raan = math.Acos(clamp(node.X/nMag, -1, 1))
		if node.Y < 0 {
			raan = 2*math.Pi - raan
		}
	}

	circular := e < nearZero

	var argp float64
	switch {
	case circular:
		argp = 0
	case equatorial:
		argp = math.Atan2(eVec.Y, eVec.X)
		if h.Z < 0 {
			argp = -argp
		}
	default:
		argp = math.Acos(clamp(node.Dot(eVec)/(nMag*e), -1, 1))
		if eVec.Z < 0 {
			argp = 2*math.Pi - argp
		}
	}

	var trueAnom float64
	if circular {
		// Measure from the ascending node (or +X when equatorial).
		ref := node
		if equatorial {
			ref = vec.Vec3{X: 1}
		}
		trueAnom = math.Acos(clamp(ref.Dot(pos)/(ref.Norm()*r), -1, 1))
		if pos.Dot(vel) < 0 {
			trueAnom = 2*math.Pi - trueAnom
		}
	} else {
		trueAnom = math.Acos(clamp(eVec.Dot(pos)/(e*r), -1, 1))
		if pos.Dot(vel) < 0 {
			trueAnom = 2*math.Pi - trueAnom
		}
	}

	E := EccentricFromTrue(trueAnom, e)
	m0 := MeanFromEccentric(E, e)

	return NewElements(a, e, inc, raan, argp, m0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
