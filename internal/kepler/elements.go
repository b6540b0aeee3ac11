package kepler

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDegenerateOrbit indicates elements that do not describe a
	// closed orbit (e >= 1, a <= 0, or non-finite values).
	ErrDegenerateOrbit = errors.New("kepler: degenerate orbit")

	// ErrNoConvergence indicates the eccentric anomaly iteration did
	// not reach tolerance within the iteration bound.
	ErrNoConvergence = errors.New("kepler: eccentric anomaly solve did not converge")
)

// Elements are classical orbital elements relative to a primary body.
// MeanAnomalyAtEpoch is referenced to the owning segment's start time.
type Elements struct {
	SemiMajorAxis            float64 // meters
	Eccentricity             float64 // 0 <= e < 1
	Inclination              float64 // radians
	LongitudeOfAscendingNode float64 // radians
	ArgumentOfPeriapsis      float64 // radians
	MeanAnomalyAtEpoch       float64 // radians
}

// NewElements validates and normalizes a set of orbital elements.
// Degenerate orbits are rejected here, at construction, so solve-time
// code never sees them.
func NewElements(a, e, inc, raan, argp, m0 float64) (Elements, error) {
	for _, v := range [6]float64{a, e, inc, raan, argp, m0} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Elements{}, fmt.Errorf("%w: non-finite element", ErrDegenerateOrbit)
		}
	}
	if a <= 0 {
		return Elements{}, fmt.Errorf("%w: semi-major axis %g", ErrDegenerateOrbit, a)
	}
	if e < 0 || e >= 1 {
		return Elements{}, fmt.Errorf("%w: eccentricity %g", ErrDegenerateOrbit, e)
	}
	return Elements{
		SemiMajorAxis:            a,
		Eccentricity:             e,
		Inclination:              inc,
		LongitudeOfAscendingNode: normalizeAngle(raan),
		ArgumentOfPeriapsis:      normalizeAngle(argp),
		MeanAnomalyAtEpoch:       normalizeAngle(m0),
	}, nil
}

// MeanMotion returns the mean angular motion in rad/s.
func (el Elements) MeanMotion(mu float64) float64 {
	a := el.SemiMajorAxis
	return math.Sqrt(mu / (a * a * a))
}

// Period returns the orbital period by Kepler's third law.
func (el Elements) Period(mu float64) float64 {
	return 2 * math.Pi / el.MeanMotion(mu)
}

// MeanAnomalyAt returns the mean anomaly after elapsed seconds since
// the element epoch.
func (el Elements) MeanAnomalyAt(elapsed, mu float64) float64 {
	return normalizeAngle(el.MeanAnomalyAtEpoch + el.MeanMotion(mu)*elapsed)
}

func (el Elements) Periapsis() float64 {
	return el.SemiMajorAxis * (1 - el.Eccentricity)
}

func (el Elements) Apoapsis() float64 {
	return el.SemiMajorAxis * (1 + el.Eccentricity)
}

func (el Elements) SemiMinorAxis() float64 {
	e := el.Eccentricity
	return el.SemiMajorAxis * math.Sqrt(1-e*e)
}

func (el Elements) SemiLatusRectum() float64 {
	e := el.Eccentricity
	return el.SemiMajorAxis * (1 - e*e)
}
