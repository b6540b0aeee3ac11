package kepler

import "math"

// Sphere-of-influence radius estimates. The motive system itself never
// decides SOI transitions; these feed the external region-of-influence
// logic that does.

// SOILaplace is the classic Laplace sphere of influence.
func SOILaplace(semiMajorAxis, bodyMass, primaryMass float64) float64 {
	return semiMajorAxis * math.Pow(bodyMass/primaryMass, 2.0/5.0)
}

// SOILaplaceIntegrated averages the angle-dependent Laplace radius over
// all approach directions.
func SOILaplaceIntegrated(semiMajorAxis, bodyMass, primaryMass float64) float64 {
	return 0.9431 * SOILaplace(semiMajorAxis, bodyMass, primaryMass)
}

// SOIHill is the Hill sphere radius at the given instantaneous distance
// from the primary.
func SOIHill(rToPrimary, eccentricity, bodyMass, primaryMass float64) float64 {
	frac := bodyMass / (3 * (bodyMass + primaryMass))
	return rToPrimary * (1 - eccentricity) * math.Cbrt(frac)
}
