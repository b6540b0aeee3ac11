package kepler

import (
	"fmt"
	"math"
)

const (
	solveTolerance = 1e-12
	maxIterations  = 50
)

// EccentricFromMean solves Kepler's equation M = E - e*sin(E) for E by
// Newton-Raphson iteration. Non-convergence within the iteration bound
// is reported, never silently truncated.
func EccentricFromMean(meanAnomaly, eccentricity float64) (float64, error) {
	if eccentricity == 0 {
		return normalizeAngle(meanAnomaly), nil
	}

	M := normalizeAngle(meanAnomaly)
	E := initialGuess(M, eccentricity)
	for i := 0; i < maxIterations; i++ {
		f := E - eccentricity*math.Sin(E) - M
		fp := 1 - eccentricity*math.Cos(E)
		delta := f / fp
		E -= delta
		if math.Abs(delta) < solveTolerance {
			return normalizeAngle(E), nil
		}
	}
	return 0, fmt.Errorf("%w after %d iterations (M=%g, e=%g)",
		ErrNoConvergence, maxIterations, M, eccentricity)
}

// TrueFromEccentric converts an eccentric anomaly to the true anomaly.
func TrueFromEccentric(eccentricAnomaly, eccentricity float64) float64 {
	if eccentricity == 0 {
		return normalizeAngle(eccentricAnomaly)
	}
	sinE := math.Sin(eccentricAnomaly)
	cosE := math.Cos(eccentricAnomaly)
	sqrtTerm := math.Sqrt(1 - eccentricity*eccentricity)
	return normalizeAngle(math.Atan2(sqrtTerm*sinE, cosE-eccentricity))
}

// EccentricFromTrue is the inverse of TrueFromEccentric.
func EccentricFromTrue(trueAnomaly, eccentricity float64) float64 {
	sinv := math.Sin(trueAnomaly)
	cosv := math.Cos(trueAnomaly)
	sqrtTerm := math.Sqrt(1 - eccentricity*eccentricity)
	return normalizeAngle(math.Atan2(sqrtTerm*sinv, eccentricity+cosv))
}

// MeanFromEccentric evaluates Kepler's equation directly.
func MeanFromEccentric(eccentricAnomaly, eccentricity float64) float64 {
	return normalizeAngle(eccentricAnomaly - eccentricity*math.Sin(eccentricAnomaly))
}

func normalizeAngle(angle float64) float64 {
	wrapped := math.Mod(angle, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped
}

// initialGuess picks the Newton-Raphson starting point; the plain mean
// anomaly stalls for highly eccentric orbits.
func initialGuess(meanAnomaly, eccentricity float64) float64 {
	if eccentricity < 0.8 {
		return meanAnomaly
	}
	if meanAnomaly < math.Pi {
		return meanAnomaly + eccentricity/2
	}
	return meanAnomaly - eccentricity/2
}
