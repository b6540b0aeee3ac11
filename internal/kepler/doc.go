// Package kepler implements analytic two-body orbital mechanics:
// classical orbital elements, Kepler's equation, and the conversions
// between elements and cartesian state vectors.
//
// Elements are validated at construction; the solver only ever sees
// closed (elliptic) orbits. Angles are radians, distances meters,
// times seconds. The gravitational parameter mu is G times the mass
// of the primary.
//
// Orientation convention: a prograde orbit (inclination zero, all
// angles zero) moves counter-clockwise in the XY plane viewed from +Z,
// so its specific angular momentum points along +Z.
package kepler
