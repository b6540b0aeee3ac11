package kepler

import (
	"errors"
	"math"
	"testing"
)

const earthMu = 3.986004418e14

func TestEccentricFromMeanSatisfiesKepler(t *testing.T) {
	eccs := []float64{0, 0.1, 0.5, 0.9, 0.99}
	means := []float64{0, 0.3, math.Pi / 2, math.Pi, 4.0, 2*math.Pi - 0.1}

	for _, e := range eccs {
		for _, M := range means {
			E, err := EccentricFromMean(M, e)
			if err != nil {
				t.Fatalf("e=%g M=%g: %v", e, M, err)
			}
			back := normalizeAngle(E - e*math.Sin(E))
			if diff := math.Abs(back - normalizeAngle(M)); diff > 1e-10 {
				t.Errorf("e=%g M=%g: residual %g", e, M, diff)
			}
		}
	}
}

func TestEccentricFromMeanReportsNonConvergence(t *testing.T) {
	// A non-finite eccentricity can never pass the tolerance check; the
	// solver must report the exhausted iteration bound, not return junk.
	if _, err := EccentricFromMean(1.0, math.NaN()); !errors.Is(err, ErrNoConvergence) {
		t.Errorf("err = %v, want ErrNoConvergence", err)
	}
}

func TestAnomalyRoundTrip(t *testing.T) {
	for _, e := range []float64{0.1, 0.5, 0.9} {
		for _, E := range []float64{0.2, 1.5, 3.0, 5.5} {
			v := TrueFromEccentric(E, e)
			back := EccentricFromTrue(v, e)
			if diff := math.Abs(back - normalizeAngle(E)); diff > 1e-10 {
				t.Errorf("e=%g E=%g: round trip off by %g", e, E, diff)
			}
		}
	}
}

func TestNewElementsRejectsDegenerate(t *testing.T) {
	cases := []struct {
		name             string
		a, e             float64
		inc, raan, argp  float64
		m0               float64
	}{
		{name: "parabolic", a: 7e6, e: 1.0},
		{name: "hyperbolic", a: 7e6, e: 1.5},
		{name: "negative ecc", a: 7e6, e: -0.1},
		{name: "zero axis", a: 0, e: 0.1},
		{name: "negative axis", a: -7e6, e: 0.1},
		{name: "nan axis", a: math.NaN(), e: 0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewElements(tc.a, tc.e, tc.inc, tc.raan, tc.argp, tc.m0)
			if !errors.Is(err, ErrDegenerateOrbit) {
				t.Errorf("err = %v, want ErrDegenerateOrbit", err)
			}
		})
	}
}

func TestCircularOrbitIsPrograde(t *testing.T) {
	a := 7e6
	el, err := NewElements(a, 0, 0, 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	pos, vel, err := el.StateAt(0, earthMu)
	if err != nil {
		t.Fatal(err)
	}

	vc := math.Sqrt(earthMu / a)
	if math.Abs(pos.X-a) > 1 || math.Abs(pos.Y) > 1 || math.Abs(pos.Z) > 1 {
		t.Errorf("pos at epoch = %v, want (%g, 0, 0)", pos, a)
	}
	if math.Abs(vel.Y-vc) > 1e-6*vc || math.Abs(vel.X) > 1e-6*vc {
		t.Errorf("vel at epoch = %v, want (0, %g, 0)", vel, vc)
	}
	if h := pos.Cross(vel); h.Z <= 0 {
		t.Errorf("angular momentum z = %g, want positive (prograde)", h.Z)
	}

	// Quarter period later the body should sit on the +Y axis.
	quarter := el.Period(earthMu) / 4
	pos, _, err = el.StateAt(quarter, earthMu)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pos.Y-a) > 1e-6*a || math.Abs(pos.X) > 1e-6*a {
		t.Errorf("pos at quarter period = %v, want (0, %g, 0)", pos, a)
	}
}

func TestPeriodThirdLaw(t *testing.T) {
	for _, a := range []float64{7e6, 4.2e7, 1.5e11} {
		el, err := NewElements(a, 0.1, 0.2, 0, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		p := el.Period(earthMu)
		want := 2 * math.Pi * math.Sqrt(a*a*a/earthMu)
		if math.Abs(p-want) > 1e-9*want {
			t.Errorf("a=%g: period %g, want %g", a, p, want)
		}
	}
}

func TestElementsStateRoundTrip(t *testing.T) {
	cases := []struct {
		name            string
		a, e, inc       float64
		raan, argp, m0  float64
	}{
		{"circular equatorial", 7e6, 0, 0, 0, 0, 0.7},
		{"eccentric equatorial", 7e6, 0.2, 0, 0, 1.0, 0.5},
		{"inclined", 8e6, 0.1, 0.6, 1.2, 2.1, 0.9},
		{"high ecc", 2e7, 0.7, 0.4, 0.3, 0.8, 2.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			el, err := NewElements(tc.a, tc.e, tc.inc, tc.raan, tc.argp, tc.m0)
			if err != nil {
				t.Fatal(err)
			}
			pos, vel, err := el.StateAt(0, earthMu)
			if err != nil {
				t.Fatal(err)
			}
			back, err := ElementsFromState(pos, vel, earthMu)
			if err != nil {
				t.Fatal(err)
			}

			if rel := math.Abs(back.SemiMajorAxis-el.SemiMajorAxis) / el.SemiMajorAxis; rel > 1e-9 {
				t.Errorf("a: %g vs %g", back.SemiMajorAxis, el.SemiMajorAxis)
			}
			if math.Abs(back.Eccentricity-el.Eccentricity) > 1e-9 {
				t.Errorf("e: %g vs %g", back.Eccentricity, el.Eccentricity)
			}
			if math.Abs(back.Inclination-el.Inclination) > 1e-9 {
				t.Errorf("inc: %g vs %g", back.Inclination, el.Inclination)
			}

			// Positions must agree regardless of how the angle triple
			// was decomposed (circular/equatorial cases are ambiguous).
			pos2, vel2, err := back.StateAt(0, earthMu)
			if err != nil {
				t.Fatal(err)
			}
			if d := pos.Distance(pos2); d > 1e-6*tc.a {
				t.Errorf("position mismatch %g m", d)
			}
			if d := vel.Distance(vel2); d > 1e-6*vel.Norm() {
				t.Errorf("velocity mismatch %g m/s", d)
			}
		})
	}
}

func TestElementsFromStateRejectsUnbound(t *testing.T) {
	a := 7e6
	el, _ := NewElements(a, 0, 0, 0, 0, 0)
	pos, vel, err := el.StateAt(0, earthMu)
	if err != nil {
		t.Fatal(err)
	}

	// Double the circular speed: well past escape velocity.
	if _, err := ElementsFromState(pos, vel.Scale(2), earthMu); !errors.Is(err, ErrDegenerateOrbit) {
		t.Errorf("unbound: err = %v, want ErrDegenerateOrbit", err)
	}

	// Radial fall: no angular momentum.
	if _, err := ElementsFromState(pos, pos.Normalized().Scale(-100), earthMu); !errors.Is(err, ErrDegenerateOrbit) {
		t.Errorf("rectilinear: err = %v, want ErrDegenerateOrbit", err)
	}
}

func TestApsides(t *testing.T) {
	el, _ := NewElements(1e7, 0.3, 0, 0, 0, 0)
	if got := el.Periapsis(); got != 7e6 {
		t.Errorf("Periapsis = %g, want 7e6", got)
	}
	if got := el.Apoapsis(); got != 1.3e7 {
		t.Errorf("Apoapsis = %g, want 1.3e7", got)
	}
}

func TestSOIEstimates(t *testing.T) {
	const (
		earthMass = 5.9722e24
		sunMass   = 1.989e30
		au        = 1.496e11
	)

	// Earth's Laplace SOI about the Sun is roughly 0.93 million km.
	soi := SOILaplace(au, earthMass, sunMass)
	if soi < 9.0e8 || soi > 9.5e8 {
		t.Errorf("Earth SOI = %g m, want about 9.24e8", soi)
	}

	integrated := SOILaplaceIntegrated(au, earthMass, sunMass)
	if integrated >= soi {
		t.Errorf("integrated SOI %g should be below Laplace %g", integrated, soi)
	}

	hill := SOIHill(au, 0.0167, earthMass, sunMass)
	if hill < 1.4e9 || hill > 1.6e9 {
		t.Errorf("Earth Hill radius = %g m, want about 1.5e9", hill)
	}
}
