package sim

import (
	"errors"
	"fmt"

	"github.com/maren-k/orbitlab/internal/body"
)

// Domain errors for the simulation façade.
var (
	// ErrBadTimestep indicates a non-positive or non-finite tick size.
	ErrBadTimestep = errors.New("sim: timestep must be positive and finite")

	// ErrStaleState indicates a Newtonian segment was consulted before
	// its state was seeded, i.e. a transition that should have fired
	// never did. This is a sequencing bug, not a numeric failure.
	ErrStaleState = errors.New("sim: newtonian state not initialized for active segment")

	// ErrBodyFaulted matches the fault of any excluded body, whatever
	// the underlying cause; every *BodyError satisfies it.
	ErrBodyFaulted = errors.New("sim: body is faulted")

	// ErrDependencyCycle indicates the parent/primary references of
	// Fixed or Keplerian motives form a cycle.
	ErrDependencyCycle = errors.New("sim: parent dependency cycle")
)

// BodyError wraps an error with the body and simulated time it hit.
type BodyError struct {
	ID   body.ID
	Name string
	Time float64
	Err  error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %q (id %d) at t=%g: %v", e.Name, e.ID, e.Time, e.Err)
}

func (e *BodyError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrBodyFaulted) detect any body fault; the
// underlying cause stays reachable through Unwrap.
func (e *BodyError) Is(target error) bool { return target == ErrBodyFaulted }
