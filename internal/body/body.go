// Package body holds the static identity records and per-tick kinematic
// snapshots of simulated bodies. Bodies live in an arena-style Registry
// addressed by small integer IDs; host entity systems are expected to
// store the ID, never the record itself.
package body

import (
	"errors"
	"fmt"

	"github.com/maren-k/orbitlab/internal/timemap"
	"github.com/maren-k/orbitlab/internal/vec"
)

// ID indexes a body within a Registry.
type ID int

// None marks the absence of a parent or primary body (world origin).
const None ID = -1

var (
	ErrUnknownBody = errors.New("body: unknown body id")
	ErrBadMass     = errors.New("body: mass must be non-negative and finite")
)

// Info is the immutable identity of a body. The Major flag decides
// whether the body contributes gravity to others; it cannot change
// after spawn.
type Info struct {
	ID          ID
	Name        string
	Designation string
	Tags        []string
	Mass        float64
	Major       bool
}

// DisplayName prefers the name, then the designation, then the raw ID.
func (i Info) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	if i.Designation != "" {
		return i.Designation
	}
	return fmt.Sprintf("body-%d", i.ID)
}

// State is the externally visible per-tick snapshot of a body.
//
// Exactly one of {HasVelocity, HasLocal} is set at any instant,
// matching the active dynamics model; Fixed bodies have neither.
type State struct {
	CurrentPosition  vec.Vec3
	LastStepPosition vec.Vec3

	// Defined only while the active model is Newtonian.
	CurrentVelocity vec.Vec3
	HasVelocity     bool

	// Defined only while the active model is Keplerian.
	CurrentLocalPosition   vec.Vec3
	CurrentPrimaryPosition vec.Vec3
	HasLocal               bool

	// Precomputed future positions, present only if requested.
	Trajectory *timemap.TimeMap[vec.Vec3]

	// Simulated time the Newtonian state was last (re)seeded. Used to
	// detect stale initialization after a model switch.
	NewtonianInitTime float64
	NewtonianInit     bool
}
