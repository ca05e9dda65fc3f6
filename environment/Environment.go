// Package environment outlines the interfaces and structs needed to
// collect experience for policies from simulated environments.
package environment

import (
	"gonum.org/v1/gonum/mat"
)

// Environment implements a simulated environment. Each episode begins
// with Reset and continues with Step until a TimeStep is Last.
type Environment interface {
	// Reset starts a new episode and returns its first TimeStep
	Reset() (TimeStep, error)

	// Step takes an action in the environment and returns the next
	// TimeStep
	Step(action mat.Vector) (TimeStep, error)

	ObservationSpec() Spec
	ActionSpec() Spec
}
