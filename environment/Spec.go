package environment

import (
	"fmt"
)

// SpecType determines what kind of specification a Spec is
type SpecType int

const (
	Action SpecType = iota
	Observation
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	default:
		return fmt.Sprintf("SpecType(%d)", int(s))
	}
}

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action or observation in an environment.
//
// For discrete actions, Dims is the number of actions and actions are
// single indices in [0, Dims). Otherwise, Dims is the length of each
// vector and LowerBound and UpperBound hold one bound per dimension.
type Spec struct {
	Type       SpecType
	Dims       int
	LowerBound []float64
	UpperBound []float64
	Cardinality
}

// NewSpec constructs a new environment specification. Bounds may be
// nil for discrete specifications.
func NewSpec(t SpecType, dims int, lowerBound, upperBound []float64,
	cardinality Cardinality) (Spec, error) {
	if dims <= 0 {
		return Spec{}, fmt.Errorf("newSpec: dims must be positive, have(%v)",
			dims)
	}
	if cardinality == Continuous || lowerBound != nil || upperBound != nil {
		if len(lowerBound) != dims {
			return Spec{}, fmt.Errorf("newSpec: dims %v must match lower "+
				"bounds length %v", dims, len(lowerBound))
		}
		if len(upperBound) != dims {
			return Spec{}, fmt.Errorf("newSpec: dims %v must match upper "+
				"bounds length %v", dims, len(upperBound))
		}
		for i := range lowerBound {
			if lowerBound[i] > upperBound[i] {
				return Spec{}, fmt.Errorf("newSpec: lower bound %v exceeds "+
					"upper bound %v in dimension %v", lowerBound[i],
					upperBound[i], i)
			}
		}
	}
	return Spec{t, dims, lowerBound, upperBound, cardinality}, nil
}

// Width returns the number of entries in a single vector described by
// the Spec. Discrete actions are a single index.
func (s Spec) Width() int {
	if s.Cardinality == Discrete && s.Type == Action {
		return 1
	}
	return s.Dims
}
