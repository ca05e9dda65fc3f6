package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment. The
// Reward is the reward for the action that led to the TimeStep and is
// 0 on the first step of an episode.
type TimeStep struct {
	StepType
	Reward      float64
	Observation mat.Vector
	Number      int
}

// NewTimeStep returns a new TimeStep
func NewTimeStep(t StepType, reward float64, obs mat.Vector,
	n int) TimeStep {
	return TimeStep{t, reward, obs, n}
}

// First returns whether a TimeStep is the first in an episode
func (t TimeStep) First() bool {
	return t.StepType == First
}

// Last returns whether a TimeStep is the last step in an episode
func (t TimeStep) Last() bool {
	return t.StepType == Last
}

func (t TimeStep) String() string {
	return fmt.Sprintf("TimeStep | Type: %v  |  Reward:  %.2f  |  "+
		"Step Number:  %v", t.StepType, t.Reward, t.Number)
}
