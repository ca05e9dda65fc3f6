// Package bandit implements a contextual bandit environment whose best
// action depends on the sign of the first observation feature.
package bandit

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	env "github.com/samuelfneumann/gopg/environment"
)

// Bandit implements a contextual bandit. Each episode lasts a single
// step: Reset draws an observation uniformly from [-1, 1]^obsDims and
// Step rewards the action taken for it.
//
// With discrete actions, the best action is 0 if the first feature is
// negative and actions-1 otherwise, rewarded with 1 while all other
// actions are rewarded with 0. With continuous actions, the target
// action has every dimension equal to the sign of the first feature
// (+1 for 0), and the reward is the negative mean squared distance to
// the target.
type Bandit struct {
	obsDims  int
	actDims  int
	discrete bool

	obs     *mat.VecDense
	started bool
	steps   int

	uniform distuv.Uniform
}

// New returns a new contextual bandit
func New(obsDims, actDims int, discrete bool, seed uint64) (*Bandit, error) {
	if obsDims < 1 {
		return nil, fmt.Errorf("new: need at least 1 observation feature, "+
			"have(%v)", obsDims)
	}
	if discrete && actDims < 2 {
		return nil, fmt.Errorf("new: need at least 2 discrete actions, "+
			"have(%v)", actDims)
	}
	if actDims < 1 {
		return nil, fmt.Errorf("new: need at least 1 action dimension, "+
			"have(%v)", actDims)
	}

	return &Bandit{
		obsDims:  obsDims,
		actDims:  actDims,
		discrete: discrete,
		obs:      mat.NewVecDense(obsDims, nil),
		uniform:  distuv.Uniform{Min: -1, Max: 1, Src: rand.NewSource(seed)},
	}, nil
}

// Reset starts a new episode
func (b *Bandit) Reset() (env.TimeStep, error) {
	for i := 0; i < b.obsDims; i++ {
		b.obs.SetVec(i, b.uniform.Rand())
	}
	b.started = true
	b.steps = 0

	return env.NewTimeStep(env.First, 0, mat.VecDenseCopyOf(b.obs), 0), nil
}

// Step takes an action for the current observation and ends the
// episode
func (b *Bandit) Step(action mat.Vector) (env.TimeStep, error) {
	if !b.started {
		return env.TimeStep{}, fmt.Errorf("step: episode has not been reset")
	}

	reward, err := b.Reward(b.obs, action)
	if err != nil {
		return env.TimeStep{}, fmt.Errorf("step: %v", err)
	}
	b.started = false
	b.steps++

	return env.NewTimeStep(env.Last, reward, mat.VecDenseCopyOf(b.obs),
		b.steps), nil
}

// Target returns the best action for obs
func (b *Bandit) Target(obs mat.Vector) *mat.VecDense {
	sign := 1.0
	if obs.AtVec(0) < 0 {
		sign = -1.0
	}

	if b.discrete {
		if sign < 0 {
			return mat.NewVecDense(1, []float64{0})
		}
		return mat.NewVecDense(1, []float64{float64(b.actDims - 1)})
	}

	target := mat.NewVecDense(b.actDims, nil)
	for i := 0; i < b.actDims; i++ {
		target.SetVec(i, sign)
	}
	return target
}

// Reward returns the reward of taking action for obs
func (b *Bandit) Reward(obs, action mat.Vector) (float64, error) {
	target := b.Target(obs)
	if action.Len() != target.Len() {
		return 0, fmt.Errorf("reward: illegal action length\n\twant(%v)"+
			"\n\thave(%v)", target.Len(), action.Len())
	}

	if b.discrete {
		a := action.AtVec(0)
		if a != float64(int(a)) || a < 0 || int(a) >= b.actDims {
			return 0, fmt.Errorf("reward: action %v is not an index in "+
				"[0, %v)", a, b.actDims)
		}
		if a == target.AtVec(0) {
			return 1, nil
		}
		return 0, nil
	}

	diff := mat.NewVecDense(b.actDims, nil)
	diff.SubVec(action, target)
	return -mat.Dot(diff, diff) / float64(b.actDims), nil
}

// ObservationSpec returns the observation specification of the
// environment
func (b *Bandit) ObservationSpec() env.Spec {
	lower := make([]float64, b.obsDims)
	upper := make([]float64, b.obsDims)
	for i := range lower {
		lower[i], upper[i] = -1, 1
	}
	return env.Spec{
		Type:        env.Observation,
		Dims:        b.obsDims,
		LowerBound:  lower,
		UpperBound:  upper,
		Cardinality: env.Continuous,
	}
}

// ActionSpec returns the action specification of the environment
func (b *Bandit) ActionSpec() env.Spec {
	if b.discrete {
		return env.Spec{
			Type:        env.Action,
			Dims:        b.actDims,
			Cardinality: env.Discrete,
		}
	}
	return env.Spec{
		Type:        env.Action,
		Dims:        b.actDims,
		Cardinality: env.Continuous,
	}
}
