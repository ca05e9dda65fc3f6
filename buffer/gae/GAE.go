// Package gae implements a buffer of on-policy experience which
// computes generalized advantage estimates and rewards-to-go.
package gae

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Buffer implements a forward view generalized advantage estimate -
// GAE(λ) - buffer following https://arxiv.org/abs/1506.02438.
//
// Without a learned baseline, values stored are 0 and the advantage
// of each step is its (ℽλ)-discounted reward-to-go. With λ = 1 the
// advantages are the Monte-Carlo rewards-to-go used by REINFORCE.
type Buffer struct {
	obsSize    int // Size of state observations
	actionSize int // Number of columns of a single action
	maxSize    int // Max buffer size

	currentPos   int // Current position in the buffer
	pathStartIdx int // Position in the buffer where current trajectory starts

	lambda float64 // λ for GAE(λ) calculation
	gamma  float64 // Discount factor ℽ

	obsBuffer []float64
	actBuffer []float64
	advBuffer []float64
	rewBuffer []float64
	retBuffer []float64
	valBuffer []float64
}

// New creates and returns a new GAE(λ) buffer
func New(obsDim, actDim, size int, lambda, gamma float64) (*Buffer, error) {
	if obsDim <= 0 || actDim <= 0 || size <= 0 {
		return nil, fmt.Errorf("new: observation size, action size, and "+
			"buffer size must be positive, have(%v, %v, %v)", obsDim, actDim,
			size)
	}
	if lambda < 0 || lambda > 1 {
		return nil, fmt.Errorf("new: λ must be in [0, 1], have(%v)", lambda)
	}
	if gamma < 0 || gamma > 1 {
		return nil, fmt.Errorf("new: ℽ must be in [0, 1], have(%v)", gamma)
	}

	return &Buffer{
		obsSize:    obsDim,
		actionSize: actDim,
		maxSize:    size,
		lambda:     lambda,
		gamma:      gamma,
		obsBuffer:  make([]float64, size*obsDim),
		actBuffer:  make([]float64, size*actDim),
		advBuffer:  make([]float64, size),
		rewBuffer:  make([]float64, size),
		retBuffer:  make([]float64, size),
		valBuffer:  make([]float64, size),
	}, nil
}

// Len returns the number of steps stored in the buffer
func (v *Buffer) Len() int {
	return v.currentPos
}

// Full returns whether the buffer is full
func (v *Buffer) Full() bool {
	return v.currentPos >= v.maxSize
}

// Store stores a single timestep state, action, reward, and value to
// the Buffer.
func (v *Buffer) Store(obs, act mat.Vector, rew, val float64) error {
	if v.currentPos >= v.maxSize {
		return fmt.Errorf("store: cannot add new transition, buffer at " +
			"maximum capacity")
	}
	if obs.Len() != v.obsSize {
		return fmt.Errorf("store: illegal obs length \n\twant(%v)\n\thave(%v)",
			v.obsSize, obs.Len())
	}
	if act.Len() != v.actionSize {
		return fmt.Errorf("store: illegal act length \n\twant(%v)\n\thave(%v)",
			v.actionSize, act.Len())
	}

	start := v.currentPos * v.obsSize
	for i := 0; i < v.obsSize; i++ {
		v.obsBuffer[start+i] = obs.AtVec(i)
	}

	start = v.currentPos * v.actionSize
	for i := 0; i < v.actionSize; i++ {
		v.actBuffer[start+i] = act.AtVec(i)
	}

	v.rewBuffer[v.currentPos] = rew
	v.valBuffer[v.currentPos] = val
	v.currentPos++
	return nil
}

// FinishPath computes advantage estimates using GAE(λ) and
// rewards-to-go estimates for each state for the current trajectory.
// This should be called at the end of a trajectory or when one gets
// cut off by the buffer filling up.
//
// The lastVal argument should be 0 if the trajectory ended because
// the agent reached a terminal state, and otherwise it should be
// v(s), the value estimate of the current state.
func (v *Buffer) FinishPath(lastVal float64) {
	start := v.pathStartIdx
	stop := v.currentPos
	if start == stop {
		return
	}

	rews := append(append([]float64{}, v.rewBuffer[start:stop]...), lastVal)
	vals := append(append([]float64{}, v.valBuffer[start:stop]...), lastVal)

	// GAE-lambda advantage calculation
	stateVals := mat.NewVecDense(len(vals)-1, vals[:len(vals)-1])
	nextStateVals := mat.NewVecDense(len(vals)-1, vals[1:])
	rewards := mat.NewVecDense(len(rews)-1, rews[:len(rews)-1])

	deltas := mat.NewVecDense(stateVals.Len(), nil)
	deltas.AddScaledVec(rewards, v.gamma, nextStateVals)
	deltas.SubVec(deltas, stateVals)

	copy(v.advBuffer[start:stop], DiscountCumSum(deltas.RawVector().Data,
		v.gamma*v.lambda))

	// Rewards-to-go
	rewsToGo := DiscountCumSum(rews, v.gamma)
	copy(v.retBuffer[start:stop], rewsToGo[:len(rewsToGo)-1])

	v.pathStartIdx = v.currentPos
}

// Batch is the experience stored in a Buffer, with one row per step
type Batch struct {
	Observations *mat.Dense
	Actions      *mat.Dense
	Advantages   *mat.VecDense
	Returns      *mat.VecDense
}

// Get returns the experience stored in the buffer and empties it. Any
// unfinished trajectory is finished as if it had reached a terminal
// state. If normalize is true, advantages are standardized to mean 0
// and standard deviation 1.
func (v *Buffer) Get(normalize bool) (Batch, error) {
	if v.currentPos == 0 {
		return Batch{}, fmt.Errorf("get: buffer is empty")
	}
	v.FinishPath(0)

	n := v.currentPos
	obs := append([]float64{}, v.obsBuffer[:n*v.obsSize]...)
	act := append([]float64{}, v.actBuffer[:n*v.actionSize]...)
	adv := append([]float64{}, v.advBuffer[:n]...)
	ret := append([]float64{}, v.retBuffer[:n]...)

	v.currentPos = 0
	v.pathStartIdx = 0

	if normalize {
		Normalize(adv)
	}

	return Batch{
		Observations: mat.NewDense(n, v.obsSize, obs),
		Actions:      mat.NewDense(n, v.actionSize, act),
		Advantages:   mat.NewVecDense(n, adv),
		Returns:      mat.NewVecDense(n, ret),
	}, nil
}

// Normalize standardizes x in place to mean 0 and standard deviation 1
func Normalize(x []float64) {
	mean := stat.Mean(x, nil)
	std := 1e-8
	if len(x) > 1 {
		std += stat.StdDev(x, nil)
	}
	floats.AddConst(-mean, x)
	floats.Scale(1/std, x)
}

// DiscountCumSum computes and returns the discounted cumulative sum
// of all elements of x. Given x = [x0 x1 x2 ... xN] and discount ℽ,
// element i of the result is:
//
//	xi + ℽ x(i+1) + ℽ^2 x(i+2) + ... + ℽ^(N-i) xN
func DiscountCumSum(x []float64, discount float64) []float64 {
	cumSums := make([]float64, len(x))
	next := 0.0
	for i := len(x) - 1; i >= 0; i-- {
		next = x[i] + discount*next
		cumSums[i] = next
	}
	return cumSums
}
