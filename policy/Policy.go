// Package policy implements policies for policy gradient algorithms.
//
// A Policy maps observations to actions, can be updated from a batch
// of experience, and can be saved to disk. The MLP policy
// parameterizes either a categorical distribution over discrete
// actions, whose probabilities are the softmax of the network outputs,
// or a Gaussian distribution over continuous actions, whose mean is
// the network output and whose standard deviation is exp of a learned
// log standard deviation vector. The PG policy extends the MLP with
// the REINFORCE policy gradient update.
//
// Observations are batched as rows of a matrix. Discrete actions are
// represented as length-1 vectors holding the action index, and
// continuous actions as vectors with one entry per action dimension.
package policy

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gopg/distribution"
)

// ActorLoss is the key of the policy loss in the Log returned by
// Update.
const ActorLoss = "Actor Loss"

var (
	// ErrNotImplemented is returned when a policy does not implement
	// an operation, for example updating a policy that has no update
	// rule.
	ErrNotImplemented = errors.New("not implemented")

	// ErrShapeMismatch is returned when inputs do not have the shape
	// a policy expects.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidConfig is returned when a Config is invalid
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Log maps the names of quantities logged by an update to their value
type Log map[string]float64

// Policy is the set of operations every policy supports
type Policy interface {
	// SelectAction returns the action to take for a single
	// observation.
	SelectAction(obs mat.Vector) (*mat.VecDense, error)

	// SelectActions returns one action per row of obs
	SelectActions(obs mat.Matrix) (*mat.Dense, error)

	// Update performs a single update of the policy given a batch of
	// observations, the actions taken for each observation, and the
	// advantage of each action.
	Update(obs, actions mat.Matrix, advantages mat.Vector) (Log, error)

	// Save saves the policy to filepath
	Save(filepath string) error
}

// Forwarder computes the action distribution of a batch of
// observations
type Forwarder interface {
	Forward(obs mat.Matrix) (distribution.Distribution, error)
}
