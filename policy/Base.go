package policy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gopg/distribution"
)

// Base implements the generic behaviour shared by all policies. Given
// a Forwarder, Base selects actions by sampling from the action
// distribution. Base defines no update rule and cannot be saved.
type Base struct {
	Forwarder
}

// NewBase returns a new Base policy around f
func NewBase(f Forwarder) *Base {
	return &Base{Forwarder: f}
}

// SelectAction samples an action for a single observation
func (b *Base) SelectAction(obs mat.Vector) (*mat.VecDense, error) {
	actions, err := b.SelectActions(promote(obs))
	if err != nil {
		return nil, fmt.Errorf("selectAction: %w", err)
	}
	return firstRow(actions), nil
}

// SelectActions samples one action per row of obs
func (b *Base) SelectActions(obs mat.Matrix) (*mat.Dense, error) {
	dist, err := b.Forward(obs)
	if err != nil {
		return nil, fmt.Errorf("selectActions: %w", err)
	}
	return selectFrom(dist, Sample), nil
}

// Update implements the Policy interface; it always returns an error
// wrapping ErrNotImplemented.
func (b *Base) Update(obs, actions mat.Matrix, advantages mat.Vector) (Log,
	error) {
	return nil, fmt.Errorf("update: %w", ErrNotImplemented)
}

// Save implements the Policy interface; it always returns an error
// wrapping ErrNotImplemented.
func (b *Base) Save(filepath string) error {
	return fmt.Errorf("save: %w", ErrNotImplemented)
}

// selectFrom selects one action per distribution in dist
func selectFrom(dist distribution.Distribution, mode InferenceMode) *mat.Dense {
	if mode == ArgMax {
		return dist.Mode()
	}
	return dist.Sample()
}

// promote returns a single observation as a batch of size 1
func promote(obs mat.Vector) *mat.Dense {
	batch := mat.NewDense(1, obs.Len(), nil)
	for i := 0; i < obs.Len(); i++ {
		batch.Set(0, i, obs.AtVec(i))
	}
	return batch
}

// firstRow returns a copy of the first row of m
func firstRow(m *mat.Dense) *mat.VecDense {
	_, c := m.Dims()
	row := make([]float64, c)
	mat.Row(row, 0, m)
	return mat.NewVecDense(c, row)
}
