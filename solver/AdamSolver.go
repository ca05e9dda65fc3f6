package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// AdamConfig holds the hyperparameters of an Adam solver. Beta1 and
// Beta2 are the decay rates of the first and second moment estimates.
type AdamConfig struct {
	StepSize float64
	Epsilon  float64
	Beta1    float64
	Beta2    float64
	Batch    int
}

// NewDefaultAdam returns an Adam solver with ε = 1e-8, β1 = 0.9 and
// β2 = 0.999
func NewDefaultAdam(stepSize float64, batchSize int) (*Solver, error) {
	return NewAdam(stepSize, 1e-8, 0.9, 0.999, batchSize)
}

// NewAdam returns an Adam solver
func NewAdam(stepSize, epsilon, beta1, beta2 float64,
	batchSize int) (*Solver, error) {
	return newSolver(Adam, AdamConfig{
		StepSize: stepSize,
		Epsilon:  epsilon,
		Beta1:    beta1,
		Beta2:    beta2,
		Batch:    batchSize,
	})
}

// Validate returns an error if the step size is not positive, ε is
// negative, or either decay rate lies outside [0, 1)
func (a AdamConfig) Validate() error {
	if err := checkStep(Adam, a.StepSize, a.Batch); err != nil {
		return err
	}
	if !(a.Epsilon >= 0) {
		return fmt.Errorf("%v: epsilon must be non-negative, have(%v)", Adam,
			a.Epsilon)
	}
	if err := checkDecay(Adam, "beta1", a.Beta1); err != nil {
		return err
	}
	return checkDecay(Adam, "beta2", a.Beta2)
}

func (a AdamConfig) Create() G.Solver {
	return G.NewAdamSolver(
		G.WithLearnRate(a.StepSize),
		G.WithEps(a.Epsilon),
		G.WithBeta1(a.Beta1),
		G.WithBeta2(a.Beta2),
		G.WithBatchSize(float64(a.Batch)),
	)
}

func (a AdamConfig) ValidType(t Type) bool {
	return t == Adam
}
