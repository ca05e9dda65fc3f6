package solver

import G "gorgonia.org/gorgonia"

// VanillaConfig holds the hyperparameters of plain stochastic gradient
// descent. Gradients are clipped to [-Clip, Clip] when Clip > 0.
type VanillaConfig struct {
	StepSize float64
	Batch    int
	Clip     float64
}

// NewVanilla returns a stochastic gradient descent solver
func NewVanilla(stepSize float64, batchSize int,
	clip float64) (*Solver, error) {
	return newSolver(Vanilla, VanillaConfig{
		StepSize: stepSize,
		Batch:    batchSize,
		Clip:     clip,
	})
}

// Validate returns an error if the step size is not positive or the
// batch size is less than 1
func (v VanillaConfig) Validate() error {
	return checkStep(Vanilla, v.StepSize, v.Batch)
}

func (v VanillaConfig) Create() G.Solver {
	opts := []G.SolverOpt{
		G.WithLearnRate(v.StepSize),
		G.WithBatchSize(float64(v.Batch)),
	}
	if v.Clip > 0 {
		opts = append(opts, G.WithClip(v.Clip))
	}
	return G.NewVanillaSolver(opts...)
}

func (v VanillaConfig) ValidType(t Type) bool {
	return t == Vanilla
}
