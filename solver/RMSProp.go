package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// rmsPropEta is the only η Gorgonia's RMSProp solver supports
const rmsPropEta = 0.001

// RMSPropConfig holds the hyperparameters of an RMSProp solver. Rho is
// the decay rate of the squared gradient average. Gradients are
// clipped to [-Clip, Clip] when Clip > 0.
type RMSPropConfig struct {
	StepSize float64
	Epsilon  float64
	Eta      float64
	Rho      float64
	Batch    int
	Clip     float64
}

// NewDefaultRMSProp returns an RMSProp solver with ε = 1e-8 and
// ρ = 0.999, without clipping
func NewDefaultRMSProp(stepSize float64, batchSize int) (*Solver, error) {
	return NewRMSProp(stepSize, 1e-8, rmsPropEta, 0.999, batchSize, -1.0)
}

// NewRMSProp returns an RMSProp solver. Only η = 0.001 is supported.
func NewRMSProp(stepSize, epsilon, eta, rho float64, batchSize int,
	clip float64) (*Solver, error) {
	return newSolver(RMSProp, RMSPropConfig{
		StepSize: stepSize,
		Epsilon:  epsilon,
		Eta:      eta,
		Rho:      rho,
		Batch:    batchSize,
		Clip:     clip,
	})
}

// Validate returns an error if the step size is not positive, η is
// not 0.001, ε is negative, or ρ lies outside [0, 1)
func (r RMSPropConfig) Validate() error {
	if err := checkStep(RMSProp, r.StepSize, r.Batch); err != nil {
		return err
	}
	if r.Eta != rmsPropEta {
		return fmt.Errorf("%v: only eta = %v is supported, have(%v)",
			RMSProp, rmsPropEta, r.Eta)
	}
	if !(r.Epsilon >= 0) {
		return fmt.Errorf("%v: epsilon must be non-negative, have(%v)",
			RMSProp, r.Epsilon)
	}
	return checkDecay(RMSProp, "rho", r.Rho)
}

func (r RMSPropConfig) Create() G.Solver {
	opts := []G.SolverOpt{
		G.WithLearnRate(r.StepSize),
		G.WithEps(r.Epsilon),
		G.WithRho(r.Rho),
		G.WithBatchSize(float64(r.Batch)),
	}
	if r.Clip > 0 {
		opts = append(opts, G.WithClip(r.Clip))
	}
	return G.NewRMSPropSolver(opts...)
}

func (r RMSPropConfig) ValidType(t Type) bool {
	return t == RMSProp
}
