// Package distribution implements the action distributions produced by
// the forward pass of a policy. Each distribution holds one
// distribution per observation in a batch.
package distribution

import "gonum.org/v1/gonum/mat"

// Distribution is a batch of action distributions, one per row.
type Distribution interface {
	// Len returns the number of distributions in the batch
	Len() int

	// ActionWidth returns the number of columns of a single action.
	// Discrete actions have width 1 and hold the action index.
	ActionWidth() int

	// Sample draws one action per distribution in the batch
	Sample() *mat.Dense

	// Mode returns the most likely action of each distribution
	Mode() *mat.Dense

	// LogProb returns the log probability (or log density) of row i of
	// actions under distribution i.
	LogProb(actions mat.Matrix) ([]float64, error)
}
