package distribution

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/gopg/utils/floatutils"
)

// sumTolerance is the allowed deviation of the sum of a row of
// probabilities from 1.
const sumTolerance float64 = 1e-6

// Categorical implements a batch of categorical distributions over
// a discrete set of actions {0, 1, ..., N-1}. Row i of the probability
// matrix holds the probabilities of each action in distribution i.
type Categorical struct {
	probs *mat.Dense
	src   rand.Source
}

// NewCategorical returns a new batch of categorical distributions.
// Each row of probs must be non-negative and sum to 1. The source src
// is used for sampling.
func NewCategorical(probs mat.Matrix, src rand.Source) (*Categorical, error) {
	r, c := probs.Dims()
	for i := 0; i < r; i++ {
		sum := 0.0
		for j := 0; j < c; j++ {
			p := probs.At(i, j)
			if p < 0 || math.IsNaN(p) {
				return nil, fmt.Errorf("newCategorical: illegal probability "+
					"%v for action %v in row %v", p, j, i)
			}
			sum += p
		}
		if math.Abs(sum-1) > sumTolerance {
			return nil, fmt.Errorf("newCategorical: probabilities of row %v "+
				"sum to %v", i, sum)
		}
	}

	return &Categorical{probs: mat.DenseCopyOf(probs), src: src}, nil
}

// Len returns the number of distributions in the batch
func (c *Categorical) Len() int {
	r, _ := c.probs.Dims()
	return r
}

// Actions returns the number of actions of each distribution
func (c *Categorical) Actions() int {
	_, cols := c.probs.Dims()
	return cols
}

// ActionWidth returns 1, since actions are indices
func (c *Categorical) ActionWidth() int {
	return 1
}

// Probs returns a copy of the probability matrix
func (c *Categorical) Probs() *mat.Dense {
	return mat.DenseCopyOf(c.probs)
}

// Sample draws one action index per distribution
func (c *Categorical) Sample() *mat.Dense {
	out := mat.NewDense(c.Len(), 1, nil)
	for i := 0; i < c.Len(); i++ {
		cat := distuv.NewCategorical(c.probs.RawRowView(i), c.src)
		out.Set(i, 0, cat.Rand())
	}
	return out
}

// Mode returns the index of the most probable action of each
// distribution. Ties are broken towards the lowest index.
func (c *Categorical) Mode() *mat.Dense {
	out := mat.NewDense(c.Len(), 1, nil)
	for i := 0; i < c.Len(); i++ {
		out.Set(i, 0, float64(floatutils.ArgMax(c.probs.RawRowView(i)...)))
	}
	return out
}

// LogProb returns the log probability of the action index in row i of
// actions under distribution i. Actions must have one column.
func (c *Categorical) LogProb(actions mat.Matrix) ([]float64, error) {
	r, cols := actions.Dims()
	if r != c.Len() || cols != 1 {
		return nil, fmt.Errorf("logProb: invalid actions shape\n\t"+
			"want(%v, 1)\n\thave(%v, %v)", c.Len(), r, cols)
	}

	logProbs := make([]float64, r)
	for i := range logProbs {
		index := int(actions.At(i, 0))
		if index < 0 || index >= c.Actions() {
			return nil, fmt.Errorf("logProb: action %v out of range [0, %v)",
				index, c.Actions())
		}
		logProbs[i] = math.Log(c.probs.At(i, index))
	}
	return logProbs, nil
}
