package distribution

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/gopg/utils/floatutils"
)

// Gaussian implements a batch of diagonal Gaussian distributions over
// continuous actions. Each distribution has its own mean, but all
// distributions in the batch share the same standard deviation vector.
//
// Samples are drawn with the reparameterization trick: given the mean
// μ and standard deviation σ, ɛ ~ N(0, I) is sampled and the action
// is μ + σ ⊙ ɛ.
type Gaussian struct {
	mean   *mat.Dense
	stddev []float64
	normal *distmv.Normal
}

// NewGaussian returns a new batch of Gaussian distributions with means
// given by the rows of mean and standard deviation stddev, which must
// have one strictly positive entry per column of mean.
func NewGaussian(mean mat.Matrix, stddev []float64,
	src rand.Source) (*Gaussian, error) {
	_, dims := mean.Dims()
	if len(stddev) != dims {
		return nil, fmt.Errorf("newGaussian: invalid standard deviation "+
			"size\n\twant(%v)\n\thave(%v)", dims, len(stddev))
	}
	for i, s := range stddev {
		if !(s > 0) {
			return nil, fmt.Errorf("newGaussian: standard deviation %v of "+
				"dimension %v is not positive", s, i)
		}
	}

	// Standard normal for reparameterized sampling
	means := make([]float64, dims)
	stds := mat.NewDiagDense(dims, floatutils.Ones(dims))
	normal, ok := distmv.NewNormal(means, stds, src)
	if !ok {
		return nil, fmt.Errorf("newGaussian: could not create standard " +
			"normal for sampling")
	}

	return &Gaussian{
		mean:   mat.DenseCopyOf(mean),
		stddev: append([]float64{}, stddev...),
		normal: normal,
	}, nil
}

// Len returns the number of distributions in the batch
func (g *Gaussian) Len() int {
	r, _ := g.mean.Dims()
	return r
}

// ActionWidth returns the dimension of actions
func (g *Gaussian) ActionWidth() int {
	return len(g.stddev)
}

// Mean returns a copy of the mean of each distribution
func (g *Gaussian) Mean() *mat.Dense {
	return mat.DenseCopyOf(g.mean)
}

// StdDev returns a copy of the shared standard deviation vector
func (g *Gaussian) StdDev() []float64 {
	return append([]float64{}, g.stddev...)
}

// Sample draws one reparameterized action per distribution
func (g *Gaussian) Sample() *mat.Dense {
	out := mat.NewDense(g.Len(), g.ActionWidth(), nil)
	eps := make([]float64, g.ActionWidth())
	for i := 0; i < g.Len(); i++ {
		g.normal.Rand(eps)
		for j, e := range eps {
			out.Set(i, j, g.mean.At(i, j)+g.stddev[j]*e)
		}
	}
	return out
}

// Mode returns the mean of each distribution
func (g *Gaussian) Mode() *mat.Dense {
	return g.Mean()
}

// LogProb returns the log density of row i of actions under
// distribution i. The log density is summed over action dimensions.
func (g *Gaussian) LogProb(actions mat.Matrix) ([]float64, error) {
	r, c := actions.Dims()
	if r != g.Len() || c != g.ActionWidth() {
		return nil, fmt.Errorf("logProb: invalid actions shape\n\t"+
			"want(%v, %v)\n\thave(%v, %v)", g.Len(), g.ActionWidth(), r, c)
	}

	logProbs := make([]float64, r)
	for i := range logProbs {
		for j, s := range g.stddev {
			n := distuv.Normal{Mu: g.mean.At(i, j), Sigma: s}
			logProbs[i] += n.LogProb(actions.At(i, j))
		}
	}
	return logProbs, nil
}
