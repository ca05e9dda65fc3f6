package initwfn

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
)

// GaussianConfig configures drawing each weight independently from
// N(Mean, StdDev²).
type GaussianConfig struct {
	Mean, StdDev float64
}

// NewGaussian returns a weight initializer drawing weights from a
// Gaussian. The standard deviation must be non-negative.
func NewGaussian(mean, stddev float64) (*InitWFn, error) {
	return newInitWFn(GaussianConfig{Mean: mean, StdDev: stddev})
}

func (u GaussianConfig) Type() Type { return Gaussian }

// Validate returns an error if the mean is not finite or the standard
// deviation is negative or not finite
func (u GaussianConfig) Validate() error {
	if math.IsNaN(u.Mean) || math.IsInf(u.Mean, 0) {
		return fmt.Errorf("%v: mean must be finite, have(%v)", Gaussian,
			u.Mean)
	}
	if !(u.StdDev >= 0) || math.IsInf(u.StdDev, 0) {
		return fmt.Errorf("%v: standard deviation must be non-negative "+
			"and finite, have(%v)", Gaussian, u.StdDev)
	}
	return nil
}

func (u GaussianConfig) Create() G.InitWFn {
	return G.Gaussian(u.Mean, u.StdDev)
}
