package initwfn

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
)

// UniformConfig configures drawing each weight independently from
// U[Low, High).
type UniformConfig struct {
	Low, High float64
}

// NewUniform returns a weight initializer drawing weights uniformly
// from [low, high). The bounds must satisfy low < high.
func NewUniform(low, high float64) (*InitWFn, error) {
	return newInitWFn(UniformConfig{Low: low, High: high})
}

func (u UniformConfig) Type() Type { return Uniform }

// Validate returns an error unless Low < High and both are finite.
// Gorgonia panics when creating weights over an empty range.
func (u UniformConfig) Validate() error {
	if math.IsInf(u.Low, 0) || math.IsInf(u.High, 0) || !(u.Low < u.High) {
		return fmt.Errorf("%v: need finite bounds with low < high, "+
			"have(%v, %v)", Uniform, u.Low, u.High)
	}
	return nil
}

func (u UniformConfig) Create() G.InitWFn {
	return G.Uniform(u.Low, u.High)
}
