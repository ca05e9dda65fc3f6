package initwfn

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
)

// ZeroesConfig sets every weight to 0. The policy then starts out
// uniform over discrete actions, or with zero mean for continuous
// actions.
type ZeroesConfig struct{}

// NewZeroes returns a weight initializer setting every weight to 0
func NewZeroes() (*InitWFn, error) {
	return newInitWFn(ZeroesConfig{})
}

func (ZeroesConfig) Type() Type        { return Zeroes }
func (ZeroesConfig) Validate() error   { return nil }
func (ZeroesConfig) Create() G.InitWFn { return G.Zeroes() }

// OnesConfig sets every weight to 1
type OnesConfig struct{}

// NewOnes returns a weight initializer setting every weight to 1
func NewOnes() (*InitWFn, error) {
	return newInitWFn(OnesConfig{})
}

func (OnesConfig) Type() Type        { return Ones }
func (OnesConfig) Validate() error   { return nil }
func (OnesConfig) Create() G.InitWFn { return G.Ones() }

// ConstantConfig sets every weight to Value
type ConstantConfig struct {
	Value float64
}

// NewConstant returns a weight initializer setting every weight to
// value
func NewConstant(value float64) (*InitWFn, error) {
	return newInitWFn(ConstantConfig{Value: value})
}

func (c ConstantConfig) Type() Type { return Constant }

// Validate returns an error if the value is not finite
func (c ConstantConfig) Validate() error {
	if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
		return fmt.Errorf("%v: value must be finite, have(%v)", Constant,
			c.Value)
	}
	return nil
}

func (c ConstantConfig) Create() G.InitWFn {
	return G.ValuesOf(c.Value)
}
