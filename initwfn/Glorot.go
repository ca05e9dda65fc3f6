package initwfn

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
)

// checkGain returns an error if gain cannot scale a Glorot or He
// initializer
func checkGain(t Type, gain float64) error {
	if !(gain > 0) || math.IsInf(gain, 0) {
		return fmt.Errorf("%v: gain must be positive and finite, have(%v)",
			t, gain)
	}
	return nil
}

// GlorotUConfig configures Glorot (Xavier) uniform initialization of
// policy weights, scaled by Gain.
type GlorotUConfig struct {
	Gain float64
}

// NewGlorotU returns a Glorot uniform weight initializer. This is the
// initializer used by policies that do not name one.
func NewGlorotU(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotUConfig{Gain: gain})
}

func (g GlorotUConfig) Type() Type { return GlorotU }

// Validate returns an error if the gain is not positive
func (g GlorotUConfig) Validate() error {
	return checkGain(GlorotU, g.Gain)
}

func (g GlorotUConfig) Create() G.InitWFn {
	return G.GlorotU(g.Gain)
}

// GlorotNConfig configures Glorot (Xavier) normal initialization of
// policy weights, scaled by Gain.
type GlorotNConfig struct {
	Gain float64
}

// NewGlorotN returns a Glorot normal weight initializer
func NewGlorotN(gain float64) (*InitWFn, error) {
	return newInitWFn(GlorotNConfig{Gain: gain})
}

func (g GlorotNConfig) Type() Type { return GlorotN }

// Validate returns an error if the gain is not positive
func (g GlorotNConfig) Validate() error {
	return checkGain(GlorotN, g.Gain)
}

func (g GlorotNConfig) Create() G.InitWFn {
	return G.GlorotN(g.Gain)
}
