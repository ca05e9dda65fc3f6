package initwfn

import G "gorgonia.org/gorgonia"

// HeUConfig configures He (Kaiming) uniform initialization, suited to
// policies with relu hidden layers.
type HeUConfig struct {
	Gain float64
}

// NewHeU returns a He uniform weight initializer
func NewHeU(gain float64) (*InitWFn, error) {
	return newInitWFn(HeUConfig{Gain: gain})
}

func (h HeUConfig) Type() Type { return HeU }

// Validate returns an error if the gain is not positive
func (h HeUConfig) Validate() error {
	return checkGain(HeU, h.Gain)
}

func (h HeUConfig) Create() G.InitWFn {
	return G.HeU(h.Gain)
}

// HeNConfig configures He (Kaiming) normal initialization
type HeNConfig struct {
	Gain float64
}

// NewHeN returns a He normal weight initializer
func NewHeN(gain float64) (*InitWFn, error) {
	return newInitWFn(HeNConfig{Gain: gain})
}

func (h HeNConfig) Type() Type { return HeN }

// Validate returns an error if the gain is not positive
func (h HeNConfig) Validate() error {
	return checkGain(HeN, h.Gain)
}

func (h HeNConfig) Create() G.InitWFn {
	return G.HeN(h.Gain)
}
