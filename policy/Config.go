package policy

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/gopg/initwfn"
	"github.com/samuelfneumann/gopg/network"
	"github.com/samuelfneumann/gopg/solver"
)

// InferenceMode determines how a policy selects actions from its
// action distribution.
type InferenceMode string

const (
	// Sample draws an action from the action distribution. Continuous
	// actions are drawn with the reparameterization trick.
	Sample InferenceMode = "sample"

	// ArgMax selects the most likely action: the action of highest
	// probability for discrete actions, or the mean for continuous
	// actions.
	ArgMax InferenceMode = "argmax"
)

// LogProbMode determines how the log probability of discrete actions
// is computed in the policy gradient update.
type LogProbMode string

const (
	// LogSoftmax computes log probabilities directly from the logits
	// with the log-sum-exp trick.
	LogSoftmax LogProbMode = "log_softmax"

	// LogOfSoftmax computes the softmax probabilities and then takes
	// their logarithm. Probabilities which underflow to 0 have a log
	// probability of -Inf.
	LogOfSoftmax LogProbMode = "log_of_softmax"
)

// CPU is the only device supported by the computational graph backend
const CPU = "cpu"

// Config describes an MLP policy
type Config struct {
	ActionDims      int     `mapstructure:"action_dims" json:"action_dims"`
	ObservationDims int     `mapstructure:"observation_dims" json:"observation_dims"`
	Discrete        bool    `mapstructure:"discrete" json:"discrete"`
	Layers          int     `mapstructure:"layers" json:"layers"`
	LayerSize       int     `mapstructure:"layer_size" json:"layer_size"`
	LearningRate    float64 `mapstructure:"learning_rate" json:"learning_rate"`

	// Activation of each hidden layer, one of relu, tanh, sigmoid,
	// or identity
	Activation string `mapstructure:"activation" json:"activation"`

	Device string `mapstructure:"device" json:"device"`
	Seed   uint64 `mapstructure:"seed" json:"seed"`

	// Inference defaults to ArgMax for discrete actions and Sample
	// for continuous actions when empty.
	Inference InferenceMode `mapstructure:"inference" json:"inference"`

	// LogProb defaults to LogSoftmax when empty
	LogProb LogProbMode `mapstructure:"log_prob" json:"log_prob"`

	// InitWFn defaults to initwfn.Default() when nil
	InitWFn *initwfn.InitWFn `mapstructure:"-" json:"init,omitempty"`

	// Solver defaults to Adam with step size LearningRate when nil.
	// When Solver is set, LearningRate is ignored and the step size
	// comes from the solver's own configuration.
	Solver *solver.Solver `mapstructure:"-" json:"solver,omitempty"`
}

// DefaultConfig returns a configuration with two hidden layers of 64
// tanh units, a learning rate of 5e-3, and the argument observation
// and action dimensions.
func DefaultConfig(observationDims, actionDims int, discrete bool) Config {
	return Config{
		ActionDims:      actionDims,
		ObservationDims: observationDims,
		Discrete:        discrete,
		Layers:          2,
		LayerSize:       64,
		LearningRate:    5e-3,
		Activation:      "tanh",
		Device:          CPU,
	}
}

// Validate returns an error wrapping ErrInvalidConfig describing why
// the configuration is invalid, or nil if it is valid.
func (c Config) Validate() error {
	if c.ActionDims <= 0 {
		return fmt.Errorf("%w: action dims must be positive, have(%v)",
			ErrInvalidConfig, c.ActionDims)
	}
	if c.ObservationDims <= 0 {
		return fmt.Errorf("%w: observation dims must be positive, have(%v)",
			ErrInvalidConfig, c.ObservationDims)
	}
	if c.Layers < 0 {
		return fmt.Errorf("%w: cannot have a negative number of layers, "+
			"have(%v)", ErrInvalidConfig, c.Layers)
	}
	if c.LayerSize <= 0 {
		return fmt.Errorf("%w: layer size must be positive, have(%v)",
			ErrInvalidConfig, c.LayerSize)
	}
	if c.Solver != nil {
		if err := c.Solver.Validate(); err != nil {
			return fmt.Errorf("%w: solver: %v", ErrInvalidConfig, err)
		}
	} else if !(c.LearningRate > 0) {
		return fmt.Errorf("%w: learning rate must be positive, have(%v)",
			ErrInvalidConfig, c.LearningRate)
	}
	if c.InitWFn != nil {
		if err := c.InitWFn.Validate(); err != nil {
			return fmt.Errorf("%w: weight initializer: %v", ErrInvalidConfig,
				err)
		}
	}
	if c.Activation != "" {
		if _, err := network.ParseActivation(c.Activation); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if d := strings.ToLower(c.Device); d != "" && d != CPU {
		return fmt.Errorf("%w: unsupported device %q", ErrInvalidConfig,
			c.Device)
	}
	switch c.Inference {
	case "", Sample, ArgMax:
	default:
		return fmt.Errorf("%w: unknown inference mode %q", ErrInvalidConfig,
			c.Inference)
	}
	switch c.LogProb {
	case "", LogSoftmax, LogOfSoftmax:
	default:
		return fmt.Errorf("%w: unknown log probability mode %q",
			ErrInvalidConfig, c.LogProb)
	}
	return nil
}

// inferenceMode returns the inference mode of the configuration
func (c Config) inferenceMode() InferenceMode {
	if c.Inference != "" {
		return c.Inference
	}
	if c.Discrete {
		return ArgMax
	}
	return Sample
}

// logProbMode returns the log probability mode of the configuration
func (c Config) logProbMode() LogProbMode {
	if c.LogProb != "" {
		return c.LogProb
	}
	return LogSoftmax
}

// activation returns the hidden layer activation of the configuration
func (c Config) activation() *network.Activation {
	if c.Activation == "" {
		return network.TanH()
	}
	act, err := network.ParseActivation(c.Activation)
	if err != nil {
		panic(fmt.Sprintf("activation: %v", err))
	}
	return act
}

// hiddenSizes returns the number of units in each hidden layer
func (c Config) hiddenSizes() []int {
	sizes := make([]int, c.Layers)
	for i := range sizes {
		sizes[i] = c.LayerSize
	}
	return sizes
}

// initWFn returns the weight initializer of the configuration
func (c Config) initWFn() *initwfn.InitWFn {
	if c.InitWFn != nil {
		return c.InitWFn
	}
	return initwfn.Default()
}

// solver returns the solver of the configuration
func (c Config) solver() (*solver.Solver, error) {
	if c.Solver == nil {
		return solver.Default(c.LearningRate)
	}
	if c.Solver.Solver == nil {
		// Built by struct literal rather than a constructor
		s := *c.Solver
		s.Solver = s.Config.Create()
		return &s, nil
	}
	return c.Solver, nil
}
