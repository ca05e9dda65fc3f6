package policy

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/gopg/distribution"
	"github.com/samuelfneumann/gopg/network"
	"github.com/samuelfneumann/gopg/utils/tensorutils"
)

// logStdName is the name of the log standard deviation parameter of
// Gaussian policies
const logStdName = "logstd"

// Option configures optional behaviour of a policy
type Option func(*MLP)

// WithLogger sets the logger of a policy. By default, policies do not
// log.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *MLP) {
		m.logger = logger
	}
}

// forwardGraph is a computational graph computing the parameters of
// the action distribution of a fixed-size batch of observations.
type forwardGraph struct {
	net    network.NeuralNet
	vm     G.VM
	outVal G.Value // Probabilities if discrete, means if continuous
}

// MLP implements a policy parameterized by a multi-layered perceptron.
//
// For discrete actions, the MLP outputs one logit per action, and
// action probabilities are the softmax of the logits. For continuous
// actions, the MLP outputs the mean of a Gaussian whose standard
// deviation is exp of a learned log standard deviation vector that is
// shared across all observations.
//
// The MLP only implements the forward pass and action selection. Its
// Update method always returns ErrNotImplemented; use PG for a policy
// that can be trained.
type MLP struct {
	config    Config
	algorithm string

	params      *network.Params
	logStdIndex int // Index of the log std in params, -1 if discrete
	act         *network.Activation

	inference InferenceMode
	logProb   LogProbMode
	src       rand.Source

	// Graphs are compiled lazily, one per batch size
	forward map[int]*forwardGraph

	logger zerolog.Logger
}

// NewMLP returns a new MLP policy described by c
func NewMLP(c Config, opts ...Option) (*MLP, error) {
	m, err := newMLP(c, opts...)
	if err != nil {
		return nil, fmt.Errorf("newMLP: %w", err)
	}
	m.algorithm = mlpAlgorithm
	return m, nil
}

// newMLP creates the parameters of the MLP described by c
func newMLP(c Config, opts ...Option) (*MLP, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	params, err := network.NewParams(c.ObservationDims, c.ActionDims,
		c.hiddenSizes(), c.initWFn().InitWFn())
	if err != nil {
		return nil, fmt.Errorf("could not create policy parameters: %v", err)
	}

	logStdIndex := -1
	if !c.Discrete {
		logStdIndex = params.Append(logStdName, make([]float64, c.ActionDims),
			1, c.ActionDims)
	}

	m := &MLP{
		config:      c,
		params:      params,
		logStdIndex: logStdIndex,
		act:         c.activation(),
		inference:   c.inferenceMode(),
		logProb:     c.logProbMode(),
		src:         rand.NewSource(c.Seed),
		forward:     make(map[int]*forwardGraph),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.logger.Debug().
		Int("observation_dims", c.ObservationDims).
		Int("action_dims", c.ActionDims).
		Bool("discrete", c.Discrete).
		Int("layers", c.Layers).
		Int("layer_size", c.LayerSize).
		Str("activation", m.act.String()).
		Str("inference", string(m.inference)).
		Msg("created policy")

	return m, nil
}

// Config returns the configuration of the policy
func (m *MLP) Config() Config {
	return m.config
}

// Discrete returns whether the policy selects discrete actions
func (m *MLP) Discrete() bool {
	return m.config.Discrete
}

// InferenceMode returns how the policy selects actions
func (m *MLP) InferenceMode() InferenceMode {
	return m.inference
}

// SetInferenceMode sets how the policy selects actions
func (m *MLP) SetInferenceMode(mode InferenceMode) error {
	if mode != Sample && mode != ArgMax {
		return fmt.Errorf("setInferenceMode: %w: unknown inference mode %q",
			ErrInvalidConfig, mode)
	}
	m.inference = mode
	return nil
}

// Params returns the learnable parameters of the policy
func (m *MLP) Params() *network.Params {
	return m.params
}

// LogStd returns a copy of the log standard deviation vector of a
// Gaussian policy. It returns nil for discrete policies.
func (m *MLP) LogStd() []float64 {
	if m.logStdIndex < 0 {
		return nil
	}
	data := m.params.At(m.logStdIndex).Data().([]float64)
	return append([]float64{}, data...)
}

// actionWidth returns the number of columns of a single action
func (m *MLP) actionWidth() int {
	if m.config.Discrete {
		return 1
	}
	return m.config.ActionDims
}

// forwardGraph returns the forward graph for the argument batch size,
// compiling it if needed.
func (m *MLP) forwardGraph(batch int) (*forwardGraph, error) {
	if fg, ok := m.forward[batch]; ok {
		return fg, nil
	}

	g := G.NewGraph()
	net, err := network.NewMLP(g, batch, m.params, m.act)
	if err != nil {
		return nil, fmt.Errorf("forwardGraph: could not create network: %v",
			err)
	}

	out := net.Prediction()
	if m.config.Discrete {
		if out, _, err = softmax(out, m.logProb); err != nil {
			return nil, fmt.Errorf("forwardGraph: %v", err)
		}
	}

	fg := &forwardGraph{net: net}
	G.Read(out, &fg.outVal)
	fg.vm = G.NewTapeMachine(g)

	m.forward[batch] = fg
	return fg, nil
}

// checkObs returns the batch size of obs, or an error if obs does not
// have one column per observation feature.
func (m *MLP) checkObs(obs mat.Matrix) (int, error) {
	r, c := obs.Dims()
	if c != m.config.ObservationDims {
		return 0, fmt.Errorf("%w: observations have %v features, want %v",
			ErrShapeMismatch, c, m.config.ObservationDims)
	}
	if r == 0 {
		return 0, fmt.Errorf("%w: empty observation batch", ErrShapeMismatch)
	}
	return r, nil
}

// Forward returns the action distribution of each row of obs. For
// discrete actions, a *distribution.Categorical is returned, and for
// continuous actions a *distribution.Gaussian.
func (m *MLP) Forward(obs mat.Matrix) (distribution.Distribution, error) {
	batch, err := m.checkObs(obs)
	if err != nil {
		return nil, fmt.Errorf("forward: %w", err)
	}

	fg, err := m.forwardGraph(batch)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}

	if err := m.params.Pull(fg.net.Learnables()); err != nil {
		return nil, fmt.Errorf("forward: could not set weights: %v", err)
	}
	if err := fg.net.SetInput(obs); err != nil {
		return nil, fmt.Errorf("forward: could not set input: %v", err)
	}

	if err := fg.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward: could not run policy VM: %v", err)
	}
	defer fg.vm.Reset()

	t, ok := fg.outVal.(tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("forward: illegal output type %T", fg.outVal)
	}
	out, err := tensorutils.ToDense(t)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	if r, _ := out.Dims(); r != batch {
		return nil, fmt.Errorf("forward: %w: network produced %v rows for "+
			"a batch of %v", ErrShapeMismatch, r, batch)
	}

	if m.config.Discrete {
		return distribution.NewCategorical(out, m.src)
	}

	logStd := m.LogStd()
	stddev := make([]float64, len(logStd))
	for i, l := range logStd {
		stddev[i] = math.Exp(l)
	}
	return distribution.NewGaussian(out, stddev, m.src)
}

// SelectAction returns the action for a single observation according
// to the policy's inference mode.
func (m *MLP) SelectAction(obs mat.Vector) (*mat.VecDense, error) {
	actions, err := m.SelectActions(promote(obs))
	if err != nil {
		return nil, fmt.Errorf("selectAction: %w", err)
	}
	return firstRow(actions), nil
}

// SelectActions returns one action per row of obs according to the
// policy's inference mode.
func (m *MLP) SelectActions(obs mat.Matrix) (*mat.Dense, error) {
	dist, err := m.Forward(obs)
	if err != nil {
		return nil, fmt.Errorf("selectActions: %w", err)
	}
	return selectFrom(dist, m.inference), nil
}

// Update implements the Policy interface. The MLP defines no update
// rule, so Update always returns an error wrapping ErrNotImplemented.
func (m *MLP) Update(obs, actions mat.Matrix, advantages mat.Vector) (Log,
	error) {
	return nil, fmt.Errorf("update: %w", ErrNotImplemented)
}

// Close releases the resources held by the compiled graphs
func (m *MLP) Close() error {
	for batch, fg := range m.forward {
		if err := fg.vm.Close(); err != nil {
			return fmt.Errorf("close: could not close VM for batch size "+
				"%v: %v", batch, err)
		}
	}
	m.forward = make(map[int]*forwardGraph)
	return nil
}
