package policy

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"

	"github.com/samuelfneumann/gopg/initwfn"
	"github.com/samuelfneumann/gopg/solver"
)

// Names of the algorithms a saved policy may have been trained with
const (
	mlpAlgorithm = "MLP"
	pgAlgorithm  = "PG"
)

// savedConfig is the gob-encodable form of a Config. Weight
// initializers and solvers wrap functions and so are stored as JSON.
type savedConfig struct {
	ActionDims      int
	ObservationDims int
	Discrete        bool
	Layers          int
	LayerSize       int
	LearningRate    float64
	Activation      string
	Device          string
	Seed            uint64
	Inference       string
	LogProb         string

	InitWFn []byte
	Solver  []byte
}

// newSavedConfig returns the gob-encodable form of c
func newSavedConfig(c Config) (savedConfig, error) {
	s := savedConfig{
		ActionDims:      c.ActionDims,
		ObservationDims: c.ObservationDims,
		Discrete:        c.Discrete,
		Layers:          c.Layers,
		LayerSize:       c.LayerSize,
		LearningRate:    c.LearningRate,
		Activation:      c.Activation,
		Device:          c.Device,
		Seed:            c.Seed,
		Inference:       string(c.Inference),
		LogProb:         string(c.LogProb),
	}

	var err error
	if c.InitWFn != nil {
		if s.InitWFn, err = json.Marshal(c.InitWFn); err != nil {
			return savedConfig{}, fmt.Errorf("could not encode weight "+
				"initializer: %v", err)
		}
	}
	if c.Solver != nil {
		if s.Solver, err = json.Marshal(c.Solver); err != nil {
			return savedConfig{}, fmt.Errorf("could not encode solver: %v",
				err)
		}
	}
	return s, nil
}

// config returns the Config that s describes
func (s savedConfig) config() (Config, error) {
	c := Config{
		ActionDims:      s.ActionDims,
		ObservationDims: s.ObservationDims,
		Discrete:        s.Discrete,
		Layers:          s.Layers,
		LayerSize:       s.LayerSize,
		LearningRate:    s.LearningRate,
		Activation:      s.Activation,
		Device:          s.Device,
		Seed:            s.Seed,
		Inference:       InferenceMode(s.Inference),
		LogProb:         LogProbMode(s.LogProb),
	}

	if len(s.InitWFn) > 0 {
		c.InitWFn = &initwfn.InitWFn{}
		if err := json.Unmarshal(s.InitWFn, c.InitWFn); err != nil {
			return Config{}, fmt.Errorf("could not decode weight "+
				"initializer: %v", err)
		}
	}
	if len(s.Solver) > 0 {
		c.Solver = &solver.Solver{}
		if err := json.Unmarshal(s.Solver, c.Solver); err != nil {
			return Config{}, fmt.Errorf("could not decode solver: %v", err)
		}
	}
	return c, nil
}

// savedPolicy is the on-disk form of a policy
type savedPolicy struct {
	Algorithm string
	Config    savedConfig
	Params    [][]float64
	Shapes    [][]int
}

// GobEncode implements the gob.GobEncoder interface
func (m *MLP) GobEncode() ([]byte, error) {
	config, err := newSavedConfig(m.config)
	if err != nil {
		return nil, fmt.Errorf("gobencode: %v", err)
	}
	params, shapes := m.params.Data()

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err = enc.Encode(savedPolicy{
		Algorithm: m.algorithm,
		Config:    config,
		Params:    params,
		Shapes:    shapes,
	})
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode policy: %v", err)
	}
	return buf.Bytes(), nil
}

// Save writes the configuration and current parameters of the policy
// to filepath. The solver state, such as Adam moment estimates, is not
// saved.
func (m *MLP) Save(filepath string) error {
	data, err := m.GobEncode()
	if err != nil {
		return fmt.Errorf("save: %v", err)
	}
	if err := os.WriteFile(filepath, data, 0o644); err != nil {
		return fmt.Errorf("save: could not write policy: %v", err)
	}
	m.logger.Debug().Str("path", filepath).Msg("saved policy")
	return nil
}

// Load returns the policy saved at filepath. The returned policy
// computes the same action distributions as the saved policy. Policies
// saved by an MLP are loaded as a PG with a freshly constructed
// solver.
func Load(filepath string, opts ...Option) (*PG, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("load: could not read policy: %v", err)
	}

	var saved savedPolicy
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&saved); err != nil {
		return nil, fmt.Errorf("load: could not decode policy: %v", err)
	}

	c, err := saved.Config.config()
	if err != nil {
		return nil, fmt.Errorf("load: %v", err)
	}

	p, err := NewPG(c, opts...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	_, shapes := p.params.Data()
	if len(shapes) != len(saved.Shapes) {
		return nil, fmt.Errorf("load: %w: saved policy has %v parameters, "+
			"want %v", ErrShapeMismatch, len(saved.Shapes), len(shapes))
	}
	for i := range shapes {
		if !equalShapes(shapes[i], saved.Shapes[i]) {
			return nil, fmt.Errorf("load: %w: parameter %v has shape %v, "+
				"want %v", ErrShapeMismatch, p.params.Name(i),
				saved.Shapes[i], shapes[i])
		}
	}
	if err := p.params.SetData(saved.Params); err != nil {
		return nil, fmt.Errorf("load: %v", err)
	}

	return p, nil
}

func equalShapes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
