// Package solver implements functionality to wrap Gorgonia Solvers
// so that they can be JSON serialized into policy configuration files.
package solver

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
	RMSProp Type = "RMSProp"
)

// Solver wraps Gorgonia Solvers so that they can be JSON marshalled and
// unmarshalled.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

// newSolver returns a new solver with the given type and configuration.
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newSolver: invalid solver type %v for "+
			"configuration %T", t, c)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new%v: %v", t, err)
	}
	solver := Solver{Type: t, Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// Default returns the solver used when a policy configuration does not
// name one: Adam with the argument learning rate and default
// hyperparameters. Losses are already averaged over the batch, so the
// solver uses a batch size of 1.
func Default(learningRate float64) (*Solver, error) {
	return NewDefaultAdam(learningRate, 1)
}

// Validate returns an error if the solver has no configuration, its
// type does not match the configuration, or the configuration holds
// hyperparameters the solver cannot step with.
func (s *Solver) Validate() error {
	if s.Config == nil {
		return fmt.Errorf("validate: no solver configuration")
	}
	if !s.Config.ValidType(s.Type) {
		return fmt.Errorf("validate: invalid solver type %v for "+
			"configuration %T", s.Type, s.Config)
	}
	return s.Config.Validate()
}

// checkStep returns an error if a solver of type t cannot step with the
// argument step size and batch size
func checkStep(t Type, stepSize float64, batch int) error {
	if !(stepSize > 0) || math.IsInf(stepSize, 0) {
		return fmt.Errorf("%v: step size must be positive and finite, "+
			"have(%v)", t, stepSize)
	}
	if batch < 1 {
		return fmt.Errorf("%v: batch size must be positive, have(%v)", t,
			batch)
	}
	return nil
}

// checkDecay returns an error if a decay rate lies outside [0, 1)
func checkDecay(t Type, name string, rate float64) error {
	if !(rate >= 0 && rate < 1) {
		return fmt.Errorf("%v: %v must be in [0, 1), have(%v)", t, name, rate)
	}
	return nil
}

// StepSize returns the learning rate of the solver
func (s *Solver) StepSize() float64 {
	switch c := s.Config.(type) {
	case AdamConfig:
		return c.StepSize
	case VanillaConfig:
		return c.StepSize
	case RMSPropConfig:
		return c.StepSize
	}
	return 0
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	config, typeName, err := unmarshalConfig(
		data,
		"Type",
		"Config",
		map[string]reflect.Type{
			string(Vanilla): reflect.TypeOf(VanillaConfig{}),
			string(Adam):    reflect.TypeOf(AdamConfig{}),
			string(RMSProp): reflect.TypeOf(RMSPropConfig{}),
		})
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}

	s.Type = typeName
	s.Config = config
	s.Solver = s.Config.Create()

	return nil
}

// unmarshalConfig uses reflection to unmarshall a Config into its
// concrete type. Both the Config and its Type are returned.
func unmarshalConfig(data []byte, typeJsonField, valueJsonField string,
	customTypes map[string]reflect.Type) (Config, Type, error) {
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	typeName, ok := m[typeJsonField].(string)
	if !ok {
		return nil, "", fmt.Errorf("unmarshalConfig: missing field %q",
			typeJsonField)
	}
	ty, found := customTypes[typeName]
	if !found {
		return nil, "", fmt.Errorf("unmarshalConfig: unknown solver type %q",
			typeName)
	}
	value := reflect.New(ty).Interface()

	valueBytes, err := json.Marshal(m[valueJsonField])
	if err != nil {
		return nil, "", err
	}

	if err = json.Unmarshal(valueBytes, value); err != nil {
		return nil, "", err
	}
	concreteValue := reflect.ValueOf(value).Elem().Interface().(Config)

	return concreteValue, Type(typeName), nil
}

// Config implements a Gorgonia Solver configuration and can be used to
// create Gorgonia Solvers they describe.
type Config interface {
	Create() G.Solver

	// Validate returns an error if the hyperparameters are out of range
	Validate() error

	// ValidType returns whether a specific Solver type can be created
	// with the Config
	ValidType(Type) bool
}
