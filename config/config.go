// Package config loads policy configurations from configuration files
// and the environment.
//
// Keys of a configuration file are the mapstructure keys of
// policy.Config. Every key may be overridden by an environment
// variable with the prefix PG, for example PG_LEARNING_RATE. Weight
// initializers and solvers are given as sub-trees with a type and a
// config:
//
//	observation_dims: 4
//	action_dims: 2
//	discrete: true
//	solver:
//	  type: Adam
//	  config:
//	    stepsize: 0.001
//	    epsilon: 1e-8
//	    beta1: 0.9
//	    beta2: 0.999
//	    batch: 1
package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samuelfneumann/gopg/initwfn"
	"github.com/samuelfneumann/gopg/policy"
	"github.com/samuelfneumann/gopg/solver"
)

// EnvPrefix is the prefix of environment variables overriding
// configuration keys
const EnvPrefix = "PG"

// Keys of the weight initializer and solver sub-trees
const (
	InitKey   = "init"
	SolverKey = "solver"
)

// New returns a viper instance holding the default policy
// configuration, overridden by the configuration file at path and
// then by the environment. If path is empty, no file is read.
func New(path string) (*viper.Viper, error) {
	vp := viper.New()

	defaults := policy.DefaultConfig(0, 0, false)
	vp.SetDefault("action_dims", defaults.ActionDims)
	vp.SetDefault("observation_dims", defaults.ObservationDims)
	vp.SetDefault("discrete", defaults.Discrete)
	vp.SetDefault("layers", defaults.Layers)
	vp.SetDefault("layer_size", defaults.LayerSize)
	vp.SetDefault("learning_rate", defaults.LearningRate)
	vp.SetDefault("activation", defaults.Activation)
	vp.SetDefault("device", defaults.Device)
	vp.SetDefault("seed", defaults.Seed)
	vp.SetDefault("inference", string(defaults.Inference))
	vp.SetDefault("log_prob", string(defaults.LogProb))

	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vp.AutomaticEnv()

	if path != "" {
		vp.SetConfigFile(path)
		if err := vp.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("new: could not read config %v: %v", path,
				err)
		}
	}

	return vp, nil
}

// Policy returns the validated policy configuration held by vp
func Policy(vp *viper.Viper) (policy.Config, error) {
	var c policy.Config
	if err := vp.Unmarshal(&c); err != nil {
		return policy.Config{}, fmt.Errorf("policy: could not decode "+
			"config: %v", err)
	}

	if vp.IsSet(InitKey) {
		c.InitWFn = &initwfn.InitWFn{}
		if err := decodeTyped(vp.Sub(InitKey), c.InitWFn); err != nil {
			return policy.Config{}, fmt.Errorf("policy: %w: could not "+
				"decode %v: %v", policy.ErrInvalidConfig, InitKey, err)
		}
	}

	if vp.IsSet(SolverKey) {
		c.Solver = &solver.Solver{}
		if err := decodeTyped(vp.Sub(SolverKey), c.Solver); err != nil {
			return policy.Config{}, fmt.Errorf("policy: %w: could not "+
				"decode %v: %v", policy.ErrInvalidConfig, SolverKey, err)
		}
	}

	if err := c.Validate(); err != nil {
		return policy.Config{}, fmt.Errorf("policy: %w", err)
	}
	return c, nil
}

// Load returns the validated policy configuration of the file at path
func Load(path string) (policy.Config, error) {
	vp, err := New(path)
	if err != nil {
		return policy.Config{}, fmt.Errorf("load: %v", err)
	}

	c, err := Policy(vp)
	if err != nil {
		return policy.Config{}, fmt.Errorf("load: %w", err)
	}
	return c, nil
}

// decodeTyped decodes a sub-tree with a type and a config into out,
// which unmarshals JSON of the form {"Type": ..., "Config": ...}.
// Viper lower-cases keys, so the sub-tree is rebuilt with the keys out
// expects.
func decodeTyped(sub *viper.Viper, out json.Unmarshaler) error {
	if sub == nil {
		return fmt.Errorf("decodeTyped: expected a type and a config")
	}

	typed := map[string]interface{}{
		"Type":   sub.GetString("type"),
		"Config": sub.Get("config"),
	}
	data, err := json.Marshal(typed)
	if err != nil {
		return fmt.Errorf("decodeTyped: %v", err)
	}
	return out.UnmarshalJSON(data)
}
