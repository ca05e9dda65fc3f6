// Package experiment implements functionality for training policies
// online in an environment.
package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gopg/buffer/gae"
	env "github.com/samuelfneumann/gopg/environment"
	"github.com/samuelfneumann/gopg/experiment/checkpointer"
	"github.com/samuelfneumann/gopg/experiment/tracker"
	"github.com/samuelfneumann/gopg/policy"
)

// Learner is a policy which can be trained online. Actions used to
// collect experience are sampled from the distributions returned by
// Forward, regardless of how the Learner itself selects actions.
type Learner interface {
	policy.Policy
	policy.Forwarder
}

// Config configures an online experiment
type Config struct {
	// Updates is the number of policy updates to perform
	Updates int

	// StepsPerUpdate is the number of environment steps collected
	// before each update
	StepsPerUpdate int

	Gamma  float64
	Lambda float64

	// NormalizeAdvantages standardizes the advantages of each batch
	NormalizeAdvantages bool
}

// DefaultConfig returns an experiment configuration with REINFORCE
// rewards-to-go (ℽ = λ = 1) and normalized advantages.
func DefaultConfig(updates, stepsPerUpdate int) Config {
	return Config{
		Updates:             updates,
		StepsPerUpdate:      stepsPerUpdate,
		Gamma:               1.0,
		Lambda:              1.0,
		NormalizeAdvantages: true,
	}
}

// Validate returns an error describing why the configuration is
// invalid, or nil if it is valid.
func (c Config) Validate() error {
	if c.Updates < 0 {
		return fmt.Errorf("validate: cannot perform a negative number of "+
			"updates, have(%v)", c.Updates)
	}
	if c.StepsPerUpdate <= 0 {
		return fmt.Errorf("validate: steps per update must be positive, "+
			"have(%v)", c.StepsPerUpdate)
	}
	return nil
}

// Option configures optional behaviour of an Online experiment
type Option func(*Online)

// WithLogger sets the logger of the experiment
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Online) {
		o.logger = logger
	}
}

// WithTrackers registers trackers which receive every TimeStep
func WithTrackers(t ...tracker.Tracker) Option {
	return func(o *Online) {
		o.trackers = append(o.trackers, t...)
	}
}

// WithCheckpointers registers checkpointers which are called after
// every update
func WithCheckpointers(c ...checkpointer.Checkpointer) Option {
	return func(o *Online) {
		o.checkpointers = append(o.checkpointers, c...)
	}
}

// WithCallback registers a function called after every update with
// the number of updates performed so far and the log of the update.
func WithCallback(f func(update int, log policy.Log)) Option {
	return func(o *Online) {
		o.callbacks = append(o.callbacks, f)
	}
}

// Online is an experiment that trains a policy online. Experience is
// collected by sampling actions from the policy, and after every
// StepsPerUpdate steps the policy is updated once with the
// advantages of the collected experience.
type Online struct {
	env      env.Environment
	learner  Learner
	explorer *policy.Base
	buffer   *gae.Buffer
	config   Config

	step       env.TimeStep
	needsReset bool
	updates    int

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	callbacks     []func(int, policy.Log)

	logger zerolog.Logger
}

// NewOnline creates and returns a new online experiment training l
// in e
func NewOnline(e env.Environment, l Learner, c Config,
	opts ...Option) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newOnline: %v", err)
	}

	buf, err := gae.New(e.ObservationSpec().Dims, e.ActionSpec().Width(),
		c.StepsPerUpdate, c.Lambda, c.Gamma)
	if err != nil {
		return nil, fmt.Errorf("newOnline: could not create buffer: %v", err)
	}

	o := &Online{
		env:        e,
		learner:    l,
		explorer:   policy.NewBase(l),
		buffer:     buf,
		config:     c,
		needsReset: true,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Updates returns the number of updates performed so far
func (o *Online) Updates() int {
	return o.updates
}

// track sends a TimeStep to each tracker
func (o *Online) track(step env.TimeStep) {
	for _, t := range o.trackers {
		t.Track(step)
	}
}

// reset starts a new episode
func (o *Online) reset() error {
	step, err := o.env.Reset()
	if err != nil {
		return fmt.Errorf("could not reset environment: %v", err)
	}
	o.step = step
	o.needsReset = false
	o.track(step)
	return nil
}

// collect fills the buffer with experience. An episode cut off by a
// full buffer continues on the next call.
func (o *Online) collect() error {
	for !o.buffer.Full() {
		if o.needsReset {
			if err := o.reset(); err != nil {
				return err
			}
		}

		obs := o.step.Observation
		action, err := o.explorer.SelectAction(obs)
		if err != nil {
			return fmt.Errorf("could not select action: %v", err)
		}

		next, err := o.env.Step(action)
		if err != nil {
			return fmt.Errorf("could not step environment: %v", err)
		}
		o.track(next)

		if err := o.buffer.Store(obs, action, next.Reward, 0); err != nil {
			return err
		}

		if next.Last() {
			o.buffer.FinishPath(0)
			o.needsReset = true
		}
		o.step = next
	}
	return nil
}

// RunUpdate collects one batch of experience and updates the policy
// once
func (o *Online) RunUpdate() (policy.Log, error) {
	if err := o.collect(); err != nil {
		return nil, fmt.Errorf("runUpdate: %v", err)
	}

	batch, err := o.buffer.Get(o.config.NormalizeAdvantages)
	if err != nil {
		return nil, fmt.Errorf("runUpdate: %v", err)
	}

	log, err := o.learner.Update(batch.Observations, batch.Actions,
		batch.Advantages)
	if err != nil {
		return nil, fmt.Errorf("runUpdate: %w", err)
	}
	o.updates++

	o.logger.Debug().
		Int("update", o.updates).
		Float64("loss", log[policy.ActorLoss]).
		Float64("mean_return", mat.Sum(batch.Returns)/
			float64(batch.Returns.Len())).
		Msg("updated policy")

	for _, c := range o.checkpointers {
		if err := c.Checkpoint(o.updates); err != nil {
			return nil, fmt.Errorf("runUpdate: could not checkpoint: %v", err)
		}
	}
	for _, f := range o.callbacks {
		f(o.updates, log)
	}
	return log, nil
}

// Run performs all updates of the experiment, stopping early if ctx
// is cancelled.
func (o *Online) Run(ctx context.Context) error {
	for o.updates < o.config.Updates {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := o.RunUpdate(); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}
	return nil
}

// Save saves all the data cached by the trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}
