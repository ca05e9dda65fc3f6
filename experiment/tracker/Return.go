package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/stat"

	env "github.com/samuelfneumann/gopg/environment"
)

// Return tracks and saves the episodic return in an experiment. When
// an environment returns a TimeStep, this Tracker will extract the
// reward and accumulate the return for each episode in the experiment.
//
// An episode must finish for this Tracker to record its return.
type Return struct {
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker which saves to
// filename. If filename is empty, Save does nothing.
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track tracks the rewards seen on a timestep. The first TimeStep of
// an episode starts a new return.
func (r *Return) Track(step env.TimeStep) {
	if step.First() {
		r.currentReturn = 0
		return
	}

	r.currentReturn += step.Reward
	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0
	}
}

// Returns returns the returns of all finished episodes
func (r *Return) Returns() []float64 {
	return r.episodeReturns
}

// Episodes returns the number of finished episodes
func (r *Return) Episodes() int {
	return len(r.episodeReturns)
}

// RecentMean returns the mean return of the last n finished episodes,
// or of all finished episodes if fewer than n have finished. It
// returns 0 if no episode has finished.
func (r *Return) RecentMean(n int) float64 {
	if len(r.episodeReturns) == 0 || n <= 0 {
		return 0
	}
	start := len(r.episodeReturns) - n
	if start < 0 {
		start = 0
	}
	return stat.Mean(r.episodeReturns[start:], nil)
}

// Save saves the data tracked by the Return Tracker to disk.
func (r *Return) Save() error {
	if r.filename == "" {
		return nil
	}

	file, err := os.Create(r.filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}

	en := gob.NewEncoder(file)
	if err := en.Encode(r.episodeReturns); err != nil {
		file.Close()
		return fmt.Errorf("save: could not encode return data: %v", err)
	}

	// Some filesystems only report write errors on close
	if err := file.Close(); err != nil {
		return fmt.Errorf("save: could not close save file: %v", err)
	}
	return nil
}
