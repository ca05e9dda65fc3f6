package policy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/gopg/network"
	"github.com/samuelfneumann/gopg/solver"
	"github.com/samuelfneumann/gopg/utils/tensorutils"
)

// trainGraph is a computational graph computing the policy gradient
// loss and its gradient for a fixed-size batch.
type trainGraph struct {
	net        network.NeuralNet
	learnables G.Nodes
	model      []G.ValueGrad

	actions    *G.Node // One-hot if discrete
	advantages *G.Node

	logProb    *G.Node
	logProbVal G.Value
	loss       *G.Node
	lossVal    G.Value

	vm G.VM
}

// PG implements an MLP policy trained with the REINFORCE policy
// gradient: each Update minimizes
//
//	-mean(log π(a|s) · A(s, a))
//
// over the batch with a single solver step, where the advantages are
// constant with respect to the policy parameters.
type PG struct {
	*MLP
	solver *solver.Solver

	train map[int]*trainGraph
}

// NewPG returns a new policy gradient policy described by c
func NewPG(c Config, opts ...Option) (*PG, error) {
	m, err := newMLP(c, opts...)
	if err != nil {
		return nil, fmt.Errorf("newPG: %w", err)
	}
	m.algorithm = pgAlgorithm

	s, err := c.solver()
	if err != nil {
		return nil, fmt.Errorf("newPG: could not create solver: %v", err)
	}

	return &PG{
		MLP:    m,
		solver: s,
		train:  make(map[int]*trainGraph),
	}, nil
}

// Solver returns the solver used to update the policy
func (p *PG) Solver() *solver.Solver {
	return p.solver
}

// trainGraph returns the training graph for the argument batch size,
// compiling it if needed.
func (p *PG) trainGraph(batch int) (*trainGraph, error) {
	if tg, ok := p.train[batch]; ok {
		return tg, nil
	}

	g := G.NewGraph()
	net, err := network.NewMLP(g, batch, p.params, p.act)
	if err != nil {
		return nil, fmt.Errorf("trainGraph: could not create network: %v",
			err)
	}

	tg := &trainGraph{net: net}
	tg.learnables = append(G.Nodes{}, net.Learnables()...)
	tg.advantages = G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(batch),
		G.WithName("advantages"),
		G.WithInit(G.Zeroes()),
	)
	tg.actions = G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, p.config.ActionDims),
		G.WithName("actions"),
		G.WithInit(G.Zeroes()),
	)

	if p.config.Discrete {
		tg.logProb, err = categoricalLogProb(net.Prediction(), tg.actions,
			p.logProb)
		if err != nil {
			return nil, fmt.Errorf("trainGraph: %v", err)
		}
	} else {
		logStd := G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(1, p.config.ActionDims),
			G.WithName(logStdName),
			G.WithValue(p.params.At(p.logStdIndex).Clone()),
		)

		// The log std follows the network weights so that learnables
		// line up with the parameter store.
		tg.learnables = append(tg.learnables, logStd)
		tg.logProb = gaussianLogPdf(net.Prediction(), logStd, tg.actions)
	}
	G.Read(tg.logProb, &tg.logProbVal)

	tg.loss = pgLoss(tg.logProb, tg.advantages)
	G.Read(tg.loss, &tg.lossVal)

	if _, err := G.Grad(tg.loss, tg.learnables...); err != nil {
		return nil, fmt.Errorf("trainGraph: could not compute gradient: %v",
			err)
	}

	tg.model = G.NodesToValueGrads(tg.learnables)
	tg.vm = G.NewTapeMachine(g, G.BindDualValues(tg.learnables...))

	p.train[batch] = tg
	return tg, nil
}

// checkBatch validates the shapes of a batch of experience and returns
// the batch size.
func (p *PG) checkBatch(obs, actions mat.Matrix,
	advantages mat.Vector) (int, error) {
	batch, err := p.checkObs(obs)
	if err != nil {
		return 0, err
	}

	if err := p.checkActions(actions, batch); err != nil {
		return 0, err
	}

	if advantages != nil && advantages.Len() != batch {
		return 0, fmt.Errorf("%w: have %v advantages for %v observations",
			ErrShapeMismatch, advantages.Len(), batch)
	}
	return batch, nil
}

// checkActions validates the shape of a batch of actions, and for
// discrete policies that each action is an index in [0, ActionDims).
func (p *PG) checkActions(actions mat.Matrix, batch int) error {
	r, c := actions.Dims()
	if r != batch {
		return fmt.Errorf("%w: have %v actions for %v observations",
			ErrShapeMismatch, r, batch)
	}
	if c != p.actionWidth() {
		return fmt.Errorf("%w: actions have width %v, want %v",
			ErrShapeMismatch, c, p.actionWidth())
	}

	if p.config.Discrete {
		for i := 0; i < r; i++ {
			a := actions.At(i, 0)
			if a != float64(int(a)) || a < 0 ||
				int(a) >= p.config.ActionDims {
				return fmt.Errorf("%w: action %v is not an index in [0, %v)",
					ErrShapeMismatch, a, p.config.ActionDims)
			}
		}
	}
	return nil
}

// setActions sets the action input of tg
func (p *PG) setActions(tg *trainGraph, actions mat.Matrix) error {
	if !p.config.Discrete {
		return G.Let(tg.actions, tensorutils.FromMatrix(actions))
	}

	r, _ := actions.Dims()
	indices := make([]int, r)
	for i := range indices {
		indices[i] = int(actions.At(i, 0))
	}
	oneHot, err := tensorutils.OneHot(indices, p.config.ActionDims)
	if err != nil {
		return err
	}
	return G.Let(tg.actions, oneHot)
}

// run sets the inputs of tg and runs its VM. The caller must reset the
// VM after reading its values.
func (p *PG) run(tg *trainGraph, obs, actions mat.Matrix,
	advantages mat.Vector) error {
	if err := p.params.Pull(tg.learnables); err != nil {
		return fmt.Errorf("could not set weights: %v", err)
	}
	if err := tg.net.SetInput(obs); err != nil {
		return fmt.Errorf("could not set observations: %v", err)
	}
	if err := p.setActions(tg, actions); err != nil {
		return fmt.Errorf("could not set actions: %v", err)
	}

	var adv *tensor.Dense
	if advantages != nil {
		adv = tensorutils.FromVector(advantages)
	} else {
		adv = tensor.New(tensor.WithShape(tg.advantages.Shape()...),
			tensor.Of(tensor.Float64))
	}
	if err := G.Let(tg.advantages, adv); err != nil {
		return fmt.Errorf("could not set advantages: %v", err)
	}

	if err := tg.vm.RunAll(); err != nil {
		return fmt.Errorf("could not run policy VM: %v", err)
	}
	return nil
}

// Update performs a single policy gradient step on a batch of
// observations, the actions taken for each observation, and the
// advantage of each action. The returned Log holds the loss before
// the step under the key ActorLoss.
func (p *PG) Update(obs, actions mat.Matrix, advantages mat.Vector) (Log,
	error) {
	if advantages == nil {
		return nil, fmt.Errorf("update: %w: nil advantages", ErrShapeMismatch)
	}
	batch, err := p.checkBatch(obs, actions, advantages)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}

	tg, err := p.trainGraph(batch)
	if err != nil {
		return nil, fmt.Errorf("update: %v", err)
	}

	if err := p.run(tg, obs, actions, advantages); err != nil {
		return nil, fmt.Errorf("update: %v", err)
	}
	defer tg.vm.Reset()

	loss, err := tensorutils.Scalar(tg.lossVal.Data())
	if err != nil {
		return nil, fmt.Errorf("update: could not read loss: %v", err)
	}

	if err := p.solver.Step(tg.model); err != nil {
		return nil, fmt.Errorf("update: could not step solver: %v", err)
	}
	if err := p.params.Push(tg.learnables); err != nil {
		return nil, fmt.Errorf("update: could not store weights: %v", err)
	}

	p.logger.Debug().
		Int("batch", batch).
		Float64("loss", loss).
		Msg("policy update")

	return Log{ActorLoss: loss}, nil
}

// LogProb returns the log probability (or log density for continuous
// actions) of each row of actions given the corresponding row of obs
// under the current policy, computed on the training graph.
func (p *PG) LogProb(obs, actions mat.Matrix) (*mat.VecDense, error) {
	batch, err := p.checkBatch(obs, actions, nil)
	if err != nil {
		return nil, fmt.Errorf("logProb: %w", err)
	}

	tg, err := p.trainGraph(batch)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	if err := p.run(tg, obs, actions, nil); err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	defer tg.vm.Reset()

	switch data := tg.logProbVal.Data().(type) {
	case []float64:
		return mat.NewVecDense(batch, append([]float64{}, data...)), nil
	case float64:
		return mat.NewVecDense(1, []float64{data}), nil
	default:
		return nil, fmt.Errorf("logProb: illegal log probability type %T",
			data)
	}
}

// Close releases the resources held by the compiled graphs
func (p *PG) Close() error {
	for batch, tg := range p.train {
		if err := tg.vm.Close(); err != nil {
			return fmt.Errorf("close: could not close VM for batch size "+
				"%v: %v", batch, err)
		}
	}
	p.train = make(map[int]*trainGraph)
	return p.MLP.Close()
}
