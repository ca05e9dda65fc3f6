// Package network implements feed forward neural networks on Gorgonia
// computational graphs.
package network

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/gopg/utils/tensorutils"
)

var _ NeuralNet = &MLP{}

// MLP implements a multi-layered perceptron on a single computational
// graph with a fixed input batch size.
//
// The learnable nodes of an MLP are bound to a Params. Since a
// Gorgonia graph has a fixed batch size, one MLP is built per batch
// size that is needed, and all of them are bound to the same Params.
// Before running a graph, Params.Pull(mlp.Learnables()) should be
// called so that the graph holds the newest weights, and after
// updating the weights of a graph, Params.Push(mlp.Learnables())
// should be called so that all other graphs see the update.
type MLP struct {
	g          *G.ExprGraph
	layers     []*fcLayer
	input      *G.Node
	numOutputs int
	numInputs  int
	batchSize  int

	learnables G.Nodes

	prediction *G.Node
}

// NewMLP creates a new MLP on the graph g with input batch size batch.
// The weights of the network are bound to params, which determines the
// number of layers and units. Each hidden layer uses the argument
// activation. The final layer uses no activation so that its outputs
// can be used as logits or means.
func NewMLP(g *G.ExprGraph, batch int, params *Params,
	act *Activation) (*MLP, error) {
	if batch <= 0 {
		return nil, fmt.Errorf("newMLP: batch size must be positive, "+
			"have(%v)", batch)
	}
	if params.Layers() == 0 {
		return nil, fmt.Errorf("newMLP: parameters describe no layers")
	}

	features := params.At(0).Shape()[0]
	outputs := params.At(2*params.Layers() - 1).Shape()[1]

	input := G.NewMatrix(
		g,
		G.Float64,
		G.WithShape(batch, features),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	layers := make([]*fcLayer, params.Layers())
	for i := range layers {
		a := act
		if i == len(layers)-1 {
			a = Identity()
		}
		layers[i] = newFCLayer(g, params, i, a)
	}

	net := &MLP{
		g:          g,
		layers:     layers,
		input:      input,
		numOutputs: outputs,
		numInputs:  features,
		batchSize:  batch,
	}

	if _, err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newMLP: could not compute forward pass: %v",
			err)
	}

	return net, nil
}

// fwd performs the forward pass of the MLP on the input node
func (m *MLP) fwd(input *G.Node) (*G.Node, error) {
	if features := input.Shape()[1]; features != m.numInputs {
		return nil, fmt.Errorf("fwd: invalid shape for input to neural net:"+
			" \n\twant(%v) \n\thave(%v)", m.numInputs, features)
	}

	pred := input
	var err error
	for i, l := range m.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	m.prediction = pred
	return pred, nil
}

// Graph returns the computational graph of the MLP
func (m *MLP) Graph() *G.ExprGraph {
	return m.g
}

// BatchSize returns the batch size of inputs to the MLP
func (m *MLP) BatchSize() int {
	return m.batchSize
}

// Features returns the number of features in a single input vector
func (m *MLP) Features() int {
	return m.numInputs
}

// Outputs returns the number of outputs of the MLP per input vector
func (m *MLP) Outputs() int {
	return m.numOutputs
}

// SetInput sets the value of the input node before running the
// forward pass. The input matrix must have BatchSize() rows and
// Features() columns.
func (m *MLP) SetInput(input mat.Matrix) error {
	r, c := input.Dims()
	if r != m.batchSize || c != m.numInputs {
		return fmt.Errorf("setInput: invalid input shape\n\twant(%v, %v)"+
			"\n\thave(%v, %v)", m.batchSize, m.numInputs, r, c)
	}
	return G.Let(m.input, tensorutils.FromMatrix(input))
}

// Learnables returns the learnable nodes of the MLP in the same order
// as the Params the MLP is bound to.
func (m *MLP) Learnables() G.Nodes {
	if m.learnables == nil {
		learnables := make(G.Nodes, 0, 2*len(m.layers))
		for _, l := range m.layers {
			learnables = append(learnables, l.Weights(), l.Bias())
		}
		m.learnables = learnables
	}
	return m.learnables
}

// Prediction returns the node of the computational graph that stores
// the output of the MLP. Callers read its value with G.Read before
// compiling the graph.
func (m *MLP) Prediction() *G.Node {
	return m.prediction
}
