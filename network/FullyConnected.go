package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// newFCLayer adds the weights and bias of a fully connected layer to
// the graph g, initialized with a copy of the values of params.
func newFCLayer(g *G.ExprGraph, params *Params, layer int,
	act *Activation) *fcLayer {
	w := params.At(2 * layer)
	b := params.At(2*layer + 1)

	weights := G.NewMatrix(
		g,
		G.Float64,
		G.WithShape(w.Shape()...),
		G.WithName(params.Name(2*layer)),
		G.WithValue(w.Clone()),
	)
	bias := G.NewMatrix(
		g,
		G.Float64,
		G.WithShape(b.Shape()...),
		G.WithName(params.Name(2*layer+1)),
		G.WithValue(b.Clone()),
	)

	return &fcLayer{weights: weights, bias: bias, act: act}
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not multiply weights: %v", err)
	}

	// Broadcast the bias weights to all samples along the batch
	// dimension
	x, err = G.BroadcastAdd(x, f.bias, nil, []byte{0})
	if err != nil {
		return nil, fmt.Errorf("fwd: could not add bias: %v", err)
	}

	if f.act == nil || f.act.IsIdentity() {
		return x, nil
	}
	return f.act.fwd(x)
}

// Bias returns the bias node of the layer
func (f *fcLayer) Bias() *G.Node {
	return f.bias
}

// Weights returns the weight node of the layer
func (f *fcLayer) Weights() *G.Node {
	return f.weights
}
