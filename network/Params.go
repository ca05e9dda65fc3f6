package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Params stores the learnable values of a network outside of any
// computational graph. Many graphs, each built for a different batch
// size, may be bound to the same Params so that an update made through
// one graph is seen by all others.
//
// Values are stored in layer order: for each layer the weight matrix
// of shape (in, out) followed by the bias row of shape (1, out). Extra
// values, such as the log standard deviation of a Gaussian policy, are
// appended after the layers with Append.
type Params struct {
	names  []string
	values []*tensor.Dense
	layers int
}

// NewParams returns the parameters of an MLP with the given number of
// input features, hidden layer sizes, and number of outputs. A final
// layer mapping the last hidden layer to outputs is always added.
// Weights are initialized with init and biases are initialized to 0.
func NewParams(features, outputs int, hiddenSizes []int,
	init G.InitWFn) (*Params, error) {
	if features <= 0 {
		return nil, fmt.Errorf("newParams: features must be positive, "+
			"have(%v)", features)
	}
	if outputs <= 0 {
		return nil, fmt.Errorf("newParams: outputs must be positive, "+
			"have(%v)", outputs)
	}

	sizes := append(append([]int{}, hiddenSizes...), outputs)
	p := &Params{layers: len(sizes)}

	in := features
	for i, out := range sizes {
		if out <= 0 {
			return nil, fmt.Errorf("newParams: layer %v must have a "+
				"positive number of units, have(%v)", i, out)
		}

		weights := tensor.New(
			tensor.WithShape(in, out),
			tensor.WithBacking(init(tensor.Float64, in, out)),
		)
		bias := tensor.New(
			tensor.WithShape(1, out),
			tensor.WithBacking(make([]float64, out)),
		)
		p.names = append(p.names, fmt.Sprintf("W%d", i),
			fmt.Sprintf("b%d", i))
		p.values = append(p.values, weights, bias)

		in = out
	}

	return p, nil
}

// Append adds a named extra parameter with the given initial backing
// data and shape and returns its index.
func (p *Params) Append(name string, backing []float64, shape ...int) int {
	p.names = append(p.names, name)
	p.values = append(p.values, tensor.New(
		tensor.WithShape(shape...),
		tensor.WithBacking(backing),
	))
	return len(p.values) - 1
}

// Len returns the total number of parameter tensors
func (p *Params) Len() int {
	return len(p.values)
}

// Layers returns the number of fully connected layers described by
// the parameters
func (p *Params) Layers() int {
	return p.layers
}

// At returns the i-th parameter tensor
func (p *Params) At(i int) *tensor.Dense {
	return p.values[i]
}

// Name returns the name of the i-th parameter tensor
func (p *Params) Name(i int) string {
	return p.names[i]
}

// Data returns a copy of the backing data of every parameter tensor
// along with the shape of each tensor.
func (p *Params) Data() ([][]float64, [][]int) {
	data := make([][]float64, len(p.values))
	shapes := make([][]int, len(p.values))
	for i, v := range p.values {
		data[i] = append([]float64{}, v.Data().([]float64)...)
		shapes[i] = append([]int{}, v.Shape()...)
	}
	return data, shapes
}

// SetData overwrites the values of all parameter tensors. The number
// of tensors and the length of each must match.
func (p *Params) SetData(data [][]float64) error {
	if len(data) != len(p.values) {
		return fmt.Errorf("setData: invalid number of parameters"+
			"\n\twant(%v)\n\thave(%v)", len(p.values), len(data))
	}
	for i, v := range p.values {
		backing := v.Data().([]float64)
		if len(data[i]) != len(backing) {
			return fmt.Errorf("setData: invalid size for parameter %v"+
				"\n\twant(%v)\n\thave(%v)", p.names[i], len(backing),
				len(data[i]))
		}
		copy(backing, data[i])
	}
	return nil
}

// Pull copies the values of p into the argument nodes. Node i receives
// the value of parameter i, so nodes may cover a prefix of the
// parameters.
func (p *Params) Pull(nodes G.Nodes) error {
	return p.transfer(nodes, true)
}

// Push copies the values of the argument nodes into p. Node i is
// copied into parameter i.
func (p *Params) Push(nodes G.Nodes) error {
	return p.transfer(nodes, false)
}

// transfer copies data between p and nodes
func (p *Params) transfer(nodes G.Nodes, pull bool) error {
	if len(nodes) > len(p.values) {
		return fmt.Errorf("transfer: too many nodes\n\twant(<= %v)"+
			"\n\thave(%v)", len(p.values), len(nodes))
	}

	for i, node := range nodes {
		nodeData, ok := node.Value().Data().([]float64)
		if !ok {
			return fmt.Errorf("transfer: node %v does not hold float64 "+
				"data", node.Name())
		}
		paramData := p.values[i].Data().([]float64)
		if len(nodeData) != len(paramData) {
			return fmt.Errorf("transfer: size mismatch for %v\n\twant(%v)"+
				"\n\thave(%v)", p.names[i], len(paramData), len(nodeData))
		}

		if pull {
			copy(nodeData, paramData)
		} else {
			copy(paramData, nodeData)
		}
	}
	return nil
}
