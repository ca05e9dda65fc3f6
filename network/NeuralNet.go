package network

import (
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
)

// NeuralNet is a neural network on a computational graph with a fixed
// input batch size
type NeuralNet interface {
	Graph() *G.ExprGraph
	BatchSize() int
	Features() int
	Outputs() int
	SetInput(mat.Matrix) error
	Learnables() G.Nodes
	Prediction() *G.Node
}
