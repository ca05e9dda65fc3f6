// Package tensorutils converts between Gonum matrices and Gorgonia
// tensors.
package tensorutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// FromMatrix returns a new (r, c) float64 tensor holding a copy of the
// data in m.
func FromMatrix(m mat.Matrix) *tensor.Dense {
	r, c := m.Dims()
	backing := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			backing = append(backing, m.At(i, j))
		}
	}
	return tensor.New(tensor.WithShape(r, c), tensor.WithBacking(backing))
}

// FromVector returns a new float64 tensor of shape (n) holding a copy
// of the data in v.
func FromVector(v mat.Vector) *tensor.Dense {
	backing := make([]float64, v.Len())
	for i := range backing {
		backing[i] = v.AtVec(i)
	}
	return tensor.New(tensor.WithShape(v.Len()), tensor.WithBacking(backing))
}

// OneHot returns a (len(indices), n) tensor with row i holding a 1 in
// column indices[i] and 0 elsewhere.
func OneHot(indices []int, n int) (*tensor.Dense, error) {
	backing := make([]float64, len(indices)*n)
	for i, index := range indices {
		if index < 0 || index >= n {
			return nil, fmt.Errorf("oneHot: index %v out of range [0, %v)",
				index, n)
		}
		backing[i*n+index] = 1.0
	}
	return tensor.New(
		tensor.WithShape(len(indices), n),
		tensor.WithBacking(backing),
	), nil
}

// ToDense returns a copy of a float64 tensor as a matrix. Tensors with
// a single dimension become column vectors and scalars become 1x1
// matrices.
func ToDense(t tensor.Tensor) (*mat.Dense, error) {
	data, ok := t.Data().([]float64)
	if !ok {
		if f, ok := t.Data().(float64); ok {
			return mat.NewDense(1, 1, []float64{f}), nil
		}
		return nil, fmt.Errorf("toDense: tensor does not hold float64 "+
			"data: %T", t.Data())
	}
	data = append([]float64{}, data...)

	shape := t.Shape()
	switch len(shape) {
	case 0:
		return mat.NewDense(1, 1, data), nil
	case 1:
		return mat.NewDense(shape[0], 1, data), nil
	case 2:
		return mat.NewDense(shape[0], shape[1], data), nil
	default:
		return nil, fmt.Errorf("toDense: cannot convert tensor with %v "+
			"dimensions to a matrix", len(shape))
	}
}

// Scalar returns the single float64 held by a value's data, which
// may be either a float64 or a slice of one float64.
func Scalar(data interface{}) (float64, error) {
	switch d := data.(type) {
	case float64:
		return d, nil
	case []float64:
		if len(d) != 1 {
			return 0, fmt.Errorf("scalar: expected 1 value, have(%v)", len(d))
		}
		return d[0], nil
	default:
		return 0, fmt.Errorf("scalar: illegal data type %T", data)
	}
}
