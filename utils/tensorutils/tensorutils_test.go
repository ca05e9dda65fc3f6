package tensorutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

func TestFromMatrix(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	d := FromMatrix(m.T())

	assert.Equal(t, []int{3, 2}, []int(d.Shape()))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, d.Data())

	// The tensor holds a copy
	m.Set(0, 0, 10)
	assert.Equal(t, 1.0, d.Data().([]float64)[0])
}

func TestFromVector(t *testing.T) {
	v := mat.NewVecDense(3, []float64{1, 2, 3})
	d := FromVector(v)
	assert.Equal(t, []int{3}, []int(d.Shape()))
	assert.Equal(t, []float64{1, 2, 3}, d.Data())
}

func TestOneHot(t *testing.T) {
	d, err := OneHot([]int{2, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0}, d.Data())

	_, err = OneHot([]int{3}, 3)
	assert.Error(t, err)
	_, err = OneHot([]int{-1}, 3)
	assert.Error(t, err)
}

func TestToDense(t *testing.T) {
	matrix := tensor.New(tensor.WithShape(2, 2),
		tensor.WithBacking([]float64{1, 2, 3, 4}))
	m, err := ToDense(matrix)
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.At(1, 0))

	vector := tensor.New(tensor.WithShape(3),
		tensor.WithBacking([]float64{1, 2, 3}))
	m, err = ToDense(vector)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)

	_, err = ToDense(tensor.New(tensor.WithShape(2),
		tensor.WithBacking([]float32{1, 2})))
	assert.Error(t, err)
}

func TestScalar(t *testing.T) {
	s, err := Scalar(2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, s)

	s, err = Scalar([]float64{1.5})
	require.NoError(t, err)
	assert.Equal(t, 1.5, s)

	_, err = Scalar([]float64{1, 2})
	assert.Error(t, err)
	_, err = Scalar(float32(1))
	assert.Error(t, err)
}
