package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/gopg/utils/tensorutils"
)

func TestNewParams(t *testing.T) {
	p, err := NewParams(3, 2, []int{4, 5}, G.GlorotU(1.0))
	require.NoError(t, err)

	assert.Equal(t, 3, p.Layers())
	assert.Equal(t, 6, p.Len())

	names := []string{"W0", "b0", "W1", "b1", "W2", "b2"}
	shapes := [][]int{{3, 4}, {1, 4}, {4, 5}, {1, 5}, {5, 2}, {1, 2}}
	for i := range names {
		assert.Equal(t, names[i], p.Name(i))
		assert.Equal(t, shapes[i], []int(p.At(i).Shape()))
	}

	// Biases start at zero
	for i := 1; i < p.Len(); i += 2 {
		for _, v := range p.At(i).Data().([]float64) {
			assert.Equal(t, 0.0, v)
		}
	}
}

func TestNewParamsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		features int
		outputs  int
		hidden   []int
	}{
		{"no features", 0, 2, nil},
		{"no outputs", 2, 0, nil},
		{"empty hidden layer", 2, 2, []int{3, 0}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewParams(test.features, test.outputs, test.hidden,
				G.Zeroes())
			assert.Error(t, err)
		})
	}
}

func TestParamsAppendAndSetData(t *testing.T) {
	p, err := NewParams(2, 2, nil, G.Zeroes())
	require.NoError(t, err)

	i := p.Append("logstd", []float64{0.1, 0.2}, 1, 2)
	assert.Equal(t, 2, i)
	assert.Equal(t, "logstd", p.Name(i))
	assert.Equal(t, 1, p.Layers())

	data, shapes := p.Data()
	require.Len(t, data, 3)
	assert.Equal(t, []int{1, 2}, shapes[2])
	assert.Equal(t, []float64{0.1, 0.2}, data[2])

	// Data returns copies
	data[2][0] = 5
	assert.Equal(t, 0.1, p.At(2).Data().([]float64)[0])

	data[0] = []float64{1, 2, 3, 4}
	require.NoError(t, p.SetData(data))
	assert.Equal(t, []float64{1, 2, 3, 4}, p.At(0).Data().([]float64))

	assert.Error(t, p.SetData(data[:2]))
	data[1] = []float64{1}
	assert.Error(t, p.SetData(data))
}

// runMLP runs the forward pass of an MLP bound to p on input
func runMLP(t *testing.T, p *Params, act *Activation,
	input *mat.Dense) *mat.Dense {
	r, _ := input.Dims()
	g := G.NewGraph()
	net, err := NewMLP(g, r, p, act)
	require.NoError(t, err)

	require.NoError(t, p.Pull(net.Learnables()))
	require.NoError(t, net.SetInput(input))

	var val G.Value
	G.Read(net.Prediction(), &val)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	out, err := tensorutils.ToDense(val.(tensor.Tensor))
	require.NoError(t, err)
	return out
}

func TestMLPLinear(t *testing.T) {
	p, err := NewParams(2, 2, nil, G.Zeroes())
	require.NoError(t, err)
	require.NoError(t, p.SetData([][]float64{
		{1, 2, 3, 4},
		{0.5, -0.5},
	}))

	input := mat.NewDense(2, 2, []float64{
		1, 1,
		2, 0,
	})
	out := runMLP(t, p, ReLU(), input)

	want := mat.NewDense(2, 2, []float64{
		4.5, 5.5,
		2.5, 3.5,
	})
	assert.True(t, mat.EqualApprox(want, out, 1e-12), "\n%v",
		mat.Formatted(out))
}

func TestMLPHiddenActivation(t *testing.T) {
	p, err := NewParams(1, 1, []int{2}, G.Zeroes())
	require.NoError(t, err)
	require.NoError(t, p.SetData([][]float64{
		{1, -1},
		{0, 0},
		{1, 1},
		{0},
	}))

	input := mat.NewDense(2, 1, []float64{2, -3})

	tests := []struct {
		act  *Activation
		want []float64
	}{
		{ReLU(), []float64{2, 3}},
		{Identity(), []float64{0, 0}},
	}

	for _, test := range tests {
		t.Run(test.act.String(), func(t *testing.T) {
			out := runMLP(t, p, test.act, input)
			assert.InDeltaSlice(t, test.want, out.RawMatrix().Data, 1e-12)
		})
	}
}

func TestMLPSetInputShape(t *testing.T) {
	p, err := NewParams(3, 2, []int{4}, G.GlorotU(1.0))
	require.NoError(t, err)

	net, err := NewMLP(G.NewGraph(), 5, p, TanH())
	require.NoError(t, err)

	assert.Equal(t, 5, net.BatchSize())
	assert.Equal(t, 3, net.Features())
	assert.Equal(t, 2, net.Outputs())
	assert.Len(t, net.Learnables(), 4)
	assert.Equal(t, []int{5, 2}, []int(net.Prediction().Shape()))

	assert.Error(t, net.SetInput(mat.NewDense(4, 3, nil)))
	assert.Error(t, net.SetInput(mat.NewDense(5, 2, nil)))
	assert.NoError(t, net.SetInput(mat.NewDense(5, 3, nil)))

	_, err = NewMLP(G.NewGraph(), 0, p, TanH())
	assert.Error(t, err)
}

func TestPushPull(t *testing.T) {
	p, err := NewParams(2, 1, nil, G.Zeroes())
	require.NoError(t, err)

	net, err := NewMLP(G.NewGraph(), 1, p, Identity())
	require.NoError(t, err)

	// Values are copied into the graph, not shared
	weights := net.Learnables()[0].Value().Data().([]float64)
	weights[0] = 3
	assert.Equal(t, 0.0, p.At(0).Data().([]float64)[0])

	require.NoError(t, p.Push(net.Learnables()))
	assert.Equal(t, 3.0, p.At(0).Data().([]float64)[0])

	p.At(0).Data().([]float64)[1] = 7
	require.NoError(t, p.Pull(net.Learnables()))
	assert.Equal(t, 7.0, weights[1])

	tooMany := append(net.Learnables(), net.Learnables()...)
	assert.Error(t, p.Pull(tooMany))
}

func TestParseActivation(t *testing.T) {
	tests := []struct {
		name string
		want string
		err  bool
	}{
		{"relu", "relu", false},
		{"ReLU", "relu", false},
		{"tanh", "tanh", false},
		{"sigmoid", "sigmoid", false},
		{"identity", "identity", false},
		{"linear", "identity", false},
		{"softplus", "", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			act, err := ParseActivation(test.name)
			if test.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, act.String())
		})
	}
}
