package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/gopg/utils/tensorutils"
)

// categoricalLogProbs runs categoricalLogProb on a constant batch of
// logits and returns the log probability of each selected action.
func categoricalLogProbs(t *testing.T, logits []float64, rows int,
	actions []int, mode LogProbMode) []float64 {
	cols := len(logits) / rows
	g := G.NewGraph()

	logitsNode := G.NewMatrix(g, tensor.Float64, G.WithShape(rows, cols),
		G.WithName("logits"), G.WithValue(tensor.New(
			tensor.WithShape(rows, cols), tensor.WithBacking(logits))))

	oneHot, err := tensorutils.OneHot(actions, cols)
	require.NoError(t, err)
	oneHotNode := G.NewMatrix(g, tensor.Float64, G.WithShape(rows, cols),
		G.WithName("oneHot"), G.WithValue(oneHot))

	logProb, err := categoricalLogProb(logitsNode, oneHotNode, mode)
	require.NoError(t, err)

	var val G.Value
	G.Read(logProb, &val)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	return values(t, val)
}

// values returns a copy of the float64 data held by v
func values(t *testing.T, v G.Value) []float64 {
	switch d := v.Data().(type) {
	case float64:
		return []float64{d}
	case []float64:
		return append([]float64{}, d...)
	default:
		t.Fatalf("unexpected data type %T", d)
		return nil
	}
}

func TestLogProbModesAgree(t *testing.T) {
	logits := []float64{
		1.0, 2.0, 0.5,
		-1.0, 0.0, 3.0,
	}
	actions := []int{1, 2}

	want := make([]float64, 2)
	for i, a := range actions {
		row := logits[3*i : 3*i+3]
		sum := 0.0
		for _, l := range row {
			sum += math.Exp(l)
		}
		want[i] = row[a] - math.Log(sum)
	}

	for _, mode := range []LogProbMode{LogSoftmax, LogOfSoftmax} {
		t.Run(string(mode), func(t *testing.T) {
			got := categoricalLogProbs(t, logits, 2, actions, mode)
			assert.InDeltaSlice(t, want, got, 1e-9)
		})
	}
}

func TestLogProbModesSaturated(t *testing.T) {
	logits := []float64{1000, 0}

	stable := categoricalLogProbs(t, logits, 1, []int{1}, LogSoftmax)
	assert.InDelta(t, -1000.0, stable[0], 1e-9)

	literal := categoricalLogProbs(t, logits, 1, []int{1}, LogOfSoftmax)
	assert.True(t, math.IsInf(literal[0], -1), "got %v", literal[0])

	// The saturated action itself has probability 1 in both modes
	for _, mode := range []LogProbMode{LogSoftmax, LogOfSoftmax} {
		lp := categoricalLogProbs(t, logits, 1, []int{0}, mode)
		assert.InDelta(t, 0.0, lp[0], 1e-9)
	}
}

func TestGaussianLogPdf(t *testing.T) {
	g := G.NewGraph()
	constant := func(name string, rows, cols int, data []float64) *G.Node {
		return G.NewMatrix(g, tensor.Float64, G.WithShape(rows, cols),
			G.WithName(name), G.WithValue(tensor.New(
				tensor.WithShape(rows, cols), tensor.WithBacking(data))))
	}

	mean := constant("mean", 2, 2, []float64{0, 1, -1, 0.5})
	logStd := constant("logstd", 1, 2, []float64{0, math.Log(2)})
	actions := constant("actions", 2, 2, []float64{0.5, 0, -1, 2.5})

	logPdf := gaussianLogPdf(mean, logStd, actions)
	var val G.Value
	G.Read(logPdf, &val)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	normal := func(x, mu, sigma float64) float64 {
		z := (x - mu) / sigma
		return -0.5*z*z - math.Log(sigma) - 0.5*math.Log(2*math.Pi)
	}
	want := []float64{
		normal(0.5, 0, 1) + normal(0, 1, 2),
		normal(-1, -1, 1) + normal(2.5, 0.5, 2),
	}
	assert.InDeltaSlice(t, want, values(t, val), 1e-9)
}
