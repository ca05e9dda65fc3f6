package distribution

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestNewCategoricalInvalid(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
	}{
		{"negative", []float64{1.5, -0.5}},
		{"nan", []float64{math.NaN(), 1}},
		{"does not sum to one", []float64{0.2, 0.2}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			probs := mat.NewDense(1, 2, test.probs)
			_, err := NewCategorical(probs, rand.NewSource(1))
			assert.Error(t, err)
		})
	}
}

func TestCategoricalModeLowestIndex(t *testing.T) {
	probs := mat.NewDense(3, 3, []float64{
		0.2, 0.5, 0.3,
		0.4, 0.2, 0.4,
		0.0, 0.0, 1.0,
	})
	c, err := NewCategorical(probs, rand.NewSource(1))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, c.Actions())
	assert.Equal(t, 1, c.ActionWidth())
	assert.Equal(t, []float64{1, 0, 2}, c.Mode().RawMatrix().Data)
}

func TestCategoricalSample(t *testing.T) {
	probs := mat.NewDense(2, 3, []float64{
		0.0, 1.0, 0.0,
		0.5, 0.0, 0.5,
	})
	c, err := NewCategorical(probs, rand.NewSource(42))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		s := c.Sample()
		r, cols := s.Dims()
		require.Equal(t, 2, r)
		require.Equal(t, 1, cols)

		assert.Equal(t, 1.0, s.At(0, 0))
		assert.Contains(t, []float64{0, 2}, s.At(1, 0))
	}
}

func TestCategoricalLogProb(t *testing.T) {
	probs := mat.NewDense(2, 2, []float64{
		0.25, 0.75,
		0.5, 0.5,
	})
	c, err := NewCategorical(probs, rand.NewSource(1))
	require.NoError(t, err)

	lp, err := c.LogProb(mat.NewDense(2, 1, []float64{1, 0}))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Log(0.75), math.Log(0.5)}, lp, 1e-12)

	_, err = c.LogProb(mat.NewDense(2, 1, []float64{2, 0}))
	assert.Error(t, err)
	_, err = c.LogProb(mat.NewDense(1, 1, []float64{0}))
	assert.Error(t, err)
}

func TestNewGaussianStdDev(t *testing.T) {
	mean := mat.NewDense(1, 2, nil)
	src := rand.NewSource(1)

	_, err := NewGaussian(mean, []float64{1}, src)
	assert.Error(t, err)
	_, err = NewGaussian(mean, []float64{1, 0}, src)
	assert.Error(t, err)
	_, err = NewGaussian(mean, []float64{1, math.NaN()}, src)
	assert.Error(t, err)

	g, err := NewGaussian(mean, []float64{1, 2}, src)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, g.StdDev())
	assert.Equal(t, 2, g.ActionWidth())
}

func TestGaussianModeIsMean(t *testing.T) {
	mean := mat.NewDense(2, 2, []float64{
		1, -1,
		0.5, 3,
	})
	g, err := NewGaussian(mean, []float64{0.1, 0.2}, rand.NewSource(1))
	require.NoError(t, err)

	assert.True(t, mat.Equal(mean, g.Mode()))
	assert.True(t, mat.Equal(mean, g.Mean()))
}

func TestGaussianSampleStatistics(t *testing.T) {
	const n = 20000
	mean := mat.NewDense(1, 2, []float64{1, -2})
	g, err := NewGaussian(mean, []float64{0.5, 2}, rand.NewSource(7))
	require.NoError(t, err)

	var sum, sumSq [2]float64
	for i := 0; i < n; i++ {
		s := g.Sample()
		for j := 0; j < 2; j++ {
			sum[j] += s.At(0, j)
			sumSq[j] += s.At(0, j) * s.At(0, j)
		}
	}

	for j, want := range []float64{1, -2} {
		m := sum[j] / n
		std := math.Sqrt(sumSq[j]/n - m*m)
		assert.InDelta(t, want, m, 0.1)
		assert.InDelta(t, g.StdDev()[j], std, 0.1)
	}
}

func TestGaussianLogProbSumsDimensions(t *testing.T) {
	mean := mat.NewDense(1, 2, []float64{0, 1})
	std := []float64{1, 2}
	g, err := NewGaussian(mean, std, rand.NewSource(1))
	require.NoError(t, err)

	action := mat.NewDense(1, 2, []float64{0.5, 0})
	lp, err := g.LogProb(action)
	require.NoError(t, err)

	logPdf := func(x, mu, sigma float64) float64 {
		z := (x - mu) / sigma
		return -0.5*z*z - math.Log(sigma) - 0.5*math.Log(2*math.Pi)
	}
	want := logPdf(0.5, 0, 1) + logPdf(0, 1, 2)
	assert.InDelta(t, want, lp[0], 1e-12)

	_, err = g.LogProb(mat.NewDense(1, 3, nil))
	assert.Error(t, err)
}
