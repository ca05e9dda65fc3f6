package gae

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestDiscountCumSum(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		discount float64
		want     []float64
	}{
		{"empty", nil, 0.9, []float64{}},
		{"undiscounted", []float64{1, 2, 3}, 1, []float64{6, 5, 3}},
		{"discounted", []float64{1, 2, 3}, 0.5, []float64{2.75, 3.5, 3}},
		{"myopic", []float64{1, 2, 3}, 0, []float64{1, 2, 3}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := DiscountCumSum(test.x, test.discount)
			assert.InDeltaSlice(t, test.want, got, 1e-12)
		})
	}
}

func TestNormalize(t *testing.T) {
	x := []float64{1, 2, 3, 4, 10}
	Normalize(x)
	assert.InDelta(t, 0.0, stat.Mean(x, nil), 1e-9)
	assert.InDelta(t, 1.0, stat.StdDev(x, nil), 1e-6)

	single := []float64{5}
	Normalize(single)
	assert.Equal(t, []float64{0}, single)
}

func store(t *testing.T, b *Buffer, rewards ...float64) {
	for i, r := range rewards {
		obs := mat.NewVecDense(2, []float64{float64(i), -float64(i)})
		act := mat.NewVecDense(1, []float64{float64(i % 2)})
		require.NoError(t, b.Store(obs, act, r, 0))
	}
}

func TestBufferRewardsToGo(t *testing.T) {
	b, err := New(2, 1, 5, 1, 0.5)
	require.NoError(t, err)

	store(t, b, 1, 2, 3)
	b.FinishPath(0)
	store(t, b, 4, 2)
	assert.True(t, b.Full())
	assert.Equal(t, 5, b.Len())

	batch, err := b.Get(false)
	require.NoError(t, err)

	want := []float64{2.75, 3.5, 3, 5, 2}
	assert.InDeltaSlice(t, want, batch.Advantages.RawVector().Data, 1e-12)
	assert.InDeltaSlice(t, want, batch.Returns.RawVector().Data, 1e-12)

	r, c := batch.Observations.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{1, -1}, batch.Observations.RawRowView(1))
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, batch.Actions.RawMatrix().Data)

	// Get empties the buffer
	assert.Equal(t, 0, b.Len())
	_, err = b.Get(false)
	assert.Error(t, err)
}

func TestBufferGAE(t *testing.T) {
	b, err := New(1, 1, 2, 0.5, 0.9)
	require.NoError(t, err)

	obs := mat.NewVecDense(1, nil)
	act := mat.NewVecDense(1, nil)
	require.NoError(t, b.Store(obs, act, 1, 0.5))
	require.NoError(t, b.Store(obs, act, 0, 1))
	b.FinishPath(2)

	batch, err := b.Get(false)
	require.NoError(t, err)

	// δ0 = 1 + 0.9(1) - 0.5, δ1 = 0 + 0.9(2) - 1
	d0, d1 := 1.4, 0.8
	wantAdv := []float64{d0 + 0.45*d1, d1}
	wantRet := []float64{1 + 0.9*(0+0.9*2), 0.9 * 2}
	assert.InDeltaSlice(t, wantAdv, batch.Advantages.RawVector().Data, 1e-12)
	assert.InDeltaSlice(t, wantRet, batch.Returns.RawVector().Data, 1e-12)
}

func TestBufferNormalizedAdvantages(t *testing.T) {
	b, err := New(2, 1, 4, 1, 1)
	require.NoError(t, err)
	store(t, b, 1, 0, 0, 1)

	batch, err := b.Get(true)
	require.NoError(t, err)
	adv := batch.Advantages.RawVector().Data
	assert.InDelta(t, 0.0, stat.Mean(adv, nil), 1e-9)
	assert.InDelta(t, 1.0, stat.StdDev(adv, nil), 1e-6)
}

func TestBufferErrors(t *testing.T) {
	_, err := New(0, 1, 1, 1, 1)
	assert.Error(t, err)
	_, err = New(1, 1, 1, 1.5, 1)
	assert.Error(t, err)
	_, err = New(1, 1, 1, 1, -0.1)
	assert.Error(t, err)

	b, err := New(2, 1, 1, 1, 1)
	require.NoError(t, err)

	assert.Error(t, b.Store(mat.NewVecDense(3, nil), mat.NewVecDense(1, nil),
		0, 0))
	assert.Error(t, b.Store(mat.NewVecDense(2, nil), mat.NewVecDense(2, nil),
		0, 0))
	require.NoError(t, b.Store(mat.NewVecDense(2, nil),
		mat.NewVecDense(1, nil), 0, 0))
	assert.Error(t, b.Store(mat.NewVecDense(2, nil),
		mat.NewVecDense(1, nil), 0, 0))
}
