package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/scigo/mixture/pkg/errors"
)

func identity(d int) *mat.SymDense {
	s := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		s.SetSym(i, i, 1)
	}
	return s
}

func TestMakeGaussianMixture(t *testing.T) {
	X, y, err := MakeGaussianMixture(
		[]int{500, 300},
		[][]float64{{-5, 0}, {5, 3}},
		[]mat.Symmetric{identity(2), mat.NewSymDense(2, []float64{2, 0.5, 0.5, 1})},
		WithSeed(7),
	)
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, 800, r)
	assert.Equal(t, 2, c)
	require.Len(t, y, 800)

	// unshuffled output is ordered by component
	assert.Equal(t, 0, y[0])
	assert.Equal(t, 0, y[499])
	assert.Equal(t, 1, y[500])

	col := mat.Col(nil, 0, X.Slice(0, 500, 0, 2))
	assert.InDelta(t, -5.0, stat.Mean(col, nil), 0.2)
	col = mat.Col(nil, 1, X.Slice(500, 800, 0, 2))
	assert.InDelta(t, 3.0, stat.Mean(col, nil), 0.2)
}

func TestMakeGaussianMixtureDeterministic(t *testing.T) {
	gen := func(seed uint64) *mat.Dense {
		X, _, err := MakeGaussianMixture([]int{20}, [][]float64{{1, 2}}, []mat.Symmetric{identity(2)},
			WithSeed(seed), WithShuffle(true))
		require.NoError(t, err)
		return X
	}
	assert.True(t, mat.Equal(gen(3), gen(3)))
	assert.False(t, mat.Equal(gen(3), gen(4)))
}

func TestMakeGaussianMixtureShuffleKeepsPairs(t *testing.T) {
	X, y, err := MakeGaussianMixture(
		[]int{50, 50},
		[][]float64{{-100}, {100}},
		[]mat.Symmetric{identity(1), identity(1)},
		WithSeed(1), WithShuffle(true),
	)
	require.NoError(t, err)

	ordered := true
	for i := range y {
		if y[i] == 0 {
			assert.Less(t, X.At(i, 0), 0.0)
		} else {
			assert.Greater(t, X.At(i, 0), 0.0)
		}
		if i > 0 && y[i] < y[i-1] {
			ordered = false
		}
	}
	assert.False(t, ordered)
}

func TestMakeGaussianMixtureInvalid(t *testing.T) {
	tests := []struct {
		name  string
		n     []int
		means [][]float64
		covs  []mat.Symmetric
	}{
		{"no components", nil, nil, nil},
		{"means count", []int{1, 1}, [][]float64{{0}}, []mat.Symmetric{identity(1), identity(1)}},
		{"covs count", []int{1}, [][]float64{{0}}, nil},
		{"negative count", []int{-1}, [][]float64{{0}}, []mat.Symmetric{identity(1)}},
		{"zero total", []int{0}, [][]float64{{0}}, []mat.Symmetric{identity(1)}},
		{"cov dim", []int{1}, [][]float64{{0, 0}}, []mat.Symmetric{identity(1)}},
		{"not PD", []int{1}, [][]float64{{0}}, []mat.Symmetric{mat.NewSymDense(1, []float64{-1})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := MakeGaussianMixture(tt.n, tt.means, tt.covs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		})
	}
}

func TestMakeBlobs1D(t *testing.T) {
	X, y, err := MakeBlobs1D([]int{400, 400}, []float64{-5, 5}, []float64{1, 0.5}, WithSeed(42))
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, 800, r)
	assert.Equal(t, 1, c)

	first := mat.Col(nil, 0, X.Slice(0, 400, 0, 1))
	second := mat.Col(nil, 0, X.Slice(400, 800, 0, 1))
	assert.InDelta(t, -5.0, stat.Mean(first, nil), 0.2)
	assert.InDelta(t, 5.0, stat.Mean(second, nil), 0.1)
	assert.InDelta(t, 0.5, stat.StdDev(second, nil), 0.1)
	assert.Equal(t, 1, y[400])

	_, _, err = MakeBlobs1D([]int{1}, []float64{0}, []float64{0})
	assert.Error(t, err)
}
