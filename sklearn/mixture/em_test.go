package mixture

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/scigo/mixture/sklearn/datasets"
)

func twoClusters2D(t *testing.T) *mat.Dense {
	t.Helper()
	X, _, err := datasets.MakeGaussianMixture(
		[]int{120, 80},
		[][]float64{{-3, 0}, {3, 2}},
		[]mat.Symmetric{
			mat.NewSymDense(2, []float64{1, 0.3, 0.3, 0.8}),
			mat.NewSymDense(2, []float64{0.5, 0, 0, 1.5}),
		},
		datasets.WithSeed(11), datasets.WithShuffle(true),
	)
	require.NoError(t, err)
	return X
}

func TestEMStepInvariants(t *testing.T) {
	X := twoClusters2D(t)
	n, _ := X.Dims()
	const eps = 1e-6

	params := initialParams(X, 3, InitRandomFromData, nil, rand.New(rand.NewSource(5)))
	trace := NewConvergenceTrace()

	for iter := 0; iter < 30; iter++ {
		resp, norm, _, err := eStep(X, params, eps, 1)
		require.NoError(t, err)

		rows, cols := resp.Dims()
		require.Equal(t, n, rows)
		require.Equal(t, 3, cols)
		for i := 0; i < rows; i++ {
			assert.InDelta(t, 1.0, floats.Sum(mat.Row(nil, i, resp)), 1e-9)
		}
		trace.Append(floats.Sum(norm))

		params, err = mStep(X, resp, eps, 1)
		require.NoError(t, err)

		assert.InDelta(t, 1.0, floats.Sum(params.weights), 1e-9)
		for k, cov := range params.covariances {
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					assert.Equal(t, cov.At(i, j), cov.At(j, i))
				}
			}
			assert.Greater(t, mat.Det(cov), 0.0, "component %d", k)
		}
	}

	assert.True(t, trace.IsMonotonic(1e-6), "trace %v", trace.Values())
}

func TestMStepKnownValues(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 2, 10, 12})
	resp := mat.NewDense(4, 2, []float64{
		1, 0,
		1, 0,
		0, 1,
		0, 1,
	})
	p, err := mStep(X, resp, 1e-6, 1)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0.5, 0.5}, p.weights, 1e-15)
	assert.InDelta(t, 1.0, p.means.At(0, 0), 1e-12)
	assert.InDelta(t, 11.0, p.means.At(1, 0), 1e-12)
	// biased variance plus eps
	assert.InDelta(t, 1.0+1e-6, p.covariances[0].At(0, 0), 1e-12)
	assert.InDelta(t, 1.0+1e-6, p.covariances[1].At(0, 0), 1e-12)
}

func TestMStepEmptyComponent(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 1, 2, 2, 3, 3})
	resp := mat.NewDense(3, 2, []float64{1, 0, 1, 0, 1, 0})

	p, err := mStep(X, resp, 1e-6, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.weights[1])
	for _, v := range p.means.RawRowView(1) {
		assert.False(t, math.IsNaN(v))
	}
	assert.Greater(t, mat.Det(p.covariances[1]), 0.0)

	// a zero weight component contributes -Inf and is absorbed by the reducer
	resp2, norm, _, err := eStep(X, p, 1e-6, 1)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1.0, resp2.At(i, 0), 1e-12)
		assert.False(t, math.IsInf(norm[i], 0))
	}
}

func TestEStepPersistsRegularizedCovariance(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{0, 1})
	p := &mixtureParams{
		weights:     []float64{0.5, 0.5},
		means:       mat.NewDense(2, 1, []float64{0, 1}),
		covariances: []*mat.SymDense{mat.NewSymDense(1, []float64{1}), mat.NewSymDense(1, []float64{0})},
	}

	_, _, regularized, err := eStep(X, p, 1e-3, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, regularized)
	assert.InDelta(t, 1e-3, p.covariances[1].At(0, 0), 1e-15)
	assert.Equal(t, 1.0, p.covariances[0].At(0, 0))
}

func TestEStepFarOutliersDoNotUnderflow(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1e3, -1e3})
	p := &mixtureParams{
		weights:     []float64{0.5, 0.5},
		means:       mat.NewDense(2, 1, []float64{-1, 1}),
		covariances: []*mat.SymDense{mat.NewSymDense(1, []float64{1}), mat.NewSymDense(1, []float64{1})},
	}
	resp, norm, _, err := eStep(X, p, 1e-6, 1)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, resp.At(0, 1), 1e-12)
	assert.InDelta(t, 1.0, resp.At(1, 0), 1e-12)
	for _, v := range norm {
		assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
	}
}

func TestEMParallelMatchesSequential(t *testing.T) {
	X := twoClusters2D(t)
	newParams := func() *mixtureParams {
		return initialParams(X, 4, InitKMeansPlusPlus, nil, rand.New(rand.NewSource(3)))
	}

	seq, par := newParams(), newParams()
	for iter := 0; iter < 5; iter++ {
		r1, n1, _, err := eStep(X, seq, 1e-6, 1)
		require.NoError(t, err)
		r2, n2, _, err := eStep(X, par, 1e-6, 4)
		require.NoError(t, err)
		require.True(t, mat.Equal(r1, r2))
		require.Equal(t, n1, n2)

		seq, err = mStep(X, r1, 1e-6, 1)
		require.NoError(t, err)
		par, err = mStep(X, r2, 1e-6, 4)
		require.NoError(t, err)
	}
	assert.Equal(t, seq.weights, par.weights)
	assert.True(t, mat.Equal(seq.means, par.means))
}

func TestMixtureParamsClone(t *testing.T) {
	p := &mixtureParams{
		weights:     []float64{1},
		means:       mat.NewDense(1, 1, []float64{2}),
		covariances: []*mat.SymDense{mat.NewSymDense(1, []float64{3})},
	}
	c := p.clone()
	c.weights[0] = 0
	c.means.Set(0, 0, 0)
	c.covariances[0].SetSym(0, 0, 0)

	assert.Equal(t, 1.0, p.weights[0])
	assert.Equal(t, 2.0, p.means.At(0, 0))
	assert.Equal(t, 3.0, p.covariances[0].At(0, 0))
}
