package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigo/mixture/pkg/errors"
)

func TestContingencyMatrix(t *testing.T) {
	table, err := ContingencyMatrix([]int{0, 0, 1, 1, 2}, []int{5, 5, 5, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, [][]int{
		{2, 0},
		{1, 1},
		{0, 1},
	}, table)
}

func TestClusteringAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		yTrue    []int
		yPred    []int
		expected float64
	}{
		{"identical", []int{0, 0, 1, 1}, []int{0, 0, 1, 1}, 1.0},
		{"swapped labels", []int{0, 0, 1, 1}, []int{1, 1, 0, 0}, 1.0},
		{"one mistake", []int{0, 0, 0, 1, 1}, []int{2, 2, 3, 3, 3}, 0.8},
		{"more clusters than classes", []int{0, 0, 0, 0}, []int{0, 0, 1, 1}, 0.5},
		{"single cluster", []int{0, 1, 2}, []int{4, 4, 4}, 1.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := ClusteringAccuracy(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, acc, 1e-12)
		})
	}
}

func TestClusteringAccuracyPermutationNotGreedy(t *testing.T) {
	// greedy would match (0,0)=3 first and end with 3+0=3, the best pairing is 2+2=4
	yTrue := []int{0, 0, 0, 1, 1, 0, 0}
	yPred := []int{0, 0, 0, 0, 0, 1, 1}
	table, err := ContingencyMatrix(yTrue, yPred)
	require.NoError(t, err)
	require.Equal(t, [][]int{{3, 2}, {2, 0}}, table)

	acc, err := ClusteringAccuracy(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 4.0/7.0, acc, 1e-12)
}

func TestClusteringAccuracyManyClusters(t *testing.T) {
	const k = 12
	var yTrue, yPred []int
	for c := 0; c < k; c++ {
		for i := 0; i < 5; i++ {
			yTrue = append(yTrue, c)
			yPred = append(yPred, (c+3)%k)
		}
	}
	acc, err := ClusteringAccuracy(yTrue, yPred)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestClusteringAccuracyInvalid(t *testing.T) {
	_, err := ClusteringAccuracy(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = ClusteringAccuracy([]int{0, 1}, []int{0})
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestAdjustedRandScore(t *testing.T) {
	tests := []struct {
		name     string
		yTrue    []int
		yPred    []int
		expected float64
	}{
		{"perfect", []int{0, 0, 1, 1}, []int{1, 1, 0, 0}, 1.0},
		{"both single cluster", []int{0, 0, 0}, []int{3, 3, 3}, 1.0},
		{"single sample", []int{2}, []int{0}, 1.0},
		// scikit-learn: adjusted_rand_score([0, 0, 1, 1], [0, 0, 1, 2]) = 0.5714285714285715
		{"split cluster", []int{0, 0, 1, 1}, []int{0, 0, 1, 2}, 0.5714285714285715},
		// scikit-learn: adjusted_rand_score([0, 0, 1, 1], [0, 1, 0, 1]) = -0.5
		{"independent", []int{0, 0, 1, 1}, []int{0, 1, 0, 1}, -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ari, err := AdjustedRandScore(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, ari, 1e-12)
		})
	}
}
