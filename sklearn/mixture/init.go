package mixture

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Mean initialization strategies.
const (
	InitRandomFromData = "random_from_data"
	InitKMeansPlusPlus = "k-means++"
)

// initialParams builds θ for the first iteration: uniform weights, identity
// covariances and means chosen by the configured strategy.
func initialParams(X mat.Matrix, k int, strategy string, meansInit *mat.Dense, rng *rand.Rand) *mixtureParams {
	_, d := X.Dims()

	p := &mixtureParams{
		weights:     make([]float64, k),
		covariances: make([]*mat.SymDense, k),
	}
	for c := 0; c < k; c++ {
		p.weights[c] = 1 / float64(k)
		cov := mat.NewSymDense(d, nil)
		addDiagonal(cov, 1)
		p.covariances[c] = cov
	}

	switch {
	case meansInit != nil:
		p.means = mat.DenseCopyOf(meansInit)
	case strategy == InitKMeansPlusPlus:
		p.means = rowsOf(X, kmeansPlusPlusIndices(X, k, rng))
	default:
		p.means = rowsOf(X, rng.Perm(rowCount(X))[:k])
	}
	return p
}

func rowCount(X mat.Matrix) int {
	r, _ := X.Dims()
	return r
}

// rowsOf copies the given rows of X into a new matrix.
func rowsOf(X mat.Matrix, idx []int) *mat.Dense {
	_, d := X.Dims()
	out := mat.NewDense(len(idx), d, nil)
	row := make([]float64, d)
	for c, i := range idx {
		mat.Row(row, i, X)
		out.SetRow(c, row)
	}
	return out
}

// kmeansPlusPlusIndices selects k distinct rows of X by D² seeding: the first
// uniformly, every further one with probability proportional to its squared
// distance to the nearest row already chosen. When every remaining row
// coincides with a chosen one, the next row is drawn uniformly among the
// rows not chosen yet.
func kmeansPlusPlusIndices(X mat.Matrix, k int, rng *rand.Rand) []int {
	n, d := X.Dims()
	chosen := make([]bool, n)
	idx := make([]int, 0, k)

	first := rng.Intn(n)
	chosen[first] = true
	idx = append(idx, first)

	minDist := make([]float64, n)
	for i := range minDist {
		minDist[i] = math.Inf(1)
	}
	sample := make([]float64, d)
	center := make([]float64, d)

	for len(idx) < k {
		mat.Row(center, idx[len(idx)-1], X)
		for i := 0; i < n; i++ {
			if chosen[i] {
				minDist[i] = 0
				continue
			}
			mat.Row(sample, i, X)
			dist := floats.Distance(sample, center, 2)
			if dd := dist * dist; dd < minDist[i] {
				minDist[i] = dd
			}
		}

		total := floats.Sum(minDist)
		next := -1
		if total > 0 {
			target := rng.Float64() * total
			cumSum := 0.0
			for i := 0; i < n; i++ {
				if chosen[i] || minDist[i] == 0 {
					continue
				}
				cumSum += minDist[i]
				next = i
				if cumSum >= target {
					break
				}
			}
		}
		if next < 0 {
			for _, i := range rng.Perm(n) {
				if !chosen[i] {
					next = i
					break
				}
			}
		}

		chosen[next] = true
		idx = append(idx, next)
	}
	return idx
}
