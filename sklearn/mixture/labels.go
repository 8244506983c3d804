package mixture

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// AssignLabels returns the index of the largest responsibility in every row.
// Ties resolve to the lowest component index.
func AssignLabels(resp mat.Matrix) []int {
	r, c := resp.Dims()
	labels := make([]int, r)
	if c == 0 {
		return labels
	}
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, resp)
		labels[i] = floats.MaxIdx(row)
	}
	return labels
}
