// Package logspace provides numerically stable reductions over log-domain
// values, most importantly log(Σ exp(x)).
//
// Values of -Inf represent zero probability and are valid input everywhere.
package logspace

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Axis selects the dimension a reduction runs along.
type Axis int

const (
	// AxisRows reduces down each column, producing one value per column.
	AxisRows Axis = 0
	// AxisCols reduces across each row, producing one value per row.
	AxisCols Axis = 1
)

// LogSumExp returns log(Σ exp(x)) without overflow or underflow.
//
// An empty slice and a slice of only -Inf both yield -Inf. The maximum is
// subtracted before exponentiating; when that maximum is -Inf the result is
// returned directly since exp(-Inf - -Inf) is undefined.
func LogSumExp(x []float64) float64 {
	if len(x) == 0 {
		return math.Inf(-1)
	}
	maxVal := floats.Max(x)
	if math.IsInf(maxVal, 0) {
		// -Inf: every entry is -Inf. +Inf: the sum is unbounded.
		return maxVal
	}
	if math.IsNaN(maxVal) {
		return math.NaN()
	}

	sum := 0.0
	for _, v := range x {
		sum += math.Exp(v - maxVal)
	}
	return maxVal + math.Log(sum)
}

// LogSumExpAxis reduces a along axis and returns one value per slice.
// A slice with no elements along the reduced axis yields -Inf; a matrix
// with no slices yields nil.
func LogSumExpAxis(a mat.Matrix, axis Axis) []float64 {
	r, c := a.Dims()

	var slices, length int
	switch axis {
	case AxisCols:
		slices, length = r, c
	case AxisRows:
		slices, length = c, r
	default:
		panic("logspace: invalid axis")
	}
	if slices == 0 {
		return nil
	}

	out := make([]float64, slices)
	if length == 0 {
		for i := range out {
			out[i] = math.Inf(-1)
		}
		return out
	}

	buf := make([]float64, length)
	for i := range out {
		if axis == AxisCols {
			mat.Row(buf, i, a)
		} else {
			mat.Col(buf, i, a)
		}
		out[i] = LogSumExp(buf)
	}
	return out
}

// LogSumExpKeepDims is LogSumExpAxis with the reduced dimension kept: an r×c
// input gives r×1 for AxisCols and 1×c for AxisRows, so the result broadcasts
// against the input. Slices empty along the reduced axis hold -Inf, and a
// matrix with no slices yields a 1×1 matrix holding -Inf.
func LogSumExpKeepDims(a mat.Matrix, axis Axis) *mat.Dense {
	vals := LogSumExpAxis(a, axis)
	if len(vals) == 0 {
		return mat.NewDense(1, 1, []float64{math.Inf(-1)})
	}
	if axis == AxisCols {
		return mat.NewDense(len(vals), 1, vals)
	}
	return mat.NewDense(1, len(vals), vals)
}

// NormalizeRows converts unnormalized log-scores into per-row probability
// distributions: resp[i,k] = exp(logProb[i,k] - norm[i]) with
// norm = LogSumExpAxis(logProb, AxisCols). The per-row normalizers are
// returned as well since their sum is the batch log-likelihood.
//
// A row whose scores are all -Inf has no mass to normalize; it is assigned a
// uniform distribution so that every row still sums to one.
func NormalizeRows(logProb mat.Matrix) (resp *mat.Dense, norm []float64) {
	r, c := logProb.Dims()
	norm = LogSumExpAxis(logProb, AxisCols)
	if r == 0 || c == 0 {
		return &mat.Dense{}, norm
	}
	resp = mat.NewDense(r, c, nil)

	row := make([]float64, c)
	for i := 0; i < r; i++ {
		if math.IsInf(norm[i], -1) {
			for j := range row {
				row[j] = 1 / float64(c)
			}
			resp.SetRow(i, row)
			continue
		}
		mat.Row(row, i, logProb)
		for j, v := range row {
			row[j] = math.Exp(v - norm[i])
		}
		resp.SetRow(i, row)
	}
	return resp, norm
}
