package logspace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func naiveLogSumExp(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += math.Exp(v)
	}
	return math.Log(sum)
}

func TestLogSumExp(t *testing.T) {
	negInf := math.Inf(-1)

	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, negInf},
		{"all -inf", []float64{negInf, negInf, negInf}, negInf},
		{"single", []float64{2.5}, 2.5},
		{"-inf ignored", []float64{negInf, 0, negInf}, 0},
		{"two equal", []float64{1, 1}, 1 + math.Ln2},
		{"large", []float64{1000, 1000}, 1000 + math.Ln2},
		{"very negative", []float64{-1000, -1000}, -1000 + math.Ln2},
		{"+inf", []float64{0, math.Inf(1)}, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogSumExp(tt.in)
			assert.False(t, math.IsNaN(got))
			if math.IsInf(tt.want, 0) {
				assert.Equal(t, tt.want, got)
				return
			}
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestLogSumExp_MatchesNaive(t *testing.T) {
	inputs := [][]float64{
		{0.1, -0.3, 2.0},
		{-5, -4, -3, -2, -1},
		{10, 20, 30},
		{-50, 0.5, 7.25, -3},
	}
	for _, in := range inputs {
		assert.InDelta(t, naiveLogSumExp(in), LogSumExp(in), 1e-9, "%v", in)
	}
}

func TestLogSumExp_NoOverflow(t *testing.T) {
	in := []float64{1000, 999, 998}
	require.True(t, math.IsInf(naiveLogSumExp(in), 1), "naive version overflows")

	got := LogSumExp(in)
	assert.False(t, math.IsInf(got, 0))
	assert.InDelta(t, 1000+math.Log(1+math.Exp(-1)+math.Exp(-2)), got, 1e-9)
}

func TestLogSumExpAxis(t *testing.T) {
	negInf := math.Inf(-1)
	a := mat.NewDense(3, 2, []float64{
		0, 0,
		negInf, negInf,
		1000, negInf,
	})

	rows := LogSumExpAxis(a, AxisCols)
	require.Len(t, rows, 3)
	assert.InDelta(t, math.Ln2, rows[0], 1e-12)
	assert.True(t, math.IsInf(rows[1], -1))
	assert.InDelta(t, 1000, rows[2], 1e-12)

	cols := LogSumExpAxis(a, AxisRows)
	require.Len(t, cols, 2)
	assert.InDelta(t, 1000, cols[0], 1e-12)
	assert.InDelta(t, 0, cols[1], 1e-12)

	assert.Nil(t, LogSumExpAxis(&mat.Dense{}, AxisCols))
	assert.Panics(t, func() { LogSumExpAxis(a, Axis(2)) })
}

func TestLogSumExpKeepDims(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{
		0, 0, 0,
		1, 2, 3,
	})

	byRow := LogSumExpKeepDims(a, AxisCols)
	r, c := byRow.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
	assert.InDelta(t, math.Log(3), byRow.At(0, 0), 1e-12)

	byCol := LogSumExpKeepDims(a, AxisRows)
	r, c = byCol.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 3, c)
	assert.InDelta(t, naiveLogSumExp([]float64{0, 3}), byCol.At(0, 2), 1e-12)

	empty := LogSumExpKeepDims(&mat.Dense{}, AxisCols)
	r, c = empty.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 1, c)
	assert.True(t, math.IsInf(empty.At(0, 0), -1))
}

// shapeOnly is a mat.Matrix with the given dimensions and no elements to
// read, which gonum's Dense cannot represent when one dimension is zero.
type shapeOnly struct{ r, c int }

func (m shapeOnly) Dims() (int, int)    { return m.r, m.c }
func (m shapeOnly) At(i, j int) float64 { panic("shapeOnly: no elements") }
func (m shapeOnly) T() mat.Matrix       { return mat.Transpose{Matrix: m} }

func TestLogSumExpAxisEmptyReduction(t *testing.T) {
	rows := LogSumExpAxis(shapeOnly{r: 3, c: 0}, AxisCols)
	require.Len(t, rows, 3)
	for _, v := range rows {
		assert.True(t, math.IsInf(v, -1))
	}

	cols := LogSumExpAxis(shapeOnly{r: 0, c: 2}, AxisRows)
	require.Len(t, cols, 2)
	for _, v := range cols {
		assert.True(t, math.IsInf(v, -1))
	}

	// no slices to reduce
	assert.Nil(t, LogSumExpAxis(shapeOnly{r: 0, c: 2}, AxisCols))

	kept := LogSumExpKeepDims(shapeOnly{r: 3, c: 0}, AxisCols)
	r, c := kept.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)
	assert.True(t, math.IsInf(kept.At(2, 0), -1))

	resp, norm := NormalizeRows(shapeOnly{r: 3, c: 0})
	assert.True(t, resp.IsEmpty())
	assert.Len(t, norm, 3)
}

func TestNormalizeRows(t *testing.T) {
	negInf := math.Inf(-1)
	logProb := mat.NewDense(4, 3, []float64{
		-1000, -1001, -1002, // would underflow in the linear domain
		0, negInf, 0,
		negInf, negInf, negInf,
		5, 5, 5,
	})

	resp, norm := NormalizeRows(logProb)
	require.Len(t, norm, 4)

	for i := 0; i < 4; i++ {
		sum := 0.0
		for k := 0; k < 3; k++ {
			v := resp.At(i, k)
			assert.False(t, math.IsNaN(v))
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "row %d", i)
	}

	assert.Greater(t, resp.At(0, 0), resp.At(0, 1))
	assert.Equal(t, 0.0, resp.At(1, 1))
	assert.InDelta(t, 0.5, resp.At(1, 0), 1e-12)
	assert.True(t, math.IsInf(norm[2], -1))
	assert.InDelta(t, 1.0/3, resp.At(2, 0), 1e-12)
	assert.InDelta(t, 5+math.Log(3), norm[3], 1e-12)
}
