package errors

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewInvalidInputError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "data reason",
			err:     NewInvalidInputError("GaussianMixture.Fit", "n_samples=1 should be >= n_components=3"),
			wantMsg: "mixture: GaussianMixture.Fit: invalid input: n_samples=1 should be >= n_components=3",
		},
		{
			name:    "parameter reason",
			err:     NewValidationError("GaussianMixture.Fit", "tol", "must be positive", -1.0),
			wantMsg: "mixture: GaussianMixture.Fit: invalid input for 'tol': must be positive (got: -1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.True(t, Is(tt.err, ErrInvalidInput))
			assert.False(t, Is(tt.err, ErrNotFitted))

			var inputErr *InvalidInputError
			require.True(t, As(tt.err, &inputErr))

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", tt.err)
			assert.Contains(t, formatted, "errors_test.go")
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 3, 2, 1)

	want := "mixture: Predict: dimension mismatch on axis 1 (features). Expected 3, got 2"
	assert.Equal(t, want, err.Error())
	assert.True(t, Is(err, ErrInvalidInput), "dimension errors are invalid input")

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("GaussianMixture", "Labels")

	want := "mixture: GaussianMixture: model not trained yet. Call Fit() before using Labels()"
	assert.Equal(t, want, err.Error())
	assert.True(t, Is(err, ErrNotFitted))
	assert.False(t, Is(err, ErrInvalidInput))

	var notFittedErr *NotFittedError
	require.True(t, As(err, &notFittedErr))
	assert.Equal(t, "Labels", notFittedErr.Method)
}

func TestNewConvergenceWarning(t *testing.T) {
	warn := NewConvergenceWarning("EM", 100, "")
	assert.Equal(t, "EM failed to converge after 100 iterations. Consider increasing max_iter or tol.", warn.Error())

	warn = NewConvergenceWarning("EM", 5, "log-likelihood still changing")
	assert.Equal(t, "EM failed to converge after 5 iterations: log-likelihood still changing", warn.Error())
}

func TestWarn_RoutesToHandlers(t *testing.T) {
	var mu sync.Mutex
	var got []error
	SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, w)
	})
	defer SetWarningHandler(nil)

	Warn(NewConvergenceWarning("EM", 1, ""))
	require.Len(t, got, 1)

	var zerologGot error
	SetZerologWarnFunc(func(w error) { zerologGot = w })
	Warn(NewConvergenceWarning("EM", 2, ""))
	SetZerologWarnFunc(nil)

	assert.Len(t, got, 1, "zerolog hook takes precedence over the plain handler")
	require.NotNil(t, zerologGot)
	assert.Contains(t, zerologGot.Error(), "2 iterations")
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "in GaussianMixture.Fit")

	assert.True(t, Is(wrapped, ErrEmptyData))
	assert.True(t, strings.Contains(wrapped.Error(), "in GaussianMixture.Fit"))

	wrapped = Wrapf(NewNotFittedError("GaussianMixture", "Predict"), "scoring %d rows", 10)
	assert.True(t, Is(wrapped, ErrNotFitted))
	assert.Contains(t, wrapped.Error(), "scoring 10 rows")
}

func TestCheckMatrix(t *testing.T) {
	assert.NoError(t, CheckMatrix("op", mat.NewDense(2, 2, []float64{1, 2, 3, 4})))

	err := CheckMatrix("op", mat.NewDense(2, 2, []float64{1, math.NaN(), 3, 4}))
	require.Error(t, err)
	assert.True(t, Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "(0, 1)")

	err = CheckMatrix("op", mat.NewDense(1, 2, []float64{math.Inf(-1), 0}))
	assert.True(t, Is(err, ErrInvalidInput))

	err = CheckMatrix("op", &mat.Dense{})
	require.Error(t, err)
	assert.True(t, Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "empty data")
}

func TestCheckFinite(t *testing.T) {
	assert.NoError(t, CheckFinite("op", []float64{0, -1, 1e300}))
	assert.NoError(t, CheckFinite("op", nil))
	err := CheckFinite("op", []float64{0, math.Inf(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.0, SafeDivide(4, 2))
	assert.Equal(t, 0.0, SafeDivide(4, 0))
	assert.Equal(t, 0.0, SafeDivide(4, 1e-12))
}
