package errors

import (
	"fmt"
	"math"
)

// CheckFinite returns an InvalidInputError when any value is NaN or ±Inf.
func CheckFinite(operation string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewInvalidInputError(operation, fmt.Sprintf("non-finite value %v at index %d", v, i))
		}
	}
	return nil
}

// CheckMatrix checks all values in a matrix and reports the first non-finite
// entry as an InvalidInputError. Empty matrices are rejected as well.
func CheckMatrix(operation string, matrix interface {
	At(int, int) float64
	Dims() (int, int)
}) error {
	rows, cols := matrix.Dims()
	if rows == 0 || cols == 0 {
		return WithStack(&InvalidInputError{Op: operation, Reason: ErrEmptyData.Error()})
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewInvalidInputError(operation,
					fmt.Sprintf("non-finite value %v at (%d, %d)", v, i, j))
			}
		}
	}
	return nil
}

// SafeDivide performs division with protection against division by zero.
// Returns 0 if denominator is zero or close to zero.
func SafeDivide(numerator, denominator float64) float64 {
	if math.Abs(denominator) < 1e-10 {
		return 0
	}
	return numerator / denominator
}
