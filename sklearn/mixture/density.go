package mixture

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/scigo/mixture/core/parallel"
	"github.com/scigo/mixture/pkg/errors"
)

const (
	// maxRegularizationAttempts bounds how often the ridge is grown by ×10
	// while the covariance stays singular.
	maxRegularizationAttempts = 12

	// densityParallelThreshold is the row count above which the quadratic
	// forms are evaluated in parallel.
	densityParallelThreshold = 2048
)

// DensityResult is the outcome of evaluating one Gaussian component.
type DensityResult struct {
	// LogDensity holds log N(x_i | μ, Σ) for every row of X.
	LogDensity []float64

	// Covariance is the matrix the density was evaluated with. It equals the
	// input unless Regularized is set, in which case a ridge was added to
	// its diagonal.
	Covariance *mat.SymDense

	// Regularized reports whether the input covariance had to be ridged.
	Regularized bool
}

// LogGaussianDensity evaluates the multivariate normal log-density
//
//	log p(x) = -0.5·D·log(2π) − 0.5·log|Σ| − 0.5·(x−μ)ᵀΣ⁻¹(x−μ)
//
// for every row of X.
//
// Positive definiteness is decided by a Cholesky factorization, which also
// yields log|Σ| and Σ⁻¹. A covariance that fails it (singular, indefinite or
// negative definite) is replaced by Σ + eps·I, and the ridge is grown by a
// factor of ten per further attempt. Ill-conditioned but positive definite
// matrices are used as they are. The caller's covariance is never modified;
// DensityResult.Covariance carries the matrix actually used.
//
// Only shape mismatches between X, mean and cov are reported as errors.
func LogGaussianDensity(X mat.Matrix, mean []float64, cov mat.Symmetric, eps float64) (DensityResult, error) {
	const op = "LogGaussianDensity"

	n, d := X.Dims()
	if len(mean) != d {
		return DensityResult{}, errors.NewDimensionError(op, d, len(mean), 1)
	}
	if cov.SymmetricDim() != d {
		return DensityResult{}, errors.NewDimensionError(op, d, cov.SymmetricDim(), 0)
	}

	used := mat.NewSymDense(d, nil)
	used.CopySym(cov)

	step := eps
	if step <= 0 {
		step = defaultRegCovar
	}

	regularized := false
	var chol mat.Cholesky
	var prec mat.SymDense
	for attempt := 0; ; attempt++ {
		if chol.Factorize(used) && usableInverse(chol.InverseTo(&prec)) {
			break
		}
		if attempt >= maxRegularizationAttempts {
			return DensityResult{}, errors.Wrapf(errors.ErrSingularMatrix,
				"%s: covariance is not positive definite after %d regularization attempts", op, attempt)
		}
		addDiagonal(used, step)
		step *= 10
		regularized = true
	}
	logDet := chol.LogDet()

	constTerm := -0.5 * (float64(d)*math.Log(2*math.Pi) + logDet)
	out := make([]float64, n)
	parallel.ParallelizeWithThreshold(n, densityParallelThreshold, func(start, end int) {
		diff := mat.NewVecDense(d, nil)
		for i := start; i < end; i++ {
			for j := 0; j < d; j++ {
				diff.SetVec(j, X.At(i, j)-mean[j])
			}
			out[i] = constTerm - 0.5*mat.Inner(diff, &prec, diff)
		}
	})

	return DensityResult{LogDensity: out, Covariance: used, Regularized: regularized}, nil
}

// usableInverse reports whether an inverse computed from a successful
// Cholesky factorization can be used. Ill-conditioned results are accepted.
func usableInverse(err error) bool {
	if err == nil {
		return true
	}
	cond, ok := err.(mat.Condition)
	return ok && !math.IsInf(float64(cond), 1) && !math.IsNaN(float64(cond))
}

// addDiagonal adds v to every diagonal entry of s in place.
func addDiagonal(s *mat.SymDense, v float64) {
	for i := 0; i < s.SymmetricDim(); i++ {
		s.SetSym(i, i, s.At(i, i)+v)
	}
}
