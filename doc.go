// Package mixture provides Gaussian mixture modelling for Go,
// trained with the Expectation-Maximization algorithm.
//
// The library follows a scikit-learn-like API so that people familiar with
// sklearn.mixture.GaussianMixture can use it without surprises, while the
// internals stay in log-space and regularize covariances to survive
// degenerate data.
//
// # Features
//
//   - Full-covariance Gaussian mixtures fitted by EM
//   - Log-space E-step (log-sum-exp) for numerically stable responsibilities
//   - Automatic covariance regularization with a bounded ridge retry
//   - random_from_data and k-means++ initialization, reproducible via a seed
//   - Structured logging (slog or zerolog) and ConvergenceWarning reporting
//   - JSON, gob and zstd-compressed model export
//
// # Installation
//
//	go get github.com/scigo/mixture
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/scigo/mixture/sklearn/mixture"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(6, 1, []float64{0, 0.1, -0.1, 10, 10.1, 9.9})
//
//	    gm := mixture.NewGaussianMixture(
//	        mixture.WithNComponents(2),
//	        mixture.WithRandomState(42),
//	    )
//	    labels, err := gm.FitPredict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    means, _ := gm.Means()
//	    fmt.Println("labels:", labels)
//	    fmt.Println("means:", mat.Formatted(means))
//	}
//
// # Packages
//
//   - sklearn/mixture: GaussianMixture, density evaluation, EM steps
//   - sklearn/datasets: synthetic Gaussian mixture generators
//   - metrics: clustering accuracy and adjusted Rand index
//   - preprocessing: StandardScaler with parameter back-transformation
//   - visualization: convergence and cluster scatter plots
//   - core/model: shared interfaces, state tracking, weight export
//   - core/logspace: log-sum-exp helpers
//   - core/parallel: row and component level parallelism
//   - pkg/errors: error types, warnings and panic recovery
//   - pkg/log: structured logging abstraction
//
// # License
//
// Released under the MIT License.
package mixture
