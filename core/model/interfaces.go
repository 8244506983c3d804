// Package model provides the interfaces shared by unsupervised estimators.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is an estimator trained on an observation matrix alone.
type Fitter interface {
	// Fit trains the estimator on X (n_samples × n_features).
	Fit(X mat.Matrix) error
}

// ClusterMixin is an estimator that assigns every observation to a cluster.
type ClusterMixin interface {
	Fitter

	// FitPredict fits on X and returns the training labels.
	FitPredict(X mat.Matrix) ([]int, error)

	// Predict assigns new observations to clusters.
	Predict(X mat.Matrix) ([]int, error)
}

// DensityEstimator is an estimator that models the data distribution.
type DensityEstimator interface {
	Fitter

	// ScoreSamples returns the log-likelihood of every observation.
	ScoreSamples(X mat.Matrix) ([]float64, error)

	// Score returns the mean per-sample log-likelihood.
	Score(X mat.Matrix) (float64, error)
}

// SoftClusterer exposes per-cluster membership probabilities.
type SoftClusterer interface {
	ClusterMixin

	// PredictProba returns an n_samples × n_components matrix whose rows sum to one.
	PredictProba(X mat.Matrix) (*mat.Dense, error)
}

// ParameterGetter is the interface for models that expose their hyperparameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// WeightExporter is implemented by models whose learned parameters can be
// exported to and restored from a ModelWeights snapshot.
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
	ImportWeights(weights *ModelWeights) error
}
