// Package log defines standard attribute keys for mixture model operations.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that logs from different estimators can be filtered
// and aggregated the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of estimator, e.g. "GaussianMixture".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies a specific estimator instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score_samples", "export".
	OperationKey = "ml.operation"

	// ComponentKey is the index of the mixture component a record refers to.
	ComponentKey = "mixture.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey is the number of observations (rows).
	SamplesKey = "data.samples"

	// FeaturesKey is the dimensionality of each observation (columns).
	FeaturesKey = "data.features"

	// ComponentsKey is the number of mixture components K.
	ComponentsKey = "mixture.n_components"
)

// Training progress and results
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey records the current EM iteration (1-based).
	IterationKey = "training.iteration"

	// LogLikelihoodKey records the total log-likelihood of the batch.
	LogLikelihoodKey = "metrics.log_likelihood"

	// ImprovementKey records the log-likelihood change from the previous iteration.
	ImprovementKey = "metrics.improvement"

	// StateKey records the terminal state of a fit ("converged", "max_iterations_reached").
	StateKey = "training.state"

	// AccuracyKey records a clustering accuracy against ground truth.
	AccuracyKey = "metrics.accuracy"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving the issue.
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
const (
	// TolKey records the convergence tolerance.
	TolKey = "hyperparams.tol"

	// MaxIterKey records the iteration budget.
	MaxIterKey = "hyperparams.max_iter"

	// RegularizationKey records the covariance ridge added to the diagonal.
	RegularizationKey = "hyperparams.reg_covar"

	// InitParamsKey records the mean initialization strategy.
	InitParamsKey = "hyperparams.init_params"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationScoreSamples = "score_samples"
	OperationExport       = "export"
	OperationImport       = "import"

	PhaseTraining  = "training"
	PhaseInference = "inference"

	ErrorNotFitted      = "NOT_FITTED"
	ErrorInvalidInput   = "INVALID_INPUT"
	ErrorConvergence    = "CONVERGENCE_FAILURE"
	ErrorSingularMatrix = "SINGULAR_MATRIX"
)
