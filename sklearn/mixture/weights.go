package mixture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/scigo/mixture/core/model"
	"github.com/scigo/mixture/pkg/errors"
	"github.com/scigo/mixture/pkg/log"
)

const (
	// symmetryTol is the largest |Σ_ij − Σ_ji| accepted when importing covariances.
	symmetryTol = 1e-9

	// weightSumTol is the largest |Σ_k π_k − 1| accepted when importing weights.
	weightSumTol = 1e-9
)

// ExportWeights は学習済みパラメータをシリアライズ可能な形式でエクスポート
//
// 責務（事後確率）、ラベル、対数尤度の履歴は学習データに依存するため含まれない。
func (gm *GaussianMixture) ExportWeights() (*model.ModelWeights, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.state.RequireFitted(modelName, "ExportWeights"); err != nil {
		return nil, err
	}

	k, d := gm.means_.Dims()
	means := make([][]float64, k)
	covs := make([][][]float64, k)
	for c := 0; c < k; c++ {
		means[c] = mat.Row(nil, c, gm.means_)
		covs[c] = make([][]float64, d)
		for i := 0; i < d; i++ {
			covs[c][i] = mat.Row(nil, i, gm.covariances_[c])
		}
	}

	nFeatures, nSamples := gm.state.Dimensions()
	weights := &model.ModelWeights{
		ModelType:       modelName,
		Version:         weightsVersion,
		Weights:         append([]float64(nil), gm.weights_...),
		Means:           means,
		Covariances:     covs,
		Hyperparameters: gm.params(),
		Metadata: map[string]interface{}{
			"n_iter":     gm.nIter_,
			"converged":  gm.converged_,
			"n_features": nFeatures,
			"n_samples":  nSamples,
		},
		IsFitted: true,
	}
	if !math.IsInf(gm.lowerBound_, 0) {
		weights.Metadata["lower_bound"] = gm.lowerBound_
	}

	gm.getLogger().Debug("Weights exported",
		log.ModelNameKey, modelName,
		log.OperationKey, log.OperationExport,
		log.ComponentsKey, k,
		log.FeaturesKey, d,
	)
	return weights, nil
}

// ImportWeights はエクスポートされたパラメータからモデルを復元
//
// 復元後はScoreSamples、Predict等の推論が可能になる。Labels、Responsibilities、
// LogLikelihoodTraceは学習データを持たないためNotFittedエラーを返す。
func (gm *GaussianMixture) ImportWeights(weights *model.ModelWeights) error {
	const op = "GaussianMixture.ImportWeights"

	if weights == nil {
		return errors.NewInvalidInputError(op, "weights cannot be nil")
	}
	if weights.ModelType != modelName {
		return errors.NewValidationError(op, "model_type", "does not match", weights.ModelType)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if !weights.IsFitted {
		return errors.NewInvalidInputError(op, "weights are not from a fitted model")
	}

	k := len(weights.Weights)
	d := len(weights.Means[0])

	means := mat.NewDense(k, d, nil)
	covs := make([]*mat.SymDense, k)
	for c := 0; c < k; c++ {
		means.SetRow(c, weights.Means[c])
		cov := mat.NewSymDense(d, nil)
		for i := 0; i < d; i++ {
			if err := errors.CheckFinite(op, weights.Covariances[c][i]); err != nil {
				return err
			}
			for j := i; j < d; j++ {
				a, b := weights.Covariances[c][i][j], weights.Covariances[c][j][i]
				if math.Abs(a-b) > symmetryTol {
					return errors.NewInvalidInputError(op,
						fmt.Sprintf("covariance %d is not symmetric at (%d, %d)", c, i, j))
				}
				cov.SetSym(i, j, a)
			}
		}
		var chol mat.Cholesky
		if !chol.Factorize(cov) {
			return errors.NewInvalidInputError(op,
				fmt.Sprintf("covariance %d is not positive definite", c))
		}
		covs[c] = cov
	}
	for c, w := range weights.Weights {
		if w < 0 {
			return errors.NewValidationError(op, fmt.Sprintf("weights[%d]", c), "must be non-negative", w)
		}
	}
	if sum := floats.Sum(weights.Weights); math.Abs(sum-1) > weightSumTol {
		return errors.NewValidationError(op, "weights", "must sum to 1", sum)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.reset()
	gm.applyHyperparameters(weights.Hyperparameters)
	gm.nComponents = k

	gm.weights_ = append([]float64(nil), weights.Weights...)
	gm.means_ = means
	gm.covariances_ = covs
	gm.nIter_ = intParam(weights.Metadata["n_iter"], 0)
	gm.converged_, _ = weights.Metadata["converged"].(bool)
	if lb, ok := floatParam(weights.Metadata["lower_bound"]); ok {
		gm.lowerBound_ = lb
	}
	if gm.converged_ {
		gm.fitState_ = StateConverged
	} else {
		gm.fitState_ = StateMaxIterationsReached
	}

	gm.state.MarkFitted(d, intParam(weights.Metadata["n_samples"], 0))

	gm.getLogger().Debug("Weights imported",
		log.ModelNameKey, modelName,
		log.OperationKey, log.OperationImport,
		log.ComponentsKey, k,
		log.FeaturesKey, d,
	)
	return nil
}

// applyHyperparameters は既知のハイパーパラメータのみを反映する。
// JSON経由の数値はfloat64になるため、整数はintParamで変換する
func (gm *GaussianMixture) applyHyperparameters(hp map[string]interface{}) {
	gm.maxIter = intParam(hp["max_iter"], gm.maxIter)
	gm.nJobs = intParam(hp["n_jobs"], gm.nJobs)
	gm.randomState = int64(intParam(hp["random_state"], int(gm.randomState)))
	if v, ok := floatParam(hp["tol"]); ok {
		gm.tol = v
	}
	if v, ok := floatParam(hp["reg_covar"]); ok {
		gm.regCovar = v
	}
	if v, ok := hp["init_params"].(string); ok {
		gm.initParams = v
	}
	if v, ok := hp["verbose"].(bool); ok {
		gm.verbose = v
	}
}

func intParam(v interface{}, def int) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	default:
		return def
	}
}

func floatParam(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
