package model

import (
	"encoding/json"

	"github.com/scigo/mixture/pkg/errors"
)

// ModelWeights はモデルの学習済みパラメータを表す構造体（シリアライゼーション用）
type ModelWeights struct {
	// ModelType はモデルの種類（GaussianMixture等）
	ModelType string `json:"model_type"`

	// Version はフォーマットのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Weights は混合比（長さK）
	Weights []float64 `json:"weights"`

	// Means は各成分の平均ベクトル（K×D）
	Means [][]float64 `json:"means"`

	// Covariances は各成分の共分散行列（K×D×D）
	Covariances [][][]float64 `json:"covariances"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Metadata は追加のメタデータ（反復回数や最終対数尤度等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "failed to decode model weights")
	}
	return nil
}

// Validate はModelWeightsの形状の整合性を検証
func (mw *ModelWeights) Validate() error {
	const op = "ModelWeights.Validate"

	if mw.ModelType == "" {
		return errors.NewValidationError(op, "model_type", "is required", mw.ModelType)
	}
	if mw.Version == "" {
		return errors.NewValidationError(op, "version", "is required", mw.Version)
	}
	if !mw.IsFitted {
		if len(mw.Weights) > 0 {
			return errors.NewInvalidInputError(op, "unfitted model should not have weights")
		}
		return nil
	}

	k := len(mw.Weights)
	if k == 0 {
		return errors.NewInvalidInputError(op, "fitted model must have weights")
	}
	if len(mw.Means) != k {
		return errors.NewDimensionError(op, k, len(mw.Means), 0)
	}
	if len(mw.Covariances) != k {
		return errors.NewDimensionError(op, k, len(mw.Covariances), 0)
	}

	d := len(mw.Means[0])
	if d == 0 {
		return errors.NewInvalidInputError(op, "means must have at least one feature")
	}
	for c := 0; c < k; c++ {
		if len(mw.Means[c]) != d {
			return errors.NewDimensionError(op, d, len(mw.Means[c]), 1)
		}
		if len(mw.Covariances[c]) != d {
			return errors.NewDimensionError(op, d, len(mw.Covariances[c]), 0)
		}
		for _, row := range mw.Covariances[c] {
			if len(row) != d {
				return errors.NewDimensionError(op, d, len(row), 1)
			}
		}
		if err := errors.CheckFinite(op, mw.Means[c]); err != nil {
			return err
		}
	}
	return errors.CheckFinite(op, mw.Weights)
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		IsFitted:        mw.IsFitted,
		Weights:         append([]float64(nil), mw.Weights...),
		Means:           make([][]float64, len(mw.Means)),
		Covariances:     make([][][]float64, len(mw.Covariances)),
		Hyperparameters: make(map[string]interface{}, len(mw.Hyperparameters)),
		Metadata:        make(map[string]interface{}, len(mw.Metadata)),
	}

	for i, m := range mw.Means {
		clone.Means[i] = append([]float64(nil), m...)
	}
	for i, cov := range mw.Covariances {
		clone.Covariances[i] = make([][]float64, len(cov))
		for j, row := range cov {
			clone.Covariances[i][j] = append([]float64(nil), row...)
		}
	}
	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}

	return clone
}
