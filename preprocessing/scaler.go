// Package preprocessing はクラスタリング前の特徴量スケーリングを提供します。
package preprocessing

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/scigo/mixture/core/model"
	"github.com/scigo/mixture/pkg/errors"
)

// minScale は定数列とみなす標準偏差の閾値
const minScale = 1e-8

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する
//
// 混合モデルを標準化空間で学習した場合、UnscaleMeans と UnscaleCovariance で
// 推定されたパラメータを元のスケールに戻せる。
type StandardScaler struct {
	state *model.StateManager
	mu    sync.RWMutex

	withMean bool // 平均を引くかどうか
	withStd  bool // 標準偏差で割るかどうか

	mean_  []float64 // 各特徴量の平均値
	scale_ []float64 // 各特徴量の標準偏差（母標準偏差）
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		withMean: withMean,
		withStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	if err := errors.CheckMatrix("StandardScaler.Fit", X); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, c := X.Dims()
	s.mean_ = make([]float64, c)
	s.scale_ = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)

		if s.withMean {
			s.mean_[j] = mean
		}
		s.scale_[j] = 1
		if s.withStd && std >= minScale {
			s.scale_[j] = std
		}
	}

	s.state.MarkFitted(c, r)
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	return s.apply(X, "Transform", func(v float64, j int) float64 {
		return (v - s.mean_[j]) / s.scale_[j]
	})
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	return s.apply(X, "InverseTransform", func(v float64, j int) float64 {
		return v*s.scale_[j] + s.mean_[j]
	})
}

// UnscaleMeans は標準化空間で推定された平均（K×D）を元のスケールに戻す
func (s *StandardScaler) UnscaleMeans(means mat.Matrix) (*mat.Dense, error) {
	return s.InverseTransform(means)
}

// UnscaleCovariance は標準化空間で推定された共分散を元のスケールに戻す
//
//	Σ = diag(scale) · Σ' · diag(scale)
func (s *StandardScaler) UnscaleCovariance(cov mat.Symmetric) (*mat.SymDense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.state.RequireFitted("StandardScaler", "UnscaleCovariance"); err != nil {
		return nil, err
	}
	d := cov.SymmetricDim()
	if d != len(s.scale_) {
		return nil, errors.NewDimensionError("StandardScaler.UnscaleCovariance", len(s.scale_), d, 0)
	}

	out := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			out.SetSym(i, j, cov.At(i, j)*s.scale_[i]*s.scale_[j])
		}
	}
	return out, nil
}

func (s *StandardScaler) apply(X mat.Matrix, method string, fn func(v float64, j int) float64) (*mat.Dense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.state.CheckFeatures("StandardScaler", method, X); err != nil {
		return nil, err
	}
	r, c := X.Dims()

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, fn(X.At(i, j), j))
		}
	}
	return result, nil
}

// Mean は各特徴量の平均値のコピーを返す
func (s *StandardScaler) Mean() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.mean_...)
}

// Scale は各特徴量のスケールのコピーを返す
func (s *StandardScaler) Scale() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.scale_...)
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.withMean,
		"with_std":  s.withStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	nFeatures, _ := s.state.Dimensions()
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.withMean, s.withStd, nFeatures)
}
