package model

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/scigo/mixture/pkg/errors"
)

// StateManager は推定器の学習済みフラグと学習時のデータ形状を保持する
//
// フィールドは gob で保存できるよう公開しているが、更新はメソッド経由で行うこと。
type StateManager struct {
	mu sync.RWMutex

	Fitted    bool
	NFeatures int
	NSamples  int
}

// NewStateManager は未学習状態の StateManager を返す
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted は学習済みかどうかを返す
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// MarkFitted は学習完了を記録する。形状とフラグは同時に更新される
func (s *StateManager) MarkFitted(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// Reset は未学習状態に戻す
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures, s.NSamples = 0, 0
}

// Dimensions は学習時の特徴量数とサンプル数を返す。未学習なら (0, 0)
func (s *StateManager) Dimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// RequireFitted は未学習なら modelName.method を示す NotFittedError を返す
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// CheckFeatures は学習済みであり、X の列数が学習時の特徴量数と一致することを確認する
func (s *StateManager) CheckFeatures(modelName, method string, X mat.Matrix) error {
	s.mu.RLock()
	fitted, nFeatures := s.Fitted, s.NFeatures
	s.mu.RUnlock()

	if !fitted {
		return errors.NewNotFittedError(modelName, method)
	}
	if _, d := X.Dims(); d != nFeatures {
		return errors.NewDimensionError(modelName+"."+method, nFeatures, d, 1)
	}
	return nil
}
