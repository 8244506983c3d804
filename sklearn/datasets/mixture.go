// Package datasets は既知のパラメータを持つ合成データを生成します。
//
// 生成されるデータは正解ラベル付きで、クラスタリングや密度推定の検証に利用できます。
package datasets

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/scigo/mixture/pkg/errors"
)

type config struct {
	seed    uint64
	shuffle bool
}

// Option は生成器の設定オプション
type Option func(*config)

// WithSeed は乱数シードを設定（デフォルト0）
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithShuffle はサンプルの並びをシャッフルするかを設定（デフォルトfalse、成分順に並ぶ）
func WithShuffle(shuffle bool) Option {
	return func(c *config) {
		c.shuffle = shuffle
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MakeGaussianMixture は各成分 k から nSamples[k] 個のサンプルを
// N(means[k], covs[k]) に従って生成し、データ行列とラベルを返す
//
// 使用例:
//
//	X, y, err := datasets.MakeGaussianMixture(
//	    []int{150, 150},
//	    [][]float64{{-5}, {5}},
//	    []mat.Symmetric{mat.NewSymDense(1, []float64{1}), mat.NewSymDense(1, []float64{1})},
//	    datasets.WithSeed(42),
//	)
func MakeGaussianMixture(nSamples []int, means [][]float64, covs []mat.Symmetric, opts ...Option) (*mat.Dense, []int, error) {
	const op = "MakeGaussianMixture"

	k := len(nSamples)
	if k == 0 {
		return nil, nil, errors.NewInvalidInputError(op, "at least one component is required")
	}
	if len(means) != k {
		return nil, nil, errors.NewDimensionError(op, k, len(means), 0)
	}
	if len(covs) != k {
		return nil, nil, errors.NewDimensionError(op, k, len(covs), 0)
	}
	d := len(means[0])
	if d == 0 {
		return nil, nil, errors.NewInvalidInputError(op, "means must have at least one feature")
	}

	total := 0
	for c := 0; c < k; c++ {
		if nSamples[c] < 0 {
			return nil, nil, errors.NewValidationError(op, fmt.Sprintf("n_samples[%d]", c), "must be non-negative", nSamples[c])
		}
		if len(means[c]) != d {
			return nil, nil, errors.NewDimensionError(op, d, len(means[c]), 1)
		}
		if covs[c].SymmetricDim() != d {
			return nil, nil, errors.NewDimensionError(op, d, covs[c].SymmetricDim(), 0)
		}
		total += nSamples[c]
	}
	if total == 0 {
		return nil, nil, errors.NewInvalidInputError(op, "n_samples sums to zero")
	}

	cfg := newConfig(opts)
	src := rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)

	X := mat.NewDense(total, d, nil)
	y := make([]int, total)
	row := 0
	for c := 0; c < k; c++ {
		dist, ok := distmv.NewNormal(means[c], covs[c], src)
		if !ok {
			return nil, nil, errors.NewInvalidInputError(op,
				fmt.Sprintf("covariance %d is not positive definite", c))
		}
		sample := make([]float64, d)
		for i := 0; i < nSamples[c]; i++ {
			dist.Rand(sample)
			X.SetRow(row, sample)
			y[row] = c
			row++
		}
	}

	if cfg.shuffle {
		shuffleRows(X, y, rand.New(src))
	}
	return X, y, nil
}

// MakeBlobs1D は一次元の正規分布 N(centers[k], stds[k]²) から
// nSamples[k] 個ずつサンプルを生成する（N×1行列）
func MakeBlobs1D(nSamples []int, centers, stds []float64, opts ...Option) (*mat.Dense, []int, error) {
	const op = "MakeBlobs1D"

	k := len(nSamples)
	if k == 0 {
		return nil, nil, errors.NewInvalidInputError(op, "at least one component is required")
	}
	if len(centers) != k {
		return nil, nil, errors.NewDimensionError(op, k, len(centers), 0)
	}
	if len(stds) != k {
		return nil, nil, errors.NewDimensionError(op, k, len(stds), 0)
	}

	total := 0
	for c := 0; c < k; c++ {
		if nSamples[c] < 0 {
			return nil, nil, errors.NewValidationError(op, fmt.Sprintf("n_samples[%d]", c), "must be non-negative", nSamples[c])
		}
		if stds[c] <= 0 {
			return nil, nil, errors.NewValidationError(op, fmt.Sprintf("stds[%d]", c), "must be positive", stds[c])
		}
		total += nSamples[c]
	}
	if total == 0 {
		return nil, nil, errors.NewInvalidInputError(op, "n_samples sums to zero")
	}

	cfg := newConfig(opts)
	src := rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)

	X := mat.NewDense(total, 1, nil)
	y := make([]int, total)
	row := 0
	for c := 0; c < k; c++ {
		dist := distuv.Normal{Mu: centers[c], Sigma: stds[c], Src: src}
		for i := 0; i < nSamples[c]; i++ {
			X.Set(row, 0, dist.Rand())
			y[row] = c
			row++
		}
	}

	if cfg.shuffle {
		shuffleRows(X, y, rand.New(src))
	}
	return X, y, nil
}

// shuffleRows はXの行とyを同じ順序で並べ替える
func shuffleRows(X *mat.Dense, y []int, rng *rand.Rand) {
	_, d := X.Dims()
	tmp := make([]float64, d)
	rng.Shuffle(len(y), func(i, j int) {
		copy(tmp, X.RawRowView(i))
		X.SetRow(i, X.RawRowView(j))
		X.SetRow(j, tmp)
		y[i], y[j] = y[j], y[i]
	})
}
