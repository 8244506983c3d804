// Package mixture はガウス混合モデル（GMM）をEMアルゴリズムで学習する推定器を提供します。
//
// scikit-learnのGaussianMixture（covariance_type="full"）と互換性のあるAPIを持ち、
// E-stepは対数領域で計算されるため、極端に小さい尤度でもアンダーフローしません。
//
// 使用例:
//
//	gm := mixture.NewGaussianMixture(
//	    mixture.WithNComponents(2),
//	    mixture.WithRandomState(42),
//	)
//	if err := gm.Fit(X); err != nil {
//	    return err
//	}
//	labels, _ := gm.Labels()
package mixture

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/scigo/mixture/core/logspace"
	"github.com/scigo/mixture/core/model"
	"github.com/scigo/mixture/core/parallel"
	"github.com/scigo/mixture/pkg/errors"
	"github.com/scigo/mixture/pkg/log"
)

const (
	modelName      = "GaussianMixture"
	weightsVersion = "1.0.0"

	defaultRegCovar = 1e-6
)

// FitState は学習の進行状態
type FitState int

const (
	// StateNotFitted は一度も学習に成功していない状態
	StateNotFitted FitState = iota
	// StateInitialized はパラメータ初期化直後の状態
	StateInitialized
	// StateIterating はEM反復中の状態
	StateIterating
	// StateConverged は対数尤度の変化がtol未満になり停止した状態
	StateConverged
	// StateMaxIterationsReached はmax_iterに達して停止した状態（エラーではない）
	StateMaxIterationsReached
)

func (s FitState) String() string {
	switch s {
	case StateNotFitted:
		return "not_fitted"
	case StateInitialized:
		return "initialized"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateMaxIterationsReached:
		return "max_iterations_reached"
	default:
		return fmt.Sprintf("FitState(%d)", int(s))
	}
}

// GaussianMixture は完全共分散のガウス混合モデル
type GaussianMixture struct {
	state *model.StateManager

	// ハイパーパラメータ
	nComponents int        // 混合成分数K
	maxIter     int        // 最大EM反復回数
	tol         float64    // 収束判定の許容誤差（対数尤度の変化量）
	randomState int64      // 乱数シード（-1は未指定）
	regCovar    float64    // 共分散の対角に加える正則化項
	initParams  string     // 平均の初期化方法
	meansInit   *mat.Dense // 明示的な初期平均（K×D、任意）
	nJobs       int        // 成分ごとの並列数（-1は全CPU）
	verbose     bool       // 反復ごとのデバッグログ
	logger      log.Logger // nilの場合はグローバルプロバイダから取得

	// 学習パラメータ
	weights_          []float64
	means_            *mat.Dense
	covariances_      []*mat.SymDense
	responsibilities_ *mat.Dense
	labels_           []int
	trace_            *ConvergenceTrace
	nIter_            int
	converged_        bool
	lowerBound_       float64
	fitState_         FitState

	// ImportWeightsで復元したモデルは学習時の出力を持たない
	hasTrainingOutputs bool

	mu  sync.RWMutex
	rng *rand.Rand
}

// Option はGaussianMixtureの設定オプション
type Option func(*GaussianMixture)

// NewGaussianMixture は新しいGaussianMixtureを作成
func NewGaussianMixture(opts ...Option) *GaussianMixture {
	gm := &GaussianMixture{
		state:       model.NewStateManager(),
		nComponents: 3,
		maxIter:     100,
		tol:         1e-6,
		randomState: -1,
		regCovar:    defaultRegCovar,
		initParams:  InitRandomFromData,
		nJobs:       1,
		trace_:      NewConvergenceTrace(),
	}

	for _, opt := range opts {
		opt(gm)
	}

	if gm.randomState >= 0 {
		gm.rng = rand.New(rand.NewSource(gm.randomState))
	} else {
		gm.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return gm
}

// WithNComponents は混合成分数を設定
func WithNComponents(n int) Option {
	return func(gm *GaussianMixture) {
		gm.nComponents = n
	}
}

// WithMaxIter は最大EM反復回数を設定
func WithMaxIter(maxIter int) Option {
	return func(gm *GaussianMixture) {
		gm.maxIter = maxIter
	}
}

// WithTol は収束判定の許容誤差を設定
func WithTol(tol float64) Option {
	return func(gm *GaussianMixture) {
		gm.tol = tol
	}
}

// WithRandomState は乱数シードを設定（負の値は未指定扱い）
func WithRandomState(seed int64) Option {
	return func(gm *GaussianMixture) {
		gm.randomState = seed
	}
}

// WithRegCovar は共分散の正則化項を設定
func WithRegCovar(reg float64) Option {
	return func(gm *GaussianMixture) {
		gm.regCovar = reg
	}
}

// WithInitParams は平均の初期化方法を設定（"random_from_data" または "k-means++"）
func WithInitParams(init string) Option {
	return func(gm *GaussianMixture) {
		gm.initParams = init
	}
}

// WithMeansInit は初期平均（K×D）を明示的に設定。initParamsより優先される
func WithMeansInit(means mat.Matrix) Option {
	return func(gm *GaussianMixture) {
		if d, ok := means.(*mat.Dense); means == nil || (ok && d == nil) {
			gm.meansInit = nil
			return
		}
		gm.meansInit = mat.DenseCopyOf(means)
	}
}

// WithNJobs は成分ごとの計算の並列数を設定（-1は全CPU）
func WithNJobs(n int) Option {
	return func(gm *GaussianMixture) {
		gm.nJobs = n
	}
}

// WithVerbose は反復ごとのデバッグログを有効化
func WithVerbose(verbose bool) Option {
	return func(gm *GaussianMixture) {
		gm.verbose = verbose
	}
}

// WithLogger はロガーを差し替える
func WithLogger(logger log.Logger) Option {
	return func(gm *GaussianMixture) {
		gm.logger = logger
	}
}

func (gm *GaussianMixture) getLogger() log.Logger {
	if gm.logger != nil {
		return gm.logger
	}
	return log.GetLoggerWithName("mixture.gaussian")
}

// Fit はEMアルゴリズムでモデルを学習する
//
// 入力検証に失敗した場合は以前の学習結果を保持したままInvalidInputエラーを返す。
// max_iter以内に収束しなかった場合はエラーではなく、ConvergenceWarningを発行し
// State()がStateMaxIterationsReachedになる。
func (gm *GaussianMixture) Fit(X mat.Matrix) (err error) {
	completed := false
	defer func() {
		if !completed {
			// panic からの復帰時は途中の状態を残さない
			gm.mu.Lock()
			gm.reset()
			gm.mu.Unlock()
		}
	}()
	defer errors.Recover(&err, "GaussianMixture.Fit")

	warning, err := gm.fit(X)
	completed = true
	if err != nil {
		return err
	}
	if warning != nil {
		// ロック外で発行し、ハンドラからの再入を許す
		errors.Warn(warning)
	}
	return nil
}

func (gm *GaussianMixture) fit(X mat.Matrix) (*errors.ConvergenceWarning, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	logger := gm.getLogger().With(log.ModelNameKey, modelName, log.OperationKey, log.OperationFit)

	if err := gm.validateParams(); err != nil {
		logger.Error("Invalid hyperparameters", err, log.ErrorCodeKey, log.ErrorInvalidInput)
		return nil, err
	}
	if err := gm.validateTrainingData(X); err != nil {
		logger.Error("Invalid training data", err, log.ErrorCodeKey, log.ErrorInvalidInput)
		return nil, err
	}

	n, d := X.Dims()
	gm.reset()
	if gm.randomState >= 0 {
		gm.rng = rand.New(rand.NewSource(gm.randomState))
	}

	start := time.Now()
	logger.Info("Starting EM",
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, d,
		log.ComponentsKey, gm.nComponents,
		log.MaxIterKey, gm.maxIter,
		log.TolKey, gm.tol,
		log.RegularizationKey, gm.regCovar,
		log.InitParamsKey, gm.initParams,
		log.RandomSeedKey, gm.randomState,
	)

	params := initialParams(X, gm.nComponents, gm.initParams, gm.meansInit, gm.rng)
	gm.fitState_ = StateInitialized

	workers := parallel.Workers(gm.nJobs)
	prevLL := math.Inf(-1)
	var resp *mat.Dense

	gm.fitState_ = StateIterating
	for iter := 1; iter <= gm.maxIter; iter++ {
		var norm []float64
		var regularized []int
		var err error

		resp, norm, regularized, err = eStep(X, params, gm.regCovar, workers)
		if err != nil {
			return nil, gm.abort(logger, err)
		}
		for _, c := range regularized {
			logger.Debug("Covariance regularized",
				log.IterationKey, iter,
				log.ComponentKey, c,
				log.ErrorCodeKey, log.ErrorSingularMatrix,
			)
		}

		ll := floats.Sum(norm)

		params, err = mStep(X, resp, gm.regCovar, workers)
		if err != nil {
			return nil, gm.abort(logger, err)
		}

		gm.trace_.Append(ll)
		gm.nIter_ = iter

		if gm.verbose && logger.Enabled(context.Background(), log.LevelDebug) {
			logger.Debug("EM iteration",
				log.IterationKey, iter,
				log.LogLikelihoodKey, ll,
				log.ImprovementKey, gm.trace_.Improvement(),
			)
		}

		if iter > 1 && math.Abs(ll-prevLL) < gm.tol {
			gm.converged_ = true
			break
		}
		prevLL = ll
	}

	gm.weights_ = params.weights
	gm.means_ = params.means
	gm.covariances_ = params.covariances
	gm.responsibilities_ = resp
	gm.labels_ = AssignLabels(resp)
	gm.lowerBound_, _ = gm.trace_.Last()
	gm.hasTrainingOutputs = true

	var warning *errors.ConvergenceWarning
	if gm.converged_ {
		gm.fitState_ = StateConverged
	} else {
		gm.fitState_ = StateMaxIterationsReached
		var msg string
		if gm.trace_.Len() > 1 {
			msg = fmt.Sprintf("last log-likelihood change %.3g is not below tol %.3g; consider increasing max_iter or tol",
				math.Abs(gm.trace_.Improvement()), gm.tol)
		}
		warning = errors.NewConvergenceWarning(modelName, gm.nIter_, msg)
	}

	gm.state.MarkFitted(d, n)

	logger.Info("EM finished",
		log.StateKey, gm.fitState_.String(),
		log.IterationKey, gm.nIter_,
		log.LogLikelihoodKey, gm.lowerBound_,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	if warning != nil {
		logger.Warn("EM did not converge",
			log.ErrorCodeKey, log.ErrorConvergence,
			log.SuggestionKey, "increase max_iter or tol",
		)
	}

	return warning, nil
}

// abort はEM途中の失敗時に状態を未学習へ戻す
func (gm *GaussianMixture) abort(logger log.Logger, err error) error {
	logger.Error("EM aborted", err, log.IterationKey, gm.nIter_)
	gm.reset()
	return err
}

// reset は学習結果をすべて破棄する
func (gm *GaussianMixture) reset() {
	gm.state.Reset()
	gm.weights_ = nil
	gm.means_ = nil
	gm.covariances_ = nil
	gm.responsibilities_ = nil
	gm.labels_ = nil
	gm.trace_.Reset()
	gm.nIter_ = 0
	gm.converged_ = false
	gm.lowerBound_ = math.Inf(-1)
	gm.fitState_ = StateNotFitted
	gm.hasTrainingOutputs = false
}

func (gm *GaussianMixture) validateParams() error {
	const op = "GaussianMixture.Fit"

	if gm.nComponents < 1 {
		return errors.NewValidationError(op, "n_components", "must be at least 1", gm.nComponents)
	}
	if gm.maxIter < 1 {
		return errors.NewValidationError(op, "max_iter", "must be at least 1", gm.maxIter)
	}
	if !(gm.tol > 0) || math.IsInf(gm.tol, 1) {
		return errors.NewValidationError(op, "tol", "must be positive and finite", gm.tol)
	}
	if gm.regCovar < 0 || math.IsNaN(gm.regCovar) || math.IsInf(gm.regCovar, 0) {
		return errors.NewValidationError(op, "reg_covar", "must be a finite non-negative value", gm.regCovar)
	}
	if gm.initParams != InitRandomFromData && gm.initParams != InitKMeansPlusPlus {
		return errors.NewValidationError(op, "init_params",
			fmt.Sprintf("must be %q or %q", InitRandomFromData, InitKMeansPlusPlus), gm.initParams)
	}
	if gm.nJobs == 0 {
		return errors.NewValidationError(op, "n_jobs", "must be positive or -1", gm.nJobs)
	}
	return nil
}

func (gm *GaussianMixture) validateTrainingData(X mat.Matrix) error {
	const op = "GaussianMixture.Fit"

	if X == nil {
		return errors.NewInvalidInputError(op, "X is nil")
	}
	if err := errors.CheckMatrix(op, X); err != nil {
		return err
	}
	n, d := X.Dims()
	if n < gm.nComponents {
		return errors.NewValidationError(op, "n_components",
			fmt.Sprintf("must not exceed n_samples=%d", n), gm.nComponents)
	}
	if gm.meansInit != nil {
		r, c := gm.meansInit.Dims()
		if r != gm.nComponents {
			return errors.NewDimensionError(op, gm.nComponents, r, 0)
		}
		if c != d {
			return errors.NewDimensionError(op, d, c, 1)
		}
		if err := errors.CheckMatrix(op, gm.meansInit); err != nil {
			return err
		}
	}
	return nil
}

// validateInference は推論用の入力を検証する。呼び出し側でRLockを保持すること
func (gm *GaussianMixture) validateInference(X mat.Matrix, method string) error {
	op := "GaussianMixture." + method

	if err := gm.state.RequireFitted(modelName, method); err != nil {
		return err
	}
	if X == nil {
		return errors.NewInvalidInputError(op, "X is nil")
	}
	if err := errors.CheckMatrix(op, X); err != nil {
		return err
	}
	return gm.state.CheckFeatures(modelName, method, X)
}

// currentParams は学習済みパラメータのコピーを返す（推論時に状態を変更しないため）
func (gm *GaussianMixture) currentParams() *mixtureParams {
	p := &mixtureParams{weights: gm.weights_, means: gm.means_, covariances: gm.covariances_}
	return p.clone()
}

func (gm *GaussianMixture) weightedLogProb(X mat.Matrix, method string) (*mat.Dense, error) {
	if err := gm.validateInference(X, method); err != nil {
		return nil, err
	}
	wlp, err := estimateWeightedLogProb(X, gm.currentParams(), gm.regCovar, parallel.Workers(gm.nJobs))
	if err != nil {
		return nil, err
	}
	return wlp.logProb, nil
}

// ScoreSamples は各サンプルの対数尤度 log p(x_i) を返す
func (gm *GaussianMixture) ScoreSamples(X mat.Matrix) ([]float64, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	logProb, err := gm.weightedLogProb(X, "ScoreSamples")
	if err != nil {
		return nil, err
	}
	return logspace.LogSumExpAxis(logProb, logspace.AxisCols), nil
}

// Score はサンプルあたりの平均対数尤度を返す
func (gm *GaussianMixture) Score(X mat.Matrix) (float64, error) {
	scores, err := gm.ScoreSamples(X)
	if err != nil {
		return 0, err
	}
	return floats.Sum(scores) / float64(len(scores)), nil
}

// PredictProba は新しいデータに対する各成分の事後確率（N×K）を返す
func (gm *GaussianMixture) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	logProb, err := gm.weightedLogProb(X, "PredictProba")
	if err != nil {
		return nil, err
	}
	resp, _ := logspace.NormalizeRows(logProb)
	return resp, nil
}

// Predict は新しいデータの各サンプルに最も事後確率の高い成分を割り当てる
func (gm *GaussianMixture) Predict(X mat.Matrix) ([]int, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	logProb, err := gm.weightedLogProb(X, "Predict")
	if err != nil {
		return nil, err
	}
	// 正規化定数は行ごとに共通なのでargmaxは変わらない
	return AssignLabels(logProb), nil
}

// FitPredict は学習後、学習データのラベルを返す
func (gm *GaussianMixture) FitPredict(X mat.Matrix) ([]int, error) {
	if err := gm.Fit(X); err != nil {
		return nil, err
	}
	return gm.Labels()
}

// Weights は学習された混合比のコピーを返す
func (gm *GaussianMixture) Weights() ([]float64, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.state.RequireFitted(modelName, "Weights"); err != nil {
		return nil, err
	}
	return append([]float64(nil), gm.weights_...), nil
}

// Means は学習された平均（K×D）のコピーを返す
func (gm *GaussianMixture) Means() (*mat.Dense, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.state.RequireFitted(modelName, "Means"); err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(gm.means_), nil
}

// Covariances は学習された共分散行列（K個のD×D）のコピーを返す
func (gm *GaussianMixture) Covariances() ([]*mat.SymDense, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.state.RequireFitted(modelName, "Covariances"); err != nil {
		return nil, err
	}
	out := make([]*mat.SymDense, len(gm.covariances_))
	for k, cov := range gm.covariances_ {
		out[k] = mat.NewSymDense(cov.SymmetricDim(), nil)
		out[k].CopySym(cov)
	}
	return out, nil
}

// Responsibilities は学習データの最終的な事後確率（N×K）のコピーを返す
func (gm *GaussianMixture) Responsibilities() (*mat.Dense, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.requireTrainingOutputs("Responsibilities"); err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(gm.responsibilities_), nil
}

// Labels は学習データのクラスタラベルのコピーを返す
func (gm *GaussianMixture) Labels() ([]int, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.requireTrainingOutputs("Labels"); err != nil {
		return nil, err
	}
	return append([]int(nil), gm.labels_...), nil
}

// LogLikelihoodTrace は反復ごとの対数尤度のコピーを返す
func (gm *GaussianMixture) LogLikelihoodTrace() ([]float64, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.requireTrainingOutputs("LogLikelihoodTrace"); err != nil {
		return nil, err
	}
	return gm.trace_.Values(), nil
}

func (gm *GaussianMixture) requireTrainingOutputs(method string) error {
	if err := gm.state.RequireFitted(modelName, method); err != nil {
		return err
	}
	if !gm.hasTrainingOutputs {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// LowerBound は最終反復の対数尤度を返す
func (gm *GaussianMixture) LowerBound() (float64, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.state.RequireFitted(modelName, "LowerBound"); err != nil {
		return 0, err
	}
	return gm.lowerBound_, nil
}

// NIter は実行されたEM反復回数を返す
func (gm *GaussianMixture) NIter() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.nIter_
}

// Converged は最後の学習がtolで収束したかを返す
func (gm *GaussianMixture) Converged() bool {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.converged_
}

// State は学習の状態を返す
func (gm *GaussianMixture) State() FitState {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.fitState_
}

// IsFitted はモデルが学習済みかを返す
func (gm *GaussianMixture) IsFitted() bool {
	return gm.state.IsFitted()
}

// GetParams はハイパーパラメータを返す
func (gm *GaussianMixture) GetParams() map[string]interface{} {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.params()
}

func (gm *GaussianMixture) params() map[string]interface{} {
	return map[string]interface{}{
		"n_components": gm.nComponents,
		"max_iter":     gm.maxIter,
		"tol":          gm.tol,
		"random_state": gm.randomState,
		"reg_covar":    gm.regCovar,
		"init_params":  gm.initParams,
		"n_jobs":       gm.nJobs,
		"verbose":      gm.verbose,
	}
}

// String はモデルの文字列表現を返す
func (gm *GaussianMixture) String() string {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return fmt.Sprintf("GaussianMixture(n_components=%d, max_iter=%d, tol=%g, reg_covar=%g, init_params=%q)",
		gm.nComponents, gm.maxIter, gm.tol, gm.regCovar, gm.initParams)
}

// Compile-time interface checks
var (
	_ model.SoftClusterer    = (*GaussianMixture)(nil)
	_ model.DensityEstimator = (*GaussianMixture)(nil)
	_ model.ParameterGetter  = (*GaussianMixture)(nil)
	_ model.WeightExporter   = (*GaussianMixture)(nil)
)
