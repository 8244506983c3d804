package mixture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/scigo/mixture/core/logspace"
	"github.com/scigo/mixture/core/parallel"
)

// minComponentMass floors N_k in the M-step so that a component which lost
// all of its responsibility does not divide by zero.
const minComponentMass = 10 * 2.220446049250313e-16

// mixtureParams are the parameters θ = {π, μ, Σ} updated by EM.
type mixtureParams struct {
	weights     []float64
	means       *mat.Dense // K×D
	covariances []*mat.SymDense
}

func (p *mixtureParams) nComponents() int { return len(p.weights) }

// clone returns a deep copy of p.
func (p *mixtureParams) clone() *mixtureParams {
	c := &mixtureParams{
		weights:     append([]float64(nil), p.weights...),
		means:       mat.DenseCopyOf(p.means),
		covariances: make([]*mat.SymDense, len(p.covariances)),
	}
	for k, cov := range p.covariances {
		c.covariances[k] = mat.NewSymDense(cov.SymmetricDim(), nil)
		c.covariances[k].CopySym(cov)
	}
	return c
}

// weightedLogProb holds log π_k + log N(x_i | μ_k, Σ_k) for every sample and
// component, together with the covariances the densities were evaluated with.
type weightedLogProb struct {
	logProb     *mat.Dense
	covariances []*mat.SymDense
	regularized []bool
}

// estimateWeightedLogProb evaluates every component on X. Components are
// processed by up to workers goroutines; each writes only its own column.
func estimateWeightedLogProb(X mat.Matrix, p *mixtureParams, eps float64, workers int) (*weightedLogProb, error) {
	n, _ := X.Dims()
	k := p.nComponents()

	cols := make([][]float64, k)
	used := make([]*mat.SymDense, k)
	regularized := make([]bool, k)

	err := parallel.ForEach(k, workers, func(c int) error {
		res, err := LogGaussianDensity(X, p.means.RawRowView(c), p.covariances[c], eps)
		if err != nil {
			return err
		}
		logWeight := math.Log(p.weights[c])
		for i := range res.LogDensity {
			res.LogDensity[i] += logWeight
		}
		cols[c] = res.LogDensity
		used[c] = res.Covariance
		regularized[c] = res.Regularized
		return nil
	})
	if err != nil {
		return nil, err
	}

	logProb := mat.NewDense(n, k, nil)
	for c, col := range cols {
		logProb.SetCol(c, col)
	}
	return &weightedLogProb{logProb: logProb, covariances: used, regularized: regularized}, nil
}

// eStep computes the responsibilities for the current parameters and the
// per-sample log normalizers. Regularized covariances are written back to p.
// The indices of components that needed regularization are returned.
func eStep(X mat.Matrix, p *mixtureParams, eps float64, workers int) (resp *mat.Dense, norm []float64, regularized []int, err error) {
	wlp, err := estimateWeightedLogProb(X, p, eps, workers)
	if err != nil {
		return nil, nil, nil, err
	}
	for c, r := range wlp.regularized {
		if r {
			p.covariances[c] = wlp.covariances[c]
			regularized = append(regularized, c)
		}
	}
	resp, norm = logspace.NormalizeRows(wlp.logProb)
	return resp, norm, regularized, nil
}

// mStep re-estimates the parameters from the responsibilities:
//
//	N_k = Σ_i γ_ik,  π_k = N_k / N,  μ_k = Σ_i γ_ik x_i / N_k
//	Σ_k = Σ_i γ_ik (x_i − μ_k)(x_i − μ_k)ᵀ / N_k + eps·I
//
// eps is always added to the diagonal.
func mStep(X mat.Matrix, resp mat.Matrix, eps float64, workers int) (*mixtureParams, error) {
	n, d := X.Dims()
	_, k := resp.Dims()

	p := &mixtureParams{
		weights:     make([]float64, k),
		means:       mat.NewDense(k, d, nil),
		covariances: make([]*mat.SymDense, k),
	}

	err := parallel.ForEach(k, workers, func(c int) error {
		gamma := mat.Col(nil, c, resp)
		nk := floats.Sum(gamma)
		p.weights[c] = nk / float64(n)
		denom := math.Max(nk, minComponentMass)

		var mean mat.VecDense
		mean.MulVec(X.T(), mat.NewVecDense(n, gamma))
		mean.ScaleVec(1/denom, &mean)

		cov := mat.NewSymDense(d, nil)
		diff := mat.NewVecDense(d, nil)
		for i := 0; i < n; i++ {
			if gamma[i] == 0 {
				continue
			}
			for j := 0; j < d; j++ {
				diff.SetVec(j, X.At(i, j)-mean.AtVec(j))
			}
			cov.SymRankOne(cov, gamma[i], diff)
		}
		cov.ScaleSym(1/denom, cov)
		addDiagonal(cov, eps)

		// rows of p.means are disjoint per component
		p.means.SetRow(c, mean.RawVector().Data)
		p.covariances[c] = cov
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
