// Package visualization renders fitted mixture models with gonum/plot.
//
// The functions only read exported numeric state (a log-likelihood trace,
// an observation matrix and labels) and write image files whose format is
// chosen from the file extension (.png, .svg, .pdf, ...).
package visualization

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/scigo/mixture/pkg/errors"
)

// Default image size.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

// ConvergencePlot builds a line plot of the log-likelihood per EM iteration.
func ConvergencePlot(trace []float64) (*plot.Plot, error) {
	if len(trace) == 0 {
		return nil, errors.NewInvalidInputError("ConvergencePlot", "empty trace")
	}
	if err := errors.CheckFinite("ConvergencePlot", trace); err != nil {
		return nil, err
	}

	pts := make(plotter.XYs, len(trace))
	for i, ll := range trace {
		pts[i].X = float64(i + 1)
		pts[i].Y = ll
	}

	p := plot.New()
	p.Title.Text = "EM convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "log-likelihood"
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build convergence line")
	}
	line.Color = plotutil.Color(0)
	points.Shape = draw.CircleGlyph{}
	points.Color = plotutil.Color(0)
	p.Add(line, points)
	return p, nil
}

// PlotConvergence saves ConvergencePlot(trace) to path.
func PlotConvergence(trace []float64, path string) error {
	p, err := ConvergencePlot(trace)
	if err != nil {
		return err
	}
	return save(p, path)
}

// ClusterPlot builds a scatter plot of the first two columns of X with one
// colour and glyph per label. One-dimensional data is drawn against y = 0.
func ClusterPlot(X mat.Matrix, labels []int) (*plot.Plot, error) {
	const op = "ClusterPlot"

	if err := errors.CheckMatrix(op, X); err != nil {
		return nil, err
	}
	n, d := X.Dims()
	if len(labels) != n {
		return nil, errors.NewDimensionError(op, n, len(labels), 0)
	}

	groups := make(map[int]plotter.XYs)
	var order []int
	for i := 0; i < n; i++ {
		l := labels[i]
		if l < 0 {
			return nil, errors.NewValidationError(op, "labels", "must be non-negative", l)
		}
		if _, ok := groups[l]; !ok {
			order = append(order, l)
		}
		pt := plotter.XY{X: X.At(i, 0)}
		if d > 1 {
			pt.Y = X.At(i, 1)
		}
		groups[l] = append(groups[l], pt)
	}

	p := plot.New()
	p.Title.Text = "Mixture components"
	p.X.Label.Text = "x0"
	if d > 1 {
		p.Y.Label.Text = "x1"
	}
	p.Add(plotter.NewGrid())

	sort.Ints(order)
	for _, l := range order {
		s, err := plotter.NewScatter(groups[l])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build scatter for component %d", l)
		}
		s.Color = plotutil.Color(l)
		s.Shape = plotutil.Shape(l)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("component %d", l), s)
	}
	return p, nil
}

// PlotClusters saves ClusterPlot(X, labels) to path.
func PlotClusters(X mat.Matrix, labels []int, path string) error {
	p, err := ClusterPlot(X, labels)
	if err != nil {
		return err
	}
	return save(p, path)
}

// save は描画中の panic もエラーとして返す
func save(p *plot.Plot, path string) error {
	return errors.SafeExecute("visualization.save", func() error {
		if err := p.Save(Width, Height, path); err != nil {
			return errors.Wrapf(err, "failed to save plot to %s", path)
		}
		return nil
	})
}
