package visual

import (
	"fmt"
	"image/color"

	"github.com/golang/glog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/joshi-prasad/optpricer"
)

var (
	kSpotColor   = color.RGBA{B: 255, A: 255}
	kStrikeColor = color.RGBA{R: 255, A: 255}
	kPathColor   = color.RGBA{B: 200, A: 40}
)

func newPlot(title string, xLabel string, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func savePlot(p *plot.Plot, file string) error {
	if err := p.Save(8*vg.Inch, 5*vg.Inch, file); err != nil {
		msg := fmt.Sprintf("Failed to save chart %s: %v", file, err)
		glog.Error(msg)
		return err
	}
	glog.V(1).Infof("Saved %s", file)
	return nil
}

func xys(xs []float64, ys []float64) plotter.XYs {
	points := make(plotter.XYs, len(xs))
	for ii := range xs {
		points[ii].X = xs[ii]
		points[ii].Y = ys[ii]
	}
	return points
}

// addMarker draws a dashed vertical line at x across [yMin, yMax].
func addMarker(p *plot.Plot, label string, x float64, yMin float64, yMax float64,
	c color.Color) error {

	line, err := plotter.NewLine(plotter.XYs{{X: x, Y: yMin}, {X: x, Y: yMax}})
	if err != nil {
		return err
	}
	line.Color = c
	line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

func (v *Visualizer) sweepSeries(pick func(optpricer.SweepPoint) float64) ([]float64, []float64) {
	xs := make([]float64, len(v.sweep))
	ys := make([]float64, len(v.sweep))
	for ii, point := range v.sweep {
		xs[ii] = point.Spot
		ys[ii] = pick(point)
	}
	return xs, ys
}

// PlotPayoff draws the call and put payoff at expiry.
func (v *Visualizer) PlotPayoff() (string, error) {
	p := newPlot(fmt.Sprintf("Payoff at expiry (K=%.2f)", v.contract.Strike()),
		"Stock price at expiry", "Payoff")
	if err := plotutil.AddLines(p,
		"Call", xys(v.payoff.Spots, v.payoff.Call),
		"Put", xys(v.payoff.Spots, v.payoff.Put)); err != nil {
		return "", err
	}
	maxPayoff := v.payoff.Put[0]
	if last := v.payoff.Call[len(v.payoff.Call)-1]; last > maxPayoff {
		maxPayoff = last
	}
	if err := addMarker(p, "Strike", v.contract.Strike(), 0, maxPayoff, kStrikeColor); err != nil {
		return "", err
	}

	file := v.path("payoff.png")
	return file, savePlot(p, file)
}

// PlotPriceSensitivity draws call and put prices against the spot.
func (v *Visualizer) PlotPriceSensitivity() (string, error) {
	p := newPlot(fmt.Sprintf("Option price vs stock price (σ=%.2f)", v.contract.Volatility()),
		"Stock price", "Option price")
	spots, calls := v.sweepSeries(func(pt optpricer.SweepPoint) float64 { return pt.Call.Price })
	_, puts := v.sweepSeries(func(pt optpricer.SweepPoint) float64 { return pt.Put.Price })
	if err := plotutil.AddLines(p, "Call", xys(spots, calls), "Put", xys(spots, puts)); err != nil {
		return "", err
	}

	top := optpricer.MaxFloat(calls[len(calls)-1], puts[0])
	if err := addMarker(p, "Spot", v.contract.Spot(), 0, top, kSpotColor); err != nil {
		return "", err
	}
	if err := addMarker(p, "Strike", v.contract.Strike(), 0, top, kStrikeColor); err != nil {
		return "", err
	}

	file := v.path("price_sensitivity.png")
	return file, savePlot(p, file)
}

type greekChart struct {
	name  string
	title string
	pick  func(optpricer.SweepPoint) float64
}

var kGreekCharts = []greekChart{
	{"delta", "Delta: price move per $1 in the stock",
		func(pt optpricer.SweepPoint) float64 { return pt.Call.Delta }},
	{"gamma", "Gamma: change in delta per $1",
		func(pt optpricer.SweepPoint) float64 { return pt.Call.Gamma }},
	{"vega", "Vega: price move per 1% volatility",
		func(pt optpricer.SweepPoint) float64 { return pt.Call.Vega }},
	{"theta", "Theta: daily time decay",
		func(pt optpricer.SweepPoint) float64 { return pt.Call.Theta }},
}

// PlotGreeks draws one chart per call Greek against the spot.
func (v *Visualizer) PlotGreeks() ([]string, error) {
	files := []string{}
	for _, chart := range kGreekCharts {
		p := newPlot(chart.title, "Stock price", chart.name)
		spots, values := v.sweepSeries(chart.pick)
		if err := plotutil.AddLines(p, "Call "+chart.name, xys(spots, values)); err != nil {
			return files, err
		}
		low, high := values[0], values[0]
		for _, value := range values {
			low = minFloat(low, value)
			high = optpricer.MaxFloat(high, value)
		}
		if err := addMarker(p, "Spot", v.contract.Spot(), low, high, kSpotColor); err != nil {
			return files, err
		}

		file := v.path("greek_" + chart.name + ".png")
		if err := savePlot(p, file); err != nil {
			return files, err
		}
		files = append(files, file)
	}
	return files, nil
}

// PlotSimulation draws a sample of paths and the terminal price histogram.
func (v *Visualizer) PlotSimulation(grid *optpricer.PathGrid) ([]string, error) {
	paths := newPlot(fmt.Sprintf("Monte Carlo: %d simulated price paths",
		minInt(kDrawnPaths, grid.NumPaths())), "Step", "Stock price")
	steps := make([]float64, grid.NumSteps()+1)
	for ii := range steps {
		steps[ii] = float64(ii)
	}
	for ii := 0; ii < minInt(kDrawnPaths, grid.NumPaths()); ii++ {
		line, err := plotter.NewLine(xys(steps, grid.Path(ii)))
		if err != nil {
			return nil, err
		}
		line.Color = kPathColor
		paths.Add(line)
	}
	pathsFile := v.path("simulation_paths.png")
	if err := savePlot(paths, pathsFile); err != nil {
		return nil, err
	}

	terminal := grid.TerminalPrices()
	summary, err := optpricer.SummarizeTerminal(grid)
	if err != nil {
		return nil, err
	}
	histPlot := newPlot(
		fmt.Sprintf("Distribution of final prices (%d paths, mean %.2f)",
			summary.Count, summary.Mean),
		"Stock price at expiry", "Frequency")
	hist, err := plotter.NewHist(plotter.Values(terminal), kHistogramBins)
	if err != nil {
		return nil, err
	}
	histPlot.Add(hist)
	hist.FillColor = plotutil.Color(0)
	histFile := v.path("terminal_histogram.png")
	if err := savePlot(histPlot, histFile); err != nil {
		return nil, err
	}
	return []string{pathsFile, histFile}, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
