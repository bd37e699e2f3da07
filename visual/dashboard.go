package visual

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/golang/glog"

	"github.com/joshi-prasad/optpricer"
)

const (
	kDashboardFile  = "dashboard.html"
	kDashboardPaths = 20
)

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for ii, value := range values {
		data[ii] = opts.LineData{Value: value}
	}
	return data
}

func axisLabels(values []float64) []string {
	labels := make([]string, len(values))
	for ii, value := range values {
		labels[ii] = fmt.Sprintf("%.2f", value)
	}
	return labels
}

func newLineChart(title string, subtitle string, xName string, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Option pricer",
			Width:     "900px",
			Height:    "450px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	return line
}

func (v *Visualizer) subtitle() string {
	c := v.contract
	return fmt.Sprintf("S=%.2f K=%.2f T=%.4f r=%.4f σ=%.4f",
		c.Spot(), c.Strike(), c.Expiry(), c.Rate(), c.Volatility())
}

func (v *Visualizer) payoffChart() *charts.Line {
	line := newLineChart("Payoff at expiry", v.subtitle(), "Stock price at expiry", "Payoff")
	line.SetXAxis(axisLabels(v.payoff.Spots)).
		AddSeries("Call", lineData(v.payoff.Call)).
		AddSeries("Put", lineData(v.payoff.Put))
	return line
}

func (v *Visualizer) priceChart() *charts.Line {
	line := newLineChart("Option price vs stock price", v.subtitle(), "Stock price", "Price")
	spots, calls := v.sweepSeries(func(pt optpricer.SweepPoint) float64 { return pt.Call.Price })
	_, puts := v.sweepSeries(func(pt optpricer.SweepPoint) float64 { return pt.Put.Price })
	line.SetXAxis(axisLabels(spots)).
		AddSeries("Call", lineData(calls)).
		AddSeries("Put", lineData(puts))
	return line
}

func (v *Visualizer) greekChart(chart greekChart) *charts.Line {
	line := newLineChart(chart.title, v.subtitle(), "Stock price", chart.name)
	spots, values := v.sweepSeries(chart.pick)
	line.SetXAxis(axisLabels(spots)).AddSeries("Call "+chart.name, lineData(values))
	return line
}

func (v *Visualizer) pathsChart(grid *optpricer.PathGrid) *charts.Line {
	drawn := minInt(kDashboardPaths, grid.NumPaths())
	line := newLineChart(fmt.Sprintf("Monte Carlo: %d sample paths", drawn),
		v.subtitle(), "Step", "Stock price")
	steps := make([]int, grid.NumSteps()+1)
	for ii := range steps {
		steps[ii] = ii
	}
	line.SetXAxis(steps)
	for ii := 0; ii < drawn; ii++ {
		line.AddSeries(fmt.Sprintf("path %d", ii+1), lineData(grid.Path(ii)))
	}
	return line
}

func (v *Visualizer) histogramChart(grid *optpricer.PathGrid) (*charts.Bar, error) {
	edges, counts, err := optpricer.BinCounts(grid.TerminalPrices(), kHistogramBins)
	if err != nil {
		return nil, err
	}
	summary, err := optpricer.SummarizeTerminal(grid)
	if err != nil {
		return nil, err
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Option pricer",
			Width:     "900px",
			Height:    "450px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Distribution of final prices",
			Subtitle: fmt.Sprintf("mean %.2f, std %.2f, p5 %.2f, p50 %.2f, p95 %.2f",
				summary.Mean, summary.StdDev, summary.P5, summary.P50, summary.P95),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Stock price at expiry"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency"}),
	)

	centres := make([]float64, len(counts))
	data := make([]opts.BarData, len(counts))
	for ii, count := range counts {
		centres[ii] = (edges[ii] + edges[ii+1]) / 2
		data[ii] = opts.BarData{Value: count}
	}
	bar.SetXAxis(axisLabels(centres)).AddSeries("Paths", data)
	return bar, nil
}

// RenderDashboard writes every chart into one interactive HTML page.
func (v *Visualizer) RenderDashboard(grid *optpricer.PathGrid) (string, error) {
	page := components.NewPage()
	page.AddCharts(v.payoffChart(), v.priceChart())
	for _, chart := range kGreekCharts {
		page.AddCharts(v.greekChart(chart))
	}
	histogram, err := v.histogramChart(grid)
	if err != nil {
		return "", err
	}
	page.AddCharts(v.pathsChart(grid), histogram)

	file := v.path(kDashboardFile)
	out, err := os.Create(file)
	if err != nil {
		msg := fmt.Sprintf("Failed to create %s: %v", file, err)
		glog.Error(msg)
		return "", err
	}
	defer out.Close()

	if err := page.Render(out); err != nil {
		return "", err
	}
	glog.V(1).Infof("Saved %s", file)
	return file, nil
}
