// Package visual renders pricing curves and simulated paths as PNG charts
// and as a single interactive HTML page.
package visual

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/joshi-prasad/optpricer"
)

const (
	// Paths simulated for the charts and how many of them are drawn.
	kChartPaths    = 1000
	kChartSteps    = 252
	kDrawnPaths    = 100
	kHistogramBins = 50
)

// Visualizer writes every chart for one contract into a directory.
type Visualizer struct {
	contract optpricer.OptionContract
	outDir   string

	sweep  []optpricer.SweepPoint
	payoff *optpricer.PayoffCurve
}

// NewVisualizer precomputes the analytic sweeps and creates outDir.
func NewVisualizer(contract optpricer.OptionContract, outDir string) (*Visualizer, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		msg := fmt.Sprintf("Failed to create chart directory %s: %v", outDir, err)
		glog.Error(msg)
		return nil, err
	}
	sweep, err := optpricer.DefaultSpotSweep(contract)
	if err != nil {
		return nil, err
	}
	payoff, err := optpricer.NewPayoffCurve(contract.Strike(), len(sweep))
	if err != nil {
		return nil, err
	}
	return &Visualizer{
		contract: contract,
		outDir:   outDir,
		sweep:    sweep,
		payoff:   payoff,
	}, nil
}

func (v *Visualizer) OutDir() string { return v.outDir }

func (v *Visualizer) path(name string) string {
	return filepath.Join(v.outDir, name)
}

// SimulateChartPaths draws the grid used by the simulation charts.
func (v *Visualizer) SimulateChartPaths(
	ctx context.Context, opts ...optpricer.MonteCarloOption) (*optpricer.PathGrid, error) {

	mc, err := optpricer.NewMonteCarlo(v.contract, kChartPaths, kChartSteps, opts...)
	if err != nil {
		return nil, err
	}
	return mc.GeneratePaths(ctx)
}

// RenderAll simulates chart paths and writes every PNG plus the HTML
// dashboard. It returns the files written.
func (v *Visualizer) RenderAll(
	ctx context.Context, opts ...optpricer.MonteCarloOption) ([]string, error) {

	grid, err := v.SimulateChartPaths(ctx, opts...)
	if err != nil {
		return nil, err
	}

	written := []string{}
	renderers := []func() ([]string, error){
		func() ([]string, error) { return one(v.PlotPayoff()) },
		func() ([]string, error) { return one(v.PlotPriceSensitivity()) },
		v.PlotGreeks,
		func() ([]string, error) { return v.PlotSimulation(grid) },
		func() ([]string, error) { return one(v.RenderDashboard(grid)) },
	}
	for _, render := range renderers {
		files, err := render()
		if err != nil {
			return written, err
		}
		written = append(written, files...)
	}
	glog.Infof("Wrote %d charts to %s", len(written), v.outDir)
	return written, nil
}

func one(file string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{file}, nil
}
