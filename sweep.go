package optpricer

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"
)

const (
	kSweepPoints = 100

	kSweepLowFraction   = 0.7
	kSweepHighFraction  = 1.3
	kPayoffLowFraction  = 0.5
	kPayoffHighFraction = 1.5
)

// SweepPoint is the analytic call and put at one spot price.
type SweepPoint struct {
	Spot float64
	Call OptionGreeks
	Put  OptionGreeks
}

// SpotSweep prices the contract at numPoints evenly spaced spots in
// [low, high], keeping strike, expiry, rate and volatility fixed.
func SpotSweep(
	contract OptionContract,
	low float64,
	high float64,
	numPoints int) ([]SweepPoint, error) {

	if numPoints < 2 {
		return nil, invalidParameter("a sweep needs at least 2 points, got %d", numPoints)
	}
	if !isFinite(low) || low <= 0 || !isFinite(high) || high <= low {
		return nil, invalidParameter("invalid sweep range [%v, %v]", low, high)
	}

	spots := floats.Span(make([]float64, numPoints), low, high)
	points := make([]SweepPoint, numPoints)
	for ii, spot := range spots {
		moved, err := contract.WithSpot(spot)
		if err != nil {
			return nil, err
		}
		bs, err := NewBlackScholes(moved)
		if err != nil {
			return nil, err
		}
		points[ii] = SweepPoint{
			Spot: spot,
			Call: bs.Greeks(Call),
			Put:  bs.Greeks(Put),
		}
	}
	return points, nil
}

// DefaultSpotSweep sweeps 100 spots across [0.7K, 1.3K].
func DefaultSpotSweep(contract OptionContract) ([]SweepPoint, error) {
	return SpotSweep(contract,
		kSweepLowFraction*contract.strike,
		kSweepHighFraction*contract.strike,
		kSweepPoints)
}

// PayoffCurve is the value at expiry of a long call and a long put over a
// range of terminal prices.
type PayoffCurve struct {
	Spots []float64
	Call  []float64
	Put   []float64
}

// NewPayoffCurve evaluates the expiry payoffs for strike at numPoints
// terminal prices in [0.5K, 1.5K].
func NewPayoffCurve(strike float64, numPoints int) (*PayoffCurve, error) {
	if err := validatePositive("strike", strike); err != nil {
		return nil, err
	}
	if numPoints < 2 {
		return nil, invalidParameter("a payoff curve needs at least 2 points, got %d", numPoints)
	}

	curve := &PayoffCurve{
		Spots: floats.Span(make([]float64, numPoints),
			kPayoffLowFraction*strike, kPayoffHighFraction*strike),
		Call: make([]float64, numPoints),
		Put:  make([]float64, numPoints),
	}
	call := EuropeanCall{Strike: strike}
	put := EuropeanPut{Strike: strike}
	for ii, spot := range curve.Spots {
		terminal := []float64{spot}
		curve.Call[ii] = call.Evaluate(terminal)
		curve.Put[ii] = put.Evaluate(terminal)
	}
	return curve, nil
}

// TerminalSummary describes the distribution of simulated terminal prices.
type TerminalSummary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	P5     float64
	P50    float64
	P95    float64
}

// SummarizeTerminal computes moments and percentiles of the grid's last
// column.
func SummarizeTerminal(grid *PathGrid) (TerminalSummary, error) {
	if grid == nil || grid.NumPaths() == 0 {
		return TerminalSummary{}, invalidParameter("path grid is empty")
	}
	return summarize(grid.TerminalPrices())
}

func summarize(values []float64) (TerminalSummary, error) {
	data := stats.Float64Data(values)
	summary := TerminalSummary{Count: len(values)}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return TerminalSummary{}, err
	}
	if summary.StdDev, err = stats.StandardDeviationPopulation(data); err != nil {
		return TerminalSummary{}, err
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return TerminalSummary{}, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return TerminalSummary{}, err
	}
	if summary.P5, err = stats.Percentile(data, 5); err != nil {
		return TerminalSummary{}, err
	}
	if summary.P50, err = stats.Percentile(data, 50); err != nil {
		return TerminalSummary{}, err
	}
	if summary.P95, err = stats.Percentile(data, 95); err != nil {
		return TerminalSummary{}, err
	}
	return summary, nil
}

// BinCounts splits values into numBins equal-width bins spanning their
// range. It returns the numBins+1 bin edges and the count in each bin.
func BinCounts(values []float64, numBins int) ([]float64, []float64, error) {
	if len(values) == 0 {
		return nil, nil, invalidParameter("no values to bin")
	}
	if numBins <= 0 {
		return nil, nil, invalidParameter("bin count must be positive, got %d", numBins)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	low := sorted[0]
	high := math.Nextafter(sorted[len(sorted)-1], math.Inf(1))

	dividers := floats.Span(make([]float64, numBins+1), low, high)
	counts := gstat.Histogram(nil, dividers, sorted, nil)
	return dividers, counts, nil
}
