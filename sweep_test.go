package optpricer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestDefaultSpotSweep(t *testing.T) {
	points, err := DefaultSpotSweep(mustContract(t, 100, 100, 30, 0.05, 0.2))
	require.NoError(t, err)
	require.Len(t, points, kSweepPoints)

	assert.InDelta(t, 70, points[0].Spot, 1e-12)
	assert.InDelta(t, 130, points[len(points)-1].Spot, 1e-12)
	for ii := 1; ii < len(points); ii++ {
		assert.Greater(t, points[ii].Call.Price, points[ii-1].Call.Price)
		assert.Less(t, points[ii].Put.Price, points[ii-1].Put.Price)
		assert.GreaterOrEqual(t, points[ii].Call.Delta, points[ii-1].Call.Delta)
	}
}

func TestSpotSweepRejectsBadRanges(t *testing.T) {
	contract := mustContract(t, 100, 100, 30, 0.05, 0.2)
	_, err := SpotSweep(contract, 50, 150, 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = SpotSweep(contract, 150, 50, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = SpotSweep(contract, 0, 50, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestPayoffCurve(t *testing.T) {
	curve, err := NewPayoffCurve(100, 11)
	require.NoError(t, err)

	assert.Equal(t, 50.0, curve.Spots[0])
	assert.Equal(t, 150.0, curve.Spots[10])
	assert.Equal(t, 0.0, curve.Call[0])
	assert.Equal(t, 50.0, curve.Put[0])
	assert.Equal(t, 50.0, curve.Call[10])
	assert.Equal(t, 0.0, curve.Put[10])
	assert.Equal(t, 0.0, curve.Call[5])
	assert.Equal(t, 0.0, curve.Put[5])

	_, err = NewPayoffCurve(0, 11)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSummarize(t *testing.T) {
	summary, err := summarize([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Count)
	assert.InDelta(t, 5.5, summary.Mean, 1e-12)
	assert.InDelta(t, 2.8722813232690143, summary.StdDev, 1e-12)
	assert.Equal(t, 1.0, summary.Min)
	assert.Equal(t, 10.0, summary.Max)
	assert.LessOrEqual(t, summary.P5, summary.P50)
	assert.LessOrEqual(t, summary.P50, summary.P95)

	_, err = summarize(nil)
	assert.Error(t, err)
}

func TestSummarizeTerminal(t *testing.T) {
	mc := newTestMonteCarlo(t, 4000, 10, WithSeed(17))
	grid, err := mc.GeneratePaths(context.Background())
	require.NoError(t, err)

	summary, err := SummarizeTerminal(grid)
	require.NoError(t, err)
	assert.Equal(t, 4000, summary.Count)
	// Risk-neutral drift: E[S_T] = S·e^(rT).
	assert.InDelta(t, 100/mc.Contract().Deflater(), summary.Mean, 0.5)
	assert.Greater(t, summary.Max, summary.P95)
	assert.Less(t, summary.Min, summary.P5)

	_, err = SummarizeTerminal(nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBinCounts(t *testing.T) {
	values := []float64{5, 1, 2, 2, 3, 9, 10, 4.5}
	dividers, counts, err := BinCounts(values, 3)
	require.NoError(t, err)
	require.Len(t, dividers, 4)
	require.Len(t, counts, 3)

	assert.Equal(t, 1.0, dividers[0])
	assert.Greater(t, dividers[3], 10.0)
	assert.Equal(t, float64(len(values)), floats.Sum(counts))
	assert.Equal(t, 4.0, counts[0])
	assert.Equal(t, 2.0, counts[1])
	assert.Equal(t, 2.0, counts[2])
	assert.Equal(t, 5.0, values[0])

	_, _, err = BinCounts(nil, 3)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, _, err = BinCounts(values, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
