package optpricer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newTestMonteCarlo(t *testing.T, numPaths, numSteps int, opts ...MonteCarloOption) *MonteCarlo {
	t.Helper()
	mc, err := NewMonteCarloFromParams(100, 100, YearsFromDays(30), 0.05, 0.2,
		numPaths, numSteps, opts...)
	require.NoError(t, err)
	return mc
}

func TestGeneratePathsShape(t *testing.T) {
	mc := newTestMonteCarlo(t, 1000, 21, WithSeed(7))
	grid, err := mc.GeneratePaths(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1000, grid.NumPaths())
	assert.Equal(t, 21, grid.NumSteps())
	for i := 0; i < grid.NumPaths(); i++ {
		assert.Equal(t, 100.0, grid.At(i, 0))
		for _, price := range grid.Path(i) {
			assert.Greater(t, price, 0.0)
		}
	}
	assert.Len(t, grid.TerminalPrices(), 1000)
	assert.Equal(t, grid.At(3, 21), grid.Terminal(3))
}

func TestGeneratePathsWithSeedIgnoresWorkerCount(t *testing.T) {
	ctx := context.Background()
	serial := newTestMonteCarlo(t, 2000, 10, WithWorkers(1))
	parallel := newTestMonteCarlo(t, 2000, 10, WithWorkers(8))

	a, err := serial.GeneratePathsWithSeed(ctx, 42)
	require.NoError(t, err)
	b, err := parallel.GeneratePathsWithSeed(ctx, 42)
	require.NoError(t, err)
	c, err := serial.GeneratePathsWithSeed(ctx, 43)
	require.NoError(t, err)

	assert.True(t, mat.Equal(a.Matrix(), b.Matrix()))
	assert.False(t, mat.Equal(a.Matrix(), c.Matrix()))
	assert.Equal(t, uint64(42), a.Seed())
}

func TestWithSeedReplaysEstimates(t *testing.T) {
	ctx := context.Background()
	first, err := newTestMonteCarlo(t, 5000, 10, WithSeed(99)).EuropeanCall(ctx)
	require.NoError(t, err)
	second, err := newTestMonteCarlo(t, 5000, 10, WithSeed(99)).EuropeanCall(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUnseededCallsDrawFreshPaths(t *testing.T) {
	ctx := context.Background()
	mc := newTestMonteCarlo(t, 500, 5, WithSeed(1))
	a, err := mc.GeneratePaths(ctx)
	require.NoError(t, err)
	b, err := mc.GeneratePaths(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.Seed(), b.Seed())
	assert.False(t, mat.Equal(a.Matrix(), b.Matrix()))
}

func TestEuropeanEstimatesMatchBlackScholes(t *testing.T) {
	ctx := context.Background()
	mc := newTestMonteCarlo(t, 100000, 10, WithSeed(2024))
	bs, err := NewBlackScholes(mc.Contract())
	require.NoError(t, err)

	estimates, _, err := mc.EstimateAll(ctx,
		EuropeanCall{Strike: 100}, EuropeanPut{Strike: 100})
	require.NoError(t, err)
	call, put := estimates[0], estimates[1]

	// Four standard errors keeps a fixed seed well clear of the tail.
	assert.InDelta(t, bs.CallPrice(), call.Price, 4*call.StandardError)
	assert.InDelta(t, bs.PutPrice(), put.Price, 4*put.StandardError)
	assert.Greater(t, call.StandardError, 0.0)
	assert.Less(t, call.StandardError, 0.05)
}

func TestEuropeanIntervalCoverage(t *testing.T) {
	ctx := context.Background()
	bs, err := NewBlackScholesFromParams(100, 100, YearsFromDays(30), 0.05, 0.2)
	require.NoError(t, err)

	const runs = 200
	callHits, putHits := 0, 0
	for seed := uint64(1); seed <= runs; seed++ {
		mc := newTestMonteCarlo(t, 5000, 5, WithSeed(seed))
		estimates, _, err := mc.EstimateAll(ctx,
			EuropeanCall{Strike: 100}, EuropeanPut{Strike: 100})
		require.NoError(t, err)
		if estimates[0].Contains(bs.CallPrice()) {
			callHits++
		}
		if estimates[1].Contains(bs.PutPrice()) {
			putHits++
		}
	}

	// The 1.96 interval should cover the analytic price about 95% of the time.
	for name, hits := range map[string]int{"call": callHits, "put": putHits} {
		rate := float64(hits) / runs
		assert.GreaterOrEqual(t, rate, 0.90, "%s coverage %d/%d", name, hits, runs)
		assert.LessOrEqual(t, rate, 0.99, "%s coverage %d/%d", name, hits, runs)
	}
}

func TestBarrierKnockOutPlusKnockInIsVanilla(t *testing.T) {
	mc := newTestMonteCarlo(t, 3000, 50, WithSeed(5))
	grid, err := mc.GeneratePaths(context.Background())
	require.NoError(t, err)

	for _, level := range []float64{100, 103, 110, 150} {
		out, err := mc.Payoffs(grid, BarrierCall{Strike: 100, Barrier: level, Style: KnockOut})
		require.NoError(t, err)
		in, err := mc.Payoffs(grid, BarrierCall{Strike: 100, Barrier: level, Style: KnockIn})
		require.NoError(t, err)
		vanilla, err := mc.Payoffs(grid, EuropeanCall{Strike: 100})
		require.NoError(t, err)

		for i := range vanilla {
			assert.Equal(t, vanilla[i], out[i]+in[i], "path %d barrier %v", i, level)
		}
	}
}

func TestBarrierAtSpotAlwaysTouches(t *testing.T) {
	mc := newTestMonteCarlo(t, 1000, 10, WithSeed(11))
	grid, err := mc.GeneratePaths(context.Background())
	require.NoError(t, err)

	out, err := mc.Estimate(grid, BarrierCall{Strike: 100, Barrier: 100, Style: KnockOut})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Price)
}

func TestLookbackDominatesEuropean(t *testing.T) {
	mc := newTestMonteCarlo(t, 2000, 30, WithSeed(3))
	estimates, _, err := mc.EstimateAll(context.Background(),
		EuropeanCall{Strike: 100}, LookbackCall{Strike: 100}, AsianCall{Strike: 100})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, estimates[1].Price, estimates[0].Price)
	assert.Greater(t, estimates[2].Price, 0.0)
}

func TestPricingHelpers(t *testing.T) {
	ctx := context.Background()
	mc := newTestMonteCarlo(t, 2000, 20, WithSeed(8))

	for name, price := range map[string]func(context.Context) (PricingEstimate, error){
		"european_call": mc.EuropeanCall,
		"european_put":  mc.EuropeanPut,
		"asian_call":    mc.AsianCall,
		"lookback_call": mc.LookbackCall,
	} {
		estimate, err := price(ctx)
		require.NoError(t, err, name)
		assert.GreaterOrEqual(t, estimate.Price, 0.0, name)
		assert.LessOrEqual(t, estimate.Lower(), estimate.Upper(), name)
	}

	knockOut, err := mc.BarrierCall(ctx, 110, "knock_out")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, knockOut.Price, 0.0)

	_, err = mc.BarrierCall(ctx, 110, "knock_sideways")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = mc.BarrierCall(ctx, 0, "knock_in")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNewMonteCarloRejectsInvalidParameters(t *testing.T) {
	_, err := NewMonteCarloFromParams(100, 100, 1, 0.05, 0.2, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NewMonteCarloFromParams(100, 100, 1, 0.05, 0.2, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NewMonteCarloFromParams(0, 100, 1, 0.05, 0.2, 10, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NewMonteCarloFromParams(100, 100, 1, 0.05, 0, 10, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = NewMonteCarlo(OptionContract{}, 10, 10)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestGeneratePathsHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mc := newTestMonteCarlo(t, 10000, 252)
	_, err := mc.GeneratePaths(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = mc.EuropeanCall(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPayoffsRejectsEmptyInputs(t *testing.T) {
	mc := newTestMonteCarlo(t, 10, 2)
	_, err := mc.Payoffs(nil, EuropeanCall{Strike: 100})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	grid, err := mc.GeneratePaths(context.Background())
	require.NoError(t, err)
	_, err = mc.Payoffs(grid, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBlockSeedsDiffer(t *testing.T) {
	seen := map[uint64]bool{}
	for block := 0; block < 100; block++ {
		seed := blockSeed(0, block)
		assert.False(t, seen[seed])
		seen[seed] = true
	}
}
