package optpricer

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultNumPaths and DefaultNumSteps (one step per trading day) are
	// the usual engine sizes.
	DefaultNumPaths = 10000
	DefaultNumSteps = 252

	// Paths are generated in fixed-size blocks, each with its own random
	// source, so a seeded grid does not depend on the worker count.
	kPathBlockSize = 512
)

// MonteCarlo simulates geometric Brownian motion paths under the
// risk-neutral measure and prices payoffs over them.
type MonteCarlo struct {
	contract OptionContract
	numPaths int
	numSteps int
	workers  int

	dt       float64
	drift    float64
	volShock float64

	// seeds hands out base seeds for unseeded generations. It is owned by
	// the engine and never shared with other engines.
	seedsMu sync.Mutex
	seeds   *rand.Rand
}

type MonteCarloOption func(*MonteCarlo)

// WithSeed makes the sequence of grids produced by GeneratePaths and the
// pricing helpers reproducible.
func WithSeed(seed uint64) MonteCarloOption {
	return func(mc *MonteCarlo) {
		mc.seeds = rand.New(rand.NewSource(seed))
	}
}

// WithWorkers bounds the number of goroutines used for path generation.
// Non-positive values are ignored.
func WithWorkers(workers int) MonteCarloOption {
	return func(mc *MonteCarlo) {
		if workers > 0 {
			mc.workers = workers
		}
	}
}

// NewMonteCarlo builds a simulation engine. The step drift (r − σ²/2)·dt
// and shock scale σ·√dt are precomputed with dt = T/numSteps.
func NewMonteCarlo(
	contract OptionContract,
	numPaths int,
	numSteps int,
	opts ...MonteCarloOption) (*MonteCarlo, error) {

	if _, err := NewOptionContract(contract.spot, contract.strike,
		contract.expiry, contract.rate, contract.volatility); err != nil {
		return nil, err
	}
	if numPaths <= 0 {
		return nil, invalidParameter("numPaths must be positive, got %d", numPaths)
	}
	if numSteps <= 0 {
		return nil, invalidParameter("numSteps must be positive, got %d", numSteps)
	}

	dt := contract.expiry / float64(numSteps)
	mc := &MonteCarlo{
		contract: contract,
		numPaths: numPaths,
		numSteps: numSteps,
		workers:  runtime.GOMAXPROCS(0),
		dt:       dt,
		drift:    (contract.rate - 0.5*contract.volatility*contract.volatility) * dt,
		volShock: contract.volatility * math.Sqrt(dt),
	}
	for _, opt := range opts {
		opt(mc)
	}
	if mc.seeds == nil {
		mc.seeds = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return mc, nil
}

// NewMonteCarloFromParams validates raw parameters and builds the engine.
func NewMonteCarloFromParams(
	spot float64,
	strike float64,
	expiry float64,
	rate float64,
	volatility float64,
	numPaths int,
	numSteps int,
	opts ...MonteCarloOption) (*MonteCarlo, error) {

	contract, err := NewOptionContract(spot, strike, expiry, rate, volatility)
	if err != nil {
		return nil, err
	}
	return NewMonteCarlo(contract, numPaths, numSteps, opts...)
}

func (mc *MonteCarlo) Contract() OptionContract { return mc.contract }
func (mc *MonteCarlo) NumPaths() int            { return mc.numPaths }
func (mc *MonteCarlo) NumSteps() int            { return mc.numSteps }
func (mc *MonteCarlo) Dt() float64              { return mc.dt }

// GeneratePaths draws a fresh grid. The base seed comes from the engine's
// own generator, so consecutive calls give independent draws and an engine
// built WithSeed replays the same sequence of grids.
func (mc *MonteCarlo) GeneratePaths(ctx context.Context) (*PathGrid, error) {
	return mc.GeneratePathsWithSeed(ctx, mc.nextSeed())
}

// GeneratePathsWithSeed draws a grid that is fully determined by seed and
// the engine parameters.
func (mc *MonteCarlo) GeneratePathsWithSeed(
	ctx context.Context, seed uint64) (*PathGrid, error) {

	start := time.Now()
	grid := newPathGrid(mc.numPaths, mc.numSteps, seed)
	numBlocks := (mc.numPaths + kPathBlockSize - 1) / kPathBlockSize

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mc.workers)
	for block := 0; block < numBlocks; block++ {
		block := block
		g.Go(func() error {
			return mc.fillBlock(gctx, grid, seed, block)
		})
	}
	if err := g.Wait(); err != nil {
		glog.Errorf("Path generation aborted after %v: %v", time.Since(start), err)
		return nil, err
	}

	glog.V(1).Infof("Generated %d paths x %d steps (seed=%d) in %v",
		mc.numPaths, mc.numSteps, seed, time.Since(start))
	return grid, nil
}

func (mc *MonteCarlo) fillBlock(
	ctx context.Context, grid *PathGrid, seed uint64, block int) error {

	rng := rand.New(rand.NewSource(blockSeed(seed, block)))
	first := block * kPathBlockSize
	last := first + kPathBlockSize
	if last > mc.numPaths {
		last = mc.numPaths
	}

	for i := first; i < last; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := grid.row(i)
		row[0] = mc.contract.spot
		for t := 0; t < mc.numSteps; t++ {
			row[t+1] = row[t] * math.Exp(mc.drift+mc.volShock*rng.NormFloat64())
		}
	}
	return nil
}

// Payoffs evaluates payoff on every path of grid, undiscounted.
func (mc *MonteCarlo) Payoffs(grid *PathGrid, payoff Payoff) ([]float64, error) {
	if grid == nil || grid.NumPaths() == 0 {
		return nil, invalidParameter("path grid is empty")
	}
	if payoff == nil {
		return nil, invalidParameter("payoff is nil")
	}
	payoffs := make([]float64, grid.NumPaths())
	for i := range payoffs {
		payoffs[i] = payoff.Evaluate(grid.row(i))
	}
	return payoffs, nil
}

// Estimate prices payoff on an existing grid. Several payoffs estimated on
// the same grid share one random draw.
func (mc *MonteCarlo) Estimate(grid *PathGrid, payoff Payoff) (PricingEstimate, error) {
	payoffs, err := mc.Payoffs(grid, payoff)
	if err != nil {
		return PricingEstimate{}, err
	}
	return newPricingEstimate(payoffs, mc.contract.Deflater()), nil
}

// EstimateAll generates one grid and prices every payoff on it.
func (mc *MonteCarlo) EstimateAll(
	ctx context.Context, payoffs ...Payoff) ([]PricingEstimate, *PathGrid, error) {

	grid, err := mc.GeneratePaths(ctx)
	if err != nil {
		return nil, nil, err
	}
	estimates := make([]PricingEstimate, len(payoffs))
	for i, payoff := range payoffs {
		if estimates[i], err = mc.Estimate(grid, payoff); err != nil {
			return nil, nil, err
		}
	}
	return estimates, grid, nil
}

// EuropeanCall prices a European call on a freshly generated grid.
//
// Like the other single-instrument helpers below it draws its own paths, so
// two helpers called in sequence do not see the same random draw. Use
// EstimateAll or Estimate with a shared grid for like-for-like comparisons.
func (mc *MonteCarlo) EuropeanCall(ctx context.Context) (PricingEstimate, error) {
	return mc.estimateFresh(ctx, EuropeanCall{Strike: mc.contract.strike})
}

// EuropeanPut prices a European put on a freshly generated grid.
func (mc *MonteCarlo) EuropeanPut(ctx context.Context) (PricingEstimate, error) {
	return mc.estimateFresh(ctx, EuropeanPut{Strike: mc.contract.strike})
}

// AsianCall prices an average-price call on a freshly generated grid.
func (mc *MonteCarlo) AsianCall(ctx context.Context) (PricingEstimate, error) {
	return mc.estimateFresh(ctx, AsianCall{Strike: mc.contract.strike})
}

// LookbackCall prices a call on the path maximum on a freshly generated
// grid.
func (mc *MonteCarlo) LookbackCall(ctx context.Context) (PricingEstimate, error) {
	return mc.estimateFresh(ctx, LookbackCall{Strike: mc.contract.strike})
}

// BarrierCall prices an up-and-out ("knock_out") or up-and-in ("knock_in")
// call on a freshly generated grid.
func (mc *MonteCarlo) BarrierCall(
	ctx context.Context, barrierLevel float64, style string) (PricingEstimate, error) {

	barrierStyle, err := ParseBarrierStyle(style)
	if err != nil {
		return PricingEstimate{}, err
	}
	if !isFinite(barrierLevel) || barrierLevel <= 0 {
		return PricingEstimate{}, invalidParameter(
			"barrier level must be positive, got %v", barrierLevel)
	}
	return mc.estimateFresh(ctx, BarrierCall{
		Strike:  mc.contract.strike,
		Barrier: barrierLevel,
		Style:   barrierStyle,
	})
}

func (mc *MonteCarlo) estimateFresh(
	ctx context.Context, payoff Payoff) (PricingEstimate, error) {

	grid, err := mc.GeneratePaths(ctx)
	if err != nil {
		return PricingEstimate{}, err
	}
	estimate, err := mc.Estimate(grid, payoff)
	if err != nil {
		return PricingEstimate{}, err
	}
	glog.V(1).Infof("%s: %s", payoff.Name(), estimate)
	return estimate, nil
}

func (mc *MonteCarlo) nextSeed() uint64 {
	mc.seedsMu.Lock()
	defer mc.seedsMu.Unlock()
	return mc.seeds.Uint64()
}

// blockSeed derives an independent stream seed for one block of paths
// (splitmix64 finaliser).
func blockSeed(seed uint64, block int) uint64 {
	z := seed + uint64(block+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
