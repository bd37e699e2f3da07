package optpricer

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"
)

const (
	kDefaultInitialGuess = 0.3
	kDefaultLowerVol     = 0.001
	kDefaultUpperVol     = 5.0
	kDefaultIvTolerance  = 1e-6
	kDefaultIvIterations = 100

	// Below this vega (per 1% vol) a Newton step is meaningless.
	kMinVega = 1e-6
)

// SolveStatus classifies how an implied volatility was obtained.
type SolveStatus int

const (
	Converged SolveStatus = iota
	ConvergedViaFallback
	NotConverged
)

func (s SolveStatus) String() string {
	switch s {
	case Converged:
		return "converged"
	case ConvergedViaFallback:
		return "converged_via_fallback"
	case NotConverged:
		return "not_converged"
	}
	return "unknown"
}

const (
	MethodBrent  = "brent"
	MethodNewton = "newton"
)

// SolveOptions bounds the search. Zero fields take the defaults.
type SolveOptions struct {
	InitialGuess  float64
	Lower         float64
	Upper         float64
	Tolerance     float64
	MaxIterations int
}

func DefaultSolveOptions() SolveOptions {
	return SolveOptions{
		InitialGuess:  kDefaultInitialGuess,
		Lower:         kDefaultLowerVol,
		Upper:         kDefaultUpperVol,
		Tolerance:     kDefaultIvTolerance,
		MaxIterations: kDefaultIvIterations,
	}
}

func (o SolveOptions) withDefaults() SolveOptions {
	defaults := DefaultSolveOptions()
	if o.InitialGuess == 0 {
		o.InitialGuess = defaults.InitialGuess
	}
	if o.Lower == 0 {
		o.Lower = defaults.Lower
	}
	if o.Upper == 0 {
		o.Upper = defaults.Upper
	}
	if o.Tolerance == 0 {
		o.Tolerance = defaults.Tolerance
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = defaults.MaxIterations
	}
	return o
}

func (o SolveOptions) validate() error {
	if !isFinite(o.Lower) || o.Lower <= 0 {
		return invalidParameter("lower volatility bound must be positive, got %v", o.Lower)
	}
	if !isFinite(o.Upper) || o.Upper <= o.Lower {
		return invalidParameter("upper volatility bound %v must exceed lower bound %v",
			o.Upper, o.Lower)
	}
	if !isFinite(o.InitialGuess) || o.InitialGuess <= 0 {
		return invalidParameter("initial guess must be positive, got %v", o.InitialGuess)
	}
	if !isFinite(o.Tolerance) || o.Tolerance <= 0 {
		return invalidParameter("tolerance must be positive, got %v", o.Tolerance)
	}
	if o.MaxIterations < 0 {
		return invalidParameter("max iterations must be positive, got %d", o.MaxIterations)
	}
	return nil
}

// IvResult is the outcome of one solve. Residual is model price minus market
// price at Volatility. Clamped is set when a Newton step left the bounds and
// was pulled back onto them.
type IvResult struct {
	Volatility float64
	Status     SolveStatus
	Method     string
	Iterations int
	Residual   float64
	Clamped    bool
}

// Err is nil unless the solve did not converge.
func (r IvResult) Err() error {
	if r.Status != NotConverged {
		return nil
	}
	return fmt.Errorf("%w: implied volatility %.6f has residual %.3g after %d %s iterations",
		ErrNonConvergence, r.Volatility, r.Residual, r.Iterations, r.Method)
}

func (r IvResult) String() string {
	return fmt.Sprintf("σ=%.6f (%s via %s, %d iterations, residual %.3g)",
		r.Volatility, r.Status, r.Method, r.Iterations, r.Residual)
}

// ImpliedVolatility backs out the volatility that reproduces a market price
// under Black-Scholes.
type ImpliedVolatility struct {
	spot        float64
	strike      float64
	expiry      float64
	rate        float64
	marketPrice float64
	style       OptionStyle
}

func NewImpliedVolatility(
	spot float64,
	strike float64,
	expiry float64,
	rate float64,
	marketPrice float64,
	style string) (*ImpliedVolatility, error) {

	optionStyle, err := ParseOptionStyle(style)
	if err != nil {
		return nil, err
	}
	// Probe the contract with a nominal volatility so bad S, K, T or r fail
	// here instead of inside the objective.
	if _, err := NewOptionContract(spot, strike, expiry, rate, kDefaultInitialGuess); err != nil {
		return nil, err
	}
	if !isFinite(marketPrice) {
		return nil, invalidParameter("market price must be finite, got %v", marketPrice)
	}
	return &ImpliedVolatility{
		spot:        spot,
		strike:      strike,
		expiry:      expiry,
		rate:        rate,
		marketPrice: marketPrice,
		style:       optionStyle,
	}, nil
}

func (iv *ImpliedVolatility) Style() OptionStyle  { return iv.style }
func (iv *ImpliedVolatility) MarketPrice() float64 { return iv.marketPrice }

// model prices the option at volatility. The contract was validated at
// construction, so only a non-positive volatility can fail.
func (iv *ImpliedVolatility) model(volatility float64) (*BlackScholes, error) {
	return NewBlackScholesFromParams(iv.spot, iv.strike, iv.expiry, iv.rate, volatility)
}

// priceDifference is the root-finding objective f(σ) = model − market.
func (iv *ImpliedVolatility) priceDifference(volatility float64) float64 {
	bs, err := iv.model(volatility)
	if err != nil {
		return math.NaN()
	}
	return bs.Price(iv.style) - iv.marketPrice
}

// Solve tries Brent's method on [Lower, Upper] first. When the market price
// is not bracketed by the model prices at the bounds it falls back to Newton
// iterations on vega from InitialGuess. A non-converged result still carries
// the best volatility found; the error return is only for invalid options.
func (iv *ImpliedVolatility) Solve(opts SolveOptions) (IvResult, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return IvResult{}, err
	}

	root, iterations, err := brentRoot(
		iv.priceDifference, opts.Lower, opts.Upper, kBrentXTol, kBrentMaxIter)
	if err == nil {
		result := IvResult{
			Volatility: root,
			Status:     Converged,
			Method:     MethodBrent,
			Iterations: iterations,
			Residual:   iv.priceDifference(root),
		}
		glog.V(1).Infof("Implied volatility for %s at %.4f: %s",
			iv.style, iv.marketPrice, result)
		return result, nil
	}

	if errors.Is(err, ErrUnbracketedRoot) {
		glog.Infof("Market price %.6f not bracketed on [%g, %g], falling back to Newton: %v",
			iv.marketPrice, opts.Lower, opts.Upper, err)
	} else {
		glog.Warningf("Brent solve failed, falling back to Newton: %v", err)
	}
	return iv.newton(opts), nil
}

// newton runs σ ← σ − diff/(vega·100) with vega quoted per 1% vol. Each
// iterate is clamped to [Lower, Upper]. If the loop stalls or runs out of
// iterations the iterate with the smallest residual is returned.
func (iv *ImpliedVolatility) newton(opts SolveOptions) IvResult {
	result := IvResult{Method: MethodNewton, Status: NotConverged}

	sigma := clamp(opts.InitialGuess, opts.Lower, opts.Upper)
	if sigma != opts.InitialGuess {
		result.Clamped = true
	}

	best := sigma
	bestResidual := math.Inf(1)
	for i := 0; i < opts.MaxIterations; i++ {
		result.Iterations = i + 1
		bs, err := iv.model(sigma)
		if err != nil {
			break
		}
		diff := bs.Price(iv.style) - iv.marketPrice
		vega := bs.Vega(iv.style)
		glog.V(2).Infof("newton iter=%d σ=%.8f diff=%.3g vega=%.6g", i, sigma, diff, vega)

		if math.Abs(diff) < math.Abs(bestResidual) {
			best, bestResidual = sigma, diff
		}
		if math.Abs(diff) < opts.Tolerance {
			result.Status = ConvergedViaFallback
			break
		}
		if vega < kMinVega {
			glog.Infof("Newton stalled at σ=%.6f: vega %.3g below %g", sigma, vega, kMinVega)
			break
		}

		next := sigma - diff/(vega*100)
		if next < opts.Lower || next > opts.Upper || math.IsNaN(next) {
			result.Clamped = true
			if math.IsNaN(next) {
				break
			}
			next = clamp(next, opts.Lower, opts.Upper)
		}
		if next == sigma {
			// Pinned on a bound with the gradient pushing outward.
			break
		}
		sigma = next
	}

	result.Volatility = best
	result.Residual = bestResidual
	if math.IsInf(bestResidual, 1) {
		result.Residual = iv.priceDifference(best)
	}
	if result.Status == NotConverged {
		glog.Warningf("Implied volatility did not converge: %s", result)
	}
	return result
}

// CalculateIv solves with default options and returns the bare volatility.
// A non-converged solve still returns its best estimate with a nil error.
func CalculateIv(
	spot float64,
	strike float64,
	expiry float64,
	rate float64,
	marketPrice float64,
	style string) (float64, error) {

	iv, err := NewImpliedVolatility(spot, strike, expiry, rate, marketPrice, style)
	if err != nil {
		return 0, err
	}
	result, err := iv.Solve(DefaultSolveOptions())
	if err != nil {
		return 0, err
	}
	return result.Volatility, nil
}
