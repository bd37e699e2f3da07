package optpricer

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// OptionGreeks holds the price and sensitivities of one side (call or put)
// of a European option.
type OptionGreeks struct {
	Price float64
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64
	Rho   float64
}

// BlackScholesSummary is the full analytic result for both sides of the
// option.
type BlackScholesSummary struct {
	CallPrice float64
	PutPrice  float64
	CallDelta float64
	PutDelta  float64
	Gamma     float64
	CallVega  float64
	PutVega   float64
	CallTheta float64
	PutTheta  float64
	CallRho   float64
	PutRho    float64
}

// BlackScholes prices a European option in closed form. d1, d2 and the
// discount factor are computed once from the contract; every query reuses
// them. Since the contract is immutable the cache cannot go stale.
type BlackScholes struct {
	contract OptionContract

	sqrtT    float64
	a        float64
	d1       float64
	d2       float64
	deflater float64
}

// NewBlackScholes builds the analytic model for a validated contract.
func NewBlackScholes(contract OptionContract) (*BlackScholes, error) {
	if contract.spot <= 0 || contract.strike <= 0 ||
		contract.expiry <= 0 || contract.volatility <= 0 {
		return nil, invalidParameter(
			"black-scholes needs a validated contract, got %+v", contract)
	}

	bs := &BlackScholes{contract: contract}
	bs.sqrtT = math.Sqrt(contract.expiry)

	// 'a' is the standard deviation of log returns over the life of the
	// option, σ√T.
	bs.a = contract.volatility * bs.sqrtT

	// d1 = (ln(S / K) + (r + σ² / 2) * T) / σ√T
	bs.d1 = (math.Log(contract.spot/contract.strike) +
		(contract.rate+math.Pow(contract.volatility, 2)/2)*contract.expiry) /
		bs.a

	// d2 = d1 - σ√T
	bs.d2 = bs.d1 - bs.a

	bs.deflater = contract.Deflater()
	return bs, nil
}

// NewBlackScholesFromParams validates the raw parameters and builds the
// model.
func NewBlackScholesFromParams(
	spot float64,
	strike float64,
	expiry float64,
	rate float64,
	volatility float64) (*BlackScholes, error) {

	contract, err := NewOptionContract(spot, strike, expiry, rate, volatility)
	if err != nil {
		return nil, err
	}
	return NewBlackScholes(contract)
}

func (bs *BlackScholes) Contract() OptionContract { return bs.contract }
func (bs *BlackScholes) D1() float64              { return bs.d1 }
func (bs *BlackScholes) D2() float64              { return bs.d2 }

// CallPrice = S·N(d1) − K·e^(−rT)·N(d2)
func (bs *BlackScholes) CallPrice() float64 {
	return bs.contract.spot*normCdf(bs.d1) -
		bs.contract.strike*bs.deflater*normCdf(bs.d2)
}

// PutPrice = K·e^(−rT)·N(−d2) − S·N(−d1)
func (bs *BlackScholes) PutPrice() float64 {
	return bs.contract.strike*bs.deflater*normCdf(-bs.d2) -
		bs.contract.spot*normCdf(-bs.d1)
}

func (bs *BlackScholes) CallDelta() float64 {
	return normCdf(bs.d1)
}

func (bs *BlackScholes) PutDelta() float64 {
	return normCdf(bs.d1) - 1
}

// Gamma is the rate of change of delta with the underlying. It is the same
// for calls and puts.
func (bs *BlackScholes) Gamma() float64 {
	return normPdf(bs.d1) / (bs.contract.spot * bs.a)
}

// CallVega is reported per one percentage point of volatility.
func (bs *BlackScholes) CallVega() float64 {
	return bs.contract.spot * normPdf(bs.d1) * bs.sqrtT / 100
}

func (bs *BlackScholes) PutVega() float64 {
	return bs.CallVega()
}

// CallTheta is the per-calendar-day decay.
func (bs *BlackScholes) CallTheta() float64 {
	return (bs.timeDecay() -
		bs.contract.rate*bs.contract.strike*bs.deflater*normCdf(bs.d2)) /
		kDaysInYear
}

// PutTheta is the per-calendar-day decay.
func (bs *BlackScholes) PutTheta() float64 {
	return (bs.timeDecay() +
		bs.contract.rate*bs.contract.strike*bs.deflater*normCdf(-bs.d2)) /
		kDaysInYear
}

// CallRho is reported per one percentage point of the rate.
func (bs *BlackScholes) CallRho() float64 {
	return bs.contract.strike * bs.contract.expiry * bs.deflater *
		normCdf(bs.d2) / 100
}

func (bs *BlackScholes) PutRho() float64 {
	return -bs.contract.strike * bs.contract.expiry * bs.deflater *
		normCdf(-bs.d2) / 100
}

func (bs *BlackScholes) Price(style OptionStyle) float64 {
	if style == Put {
		return bs.PutPrice()
	}
	return bs.CallPrice()
}

func (bs *BlackScholes) Delta(style OptionStyle) float64 {
	if style == Put {
		return bs.PutDelta()
	}
	return bs.CallDelta()
}

func (bs *BlackScholes) Vega(style OptionStyle) float64 {
	if style == Put {
		return bs.PutVega()
	}
	return bs.CallVega()
}

func (bs *BlackScholes) Theta(style OptionStyle) float64 {
	if style == Put {
		return bs.PutTheta()
	}
	return bs.CallTheta()
}

func (bs *BlackScholes) Rho(style OptionStyle) float64 {
	if style == Put {
		return bs.PutRho()
	}
	return bs.CallRho()
}

// Greeks collects price and sensitivities for one side of the option.
func (bs *BlackScholes) Greeks(style OptionStyle) OptionGreeks {
	return OptionGreeks{
		Price: bs.Price(style),
		Delta: bs.Delta(style),
		Gamma: bs.Gamma(),
		Vega:  bs.Vega(style),
		Theta: bs.Theta(style),
		Rho:   bs.Rho(style),
	}
}

func (bs *BlackScholes) Summary() BlackScholesSummary {
	return BlackScholesSummary{
		CallPrice: bs.CallPrice(),
		PutPrice:  bs.PutPrice(),
		CallDelta: bs.CallDelta(),
		PutDelta:  bs.PutDelta(),
		Gamma:     bs.Gamma(),
		CallVega:  bs.CallVega(),
		PutVega:   bs.PutVega(),
		CallTheta: bs.CallTheta(),
		PutTheta:  bs.PutTheta(),
		CallRho:   bs.CallRho(),
		PutRho:    bs.PutRho(),
	}
}

// PutCallParityGap measures (C − P) − (S − K·e^(−rT)). It is zero up to
// rounding for any valid contract.
func (bs *BlackScholes) PutCallParityGap() float64 {
	return (bs.CallPrice() - bs.PutPrice()) -
		(bs.contract.spot - bs.contract.strike*bs.deflater)
}

// AllGreeks prices one side of the option from raw parameters.
func AllGreeks(
	spot float64,
	strike float64,
	expiry float64,
	rate float64,
	volatility float64,
	style string) (OptionGreeks, error) {

	optionStyle, err := ParseOptionStyle(style)
	if err != nil {
		return OptionGreeks{}, err
	}
	bs, err := NewBlackScholesFromParams(spot, strike, expiry, rate, volatility)
	if err != nil {
		return OptionGreeks{}, err
	}
	return bs.Greeks(optionStyle), nil
}

// timeDecay is the volatility term of theta, −S·φ(d1)·σ / 2√T.
func (bs *BlackScholes) timeDecay() float64 {
	return -bs.contract.spot * normPdf(bs.d1) * bs.contract.volatility /
		(2 * bs.sqrtT)
}

// normCdf is the standard normal cumulative distribution function.
func normCdf(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// normPdf is the standard normal probability density function.
func normPdf(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
