package optpricer

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Payoff maps one simulated price path to an undiscounted payoff. Evaluate
// must not modify path.
type Payoff interface {
	Name() string
	Evaluate(path []float64) float64
}

// PayoffFunc adapts a plain function to the Payoff interface.
type PayoffFunc struct {
	Label string
	Fn    func(path []float64) float64
}

func (p PayoffFunc) Name() string                    { return p.Label }
func (p PayoffFunc) Evaluate(path []float64) float64 { return p.Fn(path) }

// EuropeanCall pays max(S_T − K, 0).
type EuropeanCall struct {
	Strike float64
}

func (p EuropeanCall) Name() string { return "european_call" }

func (p EuropeanCall) Evaluate(path []float64) float64 {
	return MaxFloat(path[len(path)-1]-p.Strike, 0)
}

// EuropeanPut pays max(K − S_T, 0).
type EuropeanPut struct {
	Strike float64
}

func (p EuropeanPut) Name() string { return "european_put" }

func (p EuropeanPut) Evaluate(path []float64) float64 {
	return MaxFloat(p.Strike-path[len(path)-1], 0)
}

// AsianCall is an average-price call on the arithmetic mean of the whole
// path, spot included.
type AsianCall struct {
	Strike float64
}

func (p AsianCall) Name() string { return "asian_call" }

func (p AsianCall) Evaluate(path []float64) float64 {
	average := floats.Sum(path) / float64(len(path))
	return MaxFloat(average-p.Strike, 0)
}

// LookbackCall pays the path maximum minus the strike, floored at zero.
type LookbackCall struct {
	Strike float64
}

func (p LookbackCall) Name() string { return "lookback_call" }

func (p LookbackCall) Evaluate(path []float64) float64 {
	return MaxFloat(floats.Max(path)-p.Strike, 0)
}

// BarrierStyle says whether touching the barrier voids or activates the
// call.
type BarrierStyle int

const (
	KnockOut BarrierStyle = iota
	KnockIn
)

func (s BarrierStyle) String() string {
	switch s {
	case KnockOut:
		return "knock_out"
	case KnockIn:
		return "knock_in"
	}
	return "unknown"
}

// ParseBarrierStyle accepts "knock_out" or "knock_in".
func ParseBarrierStyle(name string) (BarrierStyle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "knock_out":
		return KnockOut, nil
	case "knock_in":
		return KnockIn, nil
	}
	return KnockOut, invalidParameter(
		"barrier style must be 'knock_out' or 'knock_in', got %q", name)
}

// BarrierCall is an up-and-out or up-and-in call. A path touches the
// barrier when any simulated price, spot included, reaches or exceeds it.
type BarrierCall struct {
	Strike  float64
	Barrier float64
	Style   BarrierStyle
}

func (p BarrierCall) Name() string { return "barrier_call_" + p.Style.String() }

func (p BarrierCall) Evaluate(path []float64) float64 {
	touched := floats.Max(path) >= p.Barrier
	vanilla := MaxFloat(path[len(path)-1]-p.Strike, 0)
	switch p.Style {
	case KnockIn:
		if touched {
			return vanilla
		}
		return 0
	default:
		if touched {
			return 0
		}
		return vanilla
	}
}
