package optpricer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// Two-sided 95% normal quantile used for Monte Carlo confidence
	// intervals.
	kConfidenceZ = 1.96
)

// PricingEstimate is a Monte Carlo price with its sampling error.
type PricingEstimate struct {
	Price              float64
	StandardError      float64
	ConfidenceInterval [2]float64
}

// newPricingEstimate discounts the mean payoff and derives the standard
// error from the population standard deviation of the payoffs.
func newPricingEstimate(payoffs []float64, deflater float64) PricingEstimate {
	mean, std := stat.PopMeanStdDev(payoffs, nil)
	price := deflater * mean
	stdErr := std / math.Sqrt(float64(len(payoffs)))
	return PricingEstimate{
		Price:         price,
		StandardError: stdErr,
		ConfidenceInterval: [2]float64{
			price - kConfidenceZ*stdErr,
			price + kConfidenceZ*stdErr,
		},
	}
}

func (e PricingEstimate) Lower() float64 { return e.ConfidenceInterval[0] }
func (e PricingEstimate) Upper() float64 { return e.ConfidenceInterval[1] }

// Contains reports whether value lies inside the 95% interval.
func (e PricingEstimate) Contains(value float64) bool {
	return value >= e.ConfidenceInterval[0] && value <= e.ConfidenceInterval[1]
}

func (e PricingEstimate) Width() float64 {
	return e.ConfidenceInterval[1] - e.ConfidenceInterval[0]
}

func (e PricingEstimate) String() string {
	return fmt.Sprintf("%.4f ± %.4f (95%% CI %.4f, %.4f)",
		e.Price, e.StandardError,
		e.ConfidenceInterval[0], e.ConfidenceInterval[1])
}
