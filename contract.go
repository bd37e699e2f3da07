package optpricer

import (
	"strings"
)

const (
	kDaysInYear = 365.0
)

// OptionStyle selects the call or put side of a European option.
type OptionStyle int

const (
	Call OptionStyle = iota
	Put
)

func (s OptionStyle) String() string {
	switch s {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return "unknown"
}

// ParseOptionStyle accepts "call" or "put" in any case.
func ParseOptionStyle(name string) (OptionStyle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	}
	return Call, invalidParameter(
		"option style must be 'call' or 'put', got %q", name)
}

// OptionContract is the immutable parameter tuple shared by the analytic
// model, the path simulator and the implied volatility solver. Any change
// to a parameter produces a new contract.
type OptionContract struct {
	spot       float64
	strike     float64
	expiry     float64
	rate       float64
	volatility float64
}

// NewOptionContract validates the tuple. Spot, strike, expiry (years) and
// volatility must be strictly positive; the rate may take any sign.
func NewOptionContract(
	spot float64,
	strike float64,
	expiry float64,
	rate float64,
	volatility float64) (OptionContract, error) {

	if err := validatePositive("spot", spot); err != nil {
		return OptionContract{}, err
	}
	if err := validatePositive("strike", strike); err != nil {
		return OptionContract{}, err
	}
	if err := validatePositive("expiry", expiry); err != nil {
		return OptionContract{}, err
	}
	if !isFinite(rate) {
		return OptionContract{}, invalidParameter(
			"rate must be finite, got %v", rate)
	}
	if err := validatePositive("volatility", volatility); err != nil {
		return OptionContract{}, err
	}
	return OptionContract{
		spot:       spot,
		strike:     strike,
		expiry:     expiry,
		rate:       rate,
		volatility: volatility,
	}, nil
}

func (c OptionContract) Spot() float64       { return c.spot }
func (c OptionContract) Strike() float64     { return c.strike }
func (c OptionContract) Expiry() float64     { return c.expiry }
func (c OptionContract) Rate() float64       { return c.rate }
func (c OptionContract) Volatility() float64 { return c.volatility }

// WithVolatility returns a copy of the contract priced at another
// volatility.
func (c OptionContract) WithVolatility(volatility float64) (OptionContract, error) {
	return NewOptionContract(c.spot, c.strike, c.expiry, c.rate, volatility)
}

// WithSpot returns a copy of the contract at another underlying price.
func (c OptionContract) WithSpot(spot float64) (OptionContract, error) {
	return NewOptionContract(spot, c.strike, c.expiry, c.rate, c.volatility)
}

// WithStrike returns a copy of the contract at another strike.
func (c OptionContract) WithStrike(strike float64) (OptionContract, error) {
	return NewOptionContract(c.spot, strike, c.expiry, c.rate, c.volatility)
}

// Deflater is the discount factor e^(-rT).
func (c OptionContract) Deflater() float64 {
	return discountFactor(c.rate, c.expiry)
}

// YearsFromDays converts calendar days to expiry into years.
func YearsFromDays(days float64) float64 {
	return days / kDaysInYear
}

func validatePositive(name string, value float64) error {
	if !isFinite(value) || value <= 0 {
		return invalidParameter("%s must be positive, got %v", name, value)
	}
	return nil
}
