package optpricer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionContractRejectsDegenerateInputs(t *testing.T) {
	tests := []struct {
		name                    string
		spot, strike, expiry, r float64
		vol                     float64
	}{
		{"zero spot", 0, 100, 1, 0.05, 0.2},
		{"zero strike", 100, 0, 1, 0.05, 0.2},
		{"zero expiry", 100, 100, 0, 0.05, 0.2},
		{"zero volatility", 100, 100, 1, 0.05, 0},
		{"negative spot", -1, 100, 1, 0.05, 0.2},
		{"NaN strike", 100, math.NaN(), 1, 0.05, 0.2},
		{"infinite expiry", 100, 100, math.Inf(1), 0.05, 0.2},
		{"NaN rate", 100, 100, 1, math.NaN(), 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOptionContract(tt.spot, tt.strike, tt.expiry, tt.r, tt.vol)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestNewOptionContractAcceptsNegativeRate(t *testing.T) {
	contract, err := NewOptionContract(100, 95, 0.5, -0.01, 0.3)
	require.NoError(t, err)
	assert.Equal(t, -0.01, contract.Rate())
	assert.InDelta(t, math.Exp(0.005), contract.Deflater(), 1e-15)
}

func TestContractCopiesDoNotMutate(t *testing.T) {
	contract, err := NewOptionContract(100, 100, 1, 0.05, 0.2)
	require.NoError(t, err)

	moved, err := contract.WithSpot(120)
	require.NoError(t, err)
	revalued, err := contract.WithVolatility(0.4)
	require.NoError(t, err)

	assert.Equal(t, 100.0, contract.Spot())
	assert.Equal(t, 0.2, contract.Volatility())
	assert.Equal(t, 120.0, moved.Spot())
	assert.Equal(t, 0.4, revalued.Volatility())

	_, err = contract.WithStrike(-5)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestParseOptionStyle(t *testing.T) {
	style, err := ParseOptionStyle("CALL")
	require.NoError(t, err)
	assert.Equal(t, Call, style)

	style, err = ParseOptionStyle(" put ")
	require.NoError(t, err)
	assert.Equal(t, Put, style)

	_, err = ParseOptionStyle("straddle")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestYearsFromDays(t *testing.T) {
	assert.Equal(t, 1.0, YearsFromDays(365))
	assert.InDelta(t, 0.0821917808, YearsFromDays(30), 1e-10)
}
