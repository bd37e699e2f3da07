package optpricer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrentRootFindsSquareRoot(t *testing.T) {
	root, iterations, err := brentRoot(func(x float64) float64 { return x*x - 2 },
		0, 2, kBrentXTol, kBrentMaxIter)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, root, 1e-10)
	assert.Greater(t, iterations, 0)
	assert.LessOrEqual(t, iterations, kBrentMaxIter)
}

func TestBrentRootHandlesDecreasingFunction(t *testing.T) {
	root, _, err := brentRoot(func(x float64) float64 { return math.Cos(x) - x },
		0, 1, kBrentXTol, kBrentMaxIter)
	require.NoError(t, err)
	assert.InDelta(t, 0.7390851332151607, root, 1e-10)
}

func TestBrentRootEndpointIsRoot(t *testing.T) {
	root, iterations, err := brentRoot(func(x float64) float64 { return x - 1 },
		1, 3, kBrentXTol, kBrentMaxIter)
	require.NoError(t, err)
	assert.Equal(t, 1.0, root)
	assert.Equal(t, 0, iterations)
}

func TestBrentRootUnbracketed(t *testing.T) {
	_, _, err := brentRoot(func(x float64) float64 { return x*x + 1 },
		-1, 1, kBrentXTol, kBrentMaxIter)
	assert.ErrorIs(t, err, ErrUnbracketedRoot)
}

func TestBrentRootIterationBudget(t *testing.T) {
	_, iterations, err := brentRoot(func(x float64) float64 { return x*x*x - 5 },
		0, 10, kBrentXTol, 2)
	assert.ErrorIs(t, err, ErrNonConvergence)
	assert.Equal(t, 2, iterations)
}
