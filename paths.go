package optpricer

import (
	"gonum.org/v1/gonum/mat"
)

// PathGrid is the result of one path generation: numPaths rows of
// numSteps+1 prices, column 0 being the spot. A grid is owned by the call
// that produced it; payoff evaluation only reads it.
type PathGrid struct {
	prices *mat.Dense
	seed   uint64
}

func newPathGrid(numPaths int, numSteps int, seed uint64) *PathGrid {
	return &PathGrid{
		prices: mat.NewDense(numPaths, numSteps+1, nil),
		seed:   seed,
	}
}

func (g *PathGrid) NumPaths() int {
	rows, _ := g.prices.Dims()
	return rows
}

func (g *PathGrid) NumSteps() int {
	_, cols := g.prices.Dims()
	return cols - 1
}

// Seed is the base seed the grid was generated from. Regenerating with the
// same seed and engine parameters reproduces the grid.
func (g *PathGrid) Seed() uint64 {
	return g.seed
}

func (g *PathGrid) At(path int, step int) float64 {
	return g.prices.At(path, step)
}

// Path returns a copy of one simulated path.
func (g *PathGrid) Path(i int) []float64 {
	return mat.Row(nil, i, g.prices)
}

// Terminal returns the final price of path i.
func (g *PathGrid) Terminal(i int) float64 {
	_, cols := g.prices.Dims()
	return g.prices.At(i, cols-1)
}

// TerminalPrices returns the last column of the grid.
func (g *PathGrid) TerminalPrices() []float64 {
	_, cols := g.prices.Dims()
	return mat.Col(nil, cols-1, g.prices)
}

// Matrix exposes the grid as a read-only matrix view.
func (g *PathGrid) Matrix() mat.Matrix {
	return g.prices
}

// row returns the backing slice of path i. Callers must not modify it.
func (g *PathGrid) row(i int) []float64 {
	return g.prices.RawRowView(i)
}
