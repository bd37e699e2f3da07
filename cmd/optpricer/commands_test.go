package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshi-prasad/optpricer"
)

func runCommand(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(input), &out)
	root.SetErr(&bytes.Buffer{})
	if args == nil {
		// cobra falls back to os.Args on a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBlackScholesCommand(t *testing.T) {
	out, err := runCommand(t, "", "bs", "--days", "365")
	require.NoError(t, err)
	assert.Contains(t, out, "BLACK-SCHOLES PRICING")
	assert.Contains(t, out, "10.4506")
	assert.Contains(t, out, "5.5735")
}

func TestBlackScholesCommandRejectsBadContract(t *testing.T) {
	_, err := runCommand(t, "", "bs", "--vol", "0")
	assert.ErrorIs(t, err, optpricer.ErrInvalidParameter)

	_, err = runCommand(t, "", "bs", "--paths", "0")
	assert.ErrorIs(t, err, optpricer.ErrInvalidParameter)
}

func TestMonteCarloCommand(t *testing.T) {
	out, err := runCommand(t, "", "mc", "--paths", "2000", "--steps", "10", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "MONTE CARLO PRICING (2000 paths)")
	assert.Contains(t, out, "Terminal prices over 2000 paths")
}

func TestExoticCommand(t *testing.T) {
	out, err := runCommand(t, "", "exotic", "--paths", "1000", "--steps", "10",
		"--seed", "3", "--barrier", "120", "--barrier-style", "knock_in")
	require.NoError(t, err)
	assert.Contains(t, out, "Asian call")
	assert.Contains(t, out, "knock_in @ 120.00")
	assert.Contains(t, out, "Lookback call")

	_, err = runCommand(t, "", "exotic", "--barrier-style", "sideways")
	assert.ErrorIs(t, err, optpricer.ErrInvalidParameter)
}

func TestImpliedVolCommand(t *testing.T) {
	out, err := runCommand(t, "", "iv", "--price", "3.0626001437287442", "--vol", "0.25")
	require.NoError(t, err)
	assert.Contains(t, out, "IMPLIED VOLATILITY")
	assert.Contains(t, out, "25.0000%")
	assert.Contains(t, out, "converged")
	assert.Contains(t, out, "brent")

	out, err = runCommand(t, "", "iv", "--price", "5", "--strike", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "not_converged")
	assert.Contains(t, out, "newton")

	_, err = runCommand(t, "", "iv")
	assert.Error(t, err)
}

func TestCompareCommand(t *testing.T) {
	out, err := runCommand(t, "", "compare", "--compare-paths", "5000",
		"--steps", "5", "--seed", "11")
	require.NoError(t, err)
	assert.Contains(t, out, "COMPARISON: BLACK-SCHOLES vs MONTE CARLO (5000 paths)")
	assert.Contains(t, out, "Within 95% CI")
}

func TestLadderCommand(t *testing.T) {
	out, err := runCommand(t, "", "ladder", "--spot", "102", "--strikes", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "THEORETICAL STRIKE LADDER")
	assert.Contains(t, out, "*100.00")
	assert.Contains(t, out, "110.00")
	assert.NotContains(t, out, "115.00")

	file := filepath.Join(t.TempDir(), "ladder.csv")
	out, err = runCommand(t, "", "ladder", "--strikes", "3", "--csv", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Ladder exported to")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 4)
}

func TestPlotCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	out, err := runCommand(t, "", "plot", "--out", dir, "--seed", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	_, err = os.Stat(filepath.Join(dir, "dashboard.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "payoff.png"))
	assert.NoError(t, err)
}

func TestJournalCommand(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "prices.csv")

	_, err := runCommand(t, "", "journal")
	assert.ErrorIs(t, err, optpricer.ErrInvalidParameter)

	_, err = runCommand(t, "", "bs", "--journal", journal)
	require.NoError(t, err)
	_, err = runCommand(t, "", "mc", "--paths", "500", "--steps", "5", "--journal", journal)
	require.NoError(t, err)

	out, err := runCommand(t, "", "journal", "--journal", journal)
	require.NoError(t, err)
	assert.Contains(t, out, "PRICING JOURNAL (last 7 days)")
	assert.Contains(t, out, "european_call")
	assert.Contains(t, out, "Latest: monte_carlo european_put")

	records := optpricer.NewPricingJournal(journal)
	require.NoError(t, records.ReadFile())
	require.Len(t, records.Records(), 4)
	first, last := records.Records()[0], records.Records()[3]
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, first.RunID, records.Records()[1].RunID)
	assert.NotEqual(t, first.RunID, last.RunID)
}

func TestMenuPricesAndExits(t *testing.T) {
	input := "100\n100\n30\n0.05\n0.2\n1\n8\n"
	out, err := runCommand(t, input, "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "OPTIONS PRICING CALCULATOR")
	assert.Contains(t, out, "Parameters accepted")
	assert.Contains(t, out, "BLACK-SCHOLES PRICING")
	assert.Contains(t, out, "Goodbye")
}

func TestMenuRecoversFromBadInput(t *testing.T) {
	input := "abc\n100\n100\n30\n0.05\n0\n" + // zero volatility is rejected
		"100\n100\n30\n0.05\n0.2\n" +
		"9\n" +
		"3\ncall\n2.4\n"
	out, err := runCommand(t, input)
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid input. Please enter numbers only.")
	assert.Contains(t, out, "ERROR:")
	assert.Contains(t, out, "Invalid choice")
	assert.Contains(t, out, "IMPLIED VOLATILITY")
	assert.NotContains(t, out, "Goodbye")
}

func TestMenuStopsOnEmptyInput(t *testing.T) {
	out, err := runCommand(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "INPUT YOUR PARAMETERS")
}
