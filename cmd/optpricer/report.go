package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/joshi-prasad/optpricer"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	noteColor    = color.New(color.FgYellow)
)

func printHeading(w io.Writer, title string) {
	rule := strings.Repeat("=", 60)
	headingColor.Fprintln(w, "\n"+rule)
	headingColor.Fprintln(w, title)
	headingColor.Fprintln(w, rule)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func fmtFloat(value float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, value)
}

func printContract(w io.Writer, contract optpricer.OptionContract) {
	fmt.Fprintf(w, "S=%.2f  K=%.2f  T=%.4fy (%.0f days)  r=%.4f  σ=%.4f\n",
		contract.Spot(), contract.Strike(), contract.Expiry(),
		math.Round(contract.Expiry()*365), contract.Rate(), contract.Volatility())
}

func printBlackScholes(w io.Writer, bs *optpricer.BlackScholes) {
	printHeading(w, "BLACK-SCHOLES PRICING")
	printContract(w, bs.Contract())

	call := bs.Greeks(optpricer.Call)
	put := bs.Greeks(optpricer.Put)
	table := newTable(w, "", "Price", "Delta", "Gamma", "Vega (1%)", "Theta (day)", "Rho (1%)")
	for _, row := range []struct {
		name   string
		greeks optpricer.OptionGreeks
	}{{"CALL", call}, {"PUT", put}} {
		table.Append([]string{
			row.name,
			fmtFloat(row.greeks.Price, 4),
			fmtFloat(row.greeks.Delta, 4),
			fmtFloat(row.greeks.Gamma, 6),
			fmtFloat(row.greeks.Vega, 4),
			fmtFloat(row.greeks.Theta, 4),
			fmtFloat(row.greeks.Rho, 4),
		})
	}
	table.Render()
	fmt.Fprintf(w, "Put-call parity gap: %.2e\n", bs.PutCallParityGap())
}

type namedEstimate struct {
	name     string
	estimate optpricer.PricingEstimate
}

func printEstimates(w io.Writer, title string, estimates []namedEstimate) {
	printHeading(w, title)
	table := newTable(w, "Instrument", "Price", "Std Error", "95% CI low", "95% CI high")
	for _, named := range estimates {
		table.Append([]string{
			named.name,
			fmtFloat(named.estimate.Price, 4),
			fmtFloat(named.estimate.StandardError, 4),
			fmtFloat(named.estimate.Lower(), 4),
			fmtFloat(named.estimate.Upper(), 4),
		})
	}
	table.Render()
}

func printTerminalSummary(w io.Writer, summary optpricer.TerminalSummary) {
	fmt.Fprintf(w, "Terminal prices over %d paths: mean %.4f, std %.4f, "+
		"min %.4f, p5 %.4f, p50 %.4f, p95 %.4f, max %.4f\n",
		summary.Count, summary.Mean, summary.StdDev, summary.Min,
		summary.P5, summary.P50, summary.P95, summary.Max)
}

// comparison is one analytic price set against a simulated estimate.
type comparison struct {
	name     string
	analytic float64
	estimate optpricer.PricingEstimate
}

func (c comparison) difference() float64 {
	return math.Abs(c.analytic - c.estimate.Price)
}

func (c comparison) withinInterval() bool {
	return c.estimate.Contains(c.analytic)
}

func printComparison(w io.Writer, paths int, rows []comparison) {
	printHeading(w, fmt.Sprintf("COMPARISON: BLACK-SCHOLES vs MONTE CARLO (%d paths)", paths))
	table := newTable(w, "Option", "Black-Scholes", "Monte Carlo", "Std Error",
		"Difference", "Diff %", "Within 95% CI")
	for _, row := range rows {
		diffPct := 0.0
		if row.analytic != 0 {
			diffPct = row.difference() / row.analytic * 100
		}
		verdict := failColor.Sprint("✗")
		if row.withinInterval() {
			verdict = okColor.Sprint("✓")
		}
		table.Append([]string{
			row.name,
			fmtFloat(row.analytic, 4),
			fmtFloat(row.estimate.Price, 4),
			fmtFloat(row.estimate.StandardError, 4),
			fmtFloat(row.difference(), 4),
			fmtFloat(diffPct, 2),
			verdict,
		})
	}
	table.Render()
}

func printImpliedVol(w io.Writer, result optpricer.IvResult, inputVol float64) {
	printHeading(w, "IMPLIED VOLATILITY")
	table := newTable(w, "Implied Vol", "Input Vol", "Difference", "Status",
		"Method", "Iterations", "Residual")
	table.Append([]string{
		fmtFloat(result.Volatility*100, 4) + "%",
		fmtFloat(inputVol*100, 4) + "%",
		fmtFloat(math.Abs(result.Volatility-inputVol)*100, 4) + "%",
		result.Status.String(),
		result.Method,
		fmt.Sprint(result.Iterations),
		fmt.Sprintf("%.3g", result.Residual),
	})
	table.Render()
	if result.Clamped {
		noteColor.Fprintln(w, "Note: the fallback iteration was clamped to the volatility bounds.")
	}
	if err := result.Err(); err != nil {
		failColor.Fprintln(w, "Warning:", err)
	}
}

func printJournal(w io.Writer, records []optpricer.PricingRecord) {
	table := newTable(w, "Timestamp", "Method", "Instrument", "S", "K", "T", "σ",
		"Price", "Std Error")
	for _, record := range records {
		table.Append([]string{
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.Method,
			record.Instrument,
			fmtFloat(record.Spot, 2),
			fmtFloat(record.Strike, 2),
			fmtFloat(record.Expiry, 4),
			fmtFloat(record.Volatility, 4),
			fmtFloat(record.Price, 4),
			fmtFloat(record.StandardError, 4),
		})
	}
	table.Render()
}
