package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/joshi-prasad/optpricer"
	"github.com/joshi-prasad/optpricer/visual"
)

const (
	kMethodBlackScholes = "black_scholes"
	kMethodMonteCarlo   = "monte_carlo"
	kMethodImpliedVol   = "implied_vol"

	// Barrier level used when none is given, as a multiple of spot.
	kDefaultBarrierRatio = 1.1
)

// pricer runs the pricing actions shared by the subcommands and the menu.
type pricer struct {
	conf    *Config
	out     io.Writer
	journal *optpricer.PricingJournal
	runID   string
	now     func() time.Time
}

func newPricer(conf *Config, out io.Writer) (*pricer, error) {
	p := &pricer{conf: conf, out: out, runID: uuid.NewString(), now: time.Now}
	if conf.Output.Journal != "" {
		p.journal = optpricer.NewPricingJournal(conf.Output.Journal)
		if err := p.journal.ReadFile(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *pricer) record(record *optpricer.PricingRecord) {
	if p.journal == nil {
		return
	}
	record.RunID = p.runID
	if err := p.journal.AppendToFile(record); err != nil {
		glog.Errorf("Failed to journal %s: %v", record.Instrument, err)
	}
}

func (p *pricer) newMonteCarlo(
	contract optpricer.OptionContract, numPaths int) (*optpricer.MonteCarlo, error) {

	return optpricer.NewMonteCarlo(contract, numPaths, p.conf.Simulation.Steps,
		p.conf.monteCarloOptions()...)
}

func (p *pricer) blackScholes(contract optpricer.OptionContract) (*optpricer.BlackScholes, error) {
	bs, err := optpricer.NewBlackScholes(contract)
	if err != nil {
		return nil, err
	}
	printBlackScholes(p.out, bs)

	now := p.now()
	p.record(optpricer.NewAnalyticRecord(kMethodBlackScholes, "european_call",
		contract, bs.CallPrice(), now))
	p.record(optpricer.NewAnalyticRecord(kMethodBlackScholes, "european_put",
		contract, bs.PutPrice(), now))
	return bs, nil
}

// monteCarlo prices the European call and put on one shared grid.
func (p *pricer) monteCarlo(
	ctx context.Context,
	contract optpricer.OptionContract,
	numPaths int) (call optpricer.PricingEstimate, put optpricer.PricingEstimate, err error) {

	mc, err := p.newMonteCarlo(contract, numPaths)
	if err != nil {
		return call, put, err
	}
	estimates, grid, err := mc.EstimateAll(ctx,
		optpricer.EuropeanCall{Strike: contract.Strike()},
		optpricer.EuropeanPut{Strike: contract.Strike()})
	if err != nil {
		return call, put, err
	}
	call, put = estimates[0], estimates[1]

	printEstimates(p.out, fmt.Sprintf("MONTE CARLO PRICING (%d paths)", numPaths),
		[]namedEstimate{{"CALL", call}, {"PUT", put}})
	if summary, err := optpricer.SummarizeTerminal(grid); err == nil {
		printTerminalSummary(p.out, summary)
	}

	now := p.now()
	p.record(optpricer.NewEstimateRecord(kMethodMonteCarlo, "european_call", contract, call, now))
	p.record(optpricer.NewEstimateRecord(kMethodMonteCarlo, "european_put", contract, put, now))
	return call, put, nil
}

// exotics prices the path-dependent calls. barrierLevel <= 0 means 110% of
// spot.
func (p *pricer) exotics(
	ctx context.Context,
	contract optpricer.OptionContract,
	barrierLevel float64,
	barrierStyle string) ([]optpricer.PricingEstimate, error) {

	if barrierLevel <= 0 {
		barrierLevel = contract.Spot() * kDefaultBarrierRatio
	}
	style, err := optpricer.ParseBarrierStyle(barrierStyle)
	if err != nil {
		return nil, err
	}
	mc, err := p.newMonteCarlo(contract, p.conf.Simulation.Paths)
	if err != nil {
		return nil, err
	}

	payoffs := []optpricer.Payoff{
		optpricer.AsianCall{Strike: contract.Strike()},
		optpricer.BarrierCall{Strike: contract.Strike(), Barrier: barrierLevel, Style: style},
		optpricer.LookbackCall{Strike: contract.Strike()},
	}
	estimates, _, err := mc.EstimateAll(ctx, payoffs...)
	if err != nil {
		return nil, err
	}

	named := []namedEstimate{
		{"Asian call (average price)", estimates[0]},
		{fmt.Sprintf("Barrier call (%s @ %.2f)", style, barrierLevel), estimates[1]},
		{"Lookback call (path maximum)", estimates[2]},
	}
	printEstimates(p.out, "EXOTIC OPTIONS (Monte Carlo)", named)

	now := p.now()
	for ii, payoff := range payoffs {
		p.record(optpricer.NewEstimateRecord(kMethodMonteCarlo, payoff.Name(),
			contract, estimates[ii], now))
	}
	return estimates, nil
}

func (p *pricer) impliedVol(
	contract optpricer.OptionContract,
	style string,
	marketPrice float64) (optpricer.IvResult, error) {

	iv, err := optpricer.NewImpliedVolatility(contract.Spot(), contract.Strike(),
		contract.Expiry(), contract.Rate(), marketPrice, style)
	if err != nil {
		return optpricer.IvResult{}, err
	}
	result, err := iv.Solve(p.conf.solveOptions())
	if err != nil {
		return optpricer.IvResult{}, err
	}
	printImpliedVol(p.out, result, contract.Volatility())

	if solved, err := contract.WithVolatility(result.Volatility); err == nil {
		p.record(optpricer.NewAnalyticRecord(kMethodImpliedVol, "european_"+iv.Style().String(),
			solved, marketPrice, p.now()))
	}
	return result, nil
}

// compare prints the analytic prices and a simulation with compare.paths
// paths, then checks each analytic price against the 95% interval.
func (p *pricer) compare(
	ctx context.Context, contract optpricer.OptionContract) ([]comparison, error) {

	bs, err := p.blackScholes(contract)
	if err != nil {
		return nil, err
	}
	call, put, err := p.monteCarlo(ctx, contract, p.conf.Compare.Paths)
	if err != nil {
		return nil, err
	}
	rows := []comparison{
		{name: "CALL", analytic: bs.CallPrice(), estimate: call},
		{name: "PUT", analytic: bs.PutPrice(), estimate: put},
	}
	printComparison(p.out, p.conf.Compare.Paths, rows)
	return rows, nil
}

func (p *pricer) ladder(contract optpricer.OptionContract) (*optpricer.StrikeLadder, error) {
	ladder, err := optpricer.NewStrikeLadder(contract, p.conf.Ladder.Step, p.conf.Ladder.Strikes)
	if err != nil {
		return nil, err
	}
	printHeading(p.out, "THEORETICAL STRIKE LADDER")
	ladder.PrintTable(p.out)
	return ladder, nil
}

func (p *pricer) exportLadder(ladder *optpricer.StrikeLadder, file string) error {
	out, err := os.Create(file)
	if err != nil {
		msg := fmt.Sprintf("Failed to create %s: %v", file, err)
		glog.Error(msg)
		return err
	}
	defer out.Close()

	if err := ladder.WriteCSV(out); err != nil {
		return err
	}
	fmt.Fprintln(p.out, "Ladder exported to", file)
	return nil
}

func (p *pricer) visualize(
	ctx context.Context, contract optpricer.OptionContract) ([]string, error) {

	v, err := visual.NewVisualizer(contract, p.conf.Output.Dir)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(p.out, "\nGenerating visualizations... This may take a moment.")
	files, err := v.RenderAll(ctx, p.conf.monteCarloOptions()...)
	if err != nil {
		return files, err
	}
	for _, file := range files {
		fmt.Fprintln(p.out, "  wrote", file)
	}
	return files, nil
}

// history prints the journal entries of the last numDays days.
func (p *pricer) history(numDays int) ([]optpricer.PricingRecord, error) {
	if p.journal == nil {
		return nil, configError("no journal configured, set output.journal or --journal")
	}
	records, err := p.journal.GetRecordsForDateRange(p.now(), numDays)
	if err != nil {
		return nil, err
	}
	printHeading(p.out, fmt.Sprintf("PRICING JOURNAL (last %d days)", numDays))
	printJournal(p.out, records)
	if latest := p.journal.GetLatestRecord(); latest != nil {
		fmt.Fprintf(p.out, "Latest: %s %s at %.4f\n",
			latest.Method, latest.Instrument, latest.Price)
	}
	return records, nil
}
