package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshi-prasad/optpricer"
)

func main() {
	flag.Set("alsologtostderr", "true")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx)
	stop()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

// contractParams are the option parameters given on the command line.
// Expiry is entered in calendar days.
type contractParams struct {
	spot   float64
	strike float64
	days   float64
	rate   float64
	vol    float64
}

func (p contractParams) contract() (optpricer.OptionContract, error) {
	return optpricer.NewOptionContract(
		p.spot, p.strike, optpricer.YearsFromDays(p.days), p.rate, p.vol)
}

type cli struct {
	v          *viper.Viper
	configFile string
	params     contractParams

	in     io.Reader
	out    io.Writer
	pricer *pricer
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{v: newViper(), in: in, out: out}

	root := &cobra.Command{
		Use:   "optpricer",
		Short: "Price European and path-dependent options",
		Long: "optpricer prices European options with Black-Scholes, simulates " +
			"geometric Brownian motion for Monte Carlo and exotic payoffs, and " +
			"backs out implied volatility. Without a subcommand it starts the " +
			"interactive menu.",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.runMenu,
	}
	root.SetIn(in)
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (yaml, toml or json)")
	flags.Float64Var(&c.params.spot, "spot", 100, "underlying price S")
	flags.Float64Var(&c.params.strike, "strike", 100, "strike price K")
	flags.Float64Var(&c.params.days, "days", 30, "calendar days to expiry")
	flags.Float64Var(&c.params.rate, "rate", 0.05, "annual risk-free rate, 0.05 for 5%")
	flags.Float64Var(&c.params.vol, "vol", 0.2, "annual volatility, 0.20 for 20%")

	flags.Int("paths", optpricer.DefaultNumPaths, "simulated paths")
	flags.Int("steps", optpricer.DefaultNumSteps, "time steps per path")
	flags.Uint64("seed", 0, "simulation seed, 0 for a fresh seed per run")
	flags.Int("workers", runtime.GOMAXPROCS(0), "path generation goroutines")
	flags.String("out", "charts", "chart output directory")
	flags.String("journal", "", "CSV file that every priced instrument is appended to")
	c.bindFlag(root, "simulation.paths", "paths")
	c.bindFlag(root, "simulation.steps", "steps")
	c.bindFlag(root, "simulation.seed", "seed")
	c.bindFlag(root, "simulation.workers", "workers")
	c.bindFlag(root, "output.dir", "out")
	c.bindFlag(root, "output.journal", "journal")

	// -v, -logtostderr, -log_dir and friends.
	flags.AddGoFlagSet(flag.CommandLine)

	root.AddCommand(
		c.newBlackScholesCmd(),
		c.newMonteCarloCmd(),
		c.newExoticCmd(),
		c.newImpliedVolCmd(),
		c.newCompareCmd(),
		c.newLadderCmd(),
		c.newPlotCmd(),
		c.newJournalCmd(),
		c.newMenuCmd(),
	)
	return root
}

func (c *cli) bindFlag(cmd *cobra.Command, key string, name string) {
	pf := cmd.PersistentFlags().Lookup(name)
	if pf == nil {
		pf = cmd.Flags().Lookup(name)
	}
	if err := c.v.BindPFlag(key, pf); err != nil {
		glog.Fatalf("Failed to bind flag %s to %s: %v", name, key, err)
	}
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	// glog checks that the Go flag set was parsed; pflag already filled it.
	if !flag.Parsed() {
		flag.CommandLine.Parse([]string{})
	}

	conf, err := loadConfig(c.v, c.configFile)
	if err != nil {
		return err
	}
	c.pricer, err = newPricer(conf, c.out)
	return err
}
