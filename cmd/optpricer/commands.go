package main

import (
	"github.com/spf13/cobra"

	"github.com/joshi-prasad/optpricer"
)

// withContract wraps a subcommand body that needs the command-line
// contract.
func (c *cli) withContract(
	run func(cmd *cobra.Command, contract optpricer.OptionContract) error) func(*cobra.Command, []string) error {

	return func(cmd *cobra.Command, args []string) error {
		contract, err := c.params.contract()
		if err != nil {
			return err
		}
		return run(cmd, contract)
	}
}

func (c *cli) newBlackScholesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bs",
		Short: "Black-Scholes prices and Greeks for the call and the put",
		Args:  cobra.NoArgs,
		RunE: c.withContract(func(cmd *cobra.Command, contract optpricer.OptionContract) error {
			_, err := c.pricer.blackScholes(contract)
			return err
		}),
	}
}

func (c *cli) newMonteCarloCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mc",
		Short: "Monte Carlo prices of the European call and put",
		Args:  cobra.NoArgs,
		RunE: c.withContract(func(cmd *cobra.Command, contract optpricer.OptionContract) error {
			_, _, err := c.pricer.monteCarlo(cmd.Context(), contract, c.pricer.conf.Simulation.Paths)
			return err
		}),
	}
}

func (c *cli) newExoticCmd() *cobra.Command {
	var barrier float64
	var barrierStyle string
	cmd := &cobra.Command{
		Use:   "exotic",
		Short: "Asian, barrier and lookback calls priced on one simulated grid",
		Args:  cobra.NoArgs,
		RunE: c.withContract(func(cmd *cobra.Command, contract optpricer.OptionContract) error {
			_, err := c.pricer.exotics(cmd.Context(), contract, barrier, barrierStyle)
			return err
		}),
	}
	cmd.Flags().Float64Var(&barrier, "barrier", 0, "barrier level, 0 for 110% of spot")
	cmd.Flags().StringVar(&barrierStyle, "barrier-style", optpricer.KnockOut.String(),
		"knock_out or knock_in")
	return cmd
}

func (c *cli) newImpliedVolCmd() *cobra.Command {
	var marketPrice float64
	var style string
	cmd := &cobra.Command{
		Use:   "iv",
		Short: "Implied volatility from a market price",
		Args:  cobra.NoArgs,
		RunE: c.withContract(func(cmd *cobra.Command, contract optpricer.OptionContract) error {
			_, err := c.pricer.impliedVol(contract, style, marketPrice)
			return err
		}),
	}
	cmd.Flags().Float64Var(&marketPrice, "price", 0, "market price of the option")
	cmd.Flags().StringVar(&style, "type", optpricer.Call.String(), "call or put")
	cmd.MarkFlagRequired("price")
	return cmd
}

func (c *cli) newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Black-Scholes against a large Monte Carlo run",
		Args:  cobra.NoArgs,
		RunE: c.withContract(func(cmd *cobra.Command, contract optpricer.OptionContract) error {
			_, err := c.pricer.compare(cmd.Context(), contract)
			return err
		}),
	}
	cmd.Flags().Int("compare-paths", 100000, "paths for the comparison run")
	c.bindFlag(cmd, "compare.paths", "compare-paths")
	return cmd
}

func (c *cli) newLadderCmd() *cobra.Command {
	var csvFile string
	cmd := &cobra.Command{
		Use:   "ladder",
		Short: "Theoretical call and put prices across strikes around the money",
		Args:  cobra.NoArgs,
		RunE: c.withContract(func(cmd *cobra.Command, contract optpricer.OptionContract) error {
			ladder, err := c.pricer.ladder(contract)
			if err != nil || csvFile == "" {
				return err
			}
			return c.pricer.exportLadder(ladder, csvFile)
		}),
	}
	cmd.Flags().StringVar(&csvFile, "csv", "", "also export the ladder to this CSV file")
	cmd.Flags().Int("strikes", 11, "number of strikes")
	cmd.Flags().Float64("step", 5, "distance between strikes")
	c.bindFlag(cmd, "ladder.strikes", "strikes")
	c.bindFlag(cmd, "ladder.step", "step")
	return cmd
}

func (c *cli) newPlotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot",
		Short: "Write PNG charts and an HTML dashboard to the output directory",
		Args:  cobra.NoArgs,
		RunE: c.withContract(func(cmd *cobra.Command, contract optpricer.OptionContract) error {
			_, err := c.pricer.visualize(cmd.Context(), contract)
			return err
		}),
	}
}

func (c *cli) newJournalCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recently journaled prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.pricer.history(days)
			return err
		},
	}
	cmd.Flags().IntVar(&days, "since-days", 7, "how many days back to show")
	return cmd
}

func (c *cli) newMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu (the default)",
		Args:  cobra.NoArgs,
		RunE:  c.runMenu,
	}
}

func (c *cli) runMenu(cmd *cobra.Command, args []string) error {
	return newMenu(c.pricer, c.in, c.out).run(cmd.Context())
}
