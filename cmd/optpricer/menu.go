package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/joshi-prasad/optpricer"
)

const (
	// The menu's Monte Carlo choice uses a larger run than the default.
	kMenuMonteCarloPaths = 50000
)

type menu struct {
	pricer   *pricer
	in       *bufio.Reader
	out      io.Writer
	contract optpricer.OptionContract
}

func newMenu(p *pricer, in io.Reader, out io.Writer) *menu {
	return &menu{
		pricer: p,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

func (m *menu) printBanner() {
	banner := color.New(color.FgHiWhite, color.BgBlue, color.Bold)
	line := strings.Repeat(" ", 60)
	banner.Fprintln(m.out, line)
	banner.Fprintf(m.out, "%-60s\n", "  OPTIONS PRICING CALCULATOR")
	banner.Fprintf(m.out, "%-60s\n", "  Black-Scholes | Monte Carlo | Implied Vol")
	banner.Fprintln(m.out, line)
}

func (m *menu) printChoices() {
	printHeading(m.out, "OPTIONS PRICER - MAIN MENU")
	fmt.Fprintln(m.out, "1. Price with Black-Scholes")
	fmt.Fprintln(m.out, "2. Price with Monte Carlo")
	fmt.Fprintln(m.out, "3. Calculate Implied Volatility")
	fmt.Fprintln(m.out, "4. Price Exotic Options")
	fmt.Fprintln(m.out, "5. Compare Black-Scholes vs Monte Carlo")
	fmt.Fprintln(m.out, "6. Visualize (PNG charts and HTML dashboard)")
	fmt.Fprintln(m.out, "7. Input new parameters")
	fmt.Fprintln(m.out, "8. Exit")
}

// run asks for parameters, then serves menu choices until exit or end of
// input.
func (m *menu) run(ctx context.Context) error {
	m.printBanner()
	if err := m.readParameters(); err != nil {
		return ignoreEOF(err)
	}

	for {
		m.printChoices()
		choice, err := m.readLine("\nSelect option (1-8): ")
		if err != nil {
			return ignoreEOF(err)
		}

		switch choice {
		case "1":
			_, err = m.pricer.blackScholes(m.contract)
		case "2":
			_, _, err = m.pricer.monteCarlo(ctx, m.contract, kMenuMonteCarloPaths)
		case "3":
			err = m.impliedVol()
		case "4":
			_, err = m.pricer.exotics(ctx, m.contract, 0, optpricer.KnockOut.String())
		case "5":
			_, err = m.pricer.compare(ctx, m.contract)
		case "6":
			_, err = m.pricer.visualize(ctx, m.contract)
		case "7":
			err = m.readParameters()
		case "8":
			fmt.Fprintln(m.out, "\nExiting... Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please try again.")
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failColor.Fprintln(m.out, "ERROR:", err)
		}
	}
}

// readParameters prompts until the five inputs form a valid contract.
func (m *menu) readParameters() error {
	printHeading(m.out, "OPTIONS PRICER - INPUT YOUR PARAMETERS")
	for {
		spot, err := m.readFloat("Stock Price (S) [e.g., 100]: ")
		if err != nil {
			return err
		}
		strike, err := m.readFloat("Strike Price (K) [e.g., 100]: ")
		if err != nil {
			return err
		}
		days, err := m.readFloat("Days to Expiration [e.g., 30]: ")
		if err != nil {
			return err
		}
		rate, err := m.readFloat("Risk-free Rate [e.g., 0.05 for 5%]: ")
		if err != nil {
			return err
		}
		vol, err := m.readFloat("Volatility [e.g., 0.20 for 20%]: ")
		if err != nil {
			return err
		}

		contract, err := optpricer.NewOptionContract(
			spot, strike, optpricer.YearsFromDays(days), rate, vol)
		if err != nil {
			failColor.Fprintln(m.out, "ERROR:", err)
			continue
		}
		m.contract = contract
		okColor.Fprintln(m.out, "\nParameters accepted. Ready to price.")
		return nil
	}
}

func (m *menu) impliedVol() error {
	style, err := m.readLine("\nOption type (call/put): ")
	if err != nil {
		return err
	}
	marketPrice, err := m.readFloat("Market price of option: $")
	if err != nil {
		return err
	}
	_, err = m.pricer.impliedVol(m.contract, strings.ToLower(style), marketPrice)
	return err
}

// readFloat re-prompts until the line parses as a number.
func (m *menu) readFloat(prompt string) (float64, error) {
	for {
		line, err := m.readLine(prompt)
		if err != nil {
			return 0, err
		}
		value, err := strconv.ParseFloat(line, 64)
		if err != nil {
			failColor.Fprintln(m.out, "ERROR: Invalid input. Please enter numbers only.")
			continue
		}
		return value, nil
	}
}

func (m *menu) readLine(prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	line, err := m.in.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		return strings.TrimSpace(line), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
