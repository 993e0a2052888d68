package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/shareplan"
	"github.com/etnz/shareplan/date"
	"github.com/etnz/shareplan/renderer"
	"github.com/google/subcommands"
)

// calcCmd holds the flags for the 'calc' subcommand.
type calcCmd struct {
	currency string
	price    float64
	priceOn  string
}

func (*calcCmd) Name() string     { return "calc" }
func (*calcCmd) Synopsis() string { return "display the share plan's value and returns" }
func (*calcCmd) Usage() string {
	return `esop calc [-c <currency>] [-price <price> [-on <date>]]

  Displays the plan's figures: invested amounts per category, current value,
  total sold, returns and annualized returns, available and blocked shares.

  The valuation price is the latest historical close, or the portfolio
  file's as-of price when no close exists. Use -price to override it.
`
}

func (c *calcCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the portfolio's own currency.")
	f.Float64Var(&c.price, "price", 0, "Manual price per share, overriding stored prices.")
	f.StringVar(&c.priceOn, "on", "", "Date of the manual price (defaults to today).")
}

func (c *calcCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := LoadEngine(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.currency != "" {
		if err := e.SetCurrency(c.currency); err != nil {
			fmt.Fprintf(os.Stderr, "Error switching to %s: %v\n", c.currency, err)
			return subcommands.ExitFailure
		}
	}
	if c.price > 0 {
		on := date.Date{}
		if c.priceOn != "" {
			if on, err = date.Parse(c.priceOn); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing -on: %v\n", err)
				return subcommands.ExitUsageError
			}
		}
		e.SetOverride(c.price, on)
	}

	calc, err := e.Calculations()
	if err != nil {
		var missing *shareplan.MissingDataError
		if errors.As(err, &missing) {
			fmt.Fprintf(os.Stderr, "Cannot compute: %v. Run 'esop update' or provide -price.\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.CalculationsMarkdown(calc))
	return subcommands.ExitSuccess
}
