package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/shareplan"
	"github.com/etnz/shareplan/date"
	"github.com/google/subcommands"
)

type updateCmd struct {
	quotes string
	from   string
	rates  bool
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "fetch the latest closes and exchange rates" }
func (*updateCmd) Usage() string {
	return `esop update [-q <currency>=<ticker>,...] [-from <date>] [-rates=false]

  Fetches the missing daily closes for the instrument and today's exchange
  rates, and merges them into the store. Only the gap since the last stored
  observation is fetched.

Usage Examples:
# Fetch EUR closes from the Frankfurt listing and USD from the ADR.
$ esop update -q EUR=SHELL.DE,USD=SHEL
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.quotes, "q", "", "Comma-separated currency=ticker pairs to fetch closes for.")
	f.StringVar(&c.from, "from", "", "First date to fetch when a currency has no stored close yet.")
	f.BoolVar(&c.rates, "rates", true, "Also fetch today's exchange rates.")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := Store()
	failed := false

	if c.quotes != "" {
		quotes, err := parseQuotes(c.quotes)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		origin := date.Today().Add(-365)
		if c.from != "" {
			if origin, err = date.Parse(c.from); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
				return subcommands.ExitUsageError
			}
		}

		prices, err := store.LoadPrices(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if err := shareplan.UpdatePrices(prices, quotes, origin, date.Today()); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching closes: %v\n", err)
			failed = true
		}
		if err := store.SavePrices(prices); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	if c.rates {
		rates, err := store.LoadRates(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if err := shareplan.FetchRates(rates); err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching rates: %v\n", err)
			failed = true
		} else if err := store.SaveRates(rates); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	if failed {
		return subcommands.ExitFailure
	}
	fmt.Println("Store updated. Run 'esop quality' to check coverage.")
	return subcommands.ExitSuccess
}

// parseQuotes parses "EUR=SHELL.DE,USD=SHEL" into a currency→ticker map.
func parseQuotes(s string) (map[string]string, error) {
	quotes := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		currency, ticker, ok := strings.Cut(pair, "=")
		if !ok || currency == "" || ticker == "" {
			return nil, fmt.Errorf("invalid quote %q, want <currency>=<ticker>", pair)
		}
		quotes[strings.ToUpper(strings.TrimSpace(currency))] = strings.TrimSpace(ticker)
	}
	return quotes, nil
}
