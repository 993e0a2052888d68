package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/etnz/shareplan/renderer"
	"github.com/google/subcommands"
)

type breakdownCmd struct {
	currency string
}

func (*breakdownCmd) Name() string     { return "breakdown" }
func (*breakdownCmd) Synopsis() string { return "display the audit rows behind a metric" }
func (*breakdownCmd) Usage() string {
	return `esop breakdown [-c <currency>] <metric>...

  Displays the flat rows that sum up to a headline metric, one table per
  requested metric. Without arguments, lists the available metrics.

Usage Examples:
$ esop breakdown "user investment"
$ esop breakdown "current value" "total sold"
`
}

func (c *breakdownCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the portfolio's own currency.")
}

func (c *breakdownCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	calc, err := e.Calculations()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	metrics := f.Args()
	if len(metrics) == 0 {
		available := make([]string, 0, len(calc.Breakdowns))
		for name := range calc.Breakdowns {
			available = append(available, name)
		}
		sort.Strings(available)
		fmt.Println("Available metrics:")
		for _, name := range available {
			fmt.Printf("  %s\n", name)
		}
		return subcommands.ExitSuccess
	}

	for _, metric := range metrics {
		bd, ok := calc.Breakdowns[metric]
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown metric %q, run 'esop breakdown' to list them.\n", metric)
			return subcommands.ExitUsageError
		}
		printMarkdown(renderer.BreakdownMarkdown(bd))
	}
	return subcommands.ExitSuccess
}
