package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/shareplan/renderer"
	"github.com/google/subcommands"
)

type timelineCmd struct {
	currency string
}

func (*timelineCmd) Name() string     { return "timeline" }
func (*timelineCmd) Synopsis() string { return "display the plan's value over time" }
func (*timelineCmd) Usage() string {
	return `esop timeline [-c <currency>]

  Displays the plan's value at every known market close, with purchases and
  sales annotated. Without any stored closes, falls back to a flat-line
  series built from the acquisition prices.
`
}

func (c *timelineCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the portfolio's own currency.")
}

func (c *timelineCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	printMarkdown(renderer.TimelineMarkdown(e.Timeline(), e.Currency()))
	return subcommands.ExitSuccess
}
