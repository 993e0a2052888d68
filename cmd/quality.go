package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/shareplan"
	"github.com/etnz/shareplan/date"
	"github.com/etnz/shareplan/renderer"
	"github.com/google/subcommands"
)

type qualityCmd struct {
	threshold int
}

func (*qualityCmd) Name() string     { return "quality" }
func (*qualityCmd) Synopsis() string { return "audit the stored market data for gaps and staleness" }
func (*qualityCmd) Usage() string {
	return `esop quality [-days <threshold>]

  Reports per-currency coverage and staleness of the stored closes and
  exchange rates. Exits with a failure status when any column is stale, so
  the command can guard scheduled updates.
`
}

func (c *qualityCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.threshold, "days", shareplan.DefaultStalenessDays, "Maximum age in days before a column is flagged stale.")
}

func (c *qualityCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store := Store()
	prices, err := store.LoadPrices(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	rates, err := store.LoadRates(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	report := shareplan.AnalyzeQuality(date.Today(), prices, rates, c.threshold)
	printMarkdown(renderer.QualityMarkdown(report))

	if report.Health != shareplan.Healthy {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
