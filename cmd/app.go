// Package cmd implements the CLI application to inspect an employee share plan.
package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/shareplan"
	"github.com/google/subcommands"
)

// Commands is the list of subcommands a main package registers.
// A main package will call Register on each, and Execute on the user-selected one.
var Commands = []subcommands.Command{
	&calcCmd{},
	&breakdownCmd{},
	&timelineCmd{},
	&currencyCmd{},
	&xirrCmd{},
	&updateCmd{},
	&qualityCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var storeDir = flag.String("store", ".", "Path to the folder holding portfolio.jsonl, prices.jsonl and rates.jsonl")
var baseCurrency = flag.String("base", "EUR", "Base currency of the exchange-rate file")

// Store returns the file store of the application folder.
func Store() *shareplan.FileStore {
	return &shareplan.FileStore{Dir: *storeDir, Base: *baseCurrency}
}

// LoadEngine builds a ready-to-query engine from the application folder.
func LoadEngine(ctx context.Context) (*shareplan.Engine, error) {
	store := Store()
	p, err := store.LoadPortfolio()
	if err != nil {
		return nil, fmt.Errorf("could not load portfolio: %w", err)
	}
	e := shareplan.NewEngine(store, store)
	if err := e.Load(ctx, p); err != nil {
		return nil, fmt.Errorf("could not load engine: %w", err)
	}
	return e, nil
}
