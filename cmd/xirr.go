package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type xirrCmd struct {
	currency string
	all      bool
}

func (*xirrCmd) Name() string     { return "xirr" }
func (*xirrCmd) Synopsis() string { return "display the annualized return and its cash flows" }
func (*xirrCmd) Usage() string {
	return `esop xirr [-c <currency>] [-all]

  Displays the annualized internal rate of return of the plan, and the dated
  cash flows it was solved from. By default only the employee's own
  purchases count as outflows; -all includes every contribution type.
`
}

func (c *xirrCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Display currency. Defaults to the portfolio's own currency.")
	f.BoolVar(&c.all, "all", false, "Include company match, free shares and dividend reinvestments as outflows.")
}

func (c *xirrCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	rate := calc.XIRRUserInvestment
	if c.all {
		rate = calc.XIRRTotalInvestment
	}

	flows := e.CashFlows(!c.all)
	fmt.Printf("Annualized return: %s\n\n", rate)
	for _, flow := range flows {
		fmt.Printf("%s  %12.2f  %s\n", flow.Date, flow.Amount, flow.Description)
	}
	return subcommands.ExitSuccess
}
