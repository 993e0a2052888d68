package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type currencyCmd struct{}

func (*currencyCmd) Name() string     { return "currency" }
func (*currencyCmd) Synopsis() string { return "list the currencies the plan can be displayed in" }
func (*currencyCmd) Usage() string {
	return `esop currency

  Lists the currencies every point of the plan is priced in. Any of them can
  be passed to the -c flag of calc, breakdown and timeline.
`
}

func (*currencyCmd) SetFlags(*flag.FlagSet) {}

func (c *currencyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := LoadEngine(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	for _, cur := range e.AvailableCurrencies() {
		if cur == e.Currency() {
			fmt.Printf("%s (active)\n", cur)
			continue
		}
		fmt.Println(cur)
	}
	return subcommands.ExitSuccess
}
