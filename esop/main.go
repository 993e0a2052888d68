package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/shareplan/cmd"
	"github.com/etnz/shareplan/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion: this returns immediately unless invoked by the
	// shell's completion machinery (see complete's documentation).
	completion().Complete("esop")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	currencyFlag := map[string]complete.Predictor{"c": predict.Something}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"store": predict.Dirs("*"),
			"base":  predict.Something,
		},
		Sub: map[string]*complete.Command{
			"calc": {Flags: map[string]complete.Predictor{
				"c":     predict.Something,
				"price": predict.Something,
				"on":    predict.Something,
			}},
			"breakdown": {Flags: currencyFlag},
			"timeline":  {Flags: currencyFlag},
			"currency":  {},
			"xirr": {Flags: map[string]complete.Predictor{
				"c":   predict.Something,
				"all": predict.Nothing,
			}},
			"update": {Flags: map[string]complete.Predictor{
				"q":     predict.Something,
				"from":  predict.Something,
				"rates": predict.Nothing,
			}},
			"quality": {Flags: map[string]complete.Predictor{
				"days": predict.Something,
			}},
			"topic": {Args: predict.Set(append(docs.Names(), "readme", "*"))},
			"assist": {},
		},
	}
}
