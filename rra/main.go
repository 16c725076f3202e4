// Command rra analyzes the real return of a portfolio across currencies.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/etnz/realreturn/cmd"
)

func main() {
	// exits when invoked by the shell completion.
	cmd.Completion().Complete("rra")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
