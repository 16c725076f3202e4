package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/realreturn/docs"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation about returns, sources, cache and config" }
func (*topicCmd) Usage() string {
	return `rra topic [<topic>...]

Show the documentation of the given topics, '*' for all of them.
Without topic, list the available ones.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	doc, err := docs.Topics(f.Args()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
