package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"

	"github.com/etnz/realreturn/cache"
)

// cacheCmd is the top-level command for cache-related operations.
type cacheCmd struct{}

func (*cacheCmd) Name() string     { return "cache" }
func (*cacheCmd) Synopsis() string { return "inspect or clear the CPI and FX cache" }
func (*cacheCmd) Usage() string {
	return `cache <subcommand> <options>

Cache specific commands: status, clear.
`
}
func (c *cacheCmd) SetFlags(f *flag.FlagSet) {}

func (c *cacheCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "cache")
	commander.Register(&cacheStatusCmd{}, "")
	commander.Register(&cacheClearCmd{}, "")
	return commander.Execute(ctx, args...)
}

// cacheStatusCmd implements the "cache status" command.
type cacheStatusCmd struct{}

func (*cacheStatusCmd) Name() string     { return "status" }
func (*cacheStatusCmd) Synopsis() string { return "list the cached files" }
func (*cacheStatusCmd) Usage() string {
	return `cache status:

Lists the files in the cache directory with their size and last modification time.
`
}
func (c *cacheStatusCmd) SetFlags(f *flag.FlagSet) {}

func (c *cacheStatusCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := OpenCache(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	out, err := cacheStatus(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(out)
	return subcommands.ExitSuccess
}

// cacheStatus renders the content of the cache as markdown.
func cacheStatus(store *cache.Store) (string, error) {
	entries, err := store.List()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Cache")
	doc.PlainText(fmt.Sprintf("Directory: %s", store.Dir()))
	if len(entries) == 0 {
		doc.PlainText("The cache is empty.")
		return doc.String(), nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, formatSize(e.Size), e.Modified.Format(time.DateTime)})
	}
	doc.Table(md.TableSet{Header: []string{"File", "Size", "Modified (UTC)"}, Rows: rows})
	return doc.String(), nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// cacheClearCmd implements the "cache clear" command.
type cacheClearCmd struct{}

func (*cacheClearCmd) Name() string     { return "clear" }
func (*cacheClearCmd) Synopsis() string { return "remove every cached file" }
func (*cacheClearCmd) Usage() string {
	return `cache clear:

Removes every file in the cache directory. The next analysis fetches all data again.
`
}
func (c *cacheClearCmd) SetFlags(f *flag.FlagSet) {}

func (c *cacheClearCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := OpenCache(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := cacheClear(os.Stdout, store); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func cacheClear(w io.Writer, store *cache.Store) error {
	n, err := store.Clear()
	if n > 0 || err == nil {
		fmt.Fprintf(w, "Removed %d cache files from %s\n", n, store.Dir())
	}
	return err
}
