// Package cmd implements the rra CLI application, to analyze the real return of a portfolio.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/cache"
	"github.com/etnz/realreturn/config"
	"github.com/etnz/realreturn/eurostat"
	"github.com/etnz/realreturn/frankfurter"
	"github.com/etnz/realreturn/fred"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&analyzeCmd{}, "")
	c.Register(&cacheCmd{}, "")
	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file (defaults to ~/.realreturn/config.yaml)")
var verbose = flag.Bool("v", false, "Verbose logging on stderr")

// LoadConfig loads and validates the configuration file, and sets up logging accordingly.
func LoadConfig() (*config.Config, error) {
	path := *configFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	setupLogging(cfg.LogLevel, *verbose)
	return cfg, nil
}

// setupLogging sends human readable logs to stderr.
func setupLogging(level string, verbose bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
}

// OpenCache returns the cache store of the configuration.
func OpenCache(cfg *config.Config) (*cache.Store, error) {
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, err
		}
	}
	return cache.New(dir), nil
}

// NewFetcher wires the providers and the cache of the configuration.
// A non empty fredAPIKey overrides the configured one.
func NewFetcher(cfg *config.Config, store *cache.Store, fredAPIKey string) *realreturn.Fetcher {
	if fredAPIKey == "" {
		fredAPIKey = cfg.FRED.APIKey
	}
	opts := cfg.ClientOptions()

	fredClient := fred.New(fredAPIKey, opts)
	fredClient.BaseURL = cfg.FRED.BaseURL
	eurostatClient := eurostat.New(opts)
	eurostatClient.BaseURL = cfg.Eurostat.BaseURL
	fx := frankfurter.New(opts)
	fx.BaseURL = cfg.Frankfurter.BaseURL

	return &realreturn.Fetcher{
		CPI: &realreturn.CpiResolver{
			Cache: store,
			Providers: map[realreturn.ProviderID]realreturn.CpiProvider{
				realreturn.FRED:     fredClient,
				realreturn.Eurostat: eurostatClient,
			},
		},
		FX: &realreturn.FxResolver{Cache: store, Provider: fx},
	}
}

// printMarkdown renders markdown for the terminal, or prints it raw if it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(160))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	log.Debug().Err(err).Msg("cannot render markdown")
	fmt.Print(md)
}
