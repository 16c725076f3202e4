package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/config"
	"github.com/etnz/realreturn/date"
	"github.com/etnz/realreturn/metrics"
	"github.com/etnz/realreturn/renderer"
)

type analyzeCmd struct {
	start, end           string
	startValue, endValue string
	base                 string
	currencies           string
	cagr                 bool
	output               string
	refresh              bool
	fredAPIKey           string
	metricsFile          string
}

func (*analyzeCmd) Name() string { return "analyze" }
func (*analyzeCmd) Synopsis() string {
	return "compare the nominal and real return of a portfolio across currencies"
}
func (*analyzeCmd) Usage() string {
	return `rra analyze -start <date> -start-value <value> -end-value <value> [-end <date>] [-base <currency>] [-currencies <list>]

  Computes the return of a portfolio valued in the base currency on two dates,
  as seen from each currency: converted with the FX rates of both dates, and
  adjusted for the inflation of the currency reference country.

  CPI series come from FRED (US, requires FRED_API_KEY) and Eurostat (others),
  FX rates from Frankfurter. Data is cached in ~/.realreturn/cache; when a
  provider is unavailable, stale cached or bundled CPI data is used and a
  warning is displayed.

Usage Examples:
$ rra analyze -start 2023-03-31 -start-value 100000 -end-value 150000 -currencies usd,eur,chf
$ rra analyze -start 2020-01-15 -end 2024-12-31 -start-value 5e6 -end-value 6.2e6 -base EUR -o json

`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "Start date (YYYY-MM-DD).")
	f.StringVar(&c.end, "end", "", "End date (YYYY-MM-DD), defaults to today.")
	f.StringVar(&c.startValue, "start-value", "", "Portfolio value on the start date, in the base currency.")
	f.StringVar(&c.endValue, "end-value", "", "Portfolio value on the end date, in the base currency.")
	f.StringVar(&c.base, "base", "", "Currency the portfolio is valued in (default from config, else USD).")
	f.StringVar(&c.currencies, "currencies", "", "Comma separated currencies to analyze, e.g. usd,eur (default from config, else all). The base is always included.")
	f.BoolVar(&c.cagr, "cagr", false, "Also display the nominal CAGR.")
	f.StringVar(&c.output, "o", "table", "Output format: table, json or csv.")
	f.BoolVar(&c.refresh, "refresh", false, "Fetch CPI series again even if the cache is fresh.")
	f.StringVar(&c.fredAPIKey, "fred-api-key", "", "FRED API key, overrides the config and the FRED_API_KEY environment variable.")
	f.StringVar(&c.metricsFile, "metrics-file", "", "Write data acquisition metrics to this file, in the Prometheus text format.")
}

// request builds the analysis request from the flags and the config defaults.
func (c *analyzeCmd) request(cfg *config.Config, today date.Date) (realreturn.AnalysisRequest, error) {
	var req realreturn.AnalysisRequest
	var errs []error

	base := c.base
	if base == "" {
		base = cfg.Defaults.Base
	}
	code, err := realreturn.ParseCurrency(base)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid -base: %w", err))
	}
	req.Base = code

	list := c.currencies
	if list == "" {
		list = strings.Join(cfg.Defaults.Currencies, ",")
	}
	if req.Currencies, err = realreturn.ParseCurrencies(list); err != nil {
		errs = append(errs, fmt.Errorf("invalid -currencies: %w", err))
	}

	if c.start == "" {
		errs = append(errs, errors.New("-start is required"))
	} else if req.Start, err = date.Parse(c.start); err != nil {
		errs = append(errs, fmt.Errorf("invalid -start: %w", err))
	}
	req.End = today
	if c.end != "" {
		if req.End, err = date.Parse(c.end); err != nil {
			errs = append(errs, fmt.Errorf("invalid -end: %w", err))
		}
	}

	if req.StartValue, err = parseValue("-start-value", c.startValue); err != nil {
		errs = append(errs, err)
	}
	if req.EndValue, err = parseValue("-end-value", c.endValue); err != nil {
		errs = append(errs, err)
	}
	req.ForceRefresh = c.refresh

	if err := errors.Join(errs...); err != nil {
		return req, err
	}
	return req, req.Validate(today)
}

func parseValue(name, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%s is required", name)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}

// run performs the analysis and writes it to w in format f.
func (c *analyzeCmd) run(ctx context.Context, cfg *config.Config, f renderer.Format, w io.Writer) (*realreturn.AnalysisResult, error) {
	req, err := c.request(cfg, date.Today())
	if err != nil {
		return nil, err
	}
	store, err := OpenCache(cfg)
	if err != nil {
		return nil, err
	}

	res, err := realreturn.Analyze(ctx, NewFetcher(cfg, store, c.fredAPIKey), req)
	if c.metricsFile != "" {
		if merr := metrics.WriteTextfile(c.metricsFile); merr != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot write metrics file: %v\n", merr)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := renderer.Render(w, f, res, renderer.Options{CAGR: c.cagr}); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	format, err := renderer.ParseFormat(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	if format != renderer.Table {
		res, err := c.run(ctx, cfg, format, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if format == renderer.CSV {
			for _, w := range res.Warnings {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
			}
		}
		return subcommands.ExitSuccess
	}

	var buf strings.Builder
	if _, err := c.run(ctx, cfg, format, &buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(buf.String())
	return subcommands.ExitSuccess
}
