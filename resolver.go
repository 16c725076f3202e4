package realreturn

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/etnz/realreturn/date"
	"github.com/etnz/realreturn/metrics"
)

// CpiProvider fetches a country CPI series over a date range.
type CpiProvider interface {
	FetchCpiSeries(ctx context.Context, country string, from, to date.Date) (Series, error)
}

// FxProvider fetches the rates of targets per unit of base on a day.
// The base is never part of the result.
type FxProvider interface {
	FetchFxRates(ctx context.Context, day date.Date, base string, targets []string) (map[string]float64, error)
}

// CpiStore persists CPI series by country.
//
// GetCpi never fails: unreadable entries are reported as absent.
type CpiStore interface {
	GetCpi(country string) (*CpiEntry, bool)
	PutCpi(entry CpiEntry) error
}

// FxStore persists FX rates by day, base and target.
type FxStore interface {
	GetFx(day date.Date, base, target string) (float64, bool)
	PutFxBatch(day date.Date, base string, rates map[string]float64) error
}

// Tiers of the CPI fallback chain, as reported in metrics and logs.
const (
	TierFresh   = "fresh_cache"
	TierLive    = "live"
	TierStale   = "stale_cache"
	TierBundled = "bundled"
)

// CpiRequest asks for the CPI series of a currency reference country over a date range.
type CpiRequest struct {
	Currency     string
	From, To     date.Date
	ForceRefresh bool // skip the fresh cache tier
}

// CpiResolver obtains CPI series, degrading from the cache to the provider,
// to the stale cache, and finally to the bundled dataset.
type CpiResolver struct {
	Cache     CpiStore
	Providers map[ProviderID]CpiProvider
	Bundled   func() (map[string]Series, error) // defaults to Bundled
	Now       func() time.Time                  // defaults to time.Now
}

// resolution is the state of one CpiRequest going down the fallback chain.
type resolution struct {
	CpiRequest
	info     CurrencyInfo
	now      time.Time
	warnings []string
}

func (r *resolution) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Warn().Str("country", r.info.Country).Msg(msg)
	r.warnings = append(r.warnings, msg)
}

// tier is one step of the fallback chain. It returns nil to pass on to the next tier.
type tier struct {
	name    string
	attempt func(ctx context.Context, r *resolution) Series
}

func (c *CpiResolver) chain() []tier {
	return []tier{
		{TierFresh, c.fresh},
		{TierLive, c.live},
		{TierStale, c.stale},
		{TierBundled, c.bundled},
	}
}

// Resolve returns the CPI series for the request currency reference country.
//
// Provider failures are not errors, they are reported as warnings in the
// Outcome. It fails with ErrNoDataAvailable only when every tier came back empty.
func (c *CpiResolver) Resolve(ctx context.Context, req CpiRequest) (*Outcome, error) {
	info, ok := Lookup(req.Currency)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedCurrency, req.Currency)
	}
	r := &resolution{CpiRequest: req, info: info, now: c.now()}

	for _, t := range c.chain() {
		if series := t.attempt(ctx, r); len(series) > 0 {
			log.Debug().Str("country", info.Country).Str("tier", t.name).Int("months", len(series)).Msg("CPI resolved")
			metrics.CpiResolutions.WithLabelValues(info.Country, t.name).Inc()
			return &Outcome{Series: series, Warnings: r.warnings}, nil
		}
	}
	return nil, fmt.Errorf("%w for %s (%s)", ErrNoDataAvailable, info.Country, info.Code)
}

func (c *CpiResolver) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c *CpiResolver) fresh(_ context.Context, r *resolution) Series {
	if r.ForceRefresh || c.Cache == nil {
		return nil
	}
	entry, ok := c.Cache.GetCpi(r.info.Country)
	if !ok || entry.Stale(r.now) {
		return nil
	}
	return entry.Series
}

func (c *CpiResolver) live(ctx context.Context, r *resolution) Series {
	provider, ok := c.Providers[r.info.Provider]
	if !ok {
		r.warn("No %s provider configured for %s.", r.info.Provider, r.info.Country)
		return nil
	}
	series, err := provider.FetchCpiSeries(ctx, r.info.Country, r.From, r.To)
	switch {
	case errors.Is(err, ErrMissingCredential):
		r.warn("%v. Using cached or fallback CPI data for %s.", err, r.info.Country)
		return nil
	case err != nil:
		r.warn("API error fetching CPI for %s: %v", r.info.Country, err)
		return nil
	case len(series) == 0:
		r.warn("API error fetching CPI for %s: %v", r.info.Country, ErrEmptyResult)
		return nil
	}

	if c.Cache != nil {
		entry := CpiEntry{
			Country:     r.info.Country,
			Source:      r.info.Provider,
			LastUpdated: c.now(), // after the fetch returned
			BaseYear:    r.info.Provider.BaseYear(),
			Series:      series,
		}
		if err := c.Cache.PutCpi(entry); err != nil {
			log.Warn().Err(err).Str("country", r.info.Country).Msg("cannot cache CPI series")
		}
	}
	return series
}

func (c *CpiResolver) stale(_ context.Context, r *resolution) Series {
	if c.Cache == nil {
		return nil
	}
	entry, ok := c.Cache.GetCpi(r.info.Country)
	if !ok || len(entry.Series) == 0 {
		return nil
	}
	r.warn("Using stale cached CPI for %s.", r.info.Country)
	return entry.Series
}

func (c *CpiResolver) bundled(_ context.Context, r *resolution) Series {
	load := Bundled
	if c.Bundled != nil {
		load = c.Bundled
	}
	all, err := load()
	if err != nil {
		log.Error().Err(err).Msg("cannot load bundled CPI dataset")
		return nil
	}
	series, ok := all[r.info.Country]
	if !ok || len(series) == 0 {
		return nil
	}
	r.warn("Using bundled fallback CPI for %s.", r.info.Country)
	return series
}

// FxResolver obtains FX rates from the cache, or else from the provider.
//
// There is no offline fallback for rates: errors are returned as is.
type FxResolver struct {
	Cache    FxStore
	Provider FxProvider
}

// Rates returns the rate of each symbol per unit of base on day. The base rate is always 1.
//
// When every other symbol is cached, the provider is not called. Otherwise
// all of them are fetched in a single request and cached.
func (f *FxResolver) Rates(ctx context.Context, day date.Date, base string, symbols []string) (map[string]float64, error) {
	rates := map[string]float64{base: 1.0}

	var remote []string
	for _, s := range symbols {
		if s != base && !slices.Contains(remote, s) {
			remote = append(remote, s)
		}
	}
	if len(remote) == 0 {
		return rates, nil
	}

	if f.Cache != nil {
		allCached := true
		for _, s := range remote {
			rate, ok := f.Cache.GetFx(day, base, s)
			if !ok {
				allCached = false
				break
			}
			rates[s] = rate
		}
		if allCached {
			metrics.FxLookups.WithLabelValues("hit").Inc()
			return rates, nil
		}
	}
	metrics.FxLookups.WithLabelValues("miss").Inc()

	fetched, err := f.Provider.FetchFxRates(ctx, day, base, remote)
	if err != nil {
		return nil, err
	}
	if f.Cache != nil {
		if err := f.Cache.PutFxBatch(day, base, fetched); err != nil {
			log.Warn().Err(err).Str("date", day.String()).Msg("cannot cache FX rates")
		}
	}
	for s, rate := range fetched {
		rates[s] = rate
	}
	return rates, nil
}
