// Package fred fetches the US consumer price index from the FRED API of the
// Federal Reserve Bank of St. Louis.
package fred

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/date"
)

const (
	// DefaultBaseURL is the FRED series observations endpoint.
	DefaultBaseURL = "https://api.stlouisfed.org/fred/series/observations"
	// SeriesID is the CPI for all urban consumers, all items, not seasonally adjusted.
	SeriesID = "CPIAUCNS"
	// APIKeyEnv is the environment variable holding the FRED API key.
	APIKeyEnv = "FRED_API_KEY"

	// missing is the value FRED uses for observations with no data.
	missing = "."
)

// Client fetches CPI series from FRED. Only the US is published there.
type Client struct {
	APIKey  string
	BaseURL string
	http    *realreturn.Client
}

// New returns a FRED client. An empty apiKey is only reported when fetching.
func New(apiKey string, opts realreturn.ClientOptions) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		http:    realreturn.NewClient("fred", opts),
	}
}

// observations is the payload of the observations endpoint.
//
//	{
//	  "observations": [
//	    {"realtime_start": "2025-01-15", "realtime_end": "2025-01-15", "date": "2023-03-01", "value": "301.836"},
//	    {"realtime_start": "2025-01-15", "realtime_end": "2025-01-15", "date": "2023-04-01", "value": "."}
//	  ]
//	}
type observations struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchCpiSeries returns the monthly CPI from the first day of from's month to to.
func (c *Client) FetchCpiSeries(ctx context.Context, country string, from, to date.Date) (realreturn.Series, error) {
	if c.APIKey == "" {
		return nil, &realreturn.CredentialError{Name: APIKeyEnv}
	}
	if country != "US" {
		return nil, fmt.Errorf("fred publishes no CPI for %q", country)
	}

	params := url.Values{
		"series_id":         {SeriesID},
		"api_key":           {c.APIKey},
		"file_type":         {"json"},
		"observation_start": {from.FirstOfMonth().String()},
		"observation_end":   {to.String()},
	}
	var content observations
	if err := c.http.GetJSON(ctx, c.BaseURL, params, &content); err != nil {
		return nil, err
	}

	series := make(realreturn.Series)
	for _, obs := range content.Observations {
		if obs.Value == missing {
			continue
		}
		if len(obs.Date) < 7 {
			log.Warn().Str("date", obs.Date).Msg("fred observation with an invalid date ignored")
			continue
		}
		val, err := decimal.NewFromString(obs.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fred value %q for date %q: %w", obs.Value, obs.Date, err)
		}
		// observations are dated on the first of the month: "2023-03-01" is "2023-03".
		series[obs.Date[:7]] = val.InexactFloat64()
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: fred %s from %s to %s", realreturn.ErrEmptyResult, SeriesID, from, to)
	}
	return series, nil
}
