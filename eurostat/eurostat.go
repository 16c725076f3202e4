// Package eurostat fetches harmonised indices of consumer prices (HICP) from
// the Eurostat dissemination API.
package eurostat

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog/log"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/date"
)

// DefaultBaseURL is the monthly HICP index dataset.
const DefaultBaseURL = "https://ec.europa.eu/eurostat/api/dissemination/statistics/1.0/data/prc_hicp_midx"

const (
	allItems = "CP00" // COICOP category
	index15  = "I15"  // index, 2015=100
)

// Client fetches HICP series from Eurostat.
type Client struct {
	BaseURL string
	http    *realreturn.Client
}

// New returns a Eurostat client. No credential is needed.
func New(opts realreturn.ClientOptions) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		http:    realreturn.NewClient("eurostat", opts),
	}
}

// FetchCpiSeries returns the all-items HICP of country for the months from from to to.
func (c *Client) FetchCpiSeries(ctx context.Context, country string, from, to date.Date) (realreturn.Series, error) {
	params := url.Values{
		"format":          {"JSON"},
		"lang":            {"EN"},
		"coicop":          {allItems},
		"unit":            {index15},
		"geo":             {country},
		"sinceTimePeriod": {from.MonthKey()},
		"untilTimePeriod": {to.MonthKey()},
	}
	var jobj any
	if err := c.http.GetJSON(ctx, c.BaseURL, params, &jobj); err != nil {
		return nil, err
	}

	series, err := parseSeries(jobj)
	if err != nil {
		return nil, fmt.Errorf("failed to parse eurostat HICP for %s: %w", country, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: eurostat HICP for %s from %s to %s", realreturn.ErrEmptyResult, country, from.MonthKey(), to.MonthKey())
	}
	return series, nil
}

// parseSeries joins a JSON-stat dataset values with its time dimension.
//
// Values are a sparse object keyed by the position in the time dimension,
// and the time dimension maps each period to its position:
//
//	{
//	  "value": {"0": 118.9, "1": 119.4, "2": null},
//	  "dimension": {"time": {"category": {"index": {"2023-03": 0, "2023-04": 1, "2023-05": 2}}}}
//	}
//
// Null values are skipped.
func parseSeries(jobj any) (realreturn.Series, error) {
	series := make(realreturn.Series)

	jvalues, err := jsonpath.Get("$.value", jobj)
	if err != nil {
		// no value at all, this is an empty dataset.
		return series, nil
	}
	values, ok := jvalues.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T for values", jvalues)
	}

	jindex, err := jsonpath.Get("$.dimension.time.category.index", jobj)
	if err != nil {
		if len(values) == 0 {
			return series, nil
		}
		return nil, fmt.Errorf("missing time dimension: %w", err)
	}
	index, ok := jindex.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T for time dimension", jindex)
	}

	// invert the dimension: position -> period
	periods := make(map[string]string, len(index))
	for period, pos := range index {
		p, ok := pos.(float64)
		if !ok {
			return nil, fmt.Errorf("unexpected position %v for period %q", pos, period)
		}
		periods[strconv.Itoa(int(p))] = period
	}

	for pos, jval := range values {
		if jval == nil {
			continue
		}
		period, ok := periods[pos]
		if !ok {
			log.Debug().Str("position", pos).Msg("eurostat value without a period ignored")
			continue
		}
		val, ok := jval.(float64)
		if !ok {
			return nil, fmt.Errorf("unexpected value %v for period %q", jval, period)
		}
		series[period] = val
	}
	return series, nil
}
