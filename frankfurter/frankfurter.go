// Package frankfurter fetches foreign exchange reference rates from the
// Frankfurter API (https://frankfurter.dev), which republishes the European
// Central Bank rates. No API key is required.
package frankfurter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/date"
)

// DefaultBaseURL is the Frankfurter v1 API root.
const DefaultBaseURL = "https://api.frankfurter.dev/v1"

// Client fetches FX rates from Frankfurter.
type Client struct {
	BaseURL string
	http    *realreturn.Client
}

// New returns a Frankfurter client.
func New(opts realreturn.ClientOptions) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		http:    realreturn.NewClient("frankfurter", opts),
	}
}

// FetchFxRates returns the number of units of each target for one unit of base on day.
//
// When day is not a business day, Frankfurter answers with the closest previous one.
// The base itself is never requested. With no other target, no request is made
// and the result is empty.
func (c *Client) FetchFxRates(ctx context.Context, day date.Date, base string, targets []string) (map[string]float64, error) {
	symbols := make([]string, 0, len(targets))
	for _, t := range targets {
		if t != base {
			symbols = append(symbols, t)
		}
	}
	rates := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return rates, nil
	}

	// {"amount": 1.0, "base": "USD", "date": "2023-03-31", "rates": {"EUR": 0.9203, "GBP": 0.8101}}
	var content struct {
		Base  string             `json:"base"`
		Date  string             `json:"date"`
		Rates map[string]float64 `json:"rates"`
	}
	params := url.Values{
		"base":    {base},
		"symbols": {strings.Join(symbols, ",")},
	}
	if err := c.http.GetJSON(ctx, c.BaseURL+"/"+day.String(), params, &content); err != nil {
		return nil, err
	}

	for _, s := range symbols {
		rate, ok := content.Rates[s]
		if !ok || rate <= 0 {
			return nil, fmt.Errorf("%w: frankfurter has no %s/%s rate on %s", realreturn.ErrEmptyResult, base, s, day)
		}
		rates[s] = rate
	}
	return rates, nil
}
