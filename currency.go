package realreturn

import (
	"fmt"
	"slices"
	"strings"
)

// ProviderID identifies the data provider publishing a country CPI series.
type ProviderID string

const (
	FRED     ProviderID = "FRED"
	Eurostat ProviderID = "Eurostat"
)

// BaseYear returns the index reference period of the series published by the provider.
func (p ProviderID) BaseYear() string {
	switch p {
	case FRED:
		return "1982-84"
	case Eurostat:
		return "2015"
	default:
		panic(fmt.Sprintf("unknown provider %q", string(p)))
	}
}

// CurrencyInfo describes a supported currency and the country whose CPI measures its inflation.
type CurrencyInfo struct {
	Code        string
	Country     string // reference country code, as used by the CPI providers
	CountryName string
	Provider    ProviderID
	Symbol      string
}

var registry = []CurrencyInfo{
	{"USD", "US", "United States", FRED, "$"},
	{"EUR", "DE", "Germany", Eurostat, "€"},
	{"GBP", "UK", "United Kingdom", Eurostat, "£"},
	{"CHF", "CH", "Switzerland", Eurostat, "Fr"},
	{"JPY", "JP", "Japan", Eurostat, "¥"},
}

// Currencies returns the supported currency codes in registry order.
func Currencies() []string {
	codes := make([]string, len(registry))
	for i, c := range registry {
		codes[i] = c.Code
	}
	return codes
}

// Lookup returns the registry entry for a currency code.
func Lookup(code string) (CurrencyInfo, bool) {
	for _, c := range registry {
		if c.Code == code {
			return c, true
		}
	}
	return CurrencyInfo{}, false
}

// ParseCurrency normalizes and validates a single currency code.
func ParseCurrency(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := Lookup(code); !ok {
		return "", fmt.Errorf("%w %q, supported: %s", ErrUnsupportedCurrency, code, strings.Join(Currencies(), ", "))
	}
	return code, nil
}

// ParseCurrencies parses a comma separated list of currency codes like "usd, EUR".
// Empty items are ignored, duplicates are kept once in first-seen order.
func ParseCurrencies(raw string) ([]string, error) {
	var codes []string
	for _, item := range strings.Split(raw, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		code, err := ParseCurrency(item)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(codes, code) {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no currency in %q", raw)
	}
	return codes, nil
}

// WithBase returns codes with base prepended, unless it is already there.
func WithBase(base string, codes []string) []string {
	if slices.Contains(codes, base) {
		return codes
	}
	return append([]string{base}, codes...)
}
