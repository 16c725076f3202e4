package realreturn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"USD", "EUR", "GBP", "CHF", "JPY"}, Currencies())

	testCases := []struct {
		code, country string
		provider      ProviderID
		symbol        string
	}{
		{"USD", "US", FRED, "$"},
		{"EUR", "DE", Eurostat, "€"},
		{"GBP", "UK", Eurostat, "£"},
		{"CHF", "CH", Eurostat, "Fr"},
		{"JPY", "JP", Eurostat, "¥"},
	}
	for _, tc := range testCases {
		info, ok := Lookup(tc.code)
		require.True(t, ok, tc.code)
		assert.Equal(t, tc.country, info.Country)
		assert.Equal(t, tc.provider, info.Provider)
		assert.Equal(t, tc.symbol, info.Symbol)
	}
	_, ok := Lookup("AUD")
	assert.False(t, ok)
}

func TestBaseYear(t *testing.T) {
	assert.Equal(t, "1982-84", FRED.BaseYear())
	assert.Equal(t, "2015", Eurostat.BaseYear())
	assert.Panics(t, func() { ProviderID("BLS").BaseYear() })
}

func TestParseCurrencies(t *testing.T) {
	testCases := []struct {
		raw  string
		want []string
	}{
		{"usd", []string{"USD"}},
		{"usd, EUR ,gbp", []string{"USD", "EUR", "GBP"}},
		{"eur,,jpy,EUR", []string{"EUR", "JPY"}},
	}
	for _, tc := range testCases {
		got, err := ParseCurrencies(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseCurrencies("usd,aud")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
	_, err = ParseCurrencies(" , ")
	assert.Error(t, err)
}

func TestWithBase(t *testing.T) {
	assert.Equal(t, []string{"USD", "EUR"}, WithBase("USD", []string{"EUR"}))
	assert.Equal(t, []string{"EUR", "USD"}, WithBase("USD", []string{"EUR", "USD"}))
	assert.Equal(t, []string{"CHF"}, WithBase("CHF", nil))
}
