package renderer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/date"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testResult() *realreturn.AnalysisResult {
	return &realreturn.AnalysisResult{
		RunID:      "run-1",
		Period:     realreturn.Period{Start: date.MustParse("2023-03-31"), End: date.MustParse("2026-01-28"), Years: 2.831},
		Base:       "USD",
		StartValue: d("100000"),
		EndValue:   d("150000"),
		Results: []realreturn.CurrencyResult{
			{
				Currency:            "USD",
				StartValue:          d("100000"),
				EndValue:            d("150000"),
				StartRate:           1,
				EndRate:             1,
				StartCPI:            301.8,
				EndCPI:              320.1,
				NominalReturn:       d("0.5"),
				NominalCAGR:         d("0.1539"),
				CumulativeInflation: d("0.0606"),
				AnnualizedInflation: d("0.0210"),
				RealReturn:          d("0.4143"),
				RealCAGR:            d("0.1304"),
				DiscountedEndValue:  d("141425.49"),
			},
			{
				Currency:            "JPY",
				StartValue:          d("13310000.4"),
				EndValue:            d("22860000.6"),
				StartRate:           133.1,
				EndRate:             152.4,
				StartCPI:            104.5,
				EndCPI:              111,
				FXChange:            d("0.145"),
				NominalReturn:       d("0.7175"),
				NominalCAGR:         d("0.2106"),
				CumulativeInflation: d("0.0622"),
				AnnualizedInflation: d("0.0216"),
				RealReturn:          d("-0.0125"),
				RealCAGR:            d("-0.0044"),
				DiscountedEndValue:  d("21521000.3"),
			},
		},
		Warnings: []string{"Using bundled fallback CPI for JP."},
	}
}

func TestFormatValue(t *testing.T) {
	testCases := []struct {
		amount   string
		currency string
		want     string
	}{
		{"999.5", "USD", "$999.50"},
		{"150000", "USD", "$150.00K"},
		{"2500000", "EUR", "€2.50M"},
		{"3100000000", "JPY", "¥3.10B"},
		{"1234.567", "GBP", "£1.23K"},
		{"42000", "CHF", "Fr 42.00K"},
		{"-1500", "USD", "-$1.50K"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, FormatValue(d(tc.amount), tc.currency), tc.amount)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+12.34%", FormatPercent(d("0.1234")))
	assert.Equal(t, "-1.25%", FormatPercent(d("-0.0125")))
	assert.Equal(t, "+0.00%", FormatPercent(decimal.Zero))
}

func TestRound(t *testing.T) {
	assert.Equal(t, "1234.57", Round(d("1234.567"), "USD").String())
	assert.Equal(t, "1235", Round(d("1234.567"), "JPY").String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, CSV, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestMarkdown(t *testing.T) {
	out := Markdown(testResult(), Options{})

	assert.Contains(t, out, "# Real Return Analysis")
	assert.Contains(t, out, "From 2023-03-31 to 2026-01-28 (2.83 years)")
	assert.NotContains(t, strings.ToLower(out), "nominal cagr")

	var usd, jpy string
	for _, l := range strings.Split(out, "\n") {
		if !strings.HasPrefix(l, "|") {
			continue
		}
		if strings.Contains(l, " USD ") {
			usd = l
		}
		if strings.Contains(l, " JPY ") {
			jpy = l
		}
	}
	require.NotEmpty(t, usd, out)
	require.NotEmpty(t, jpy, out)
	assert.Contains(t, usd, NotApplicable)
	assert.Contains(t, usd, "$150.00K")
	assert.Contains(t, jpy, "+14.50%")
	assert.Contains(t, jpy, "¥22.86M")
	assert.Contains(t, jpy, "-1.25%")

	assert.Contains(t, out, "## Warnings")
	assert.Contains(t, out, "Using bundled fallback CPI for JP.")
}

func TestMarkdown_CAGR(t *testing.T) {
	res := testResult()
	res.Warnings = nil
	out := Markdown(res, Options{CAGR: true})
	assert.Contains(t, strings.ToLower(out), "nominal cagr")
	assert.Contains(t, out, "+15.39%")
	assert.NotContains(t, out, "Warnings")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testResult(), Options{}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "USD", got["base"])
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, map[string]any{"start": "2023-03-31", "end": "2026-01-28", "years": 2.831}, got["period"])

	results := got["results"].([]any)
	require.Len(t, results, 2)
	usd := results[0].(map[string]any)
	assert.Nil(t, usd["fx_change"])
	assert.NotContains(t, usd, "nominal_cagr")
	assert.Equal(t, 0.5, usd["nominal_return"])

	jpy := results[1].(map[string]any)
	assert.Equal(t, 0.145, jpy["fx_change"])
	assert.Equal(t, 13310000.0, jpy["start_value"], "rounded to the yen")
	assert.Equal(t, 22860001.0, jpy["end_value"])
	assert.Equal(t, []any{"Using bundled fallback CPI for JP."}, got["warnings"])
}

func TestWriteJSON_CAGR(t *testing.T) {
	res := testResult()
	res.Warnings = nil
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res, Options{CAGR: true}))

	var got struct {
		Results []struct {
			NominalCAGR *float64 `json:"nominal_cagr"`
		} `json:"results"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.NotNil(t, got.Results[0].NominalCAGR)
	assert.Equal(t, 0.1539, *got.Results[0].NominalCAGR)
	assert.NotNil(t, got.Warnings)
	assert.Contains(t, buf.String(), `"warnings": []`)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testResult(), Options{CAGR: true}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Currency", "Start value", "End value", "FX change", "Nominal return", "Nominal CAGR",
		"Inflation", "Real return", "Real CAGR", "Discounted end value"}, records[0])
	assert.Equal(t, []string{"USD", "100000", "150000", "", "50.00", "15.39", "6.06", "41.43", "13.04", "141425.49"}, records[1])
	assert.Equal(t, []string{"JPY", "13310000", "22860001", "14.50", "71.75", "21.06", "6.22", "-1.25", "-0.44", "21521000"}, records[2])
}

func TestRender(t *testing.T) {
	for _, f := range Formats {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, f, testResult(), Options{}), f)
		assert.NotEmpty(t, buf.String(), f)
	}
}
