// Package renderer formats analysis results as a markdown table, JSON or CSV.
package renderer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"

	"github.com/etnz/realreturn"
)

// Format is an output format.
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
	CSV   Format = "csv"
)

// Formats lists the supported output formats.
var Formats = []Format{Table, JSON, CSV}

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q, want one of table, json, csv", s)
}

// Options controls what is rendered.
type Options struct {
	CAGR bool // include the nominal CAGR
}

// Render writes res to w in the given format. Table output is raw markdown.
func Render(w io.Writer, f Format, res *realreturn.AnalysisResult, opts Options) error {
	switch f {
	case JSON:
		return WriteJSON(w, res, opts)
	case CSV:
		return WriteCSV(w, res, opts)
	default:
		_, err := io.WriteString(w, Markdown(res, opts))
		return err
	}
}

func header(opts Options) []string {
	h := []string{"Currency", "Start value", "End value", "FX change", "Nominal return"}
	if opts.CAGR {
		h = append(h, "Nominal CAGR")
	}
	return append(h, "Inflation", "Real return", "Real CAGR", "Discounted end value")
}

// Markdown renders res as a markdown document with one table row per currency.
func Markdown(res *realreturn.AnalysisResult, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Real Return Analysis")
	doc.PlainText(fmt.Sprintf("From %s to %s (%.2f years), portfolio valued %s then %s.",
		res.Period.Start, res.Period.End, res.Period.Years,
		FormatValue(res.StartValue, res.Base), FormatValue(res.EndValue, res.Base)))

	rows := make([][]string, 0, len(res.Results))
	for _, r := range res.Results {
		fx := FormatPercent(r.FXChange)
		if r.Currency == res.Base {
			fx = NotApplicable
		}
		row := []string{
			r.Currency,
			FormatValue(r.StartValue, r.Currency),
			FormatValue(r.EndValue, r.Currency),
			fx,
			FormatPercent(r.NominalReturn),
		}
		if opts.CAGR {
			row = append(row, FormatPercent(r.NominalCAGR))
		}
		row = append(row,
			FormatPercent(r.CumulativeInflation),
			FormatPercent(r.RealReturn),
			FormatPercent(r.RealCAGR),
			FormatValue(r.DiscountedEndValue, r.Currency),
		)
		rows = append(rows, row)
	}
	doc.Table(md.TableSet{Header: header(opts), Rows: rows})

	if len(res.Warnings) > 0 {
		doc.H2("Warnings")
		doc.BulletList(res.Warnings...)
	}
	return doc.String()
}

type jsonPeriod struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Years float64 `json:"years"`
}

type jsonResult struct {
	Currency            string   `json:"currency"`
	StartValue          float64  `json:"start_value"`
	EndValue            float64  `json:"end_value"`
	FXStart             float64  `json:"fx_start"`
	FXEnd               float64  `json:"fx_end"`
	FXChange            *float64 `json:"fx_change"` // null for the base currency
	NominalReturn       float64  `json:"nominal_return"`
	NominalCAGR         *float64 `json:"nominal_cagr,omitempty"`
	CumulativeInflation float64  `json:"cumulative_inflation"`
	AnnualizedInflation float64  `json:"annualized_inflation"`
	RealReturn          float64  `json:"real_return"`
	RealCAGR            float64  `json:"real_cagr"`
	DiscountedEndValue  float64  `json:"discounted_end_value"`
	CPIStart            float64  `json:"cpi_start"`
	CPIEnd              float64  `json:"cpi_end"`
}

type jsonReport struct {
	RunID      string       `json:"run_id"`
	Base       string       `json:"base"`
	Period     jsonPeriod   `json:"period"`
	StartValue float64      `json:"start_value"`
	EndValue   float64      `json:"end_value"`
	Results    []jsonResult `json:"results"`
	Warnings   []string     `json:"warnings"`
}

// ratio rounds a ratio to 6 decimals, i.e. 4 decimals of a percentage.
func ratio(d decimal.Decimal) float64 { return d.Round(6).InexactFloat64() }

func amount(d decimal.Decimal, currency string) float64 { return Round(d, currency).InexactFloat64() }

// WriteJSON writes res as an indented JSON document. Amounts are rounded to the
// currency minor unit and ratios are plain fractions (0.05 is 5%).
func WriteJSON(w io.Writer, res *realreturn.AnalysisResult, opts Options) error {
	report := jsonReport{
		RunID:      res.RunID,
		Base:       res.Base,
		Period:     jsonPeriod{res.Period.Start.String(), res.Period.End.String(), res.Period.Years},
		StartValue: amount(res.StartValue, res.Base),
		EndValue:   amount(res.EndValue, res.Base),
		Results:    make([]jsonResult, 0, len(res.Results)),
		Warnings:   res.Warnings,
	}
	if report.Warnings == nil {
		report.Warnings = []string{}
	}
	for _, r := range res.Results {
		jr := jsonResult{
			Currency:            r.Currency,
			StartValue:          amount(r.StartValue, r.Currency),
			EndValue:            amount(r.EndValue, r.Currency),
			FXStart:             r.StartRate,
			FXEnd:               r.EndRate,
			NominalReturn:       ratio(r.NominalReturn),
			CumulativeInflation: ratio(r.CumulativeInflation),
			AnnualizedInflation: ratio(r.AnnualizedInflation),
			RealReturn:          ratio(r.RealReturn),
			RealCAGR:            ratio(r.RealCAGR),
			DiscountedEndValue:  amount(r.DiscountedEndValue, r.Currency),
			CPIStart:            r.StartCPI,
			CPIEnd:              r.EndCPI,
		}
		if r.Currency != res.Base {
			v := ratio(r.FXChange)
			jr.FXChange = &v
		}
		if opts.CAGR {
			v := ratio(r.NominalCAGR)
			jr.NominalCAGR = &v
		}
		report.Results = append(report.Results, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteCSV writes one record per currency, with the same columns as the markdown table.
// Amounts are rounded to the currency minor unit, ratios are percentages.
func WriteCSV(w io.Writer, res *realreturn.AnalysisResult, opts Options) error {
	percent := func(d decimal.Decimal) string { return d.Shift(2).StringFixed(2) }

	cw := csv.NewWriter(w)
	if err := cw.Write(header(opts)); err != nil {
		return err
	}
	for _, r := range res.Results {
		fx := percent(r.FXChange)
		if r.Currency == res.Base {
			fx = ""
		}
		rec := []string{
			r.Currency,
			Round(r.StartValue, r.Currency).String(),
			Round(r.EndValue, r.Currency).String(),
			fx,
			percent(r.NominalReturn),
		}
		if opts.CAGR {
			rec = append(rec, percent(r.NominalCAGR))
		}
		rec = append(rec,
			percent(r.CumulativeInflation),
			percent(r.RealReturn),
			percent(r.RealCAGR),
			Round(r.DiscountedEndValue, r.Currency).String(),
		)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("cannot write csv: %w", err)
	}
	return nil
}
