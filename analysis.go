package realreturn

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/etnz/realreturn/date"
)

// AnalysisRequest describes a portfolio valued in Base at Start and End, to be
// analyzed in each of Currencies.
type AnalysisRequest struct {
	Base                 string
	Currencies           []string
	Start, End           date.Date
	StartValue, EndValue decimal.Decimal
	ForceRefresh         bool
}

// Validate checks the request against today.
func (r AnalysisRequest) Validate(today date.Date) error {
	var errs []error
	if _, ok := Lookup(r.Base); !ok {
		errs = append(errs, fmt.Errorf("%w %q as base", ErrUnsupportedCurrency, r.Base))
	}
	for _, c := range r.Currencies {
		if _, ok := Lookup(c); !ok {
			errs = append(errs, fmt.Errorf("%w %q", ErrUnsupportedCurrency, c))
		}
	}
	if r.Start.IsZero() || r.End.IsZero() {
		errs = append(errs, errors.New("start and end dates are required"))
	} else {
		if !r.End.After(r.Start) {
			errs = append(errs, fmt.Errorf("end date %s must be after start date %s", r.End, r.Start))
		}
		if r.End.After(today) {
			errs = append(errs, fmt.Errorf("end date %s is in the future", r.End))
		}
	}
	if !r.StartValue.IsPositive() {
		errs = append(errs, fmt.Errorf("start value must be positive, got %s", r.StartValue))
	}
	if !r.EndValue.IsPositive() {
		errs = append(errs, fmt.Errorf("end value must be positive, got %s", r.EndValue))
	}
	return errors.Join(errs...)
}

// Period is the analyzed time span.
type Period struct {
	Start, End date.Date
	Years      float64
}

// CurrencyResult is the performance of the portfolio measured in one currency.
type CurrencyResult struct {
	Currency             string
	StartValue, EndValue decimal.Decimal // portfolio value in Currency
	StartRate, EndRate   float64         // units of Currency per unit of base
	StartCPI, EndCPI     float64

	FXChange            decimal.Decimal // zero for the base currency
	NominalReturn       decimal.Decimal
	NominalCAGR         decimal.Decimal
	CumulativeInflation decimal.Decimal
	AnnualizedInflation decimal.Decimal
	RealReturn          decimal.Decimal
	RealCAGR            decimal.Decimal
	DiscountedEndValue  decimal.Decimal // end value in start-date money
}

// AnalysisResult is the performance of the portfolio in every requested currency.
type AnalysisResult struct {
	RunID                string
	Period               Period
	Base                 string
	StartValue, EndValue decimal.Decimal
	Results              []CurrencyResult // base first, then the requested order
	Warnings             []string
}

// Analyze fetches the macroeconomic data for the request and computes the
// nominal and real performance of the portfolio in each currency.
//
// The request is expected to be valid.
func Analyze(ctx context.Context, f *Fetcher, req AnalysisRequest) (*AnalysisResult, error) {
	runID := uuid.NewString()
	logger := log.With().Str("run", runID).Logger()

	currencies := WithBase(req.Base, req.Currencies)
	logger.Info().Str("base", req.Base).Strs("currencies", currencies).
		Stringer("start", req.Start).Stringer("end", req.End).Msg("analysis started")

	snap, err := f.Fetch(ctx, Request{
		Base:         req.Base,
		Currencies:   currencies,
		Start:        req.Start,
		End:          req.End,
		ForceRefresh: req.ForceRefresh,
	})
	if err != nil {
		return nil, err
	}

	years := YearsBetween(req.Start, req.End)
	res := &AnalysisResult{
		RunID:      runID,
		Period:     Period{Start: req.Start, End: req.End, Years: years},
		Base:       req.Base,
		StartValue: req.StartValue,
		EndValue:   req.EndValue,
		Warnings:   snap.Warnings,
	}
	for _, code := range currencies {
		cr, err := analyzeCurrency(code, req, snap, years)
		if err != nil {
			return nil, err
		}
		res.Results = append(res.Results, cr)
	}
	logger.Info().Int("warnings", len(res.Warnings)).Msg("analysis done")
	return res, nil
}

func analyzeCurrency(code string, req AnalysisRequest, snap *Snapshot, years float64) (CurrencyResult, error) {
	startRate, ok1 := snap.StartRates[code]
	endRate, ok2 := snap.EndRates[code]
	if !ok1 || !ok2 || startRate <= 0 || endRate <= 0 {
		return CurrencyResult{}, fmt.Errorf("no %s/%s rate for the period", req.Base, code)
	}
	startCPI, endCPI, err := snap.Series[code].Values(req.Start, req.End)
	if err != nil {
		return CurrencyResult{}, fmt.Errorf("cannot align %s CPI: %w", code, err)
	}
	if startCPI <= 0 || endCPI <= 0 {
		return CurrencyResult{}, fmt.Errorf("invalid %s CPI values %v and %v", code, startCPI, endCPI)
	}

	cr := CurrencyResult{
		Currency:   code,
		StartValue: ConvertToCurrency(req.StartValue, startRate),
		EndValue:   ConvertToCurrency(req.EndValue, endRate),
		StartRate:  startRate,
		EndRate:    endRate,
		StartCPI:   startCPI,
		EndCPI:     endCPI,
	}
	if code != req.Base {
		cr.FXChange = FXChange(startRate, endRate)
	}
	cr.NominalReturn = NominalReturn(cr.StartValue, cr.EndValue)
	cr.NominalCAGR = NominalCAGR(cr.StartValue, cr.EndValue, years)
	cr.CumulativeInflation = CumulativeInflation(startCPI, endCPI)
	cr.AnnualizedInflation = AnnualizedInflation(cr.CumulativeInflation, years)
	cr.RealReturn = RealReturn(cr.NominalReturn, cr.CumulativeInflation)
	cr.RealCAGR = RealCAGR(cr.RealReturn, years)
	cr.DiscountedEndValue = DiscountForInflation(cr.EndValue, startCPI, endCPI)
	return cr, nil
}
