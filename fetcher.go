package realreturn

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/etnz/realreturn/date"
)

// Request describes the macroeconomic data needed to analyze a period.
type Request struct {
	Base         string
	Currencies   []string // analyzed currencies, in display order
	Start, End   date.Date
	ForceRefresh bool
}

// Snapshot is the macroeconomic data of a period.
type Snapshot struct {
	Series     map[string]Series  // CPI series by currency code
	StartRates map[string]float64 // units of currency per unit of base on the start date
	EndRates   map[string]float64 // units of currency per unit of base on the end date
	Warnings   []string           // in currency order
}

// Fetcher gathers the FX rates and CPI series of a period concurrently.
type Fetcher struct {
	CPI *CpiResolver
	FX  *FxResolver
}

// Fetch gathers both FX snapshots and the CPI series of every distinct currency.
//
// All fetches are run to completion even when one of them fails, then the first
// error is returned and no partial snapshot is.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Snapshot, error) {
	var currencies []string
	for _, c := range req.Currencies {
		if !slices.Contains(currencies, c) {
			currencies = append(currencies, c)
		}
	}
	symbols := WithBase(req.Base, currencies)

	var (
		g                    errgroup.Group
		startRates, endRates map[string]float64
		outcomes             = make([]*Outcome, len(currencies))
	)

	g.Go(func() (err error) {
		startRates, err = f.FX.Rates(ctx, req.Start, req.Base, symbols)
		if err != nil {
			return fmt.Errorf("cannot get FX rates on %s: %w", req.Start, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		endRates, err = f.FX.Rates(ctx, req.End, req.Base, symbols)
		if err != nil {
			return fmt.Errorf("cannot get FX rates on %s: %w", req.End, err)
		}
		return nil
	})
	for i, code := range currencies {
		i, code := i, code
		g.Go(func() error {
			outcome, err := f.CPI.Resolve(ctx, CpiRequest{
				Currency:     code,
				From:         req.Start,
				To:           req.End,
				ForceRefresh: req.ForceRefresh,
			})
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Series:     make(map[string]Series, len(currencies)),
		StartRates: startRates,
		EndRates:   endRates,
	}
	for i, code := range currencies {
		snap.Series[code] = outcomes[i].Series
		snap.Warnings = append(snap.Warnings, outcomes[i].Warnings...)
	}
	log.Debug().Int("currencies", len(currencies)).Int("warnings", len(snap.Warnings)).Msg("macroeconomic data fetched")
	return snap, nil
}
