// Package realreturn analyzes the return of a portfolio as seen from several
// currencies, before and after inflation.
//
// A portfolio is valued in a base currency on two dates. For each analyzed
// currency, the value is converted with the reference FX rates of both dates,
// and deflated with the consumer price index of the country that currency
// stands for.
//
// The package is organized in three layers:
//   - Data acquisition: a [CpiResolver] walks a chain of sources (fresh cache,
//     live provider, stale cache, bundled dataset) to resolve a CPI [Series],
//     and a [FxResolver] gets FX rates from the cache or a provider. A
//     [Fetcher] runs them concurrently to produce a [Snapshot].
//   - Arithmetic: pure functions like [NominalReturn], [RealReturn] or
//     [DiscountForInflation] on decimal amounts.
//   - Analysis: [Analyze] validates an [AnalysisRequest], fetches the data
//     and computes a [CurrencyResult] per currency.
//
// Providers live in the fred, eurostat and frankfurter packages, the file
// cache in the cache package, and the rra command line in cmd.
package realreturn
