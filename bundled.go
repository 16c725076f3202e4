package realreturn

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// bundledCSV is the offline CPI dataset, one "country,date,index" row per country and month.
//
//go:embed data/cpi_fallback.csv
var bundledCSV []byte

// Bundled returns the offline CPI dataset shipped with the binary, by country code.
//
// The returned map is shared, callers must not modify it.
var Bundled = sync.OnceValues(func() (map[string]Series, error) {
	return parseBundled(bytes.NewReader(bundledCSV))
})

// parseBundled reads the bundled CSV format. Dates are truncated to their month.
func parseBundled(r io.Reader) (map[string]Series, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("bundled csv has no header")
	}

	col := make(map[string]int)
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range []string{"country", "date", "index"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("bundled csv is missing column %q", name)
		}
	}

	result := make(map[string]Series)
	for i, rec := range records[1:] {
		country, day, raw := rec[col["country"]], rec[col["date"]], rec[col["index"]]
		if len(day) < 7 {
			return nil, fmt.Errorf("bundled csv line %d: invalid date %q", i+2, day)
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bundled csv line %d: failed to parse index %q: %w", i+2, raw, err)
		}
		if result[country] == nil {
			result[country] = make(Series)
		}
		result[country][day[:7]] = val
	}
	return result, nil
}
