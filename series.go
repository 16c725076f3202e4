package realreturn

import (
	"fmt"
	"slices"
	"time"

	"github.com/etnz/realreturn/date"
)

// StaleAfter is the age past which a cached CPI series should be refreshed.
const StaleAfter = 30 * 24 * time.Hour

// Series maps month keys ("YYYY-MM") to a price index value. Months need not be contiguous.
type Series map[string]float64

// Months returns the series keys in chronological order.
func (s Series) Months() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Lookup resolves the index value for a month key.
//
// An exact match wins. Otherwise, when the month is bracketed by earlier and later
// months, it returns the plain midpoint of the two closest ones, whatever their
// distance to the month. Otherwise it returns the value of the closest month,
// the earliest one on ties. Only an empty series fails.
func (s Series) Lookup(month string) (float64, error) {
	if v, ok := s[month]; ok {
		return v, nil
	}
	if len(s) == 0 {
		return 0, fmt.Errorf("%w %s", ErrNoCpiDataForMonth, month)
	}
	keys := s.Months()

	if v, ok := s.midpoint(keys, month); ok {
		return v, nil
	}
	return s.nearest(keys, month)
}

// midpoint averages the closest months strictly before and after month.
func (s Series) midpoint(keys []string, month string) (float64, bool) {
	i, _ := slices.BinarySearch(keys, month)
	if i == 0 || i == len(keys) {
		return 0, false
	}
	prev, next := keys[i-1], keys[i]
	return (s[prev] + s[next]) / 2, true
}

// nearest returns the value of the month closest to month.
func (s Series) nearest(keys []string, month string) (float64, error) {
	target, err := date.MonthOrdinal(month)
	if err != nil {
		return 0, err
	}
	best, bestDist := "", -1
	for _, k := range keys {
		o, err := date.MonthOrdinal(k)
		if err != nil {
			continue // keys come from providers, ignore the malformed ones
		}
		dist := o - target
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = k, dist
		}
	}
	if bestDist < 0 {
		return 0, fmt.Errorf("%w %s", ErrNoCpiDataForMonth, month)
	}
	return s[best], nil
}

// Values resolves the index values for the months containing start and end.
func (s Series) Values(start, end date.Date) (startValue, endValue float64, err error) {
	if startValue, err = s.Lookup(start.MonthKey()); err != nil {
		return 0, 0, err
	}
	if endValue, err = s.Lookup(end.MonthKey()); err != nil {
		return 0, 0, err
	}
	return startValue, endValue, nil
}

// CpiEntry is a cached CPI series for one country.
type CpiEntry struct {
	Country     string     `json:"country"`
	Source      ProviderID `json:"source"`
	LastUpdated time.Time  `json:"last_updated"` // time of the successful write
	BaseYear    string     `json:"base_year"`
	Series      Series     `json:"series"`
}

// Stale reports whether the entry is older than StaleAfter at now.
func (e CpiEntry) Stale(now time.Time) bool { return now.Sub(e.LastUpdated) > StaleAfter }

// Outcome is a resolved CPI series and the degradations that happened while resolving it.
type Outcome struct {
	Series   Series
	Warnings []string
}
