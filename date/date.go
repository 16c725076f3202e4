// Package date provides a day-granularity Date and the month keys used to
// index monthly price-index series.
package date

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// MonthFormat is the format of a month key, e.g. "2023-03". Month keys sort
// lexicographically in chronological order.
const MonthFormat = "2006-01"

const Day = 24 * time.Hour

// Date represents a date with day-level granularity.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time { return d.time() }

// Format returns a textual representation of the date value formatted according to the layout defined by the argument.
//
//	See the documentation for the [time.Format].
func (d Date) Format(format string) string { return d.time().Format(format) }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// MonthKey returns the "YYYY-MM" key of the month containing d.
func (d Date) MonthKey() string { return d.time().Format(MonthFormat) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// FirstOfMonth returns the first day of the month containing d.
func (d Date) FirstOfMonth() Date { return New(d.y, d.m, 1) }

// DaysUntil returns the number of days from d to x, negative if x is before d.
func (d Date) DaysUntil(x Date) int { return int(x.time().Sub(d.time()) / Day) }

// YearsUntil returns the fractional number of years from d to x, counting 365.25 days a year.
func (d Date) YearsUntil(x Date) float64 { return float64(d.DaysUntil(x)) / 365.25 }

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	// We use a slightly more permisive format for read, to support 2025-7-1 instead of 2025-07-01
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, "YYYY-MM-DD", err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// MonthOrdinal returns year*12+month for a "YYYY-MM" key.
//
// Ordinals of two keys differ by the number of months between them.
func MonthOrdinal(key string) (int, error) {
	if len(key) != 7 || key[4] != '-' {
		return 0, fmt.Errorf("invalid month key %q want format %q", key, "YYYY-MM")
	}
	y, err := strconv.Atoi(key[:4])
	if err != nil {
		return 0, fmt.Errorf("invalid year in month key %q: %w", key, err)
	}
	m, err := strconv.Atoi(key[5:])
	if err != nil || m < 1 || m > 12 {
		return 0, fmt.Errorf("invalid month in month key %q", key)
	}
	return y*12 + m, nil
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
