package jpkvat

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a reporting period: one calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod returns the period for the given year and month.
func NewPeriod(year int, month time.Month) (Period, error) {
	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("period year %d out of range", year)
	}
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("period month %d out of range", month)
	}
	return Period{Year: year, Month: month}, nil
}

// ParsePeriod parses a period key such as "2023/11" or "2023-11".
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	sep := strings.IndexAny(s, "/-")
	if sep < 0 {
		return Period{}, fmt.Errorf("period %q: expected YYYY/MM", s)
	}

	year, err := strconv.Atoi(s[:sep])
	if err != nil {
		return Period{}, fmt.Errorf("period %q: bad year: %w", s, err)
	}
	month, err := strconv.Atoi(s[sep+1:])
	if err != nil {
		return Period{}, fmt.Errorf("period %q: bad month: %w", s, err)
	}

	return NewPeriod(year, time.Month(month))
}

// PeriodOf returns the period containing the given date.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Begin returns the first calendar day of the period.
func (p Period) Begin() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last calendar day of the period.
func (p Period) End() time.Time {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether d falls within the period.
func (p Period) Contains(d time.Time) bool {
	return InPeriod(d, p.Begin(), p.End())
}

// String returns the period key in "YYYY/MM" form.
func (p Period) String() string {
	return fmt.Sprintf("%04d/%02d", p.Year, int(p.Month))
}
