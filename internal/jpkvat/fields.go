// =============================================================================
// sheet2jpk - Field Validators
// =============================================================================
//
// Standalone predicates and normalizers for the individual invoice fields:
//   - dates           (ParseDate, InPeriod)
//   - currency amounts (ParseAmount)
//   - tax identifiers  (ValidTaxID, CompactTaxID, FormatTaxID)
//   - required text    (RequiredText)
//
// All functions are pure. Parse failures are returned as *FormatError values,
// never as panics.
//
// =============================================================================

package jpkvat

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// DATES
// =============================================================================

// dateLayouts are tried in order for textual dates.
//
// CUSTOMIZATION: Add layouts here when a workbook uses another date style.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2006/01/02",
	"02-01-2006",
	"2.1.2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate converts a cell value into a calendar date (UTC midnight).
//
// Accepted inputs:
//   - time.Time
//   - strings in any of dateLayouts
//   - spreadsheet date serial numbers (int, int64, float64)
//
// RETURNS:
//   - The date, or a *FormatError wrapping ErrEmpty for blank input.
func ParseDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, formatErr("date", value, ErrEmpty)

	case time.Time:
		if v.IsZero() {
			return time.Time{}, formatErr("date", value, ErrEmpty)
		}
		return dateOnly(v), nil

	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, formatErr("date", value, ErrEmpty)
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dateOnly(t), nil
			}
		}
		return time.Time{}, formatErr("date", value, errors.New("unrecognized date format"))

	case int:
		return serialDate(float64(v), value)
	case int64:
		return serialDate(float64(v), value)
	case float64:
		return serialDate(v, value)

	default:
		return time.Time{}, formatErr("date", value, errors.New("unsupported value type"))
	}
}

func serialDate(serial float64, raw any) (time.Time, error) {
	if serial <= 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, formatErr("date", raw, errors.New("not a date serial number"))
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, formatErr("date", raw, err)
	}
	return dateOnly(t), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InPeriod reports whether begin <= d <= end, comparing calendar days only.
func InPeriod(d, begin, end time.Time) bool {
	d, begin, end = dateOnly(d), dateOnly(begin), dateOnly(end)
	return !d.Before(begin) && !d.After(end)
}

// =============================================================================
// AMOUNTS
// =============================================================================

// ParseAmount converts a cell value into a non-negative decimal amount.
//
// Strings may use a comma or a dot as decimal separator, spaces or
// non-breaking spaces as thousands separators, and a trailing "zł" or "PLN".
func ParseAmount(value any) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)

	switch v := value.(type) {
	case nil:
		return decimal.Zero, formatErr("amount", value, ErrEmpty)
	case decimal.Decimal:
		d = v
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, formatErr("amount", value, errors.New("not a finite number"))
		}
		d = decimal.NewFromFloat(v)
	case string:
		s, nerr := normalizeAmount(v)
		if nerr != nil {
			return decimal.Zero, formatErr("amount", value, nerr)
		}
		if s == "" {
			return decimal.Zero, formatErr("amount", value, ErrEmpty)
		}
		d, err = decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, formatErr("amount", value, errors.New("not a number"))
		}
	default:
		return decimal.Zero, formatErr("amount", value, errors.New("unsupported value type"))
	}

	if d.IsNegative() {
		return decimal.Zero, formatErr("amount", value, ErrNegativeAmount)
	}
	return d, nil
}

// normalizeAmount strips currency suffixes and grouping and returns the
// amount with a dot as decimal separator.
//
// SEPARATORS:
//   - Both "," and "." present: the last one is the decimal separator
//     ("1.234,56" and "1,234.56" both read as 1234.56).
//   - One comma: decimal separator ("1234,56").
//   - Several commas and no dot: rejected ("1,234,567").
//   - Several dots and no comma: thousands separators ("1.234.567").
//   - One dot: decimal separator.
//
// Groups after a thousands separator must have exactly 3 digits.
func normalizeAmount(s string) (string, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, suffix := range []string{"zł", "pln"} {
		if strings.HasSuffix(lower, suffix) {
			s = s[:len(s)-len(suffix)]
			break
		}
	}

	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)

	var decimalSep, groupSep string
	commas, dots := strings.Count(s, ","), strings.Count(s, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			decimalSep, groupSep = ",", "."
		} else {
			decimalSep, groupSep = ".", ","
		}
	case commas > 1:
		return "", ErrAmountGrouping
	case commas == 1:
		decimalSep = ","
	case dots > 1:
		groupSep = "."
	default:
		decimalSep = "."
	}

	whole, fraction, hasFraction := s, "", false
	if i := strings.LastIndex(s, decimalSep); decimalSep != "" && i >= 0 {
		whole, fraction, hasFraction = s[:i], s[i+1:], true
	}
	if groupSep != "" && strings.Contains(fraction, groupSep) {
		return "", ErrAmountGrouping
	}

	if groupSep != "" {
		groups := strings.Split(whole, groupSep)
		for i, g := range groups {
			digits := strings.TrimLeft(g, "+-")
			if (i == 0 && (digits == "" || len(digits) > 3)) || (i > 0 && len(g) != 3) {
				return "", ErrAmountGrouping
			}
		}
		whole = strings.Join(groups, "")
	}

	if hasFraction {
		return whole + "." + fraction, nil
	}
	return whole, nil
}

// =============================================================================
// TAX IDENTIFIERS (NIP)
// =============================================================================

var nipWeights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// CompactTaxID strips separators, surrounding whitespace and a "PL" prefix.
func CompactTaxID(s string) string {
	s = strings.NewReplacer(" ", "", "-", "", "\u00a0", "").Replace(strings.TrimSpace(s))
	s = strings.ToUpper(s)
	return strings.TrimPrefix(s, "PL")
}

// ValidTaxID reports whether s is a valid Polish NIP: ten digits whose
// weighted sum modulo 11 equals the last digit.
func ValidTaxID(s string) bool {
	nip := CompactTaxID(s)
	if len(nip) != 10 {
		return false
	}

	sum := 0
	for i := 0; i < 10; i++ {
		c := nip[i]
		if c < '0' || c > '9' {
			return false
		}
		if i < 9 {
			sum += int(c-'0') * nipWeights[i]
		}
	}

	check := sum % 11
	return check != 10 && check == int(nip[9]-'0')
}

// FormatTaxID renders a NIP as XXX-XXX-XX-XX. Values that are not ten
// digits after compaction are returned trimmed but otherwise unchanged.
func FormatTaxID(s string) string {
	nip := CompactTaxID(s)
	if len(nip) != 10 {
		return strings.TrimSpace(s)
	}
	if _, err := strconv.ParseUint(nip, 10, 64); err != nil {
		return strings.TrimSpace(s)
	}
	return nip[0:3] + "-" + nip[3:6] + "-" + nip[6:8] + "-" + nip[8:10]
}

// =============================================================================
// TEXT
// =============================================================================

// RequiredText reports whether s is non-empty after trimming.
func RequiredText(s string) bool {
	return strings.TrimSpace(s) != ""
}
