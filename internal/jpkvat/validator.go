// =============================================================================
// sheet2jpk - Record Validator
// =============================================================================
//
// This module checks a record set against the filing rules before any
// document is written.
//
// VALIDATION ORDER (per record):
//   a. sequence number present and positive     -- gate
//      sequence number not used by an earlier record
//   b. relevant dates present and readable      -- gate
//   c. sale date inside the reporting period
//   d. counterparty name present
//   e. counterparty NIP present and valid
//   f. net amount present and non-negative
//   g. VAT amount present and non-negative
//
//   A failing gate ends the checks for that record. Every other failing step
//   is itemized, so a user can fix all problems of a record in one pass.
//
// ERROR HANDLING:
//   - Problems are collected and returned as data, never as Go errors
//   - Each failing record contributes exactly one RecordError
//   - An empty result means the record set is ready to file
//
// =============================================================================

package jpkvat

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATION RESULT TYPES
// =============================================================================

// Problem is a single failed check on a record.
type Problem struct {
	Field   Field
	Message string
}

// RecordError collects every problem found on one record.
type RecordError struct {
	Kind Kind

	// Number is the record's sequence number (0 when it is missing).
	Number int

	// Line is the source row number (0 when unknown).
	Line int

	Problems []Problem
}

// String renders the record reference followed by its problems.
func (e RecordError) String() string {
	var b strings.Builder
	b.WriteString(e.Reference())
	b.WriteString(":")
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.Message)
	}
	return b.String()
}

// Reference identifies the record for humans, e.g. "sales record 3 (row 7)".
func (e RecordError) Reference() string {
	ref := e.Kind.String() + " record"
	if e.Number > 0 {
		ref += fmt.Sprintf(" %d", e.Number)
	}
	if e.Line > 0 {
		ref += fmt.Sprintf(" (row %d)", e.Line)
	}
	return ref
}

// Has reports whether any problem concerns the given field.
func (e RecordError) Has(f Field) bool {
	for _, p := range e.Problems {
		if p.Field == f {
			return true
		}
	}
	return false
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// Validate checks every record against the reporting period [begin, end].
//
// PARAMETERS:
//   - begin, end: The inclusive period boundaries.
//   - records: One record set (all sales or all purchases).
//
// RETURNS:
//   - One RecordError per failing record, in input order. Empty when the
//     set is ready to file.
func Validate(begin, end time.Time, records []InvoiceRecord) []RecordError {
	var result []RecordError

	// firstLine maps a sequence number to the record that used it first.
	firstLine := make(map[int]int, len(records))

	for _, rec := range records {
		problems := checkRecord(begin, end, rec, firstLine)
		if len(problems) > 0 {
			result = append(result, RecordError{
				Kind:     rec.Kind,
				Number:   rec.Number,
				Line:     rec.Line,
				Problems: problems,
			})
		}
	}

	return result
}

// ValidateDeclaration validates sales and purchases concurrently. The result
// lists sales problems first, then purchase problems, each in record order.
func ValidateDeclaration(d Declaration) []RecordError {
	var (
		wg    sync.WaitGroup
		slots [2][]RecordError
	)

	for i, records := range [2][]InvoiceRecord{d.Sales, d.Purchases} {
		wg.Add(1)
		go func(i int, records []InvoiceRecord) {
			defer wg.Done()
			slots[i] = Validate(d.Begin, d.End, records)
		}(i, records)
	}
	wg.Wait()

	return append(slots[0], slots[1]...)
}

// checkRecord runs the ordered checks on a single record.
func checkRecord(begin, end time.Time, rec InvoiceRecord, firstLine map[int]int) []Problem {
	var problems []Problem
	add := func(f Field, format string, args ...any) {
		problems = append(problems, Problem{Field: f, Message: fmt.Sprintf(format, args...)})
	}

	// =========================================================================
	// (a) SEQUENCE NUMBER
	// =========================================================================

	switch {
	case rec.Finding(FieldNumber) != nil:
		add(FieldNumber, "sequence number: %v", rec.Finding(FieldNumber))
		return problems
	case rec.Number == 0:
		add(FieldNumber, "sequence number is missing")
		return problems
	case rec.Number < 0:
		add(FieldNumber, "sequence number %d must be positive", rec.Number)
		return problems
	}

	if line, seen := firstLine[rec.Number]; seen {
		if line > 0 {
			add(FieldNumber, "sequence number %d is already used by row %d", rec.Number, line)
		} else {
			add(FieldNumber, "sequence number %d is already used by an earlier record", rec.Number)
		}
	} else {
		firstLine[rec.Number] = rec.Line
	}

	// =========================================================================
	// (b) DATES
	// =========================================================================

	gate := len(problems)
	if rec.Kind == Purchases {
		checkDate(rec, FieldIssueDate, rec.IssueDate, "issue date", add)
	}
	checkDate(rec, FieldSaleDate, rec.SaleDate, "sale date", add)
	for _, p := range problems[gate:] {
		if p.Field == FieldIssueDate || p.Field == FieldSaleDate {
			return problems
		}
	}

	// =========================================================================
	// (c) PERIOD MEMBERSHIP
	// =========================================================================

	if !InPeriod(rec.SaleDate, begin, end) {
		add(FieldSaleDate, "sale date %s is outside the reporting period %s to %s",
			isoDate(rec.SaleDate), isoDate(begin), isoDate(end))
	}

	// =========================================================================
	// (d) COUNTERPARTY NAME
	// =========================================================================

	if !RequiredText(rec.Name) {
		add(FieldName, "counterparty name is missing")
	}

	// =========================================================================
	// (e) COUNTERPARTY NIP
	// =========================================================================

	switch {
	case !RequiredText(rec.TaxID):
		add(FieldTaxID, "counterparty NIP is missing")
	case !ValidTaxID(rec.TaxID):
		add(FieldTaxID, "counterparty NIP %q has an invalid format or checksum", rec.TaxID)
	}

	// =========================================================================
	// (f, g) AMOUNTS
	// =========================================================================

	checkAmount(rec, FieldNet, rec.Net, "net amount", add)
	checkAmount(rec, FieldVAT, rec.VAT, "VAT amount", add)

	return problems
}

func checkDate(rec InvoiceRecord, f Field, d time.Time, label string, add func(Field, string, ...any)) {
	if err := rec.Finding(f); err != nil {
		add(f, "%s: %v", label, err)
		return
	}
	if d.IsZero() {
		add(f, "%s is missing", label)
	}
}

func checkAmount(rec InvoiceRecord, f Field, v decimal.NullDecimal, label string, add func(Field, string, ...any)) {
	if err := rec.Finding(f); err != nil {
		if errors.Is(err, ErrNegativeAmount) {
			add(f, "%s must not be negative", label)
			return
		}
		add(f, "%s: %v", label, err)
		return
	}
	switch {
	case !v.Valid:
		add(f, "%s is missing", label)
	case v.Decimal.IsNegative():
		add(f, "%s must not be negative", label)
	}
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatReport renders validation results as an itemized, human-readable list.
func FormatReport(errs []RecordError) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation found problems in %d record(s):\n\n", len(errs))
	for i, e := range errs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.String())
	}
	return b.String()
}
