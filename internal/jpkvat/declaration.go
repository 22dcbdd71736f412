package jpkvat

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Declaration is the document-level aggregate of one filing.
type Declaration struct {
	TaxID string
	Name  string
	Email string

	// Begin and End are the inclusive period boundaries.
	Begin time.Time
	End   time.Time

	// Version is the purpose flag: 0 for an original filing.
	Version int

	Sales     []InvoiceRecord
	Purchases []InvoiceRecord
}

// NewDeclaration validates the company identity and builds a declaration
// that owns copies of both record sets.
func NewDeclaration(taxID, name, email string, period Period, version int, sales, purchases []InvoiceRecord) (Declaration, error) {
	if !ValidTaxID(taxID) {
		return Declaration{}, fmt.Errorf("company NIP %q: %w", taxID, ErrInvalidTaxID)
	}
	if !RequiredText(name) {
		return Declaration{}, ErrMissingCompanyName
	}
	if version < 0 {
		return Declaration{}, fmt.Errorf("version %d: %w", version, ErrInvalidVersion)
	}

	return Declaration{
		TaxID:     CompactTaxID(taxID),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Begin:     period.Begin(),
		End:       period.End(),
		Version:   version,
		Sales:     slices.Clone(sales),
		Purchases: slices.Clone(purchases),
	}, nil
}

// Totals are the derived aggregates of one record set.
type Totals struct {
	Count int
	Net   decimal.Decimal
	VAT   decimal.Decimal
}

// Summarize sums net and VAT amounts exactly. Records without a valid amount
// contribute nothing to that sum.
func Summarize(records []InvoiceRecord) Totals {
	t := Totals{Count: len(records), Net: decimal.Zero, VAT: decimal.Zero}
	for _, r := range records {
		if r.Net.Valid {
			t.Net = t.Net.Add(r.Net.Decimal)
		}
		if r.VAT.Valid {
			t.VAT = t.VAT.Add(r.VAT.Decimal)
		}
	}
	return t
}

// SalesTotals returns the derived sales aggregates.
func (d Declaration) SalesTotals() Totals {
	return Summarize(d.Sales)
}

// PurchaseTotals returns the derived purchase aggregates.
func (d Declaration) PurchaseTotals() Totals {
	return Summarize(d.Purchases)
}

// FormatAmount renders an amount with exactly two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
