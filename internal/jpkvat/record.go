package jpkvat

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sheet2jpk/internal/types"
)

// Kind distinguishes sales records from purchase records.
type Kind int

const (
	Sales Kind = iota
	Purchases
)

// String returns a human-readable name of the record set.
func (k Kind) String() string {
	switch k {
	case Sales:
		return "sales"
	case Purchases:
		return "purchases"
	default:
		return "unknown"
	}
}

// Field names an InvoiceRecord attribute in validation problems.
type Field string

const (
	FieldNumber    Field = "number"
	FieldDocument  Field = "document"
	FieldIssueDate Field = "issue_date"
	FieldSaleDate  Field = "sale_date"
	FieldName      Field = "name"
	FieldAddress   Field = "address"
	FieldTaxID     Field = "tax_id"
	FieldNet       Field = "net"
	FieldVAT       Field = "vat"
)

// FieldError records a cell that could not be converted at the row boundary.
type FieldError struct {
	Field Field
	Err   error
}

// InvoiceRecord is one sales or purchase row with typed fields.
//
// Zero values mean "absent": Number 0, zero dates, empty strings, and
// amounts with Valid == false. Cells that were present but unreadable are
// listed in Findings so the validator can tell them apart from empty ones.
type InvoiceRecord struct {
	Kind Kind

	// Line is the source row number, 0 when the record was not read from a sheet.
	Line int

	Number   int
	Document string

	// IssueDate is only used for purchases.
	IssueDate time.Time
	SaleDate  time.Time

	Name    string
	Address string
	TaxID   string

	Net decimal.NullDecimal
	VAT decimal.NullDecimal

	Findings []FieldError
}

// Finding returns the conversion error recorded for a field, or nil.
func (r InvoiceRecord) Finding(f Field) error {
	for _, fe := range r.Findings {
		if fe.Field == f {
			return fe.Err
		}
	}
	return nil
}

// DocumentNumber returns the invoice number used in the output, falling back
// to the sequence number when the row did not carry one.
func (r InvoiceRecord) DocumentNumber() string {
	if RequiredText(r.Document) {
		return strings.TrimSpace(r.Document)
	}
	return strconv.Itoa(r.Number)
}

// FromRow converts a driver row into a typed record. It never fails: cells
// that cannot be converted are left at their zero value and reported in
// Findings.
func FromRow(kind Kind, row types.Row, cols types.Columns) InvoiceRecord {
	rec := InvoiceRecord{
		Kind:     kind,
		Line:     row.Line,
		Document: row.Text(cols.Document),
		Name:     row.Text(cols.Name),
		Address:  row.Text(cols.Address),
		TaxID:    row.Text(cols.TaxID),
	}

	note := func(f Field, err error) {
		if err != nil && !errors.Is(err, ErrEmpty) {
			rec.Findings = append(rec.Findings, FieldError{Field: f, Err: err})
		}
	}

	n, err := parseNumber(row.Get(cols.Number))
	rec.Number = n
	note(FieldNumber, err)

	if kind == Purchases {
		rec.IssueDate, err = ParseDate(row.Get(cols.IssueDate))
		note(FieldIssueDate, err)
	}
	rec.SaleDate, err = ParseDate(row.Get(cols.SaleDate))
	note(FieldSaleDate, err)

	rec.Net, err = parseNullAmount(row.Get(cols.Net))
	note(FieldNet, err)
	rec.VAT, err = parseNullAmount(row.Get(cols.VAT))
	note(FieldVAT, err)

	return rec
}

func parseNullAmount(value any) (decimal.NullDecimal, error) {
	d, err := ParseAmount(value)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// parseNumber reads a sequence number. Spreadsheets often store "1" as 1.0.
// Values outside the int32 range are rejected.
func parseNumber(value any) (int, error) {
	var f float64

	switch v := value.(type) {
	case nil:
		return 0, formatErr("number", value, ErrEmpty)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, formatErr("number", value, ErrEmpty)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
		if err != nil {
			return 0, formatErr("number", value, errors.New("not a whole number"))
		}
		f = parsed
	default:
		return 0, formatErr("number", value, errors.New("unsupported value type"))
	}

	switch {
	case math.IsNaN(f) || f != math.Trunc(f):
		return 0, formatErr("number", value, errors.New("not a whole number"))
	case f > math.MaxInt32 || f < math.MinInt32:
		return 0, formatErr("number", value, errors.New("out of range"))
	}
	return int(f), nil
}
