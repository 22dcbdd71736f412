// =============================================================================
// sheet2jpk - Document Builder
// =============================================================================
//
// This module serializes a Declaration into the JPK_VAT XML document. Element
// names come from a Schema table (schema.go); nothing here hard-codes them.
//
// XML STRUCTURE (JPK_VAT (3)):
//
//   <tns:JPK xmlns:tns="...">
//     <tns:Naglowek>...</tns:Naglowek>        <!-- header: form, purpose, dates -->
//     <tns:Podmiot1>...</tns:Podmiot1>        <!-- filing company -->
//     <tns:SprzedazWiersz>...</tns:SprzedazWiersz>  <!-- one per sales record -->
//     <tns:SprzedazCtrl>...</tns:SprzedazCtrl>      <!-- sales totals -->
//     <tns:ZakupWiersz>...</tns:ZakupWiersz>        <!-- one per purchase record -->
//     <tns:ZakupCtrl>...</tns:ZakupCtrl>            <!-- purchase totals -->
//   </tns:JPK>
//
// DETERMINISM:
//   Output depends only on the Declaration, the Schema and Builder.Clock.
//   The creation timestamp is the only value read from the clock.
//
// =============================================================================

package jpkvat

import (
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// createdLayout is the xsd:dateTime form used for the creation timestamp.
const createdLayout = "2006-01-02T15:04:05"

// =============================================================================
// BUILDER
// =============================================================================

// Builder writes Declarations as JPK_VAT documents.
type Builder struct {
	// Schema is the element-name table. Defaults to JPKVAT3.
	Schema Schema

	// Clock supplies the creation timestamp. Defaults to time.Now.
	Clock func() time.Time

	// SystemName is written as the name of the producing system.
	SystemName string

	// Indent is the string used for one level of indentation.
	Indent string
}

// NewBuilder returns a Builder with the JPK_VAT (3) table and the system clock.
func NewBuilder() *Builder {
	return &Builder{
		Schema:     JPKVAT3,
		Clock:      time.Now,
		SystemName: "sheet2jpk",
		Indent:     "  ",
	}
}

// Write serializes d to w in a single write.
//
// The caller must have validated d: a valid company NIP and record sets for
// which Validate returns no errors. Any violation, structural or a record
// that Validate would reject, panics with a *PreconditionViolation before
// anything is written. A failing writer is reported as *WriteError.
func (b *Builder) Write(w io.Writer, d Declaration) error {
	checkPreconditions(d)

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	writeElement(&buf, b.buildDocument(d), b.indent(), 0)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// Write serializes one filing with the default Builder.
//
// PARAMETERS:
//   - w: The output sink. Its lifecycle belongs to the caller.
//   - companyTaxID, companyName, email: The filing company; the NIP must
//     already be validated.
//   - begin, end: The reporting period boundaries.
//   - sales, purchases: Validator-approved record sets.
//   - version: The purpose flag, 0 for an original filing.
func Write(w io.Writer, companyTaxID, companyName, email string, begin, end time.Time, sales, purchases []InvoiceRecord, version int) error {
	return NewBuilder().Write(w, Declaration{
		TaxID:     companyTaxID,
		Name:      companyName,
		Email:     email,
		Begin:     begin,
		End:       end,
		Version:   version,
		Sales:     sales,
		Purchases: purchases,
	})
}

func (b *Builder) indent() string {
	if b.Indent == "" {
		return "  "
	}
	return b.Indent
}

func (b *Builder) schema() Schema {
	if b.Schema.Root == "" {
		return JPKVAT3
	}
	return b.Schema
}

func (b *Builder) now() time.Time {
	if b.Clock == nil {
		return time.Now()
	}
	return b.Clock()
}

// =============================================================================
// PRECONDITIONS
// =============================================================================

func checkPreconditions(d Declaration) {
	if !RequiredText(d.TaxID) {
		violate("company NIP is empty")
	}
	if !ValidTaxID(d.TaxID) {
		violate("company NIP %q is not valid", d.TaxID)
	}
	if !RequiredText(d.Name) {
		violate("company name is empty")
	}
	if d.Version < 0 {
		violate("negative document version %d", d.Version)
	}
	if d.Begin.IsZero() || d.End.IsZero() || d.End.Before(d.Begin) {
		violate("invalid period %s to %s", isoDate(d.Begin), isoDate(d.End))
	}
	checkRecords(Sales, d.Sales)
	checkRecords(Purchases, d.Purchases)

	// Only filing-ready records may reach the document.
	for _, records := range [][]InvoiceRecord{d.Sales, d.Purchases} {
		if errs := Validate(d.Begin, d.End, records); len(errs) > 0 {
			violate("%s is not ready to file: %s", errs[0].Reference(), errs[0].Problems[0].Message)
		}
	}
}

func checkRecords(kind Kind, records []InvoiceRecord) {
	for i, r := range records {
		switch {
		case r.Kind != kind:
			violate("%s record at index %d is in the %s set", r.Kind, i, kind)
		case r.Number <= 0:
			violate("%s record at index %d has no sequence number", kind, i)
		case r.SaleDate.IsZero():
			violate("%s record %d has no sale date", kind, r.Number)
		case !r.Net.Valid || !r.VAT.Valid:
			violate("%s record %d has no amounts", kind, r.Number)
		}
	}
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// element is a generic XML element of the output tree.
type element struct {
	Name     string
	Attrs    []attr
	Value    string
	Children []element
}

type attr struct {
	Name  string
	Value string
}

func (b *Builder) buildDocument(d Declaration) element {
	s := b.schema()
	q := func(local string) string { return s.Prefix + ":" + local }
	leaf := func(local, value string) element { return element{Name: q(local), Value: value} }

	root := element{Name: q(s.Root)}
	root.Attrs = append(root.Attrs, attr{Name: "xmlns:" + s.Prefix, Value: s.Namespace})

	// Map order is random; sort prefixes for deterministic output.
	prefixes := make([]string, 0, len(s.ExtraNamespaces))
	for p := range s.ExtraNamespaces {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		root.Attrs = append(root.Attrs, attr{Name: "xmlns:" + p, Value: s.ExtraNamespaces[p]})
	}

	// =========================================================================
	// HEADER
	// =========================================================================

	h := s.Header
	header := element{Name: q(h.Element)}
	header.Children = append(header.Children,
		element{
			Name: q(h.FormCode),
			Attrs: []attr{
				{Name: h.SystemCodeAttr, Value: h.SystemCodeValue},
				{Name: h.SchemaVersionAttr, Value: h.SchemaVersion},
			},
			Value: h.FormCodeValue,
		},
		leaf(h.Variant, h.VariantValue),
		leaf(h.Purpose, strconv.Itoa(d.Version)),
		leaf(h.Created, b.now().Format(createdLayout)),
		leaf(h.DateFrom, isoDate(d.Begin)),
		leaf(h.DateTo, isoDate(d.End)),
		leaf(h.SystemName, b.SystemName),
	)
	root.Children = append(root.Children, header)

	subject := element{Name: q(s.Subject.Element)}
	subject.Children = append(subject.Children,
		leaf(s.Subject.TaxID, CompactTaxID(d.TaxID)),
		leaf(s.Subject.Name, strings.TrimSpace(d.Name)),
	)
	if RequiredText(d.Email) {
		subject.Children = append(subject.Children, leaf(s.Subject.Email, strings.TrimSpace(d.Email)))
	}
	root.Children = append(root.Children, subject)

	// =========================================================================
	// DETAIL RECORDS AND TOTALS
	// =========================================================================

	root.Children = append(root.Children, recordSet(q, s.Sales, s.SalesCtrl, d.Sales)...)
	root.Children = append(root.Children, recordSet(q, s.Purchases, s.PurchCtrl, d.Purchases)...)

	return root
}

// recordSet builds the detail rows of one set followed by its control block.
func recordSet(q func(string) string, tags RowTags, ctrl CtrlTags, records []InvoiceRecord) []element {
	out := make([]element, 0, len(records)+1)
	for _, r := range records {
		out = append(out, recordElement(q, tags, r))
	}

	totals := Summarize(records)
	c := element{Name: q(ctrl.Element)}
	c.Children = append(c.Children, element{Name: q(ctrl.Count), Value: strconv.Itoa(totals.Count)})
	if ctrl.Net != "" {
		c.Children = append(c.Children, element{Name: q(ctrl.Net), Value: FormatAmount(totals.Net)})
	}
	c.Children = append(c.Children, element{Name: q(ctrl.VAT), Value: FormatAmount(totals.VAT)})

	return append(out, c)
}

func recordElement(q func(string) string, tags RowTags, r InvoiceRecord) element {
	issued := r.IssueDate
	if issued.IsZero() {
		issued = r.SaleDate
	}

	leaf := func(local, value string) element { return element{Name: q(local), Value: value} }
	return element{
		Name: q(tags.Element),
		Children: []element{
			leaf(tags.Number, strconv.Itoa(r.Number)),
			leaf(tags.TaxID, CompactTaxID(r.TaxID)),
			leaf(tags.Name, strings.TrimSpace(r.Name)),
			leaf(tags.Address, strings.TrimSpace(r.Address)),
			leaf(tags.Document, r.DocumentNumber()),
			leaf(tags.IssueDate, isoDate(issued)),
			leaf(tags.SaleDate, isoDate(r.SaleDate)),
			leaf(tags.Net, FormatAmount(r.Net.Decimal)),
			leaf(tags.VAT, FormatAmount(r.VAT.Decimal)),
		},
	}
}

// =============================================================================
// MARSHALING
// =============================================================================

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, e element, indent string, level int) {
	pad := strings.Repeat(indent, level)

	buffer.WriteString(pad)
	buffer.WriteString("<")
	buffer.WriteString(e.Name)
	for _, a := range e.Attrs {
		buffer.WriteString(" ")
		buffer.WriteString(a.Name)
		buffer.WriteString(`="`)
		buffer.WriteString(escapeXML(a.Value))
		buffer.WriteString(`"`)
	}

	if len(e.Children) == 0 && e.Value == "" {
		buffer.WriteString("/>\n")
		return
	}
	buffer.WriteString(">")

	if len(e.Children) == 0 {
		buffer.WriteString(escapeXML(e.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range e.Children {
			writeElement(buffer, child, indent, level+1)
		}
		buffer.WriteString(pad)
	}

	buffer.WriteString("</")
	buffer.WriteString(e.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes markup characters and drops runes XML 1.0 cannot carry.
func escapeXML(s string) string {
	var buffer strings.Builder

	for _, r := range s {
		switch {
		case r == '&':
			buffer.WriteString("&amp;")
		case r == '<':
			buffer.WriteString("&lt;")
		case r == '>':
			buffer.WriteString("&gt;")
		case r == '"':
			buffer.WriteString("&quot;")
		case r == '\'':
			buffer.WriteString("&apos;")
		case r < 0x20 && r != '\t' && r != '\n' && r != '\r':
			// not representable in XML 1.0
		case r == 0xFFFE || r == 0xFFFF:
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
