package converter

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sheet2jpk/internal/jpkvat"
)

// ConfirmationTable renders every record of a declaration for review before
// the document is written.
func ConfirmationTable(d jpkvat.Declaration) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (NIP %s), period %s to %s\n",
		d.Name, jpkvat.FormatTaxID(d.TaxID), d.Begin.Format("2006-01-02"), d.End.Format("2006-01-02"))

	writeSection(&b, "Sales", d.Sales, d.SalesTotals())
	writeSection(&b, "Purchases", d.Purchases, d.PurchaseTotals())

	return b.String()
}

func writeSection(b *strings.Builder, title string, records []jpkvat.InvoiceRecord, totals jpkvat.Totals) {
	fmt.Fprintf(b, "\n%s:\n", title)
	if len(records) == 0 {
		b.WriteString("  (none)\n")
		return
	}

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "LP\tDate\tCounterparty\tAddress\tNIP\tNet\tVAT\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Number,
			r.SaleDate.Format("2006-01-02"),
			r.Name,
			r.Address,
			jpkvat.FormatTaxID(r.TaxID),
			money(r.Net.Decimal),
			money(r.VAT.Decimal),
		)
	}
	fmt.Fprintf(tw, "\t\t\t\tTotal (%d)\t%s\t%s\t\n", totals.Count, money(totals.Net), money(totals.VAT))
	_ = tw.Flush()
}

func money(d decimal.Decimal) string {
	return jpkvat.FormatAmount(d) + " zł"
}
