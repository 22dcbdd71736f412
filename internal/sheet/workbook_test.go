package sheet_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheet2jpk/internal/jpkvat"
	"github.com/ginjaninja78/sheet2jpk/internal/sheet"
	"github.com/ginjaninja78/sheet2jpk/internal/types"
)

var header = []any{
	"Rodzaj", "Okres", "LP", "Nr Dokumentu", "Data Wystawienia", "Data Sprzedaży",
	"Nazwa Kontrahenta", "Adres Kontrahenta", "NIP", "Netto", "Kwota VAT",
}

// writeWorkbook creates a workbook with a register sheet, a helper sheet and
// a hidden sheet.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Rejestr"))
	require.NoError(t, f.SetSheetRow("Rejestr", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Rejestr", cell, &row))
	}

	_, err := f.NewSheet("_lists")
	require.NoError(t, err)
	_, err = f.NewSheet("Archiwum")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetVisible("Archiwum", false))

	path := filepath.Join(t.TempDir(), "rejestr.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func openWorkbook(t *testing.T, path string) *sheet.Workbook {
	t.Helper()

	wb, err := sheet.Open(path, types.DefaultColumns(), sheet.DefaultLayout())
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestWorkbook_Sheets(t *testing.T) {
	t.Parallel()

	wb := openWorkbook(t, writeWorkbook(t, nil))

	assert.Equal(t, []string{"Rejestr"}, wb.Sheets())
}

func TestWorkbook_Read(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]any{
		{"sprzedaż", "", 1, "FV/1/11/2023", "", time.Date(2023, 11, 15, 0, 0, 0, 0, time.UTC),
			"Kowalski Sp. z o.o.", "ul. Prosta 1", "856-734-62-15", 100.0, 23.0},
		{"Zakup", "", 1, "123/2023", "2023-11-02", "2023-11-04",
			"Hurtownia Nowak", "ul. Krzywa 2", "1234563218", "50,00", "11,50"},
		{"S", "2023/12", 2, "FV/2/12/2023", "", "2023-11-30",
			"Nowak", "", "8567346215", 10, 2.3},
		{},
		{"", "", "", "", "", "", "Razem", "", "", 160, 36.8},
		{"korekta", "", 9, "", "", "2023-11-01"},
		{"sprzedaż", "", 3, "", "", "someday"},
	})

	ledger, err := openWorkbook(t, path).Read("Rejestr")
	require.NoError(t, err)

	assert.Equal(t, []string{"2023/11", "2023/12"}, ledger.Periods())
	require.Len(t, ledger.Sales["2023/11"], 1)
	require.Len(t, ledger.Purchases["2023/11"], 1)
	require.Len(t, ledger.Sales["2023/12"], 1)
	assert.Equal(t, 2, ledger.Count("2023/11"))

	// excelize stores time values as date serial numbers
	s := jpkvat.FromRow(jpkvat.Sales, ledger.Sales["2023/11"][0], types.DefaultColumns())
	assert.Equal(t, 2, s.Line)
	assert.Equal(t, 1, s.Number)
	assert.Equal(t, time.Date(2023, 11, 15, 0, 0, 0, 0, time.UTC), s.SaleDate)
	assert.Equal(t, "8567346215", jpkvat.CompactTaxID(s.TaxID))
	assert.Equal(t, "100.00", jpkvat.FormatAmount(s.Net.Decimal))
	assert.Empty(t, s.Findings)

	p := jpkvat.FromRow(jpkvat.Purchases, ledger.Purchases["2023/11"][0], types.DefaultColumns())
	assert.Equal(t, time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC), p.IssueDate)
	assert.Equal(t, "11.50", jpkvat.FormatAmount(p.VAT.Decimal))

	// the period column wins over the sale date
	moved := jpkvat.FromRow(jpkvat.Sales, ledger.Sales["2023/12"][0], types.DefaultColumns())
	assert.Equal(t, 2, moved.Number)

	require.Len(t, ledger.Skipped, 3)
	assert.Equal(t, 6, ledger.Skipped[0].Line)
	assert.Equal(t, "record kind is empty", ledger.Skipped[0].Reason)
	assert.Contains(t, ledger.Skipped[1].Reason, `unknown record kind "korekta"`)
	assert.Contains(t, ledger.Skipped[2].Reason, "no period")
}

func TestWorkbook_MissingColumn(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"LP", "Netto"}))
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, err := openWorkbook(t, path).Read("Sheet1")
	require.ErrorIs(t, err, sheet.ErrMissingColumn)
}

func TestWorkbook_CustomLayout(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Typ", "Lp.", "Data", "Kontrahent", "NIP", "Netto", "VAT"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"OUT", 1, "2024-02-29", "Nowak", "8567346215", 1, 0.23}))
	path := filepath.Join(t.TempDir(), "custom.xlsm")
	require.NoError(t, f.SaveAs(path))

	cols := types.Columns{Number: "Lp.", SaleDate: "Data", Name: "Kontrahent", VAT: "VAT"}
	layout := sheet.Layout{KindColumn: "Typ", SalesMarkers: []string{"out"}, PurchaseMarkers: []string{"in"}, HeaderRow: 2}

	wb, err := sheet.Open(path, cols, layout)
	require.NoError(t, err)
	defer wb.Close()

	ledger, err := wb.Read("Sheet1")
	require.NoError(t, err)
	require.Len(t, ledger.Sales["2024/02"], 1)
	assert.Equal(t, 3, ledger.Sales["2024/02"][0].Line)
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := sheet.Open(filepath.Join(t.TempDir(), "none.xlsx"), types.DefaultColumns(), sheet.DefaultLayout())
	require.Error(t, err)
}
