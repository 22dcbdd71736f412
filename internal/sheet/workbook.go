// =============================================================================
// sheet2jpk - Workbook Driver
// =============================================================================
//
// This module reads invoice registers from XLSX workbooks. One sheet holds
// both sales and purchase rows; a kind column tells them apart.
//
// SHEET STRUCTURE (default captions, configurable):
//
//   | Rodzaj   | Okres   | LP | Nr Dokumentu | Data Wystawienia | Data Sprzedaży | Nazwa Kontrahenta | Adres Kontrahenta | NIP        | Netto  | Kwota VAT |
//   |----------|---------|----|--------------|------------------|----------------|-------------------|-------------------|------------|--------|-----------|
//   | sprzedaż | 2023/11 | 1  | FV/1/11/2023 |                  | 2023-11-15     | Kowalski Sp. z o.o| ul. Prosta 1      | 8567346215 | 100,00 | 23,00     |
//   | zakup    |         | 1  | 123/2023     | 2023-11-02       | 2023-11-04     | Hurtownia Nowak   | ul. Krzywa 2      | 1234563218 | 50,00  | 11,50     |
//
//   The period column is optional. When it is absent or blank, the period is
//   taken from the sale date.
//
// CUSTOMIZATION:
//   - Change the captions in the `columns:` and `layout:` sections of config.yaml
//   - Add kind markers to Layout when a register uses other labels
//
// =============================================================================

package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheet2jpk/internal/jpkvat"
	"github.com/ginjaninja78/sheet2jpk/internal/types"
)

// SupportedExtensions lists the workbook file extensions the driver opens.
var SupportedExtensions = []string{".xlsx", ".xlsm"}

// ErrMissingColumn is returned when the header row lacks a required column.
var ErrMissingColumn = errors.New("required column not found in header row")

// =============================================================================
// LAYOUT CONFIGURATION
// =============================================================================

// Layout describes where the driver finds the record kind and period.
type Layout struct {
	// KindColumn is the caption of the column holding the record kind.
	// Default: "Rodzaj"
	KindColumn string `yaml:"kind_column"`

	// SalesMarkers are the kind values of sales rows (case-insensitive).
	SalesMarkers []string `yaml:"sales_markers"`

	// PurchaseMarkers are the kind values of purchase rows (case-insensitive).
	PurchaseMarkers []string `yaml:"purchase_markers"`

	// PeriodColumn is the caption of the optional period column.
	// Default: "Okres"
	PeriodColumn string `yaml:"period_column"`

	// HeaderRow is the 1-based row number holding the column captions.
	// Default: 1
	HeaderRow int `yaml:"header_row"`
}

// DefaultLayout returns the layout of the reference workbook.
func DefaultLayout() Layout {
	return Layout{
		KindColumn:      "Rodzaj",
		SalesMarkers:    []string{"sprzedaż", "sprzedaz", "s"},
		PurchaseMarkers: []string{"zakup", "zakupy", "z"},
		PeriodColumn:    "Okres",
		HeaderRow:       1,
	}
}

// WithDefaults fills every unset field from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()
	if strings.TrimSpace(l.KindColumn) == "" {
		l.KindColumn = d.KindColumn
	}
	if len(l.SalesMarkers) == 0 {
		l.SalesMarkers = d.SalesMarkers
	}
	if len(l.PurchaseMarkers) == 0 {
		l.PurchaseMarkers = d.PurchaseMarkers
	}
	if strings.TrimSpace(l.PeriodColumn) == "" {
		l.PeriodColumn = d.PeriodColumn
	}
	if l.HeaderRow < 1 {
		l.HeaderRow = d.HeaderRow
	}
	return l
}

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is an open spreadsheet file.
type Workbook struct {
	path   string
	file   *excelize.File
	cols   types.Columns
	layout Layout
}

// Open opens the workbook at path.
//
// PARAMETERS:
//   - path: The workbook file.
//   - cols: Captions of the invoice columns.
//   - layout: Captions of the kind and period columns.
//
// RETURNS:
//   - The open workbook. The caller must Close it.
func Open(path string, cols types.Columns, layout Layout) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	return &Workbook{
		path:   path,
		file:   f,
		cols:   cols.WithDefaults(),
		layout: layout.WithDefaults(),
	}, nil
}

// Path returns the file the workbook was opened from.
func (w *Workbook) Path() string {
	return w.path
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheets returns the names of the visible sheets in workbook order.
// Sheets whose names start with "_" are treated as helper sheets and skipped.
func (w *Workbook) Sheets() []string {
	var names []string
	for _, name := range w.file.GetSheetList() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		if visible, err := w.file.GetSheetVisible(name); err == nil && !visible {
			continue
		}
		names = append(names, name)
	}
	return names
}

// =============================================================================
// READING
// =============================================================================

// Read splits the rows of one sheet into sales and purchases, grouped by
// period. Rows without a recognizable kind or period are listed in
// Ledger.Skipped; fully empty rows are ignored.
func (w *Workbook) Read(sheet string) (*types.Ledger, error) {
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	headerIndex := w.layout.HeaderRow - 1
	if headerIndex >= len(rows) {
		return nil, fmt.Errorf("sheet %q has no header row %d", sheet, w.layout.HeaderRow)
	}

	header := make([]string, len(rows[headerIndex]))
	present := make(map[string]bool, len(header))
	for i, caption := range rows[headerIndex] {
		header[i] = strings.TrimSpace(caption)
		present[header[i]] = true
	}

	for _, required := range []string{w.layout.KindColumn, w.cols.Number, w.cols.SaleDate, w.cols.Net, w.cols.VAT} {
		if !present[required] {
			return nil, fmt.Errorf("sheet %q: %q: %w", sheet, required, ErrMissingColumn)
		}
	}

	ledger := types.NewLedger()
	for i := headerIndex + 1; i < len(rows); i++ {
		if isRowEmpty(rows[i]) {
			continue
		}
		w.addRow(ledger, w.toRow(header, rows[i], i+1))
	}

	return ledger, nil
}

func (w *Workbook) addRow(ledger *types.Ledger, row types.Row) {
	skip := func(format string, args ...any) {
		ledger.Skipped = append(ledger.Skipped, types.SkippedRow{Line: row.Line, Reason: fmt.Sprintf(format, args...)})
	}

	kind := strings.ToLower(row.Text(w.layout.KindColumn))
	var target map[string][]types.Row
	switch {
	case kind == "":
		skip("record kind is empty")
		return
	case matches(kind, w.layout.SalesMarkers):
		target = ledger.Sales
	case matches(kind, w.layout.PurchaseMarkers):
		target = ledger.Purchases
	default:
		skip("unknown record kind %q", row.Text(w.layout.KindColumn))
		return
	}

	period, err := w.periodOf(row)
	if err != nil {
		skip("%v", err)
		return
	}

	key := period.String()
	target[key] = append(target[key], row)
}

// periodOf reads the period column, falling back to the sale date.
func (w *Workbook) periodOf(row types.Row) (jpkvat.Period, error) {
	switch v := row.Get(w.layout.PeriodColumn).(type) {
	case float64:
		d, err := jpkvat.ParseDate(v)
		if err != nil {
			return jpkvat.Period{}, fmt.Errorf("period: %w", err)
		}
		return jpkvat.PeriodOf(d), nil
	case string:
		if strings.TrimSpace(v) != "" {
			return jpkvat.ParsePeriod(v)
		}
	}

	d, err := jpkvat.ParseDate(row.Get(w.cols.SaleDate))
	if err != nil {
		return jpkvat.Period{}, fmt.Errorf("no period: sale date: %w", err)
	}
	return jpkvat.PeriodOf(d), nil
}

// toRow maps the cells of one sheet row to their header captions.
//
// Raw cell values are strings. Date and period cells holding a serial number
// are converted to float64 so they are not mistaken for text dates.
func (w *Workbook) toRow(header, cells []string, line int) types.Row {
	numeric := map[string]bool{
		w.cols.IssueDate:      true,
		w.cols.SaleDate:       true,
		w.layout.PeriodColumn: true,
	}

	row := types.Row{Line: line, Cells: make(map[string]any, len(header))}
	for i, caption := range header {
		if caption == "" || i >= len(cells) {
			continue
		}
		value := strings.TrimSpace(cells[i])
		if value == "" {
			continue
		}
		if numeric[caption] {
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				row.Cells[caption] = f
				continue
			}
		}
		row.Cells[caption] = value
	}
	return row
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func matches(value string, markers []string) bool {
	for _, m := range markers {
		if strings.EqualFold(value, strings.TrimSpace(m)) {
			return true
		}
	}
	return false
}
