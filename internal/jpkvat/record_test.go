package jpkvat_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sheet2jpk/internal/jpkvat"
	"github.com/ginjaninja78/sheet2jpk/internal/types"
)

func TestFromRow_Sales(t *testing.T) {
	t.Parallel()

	cols := types.DefaultColumns()
	row := types.Row{
		Line: 7,
		Cells: map[string]any{
			cols.Number:   1.0,
			cols.Document: " FV/1/11/2023 ",
			cols.SaleDate: "15.11.2023",
			cols.Name:     "Kowalski Sp. z o.o.",
			cols.Address:  "ul. Prosta 1, Warszawa",
			cols.TaxID:    "856-734-62-15",
			cols.Net:      "1 000,00",
			cols.VAT:      230.0,
		},
	}

	rec := jpkvat.FromRow(jpkvat.Sales, row, cols)

	assert.Equal(t, jpkvat.Sales, rec.Kind)
	assert.Equal(t, 7, rec.Line)
	assert.Equal(t, 1, rec.Number)
	assert.Equal(t, "FV/1/11/2023", rec.DocumentNumber())
	assert.Equal(t, date(2023, time.November, 15), rec.SaleDate)
	assert.True(t, rec.IssueDate.IsZero())
	assert.Equal(t, "1000.00", jpkvat.FormatAmount(rec.Net.Decimal))
	assert.Equal(t, "230.00", jpkvat.FormatAmount(rec.VAT.Decimal))
	assert.Empty(t, rec.Findings)
}

func TestFromRow_Purchases(t *testing.T) {
	t.Parallel()

	cols := types.DefaultColumns()
	row := types.Row{
		Line: 3,
		Cells: map[string]any{
			cols.Number:    "2",
			cols.IssueDate: "2023-11-02",
			cols.SaleDate:  "2023-11-04",
			cols.Net:       10,
			cols.VAT:       "2,30",
		},
	}

	rec := jpkvat.FromRow(jpkvat.Purchases, row, cols)

	assert.Equal(t, 2, rec.Number)
	assert.Equal(t, "2", rec.DocumentNumber())
	assert.Equal(t, date(2023, time.November, 2), rec.IssueDate)
	assert.Equal(t, date(2023, time.November, 4), rec.SaleDate)
	assert.Empty(t, rec.Findings)
}

func TestFromRow_Findings(t *testing.T) {
	t.Parallel()

	cols := types.DefaultColumns()
	row := types.Row{
		Line: 4,
		Cells: map[string]any{
			cols.Number:   1.5,
			cols.SaleDate: "yesterday",
			cols.Net:      "abc",
			cols.VAT:      "",
		},
	}

	rec := jpkvat.FromRow(jpkvat.Sales, row, cols)

	require.Error(t, rec.Finding(jpkvat.FieldNumber))
	require.Error(t, rec.Finding(jpkvat.FieldSaleDate))
	require.Error(t, rec.Finding(jpkvat.FieldNet))
	// blank cells are absent values, not findings
	assert.NoError(t, rec.Finding(jpkvat.FieldVAT))
	assert.False(t, rec.VAT.Valid)
}

func TestFromRow_SequenceNumberRange(t *testing.T) {
	t.Parallel()

	cols := types.DefaultColumns()
	for _, value := range []any{"1e20", 1e20, int64(math.MaxInt32) + 1, "-99999999999"} {
		row := types.Row{Line: 2, Cells: map[string]any{cols.Number: value}}

		rec := jpkvat.FromRow(jpkvat.Sales, row, cols)

		var fe *jpkvat.FormatError
		require.ErrorAs(t, rec.Finding(jpkvat.FieldNumber), &fe, "%v", value)
		assert.Contains(t, fe.Error(), "out of range")
		assert.Zero(t, rec.Number)
	}

	row := types.Row{Line: 2, Cells: map[string]any{cols.Number: "12."}}
	assert.Equal(t, 12, jpkvat.FromRow(jpkvat.Sales, row, cols).Number)
}
