package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheet2jpk/internal/converter"
)

// The commands keep their flags in package variables, so these tests do not
// run in parallel and reset every flag before each run.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, input string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	code = execute(args, strings.NewReader(input), &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeRegister(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Rodzaj", "LP", "Nr Dokumentu", "Data Wystawienia", "Data Sprzedaży",
			"Nazwa Kontrahenta", "Adres Kontrahenta", "NIP", "Netto", "Kwota VAT"},
		{"sprzedaż", 1, "FV/1/11/2023", "", "2023-11-15", "Kowalski Sp. z o.o.", "ul. Prosta 1", "8567346215", 100, 23},
		{"zakup", 1, "Z/1", "2023-11-02", "2023-11-04", "Hurtownia Nowak", "ul. Krzywa 2", "1234563218", "50,00", "11,50"},
		{"sprzedaż", 1, "FV/1/12/2023", "", "2023-12-01", "Zły Kontrahent", "", "8567346216", 10, 2.3},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(dir, "rejestr.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{converter.ErrCancelled, 1},
		{fmt.Errorf("choice: %w", converter.ErrNothingToSelect), 1},
		{converter.ErrInvalidRecords, 1},
		{&converter.InputError{Err: errors.New("bad period")}, 2},
		{errors.New("disk full"), 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}

func TestConvert_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeRegister(t, dir)

	code, stdout, stderr := run(t, "",
		"convert", "--path", dir, "--period", "2023/11", "--yes",
		"--nip", "526-025-02-74", "--name", "Firma Testowa")
	require.Equal(t, 0, code, stderr)

	want := filepath.Join(dir, "rejestr_2023-11-01-2023-11-30.xml")
	assert.Contains(t, stdout, "Created file: "+want)
	assert.Contains(t, stdout, "Sales:     1 records, net 100.00, VAT 23.00")
	assert.Contains(t, stdout, "Purchases: 1 records, net 50.00, VAT 11.50")

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<tns:NIP>5260250274</tns:NIP>")
	assert.Contains(t, string(data), "<tns:CelZlozenia>0</tns:CelZlozenia>")
}

func TestConvert_InteractivePeriodAndDeclinedOverwrite(t *testing.T) {
	dir := t.TempDir()
	writeRegister(t, dir)
	target := filepath.Join(dir, "rejestr_2023-11-01-2023-11-30.xml")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))

	// period 1 (2023/11), confirm the data, decline the overwrite
	code, stdout, stderr := run(t, "1\ny\nn\n",
		"convert", "--path", dir, "--nip", "5260250274", "--name", "Firma Testowa")

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Select a reporting period")
	assert.Contains(t, stdout, "already exists")
	assert.Contains(t, stderr, "Cancelled.")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestConvert_InputErrors(t *testing.T) {
	dir := t.TempDir()
	writeRegister(t, dir)

	code, _, stderr := run(t, "", "convert", "--path", dir, "--period", "2023/11", "--yes", "--name", "Firma")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "company NIP is required")

	code, _, stderr = run(t, "", "convert", "--path", dir, "--period", "2024/01",
		"--nip", "5260250274", "--name", "Firma", "--yes")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "period 2024/01 has no records")

	code, _, _ = run(t, "", "convert", "--no-such-flag")
	assert.Equal(t, 2, code)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeRegister(t, dir)

	code, stdout, _ := run(t, "", "validate", "--path", dir, "--period", "2023/11")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Period 2023/11: 1 sales and 1 purchase records, no problems found.")

	code, stdout, stderr := run(t, "", "validate", "--path", dir, "--period", "2023/12")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "8567346216")
	assert.Contains(t, stderr, converter.ErrInvalidRecords.Error())
}

func TestPeriods(t *testing.T) {
	dir := t.TempDir()
	writeRegister(t, dir)

	code, stdout, stderr := run(t, "", "periods", "--path", dir)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "PERIOD   SALES  PURCHASES")
	assert.Contains(t, stdout, "2023/11  1      1")
	assert.Contains(t, stdout, "2023/12  1      0")
}

func TestPeriods_EmptyDirectory(t *testing.T) {
	code, _, _ := run(t, "", "periods", "--path", t.TempDir())
	assert.Equal(t, 1, code)
}

func TestExecute_ClosesLogFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "sheet2jpk.log")
	cfgPath := filepath.Join(dir, "sheet2jpk.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("log:\n  format: json\n  output: "+logPath+"\n"), 0o600))

	code, _, _ := run(t, "", "--config", cfgPath, "--verbose", "periods", "--path", t.TempDir())

	assert.Equal(t, 1, code)
	assert.Nil(t, logCloser)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"configuration loaded"`)
}

func TestVersion(t *testing.T) {
	code, stdout, _ := run(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "sheet2jpk")
	assert.Contains(t, stdout, "Version:    "+Version)
}
