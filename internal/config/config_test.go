package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sheet2jpk/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"JPK_NIP", "JPK_NAME", "JPK_EMAIL", "JPK_SOURCE_DIR", "JPK_OUTPUT_DIR",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.SourceDir)
	assert.Empty(t, cfg.OutputDir)
	assert.Equal(t, "sheet2jpk", cfg.SystemName)
	assert.Equal(t, "Data Sprzedaży", cfg.Columns.SaleDate)
	assert.Equal(t, "Rodzaj", cfg.Layout.KindColumn)
	assert.Equal(t, 1, cfg.Layout.HeaderRow)
	assert.Equal(t, "warn", cfg.LoggerConfig().Level)
	assert.Equal(t, "stderr", cfg.LoggerConfig().Output)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
company:
  nip: "526-025-02-74"
  name: Firma Testowa
output_dir: ./out
columns:
  vat: VAT
layout:
  kind_column: Typ
  header_row: 3
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "526-025-02-74", cfg.Company.NIP)
	assert.Equal(t, "Firma Testowa", cfg.Company.Name)
	assert.Equal(t, "./out", cfg.OutputDir)
	assert.Equal(t, "VAT", cfg.Columns.VAT)
	assert.Equal(t, "Netto", cfg.Columns.Net)
	assert.Equal(t, "Typ", cfg.Layout.KindColumn)
	assert.Equal(t, 3, cfg.Layout.HeaderRow)
	assert.NotEmpty(t, cfg.Layout.SalesMarkers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("JPK_NAME", "Firma z ENV")
	t.Setenv("JPK_OUTPUT_DIR", "/tmp/jpk")
	t.Setenv("LOG_FORMAT", "json")

	path := writeConfig(t, "company:\n  name: Firma z pliku\n  email: a@b.pl\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Firma z ENV", cfg.Company.Name)
	assert.Equal(t, "a@b.pl", cfg.Company.Email)
	assert.Equal(t, "/tmp/jpk", cfg.OutputDir)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = config.Load(writeConfig(t, "company: [unclosed"))
	require.ErrorContains(t, err, "failed to parse config file")

	_, err = config.Load(writeConfig(t, "log:\n  format: xml\n"))
	require.ErrorContains(t, err, "invalid configuration")

	_, err = config.Load(writeConfig(t, "log:\n  level: loud\n"))
	require.ErrorContains(t, err, "invalid configuration")
}
