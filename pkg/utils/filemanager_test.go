package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sheet2jpk/pkg/utils"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o600))
}

func TestDiscoverSourceFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "a.XLSM", "notes.txt", "~$b.xlsx", "c.ods"} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.xlsx"), 0o755))

	files, err := utils.DiscoverSourceFiles(dir, []string{".xlsx", ".xlsm"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.XLSM", "b.xlsx"}, files)

	_, err = utils.DiscoverSourceFiles(filepath.Join(dir, "missing"), []string{".xlsx"})
	require.Error(t, err)
}

func TestOutputFileName(t *testing.T) {
	t.Parallel()

	begin := time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, time.November, 30, 0, 0, 0, 0, time.UTC)

	assert.Equal(t,
		filepath.Join("data", "rejestr_2023-11-01-2023-11-30.xml"),
		utils.OutputFileName(filepath.Join("data", "rejestr.xlsx"), "", begin, end))
	assert.Equal(t,
		filepath.Join("out", "rejestr_2023-11-01-2023-11-30.xml"),
		utils.OutputFileName(filepath.Join("data", "rejestr.xlsx"), "out", begin, end))
}

func TestFileHelpers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "x.xml")

	assert.False(t, utils.FileExists(path))
	touch(t, path)
	assert.True(t, utils.FileExists(path))
	assert.False(t, utils.FileExists(dir))

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, utils.EnsureDir(nested))
	assert.DirExists(t, nested)
	require.NoError(t, utils.EnsureDir(""))

	assert.True(t, utils.HasExtension("r.XLSX", []string{".xlsx"}))
	assert.False(t, utils.HasExtension("r.ods", []string{".xlsx"}))
}
