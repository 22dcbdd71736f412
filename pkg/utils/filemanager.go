// =============================================================================
// sheet2jpk - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter:
//   - Workbook discovery in a source directory
//   - Output file naming
//   - Existence checks and directory creation
//
// OUTPUT NAMING:
//   <source path without extension>_<begin>-<end>.xml
//   e.g. rejestr.xlsx for 2023/11 -> rejestr_2023-11-01-2023-11-30.xml
//
//   When an output directory is configured, only the base name of the source
//   is kept and the document is placed in that directory.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverSourceFiles lists the files in dir whose extension is one of exts.
//
// PARAMETERS:
//   - dir: The directory to scan (not recursive).
//   - exts: Accepted extensions including the dot, matched case-insensitively.
//
// RETURNS:
//   - File names (not paths), sorted.
//   - An error if the directory cannot be read.
//
// Office lock files ("~$name.xlsx") are skipped.
func DiscoverSourceFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range exts {
			if ext == strings.ToLower(want) {
				result = append(result, entry.Name())
				break
			}
		}
	}
	sort.Strings(result)

	return result, nil
}

// HasExtension reports whether path ends in one of exts (case-insensitive).
func HasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE NAMING
// =============================================================================

// OutputFileName returns the document path for a source workbook and period.
//
// PARAMETERS:
//   - source: The workbook path.
//   - outputDir: Target directory; empty places the file next to the source.
//   - begin, end: The period boundaries, written as ISO dates.
func OutputFileName(source, outputDir string, begin, end time.Time) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	if outputDir != "" {
		base = filepath.Join(outputDir, filepath.Base(base))
	}
	return fmt.Sprintf("%s_%s-%s.xml", base, begin.Format("2006-01-02"), end.Format("2006-01-02"))
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDir creates dir and its parents if missing. An empty dir is a no-op.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
