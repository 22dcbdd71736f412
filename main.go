// =============================================================================
// sheet2jpk - Main Entry Point
// =============================================================================
//
// USAGE:
//   sheet2jpk convert   - Build a JPK_VAT document from a workbook
//   sheet2jpk validate  - Validate the records of a period without writing
//   sheet2jpk periods   - List the periods of a sheet that hold records
//   sheet2jpk version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/              : CLI command definitions (Cobra) and terminal prompts
//   - internal/jpkvat   : Field rules, record validation, document builder
//   - internal/sheet    : XLSX workbook driver
//   - internal/converter: The conversion pipeline
//   - internal/config   : YAML and environment configuration
//   - internal/logger   : Structured logging
//   - pkg/utils         : File discovery and naming
//
// =============================================================================

package main

import (
	"os"

	"github.com/ginjaninja78/sheet2jpk/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
