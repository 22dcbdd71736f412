// =============================================================================
// sheet2jpk - Convert Command
// =============================================================================
//
// COMMAND USAGE:
//   sheet2jpk convert [flags]
//
// FLAGS:
//   --nip         Company NIP (overrides company.nip in the config)
//   --name        Company name
//   --email       Company e-mail (optional)
//   --path        Directory scanned for workbooks (default ".")
//   --file        Workbook to read; skips the file choice
//   --sheet       Sheet to read; skips the sheet choice
//   --period      Reporting period YYYY/MM; skips the period choice
//   --output-dir  Directory for the document (default: next to the workbook)
//   --revision    Document purpose: 0 for the original filing, N for a correction
//   --yes         Do not ask to confirm the data
//   --force       Overwrite an existing document without asking
//
// EXAMPLES:
//   sheet2jpk convert --nip 5260250274 --name "Firma Sp. z o.o."
//   sheet2jpk convert --file rejestr.xlsx --sheet 2023 --period 2023/11 --yes
//
// PROCESSING FLOW:
//   1. Merge flags over the loaded configuration
//   2. Select the workbook, sheet and period (asking when needed)
//   3. Validate every record and report problems
//   4. Confirm the data and the output path
//   5. Write the JPK_VAT document
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheet2jpk/internal/converter"
	"github.com/ginjaninja78/sheet2jpk/internal/jpkvat"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// selectionFlags preselect the answers shared by every command that reads
// a workbook.
type selectionFlags struct {
	sourceDir string
	file      string
	sheet     string
	period    string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&s.sourceDir,
		"path",
		"",
		"Directory scanned for workbooks (default from config, else \".\")",
	)
	cmd.Flags().StringVarP(
		&s.file,
		"file",
		"f",
		"",
		"Workbook to read (relative to --path)",
	)
	cmd.Flags().StringVar(
		&s.sheet,
		"sheet",
		"",
		"Sheet to read",
	)
	cmd.Flags().StringVar(
		&s.period,
		"period",
		"",
		"Reporting period in YYYY/MM format",
	)
}

// apply copies the set flags over opts.
func (s *selectionFlags) apply(opts *converter.Options) {
	if s.sourceDir != "" {
		opts.SourceDir = s.sourceDir
	}
	opts.File = s.file
	opts.Sheet = s.sheet
	opts.Period = s.period
}

var (
	convertSelection selectionFlags

	companyNIP   string
	companyName  string
	companyEmail string
	outputDir    string
	revision     int
	assumeYes    bool
	forceWrite   bool
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Build a JPK_VAT document from a workbook",
	Long: `Read the sales and purchase records of one period from a workbook,
validate them and write the JPK_VAT (3) XML document.

The document is written next to the workbook as
<workbook>_<first day>-<last day>.xml unless --output-dir is set.

Any choice that has only one option is made without asking.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertSelection.register(convertCmd)

	convertCmd.Flags().StringVar(&companyNIP, "nip", "", "Company NIP")
	convertCmd.Flags().StringVar(&companyName, "name", "", "Company name")
	convertCmd.Flags().StringVar(&companyEmail, "email", "", "Company e-mail address (optional)")
	convertCmd.Flags().StringVarP(
		&outputDir,
		"output-dir",
		"o",
		"",
		"Directory for the document (default: next to the workbook)",
	)
	convertCmd.Flags().IntVar(
		&revision,
		"revision",
		0,
		"Document purpose: 0 for the original filing, N for the N-th correction",
	)
	convertCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask to confirm the data")
	convertCmd.Flags().BoolVar(&forceWrite, "force", false, "Overwrite an existing document without asking")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runConvert(cmd *cobra.Command) error {
	// =========================================================================
	// STEP 1: Build the options
	// =========================================================================
	opts := converter.OptionsFromConfig(cfg)
	convertSelection.apply(&opts)

	if companyNIP != "" {
		opts.Company.NIP = companyNIP
	}
	if companyName != "" {
		opts.Company.Name = companyName
	}
	if companyEmail != "" {
		opts.Company.Email = companyEmail
	}
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	opts.Version = revision
	opts.Yes = assumeYes
	opts.Force = forceWrite

	// =========================================================================
	// STEP 2: Run the conversion
	// =========================================================================
	out := cmd.OutOrStdout()
	prompt := newTerminalPrompter(cmd.InOrStdin(), out)

	result, err := converter.New(opts, prompt).Run()
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: Report
	// =========================================================================
	path, absErr := filepath.Abs(result.OutputFile)
	if absErr != nil {
		path = result.OutputFile
	}

	fmt.Fprintf(out, "Created file: %s\n", path)
	fmt.Fprintf(out, "Period:    %s\n", result.Period)
	fmt.Fprintf(out, "Sales:     %d records, net %s, VAT %s\n",
		result.Sales.Count, jpkvat.FormatAmount(result.Sales.Net), jpkvat.FormatAmount(result.Sales.VAT))
	fmt.Fprintf(out, "Purchases: %d records, net %s, VAT %s\n",
		result.Purchases.Count, jpkvat.FormatAmount(result.Purchases.Net), jpkvat.FormatAmount(result.Purchases.VAT))
	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped:   %d rows (run 'sheet2jpk validate' for details)\n", len(result.Skipped))
	}

	return nil
}
