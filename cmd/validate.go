// =============================================================================
// sheet2jpk - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   sheet2jpk validate [--path DIR] [--file FILE] [--sheet SHEET] [--period YYYY/MM]
//
// Reads and validates one period exactly like 'convert' without writing
// a document. Rows that were skipped while reading the sheet are listed
// before the validation report.
//
// EXIT CODES:
//   0  no problems
//   1  at least one record has a problem
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheet2jpk/internal/converter"
	"github.com/ginjaninja78/sheet2jpk/internal/jpkvat"
)

var validateSelection selectionFlags

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the records of one period without writing a document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateSelection.register(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	opts := converter.OptionsFromConfig(cfg)
	validateSelection.apply(&opts)

	out := cmd.OutOrStdout()
	result, err := converter.New(opts, newTerminalPrompter(cmd.InOrStdin(), out)).Check()
	if err != nil {
		return err
	}

	for _, s := range result.Skipped {
		fmt.Fprintf(out, "Row %d skipped: %s\n", s.Line, s.Reason)
	}

	if len(result.Problems) > 0 {
		fmt.Fprint(out, jpkvat.FormatReport(result.Problems))
		return fmt.Errorf("%d of %d records in %s: %w",
			len(result.Problems), result.Sales.Count+result.Purchases.Count, result.Period, converter.ErrInvalidRecords)
	}

	fmt.Fprintf(out, "Period %s: %d sales and %d purchase records, no problems found.\n",
		result.Period, result.Sales.Count, result.Purchases.Count)
	return nil
}
