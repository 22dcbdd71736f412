// =============================================================================
// sheet2jpk - Periods Command
// =============================================================================
//
// COMMAND USAGE:
//   sheet2jpk periods [--path DIR] [--file FILE] [--sheet SHEET]
//
// OUTPUT:
//   PERIOD   SALES  PURCHASES
//   2023/11  12     4
//   2023/12  9      7
//
// =============================================================================

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheet2jpk/internal/converter"
)

var periodsSelection selectionFlags

// periodsCmd represents the 'periods' command.
var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List the periods of a sheet that hold records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := converter.OptionsFromConfig(cfg)
		periodsSelection.apply(&opts)

		out := cmd.OutOrStdout()
		source, sheetName, periods, err := converter.New(opts, newTerminalPrompter(cmd.InOrStdin(), out)).Periods()
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s, sheet %s\n", source, sheetName)
		if len(periods) == 0 {
			fmt.Fprintln(out, "No records found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PERIOD\tSALES\tPURCHASES")
		for _, p := range periods {
			fmt.Fprintf(w, "%s\t%d\t%d\n", p.Period, p.Sales, p.Purchases)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(periodsCmd)
	periodsSelection.register(periodsCmd)
}
