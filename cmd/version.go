// =============================================================================
// sheet2jpk - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   sheet2jpk version
//
// OUTPUT:
//   sheet2jpk
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Schema:     JPK_VAT (3) 1-1
//   Go Version: go1.22.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheet2jpk/internal/jpkvat"
)

// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/sheet2jpk/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, document schema and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "sheet2jpk")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Schema:     %s %s\n", jpkvat.JPKVAT3.Name, jpkvat.JPKVAT3.Header.SchemaVersion)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
