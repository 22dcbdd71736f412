// =============================================================================
// sheet2jpk - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (sheet2jpk)
//   ├── convertCmd  (sheet2jpk convert)
//   ├── validateCmd (sheet2jpk validate)
//   ├── periodsCmd  (sheet2jpk periods)
//   └── versionCmd  (sheet2jpk version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads a .env file from the working directory, if present
//   2. Loads the YAML configuration (--config, or sheet2jpk.yaml if present)
//   3. Sets up logging (--verbose forces debug level)
//
// EXIT CODES:
//   0  success
//   1  cancelled, nothing to choose from, or records failed validation
//   2  invalid input or any other error
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheet2jpk/internal/config"
	"github.com/ginjaninja78/sheet2jpk/internal/converter"
	"github.com/ginjaninja78/sheet2jpk/internal/logger"
	"github.com/ginjaninja78/sheet2jpk/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg is the configuration loaded before the subcommand runs.
var cfg *config.Config

// logCloser closes the log file opened by logger.Setup.
var logCloser io.Closer

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sheet2jpk",
	Short: "sheet2jpk - Build JPK_VAT documents from spreadsheet VAT registers",
	Long: `sheet2jpk reads the sales and purchase invoices of one reporting period
from an XLSX workbook, validates them against the JPK_VAT filing rules and
writes the JPK_VAT (3) XML document.

Example Usage:
  sheet2jpk convert --nip 5260250274 --name "Firma Sp. z o.o."
  sheet2jpk convert --file rejestr.xlsx --sheet 2023 --period 2023/11 --yes
  sheet2jpk validate --file rejestr.xlsx --period 2023/11
  sheet2jpk periods --file rejestr.xlsx`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI with the process arguments and returns the exit code.
// This is called by main.main().
func Execute() int {
	return execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(args []string, in io.Reader, out, errOut io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	err := rootCmd.Execute()
	closeLog()
	if err == nil {
		return 0
	}

	if errors.Is(err, converter.ErrCancelled) {
		fmt.Fprintln(errOut, "Cancelled.")
	} else {
		fmt.Fprintf(errOut, "Error: %v\n", err)
	}
	return exitCode(err)
}

// closeLog closes the log output opened by initialize. It runs after every
// command, failed ones included.
func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	var inputErr *converter.InputError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &inputErr):
		return 2
	case errors.Is(err, converter.ErrCancelled),
		errors.Is(err, converter.ErrNothingToSelect),
		errors.Is(err, converter.ErrInvalidRecords):
		return 1
	default:
		return 2
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is "+config.DefaultPath+" if present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initialize loads .env, the configuration and the logger.
func initialize() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path := cfgFile
	if path == "" && utils.FileExists(config.DefaultPath) {
		path = config.DefaultPath
	}

	loaded, err := config.Load(path)
	if err != nil {
		return &converter.InputError{Err: err}
	}
	if verbose {
		loaded.Log.Level = "debug"
	}

	closer, err := logger.Setup(loaded.LoggerConfig())
	if err != nil {
		return &converter.InputError{Err: err}
	}

	cfg, logCloser = loaded, closer
	log := logger.WithComponent("cli")
	log.Debug().Str("config", path).Msg("configuration loaded")
	return nil
}
