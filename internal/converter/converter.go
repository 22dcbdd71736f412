// =============================================================================
// sheet2jpk - Converter Module
// =============================================================================
//
// This module orchestrates one conversion: a workbook, one of its sheets and
// one reporting period become a JPK_VAT document.
//
// CONVERSION PIPELINE:
//   1. Select the source workbook (flag, or a choice among discovered files)
//   2. Open it and select a sheet
//   3. Read the ledger and select a period holding at least one record
//   4. Convert rows into typed records
//   5. Validate sales and purchases; show the report and stop on problems
//   6. Show the records and ask for confirmation
//   7. Resolve the output path, asking before overwriting
//   8. Write the document
//
// USER INTERACTION:
//   Every question goes through the Prompter interface. The CLI supplies a
//   terminal prompter; tests supply a scripted one. Flags preselect answers.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/sheet2jpk/internal/config"
	"github.com/ginjaninja78/sheet2jpk/internal/jpkvat"
	"github.com/ginjaninja78/sheet2jpk/internal/logger"
	"github.com/ginjaninja78/sheet2jpk/internal/sheet"
	"github.com/ginjaninja78/sheet2jpk/internal/types"
	"github.com/ginjaninja78/sheet2jpk/pkg/utils"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrCancelled is returned when the user declines a prompt.
	ErrCancelled = errors.New("cancelled by user")

	// ErrNothingToSelect is returned when there are no files, sheets or
	// periods to choose from.
	ErrNothingToSelect = errors.New("nothing to select")

	// ErrInvalidRecords is returned when the selected records fail validation.
	// The itemized report has already been shown through the Prompter.
	ErrInvalidRecords = errors.New("records failed validation")
)

// InputError reports invalid user input: flags, company identity, or a
// preselected file, sheet or period that does not exist.
type InputError struct {
	Err error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error for error unwrapping.
func (e *InputError) Unwrap() error {
	return e.Err
}

func inputErrorf(format string, args ...any) error {
	return &InputError{Err: fmt.Errorf(format, args...)}
}

// =============================================================================
// PROMPTER
// =============================================================================

// Prompter asks the user to choose, confirm, and read reports.
type Prompter interface {
	// Choose returns one of options. It returns ErrCancelled when the user
	// backs out.
	Choose(title string, options []string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(question string) (bool, error)

	// Report shows a block of text.
	Report(text string)
}

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options configures one conversion.
type Options struct {
	Company config.Company

	// SourceDir is scanned for workbooks when File is empty.
	SourceDir string

	// File, Sheet and Period preselect the answers to the three choices.
	File   string
	Sheet  string
	Period string

	// OutputDir places documents in a directory instead of next to the source.
	OutputDir string

	// Version is the purpose flag of the document (0 = original filing).
	Version int

	// Yes skips the data confirmation.
	Yes bool

	// Force overwrites an existing document without asking.
	Force bool

	SystemName string
	Columns    types.Columns
	Layout     sheet.Layout

	// Clock overrides the document creation time. Nil uses time.Now.
	Clock func() time.Time
}

// OptionsFromConfig returns Options filled from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Company:    cfg.Company,
		SourceDir:  cfg.SourceDir,
		OutputDir:  cfg.OutputDir,
		SystemName: cfg.SystemName,
		Columns:    cfg.Columns,
		Layout:     cfg.Layout,
	}
}

// Result describes a completed (or checked) conversion.
type Result struct {
	// RunID tags every log line of this conversion.
	RunID string

	Source string
	Sheet  string
	Period jpkvat.Period

	// OutputFile is empty for a validation-only run.
	OutputFile string

	Sales     jpkvat.Totals
	Purchases jpkvat.Totals

	// Skipped lists sheet rows that were not assigned to any record set.
	Skipped []types.SkippedRow

	// Problems is the validation result. Empty for a written document.
	Problems []jpkvat.RecordError
}

// PeriodSummary counts the records of one period.
type PeriodSummary struct {
	Period    string
	Sales     int
	Purchases int
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the pipeline for one selection.
type Converter struct {
	opts   Options
	prompt Prompter
	log    zerolog.Logger
	runID  string
}

// New creates a Converter.
//
// PARAMETERS:
//   - opts: The conversion options.
//   - prompt: Receives every question and report.
func New(opts Options, prompt Prompter) *Converter {
	if opts.SourceDir == "" {
		opts.SourceDir = "."
	}
	opts.Columns = opts.Columns.WithDefaults()
	opts.Layout = opts.Layout.WithDefaults()

	runID := uuid.NewString()
	return &Converter{
		opts:   opts,
		prompt: prompt,
		log:    logger.WithRunID(logger.WithComponent("converter"), runID),
		runID:  runID,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the whole pipeline and writes the document.
//
// RETURNS:
//   - The result with the output path and totals.
//   - ErrCancelled, ErrNothingToSelect, ErrInvalidRecords, an *InputError,
//     or an I/O error.
func (c *Converter) Run() (*Result, error) {
	if err := c.checkCompany(); err != nil {
		return nil, err
	}

	sel, err := c.selectRecords()
	if err != nil {
		return nil, err
	}
	result := sel.result(c.runID)

	d, err := jpkvat.NewDeclaration(c.opts.Company.NIP, c.opts.Company.Name, c.opts.Company.Email,
		sel.period, c.opts.Version, sel.sales, sel.purchases)
	if err != nil {
		return nil, &InputError{Err: err}
	}

	// =========================================================================
	// VALIDATE
	// =========================================================================

	if problems := jpkvat.ValidateDeclaration(d); len(problems) > 0 {
		result.Problems = problems
		c.log.Warn().Int("records", len(problems)).Msg("validation failed")
		c.prompt.Report(jpkvat.FormatReport(problems))
		return result, ErrInvalidRecords
	}

	// =========================================================================
	// CONFIRM
	// =========================================================================

	if !c.opts.Yes {
		c.prompt.Report(ConfirmationTable(d))
		ok, err := c.prompt.Confirm("Confirm the data read from the sheet")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCancelled
		}
	}

	// =========================================================================
	// WRITE
	// =========================================================================

	output := utils.OutputFileName(sel.source, c.opts.OutputDir, d.Begin, d.End)
	if utils.FileExists(output) && !c.opts.Force {
		ok, err := c.prompt.Confirm(fmt.Sprintf("File %s already exists. Overwrite it?", output))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCancelled
		}
	}

	if err := c.writeDocument(output, d); err != nil {
		return nil, err
	}

	result.OutputFile = output
	c.log.Info().
		Str("output", output).
		Int("sales", result.Sales.Count).
		Int("purchases", result.Purchases.Count).
		Msg("document written")

	return result, nil
}

// Check runs the pipeline up to validation without writing anything.
// Validation problems are returned in Result.Problems, not as an error.
func (c *Converter) Check() (*Result, error) {
	sel, err := c.selectRecords()
	if err != nil {
		return nil, err
	}
	result := sel.result(c.runID)

	result.Problems = jpkvat.ValidateDeclaration(jpkvat.Declaration{
		Begin:     sel.period.Begin(),
		End:       sel.period.End(),
		Sales:     sel.sales,
		Purchases: sel.purchases,
	})

	c.log.Info().Int("problems", len(result.Problems)).Msg("validation finished")
	return result, nil
}

// Periods lists the periods of the selected sheet that hold records.
func (c *Converter) Periods() (source, sheetName string, periods []PeriodSummary, err error) {
	source, err = c.selectSource()
	if err != nil {
		return "", "", nil, err
	}

	wb, err := sheet.Open(source, c.opts.Columns, c.opts.Layout)
	if err != nil {
		return "", "", nil, err
	}
	defer wb.Close()

	sheetName, err = c.selectSheet(wb)
	if err != nil {
		return "", "", nil, err
	}

	ledger, err := wb.Read(sheetName)
	if err != nil {
		return "", "", nil, err
	}

	for _, p := range ledger.Periods() {
		periods = append(periods, PeriodSummary{
			Period:    p,
			Sales:     len(ledger.Sales[p]),
			Purchases: len(ledger.Purchases[p]),
		})
	}
	return source, sheetName, periods, nil
}

// =============================================================================
// SELECTION
// =============================================================================

// selection is the outcome of steps 1-4.
type selection struct {
	source    string
	sheet     string
	period    jpkvat.Period
	sales     []jpkvat.InvoiceRecord
	purchases []jpkvat.InvoiceRecord
	skipped   []types.SkippedRow
}

func (s *selection) result(runID string) *Result {
	return &Result{
		RunID:     runID,
		Source:    s.source,
		Sheet:     s.sheet,
		Period:    s.period,
		Sales:     jpkvat.Summarize(s.sales),
		Purchases: jpkvat.Summarize(s.purchases),
		Skipped:   s.skipped,
	}
}

func (c *Converter) selectRecords() (*selection, error) {
	source, err := c.selectSource()
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("source", source).Msg("source selected")

	wb, err := sheet.Open(source, c.opts.Columns, c.opts.Layout)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheetName, err := c.selectSheet(wb)
	if err != nil {
		return nil, err
	}

	ledger, err := wb.Read(sheetName)
	if err != nil {
		return nil, err
	}
	for _, s := range ledger.Skipped {
		c.log.Warn().Str("sheet", sheetName).Int("row", s.Line).Msg(s.Reason)
	}

	period, err := c.selectPeriod(ledger)
	if err != nil {
		return nil, err
	}
	key := period.String()

	c.log.Info().
		Str("source", source).
		Str("sheet", sheetName).
		Str("period", key).
		Msg("records selected")

	return &selection{
		source:    source,
		sheet:     sheetName,
		period:    period,
		sales:     toRecords(jpkvat.Sales, ledger.Sales[key], c.opts.Columns),
		purchases: toRecords(jpkvat.Purchases, ledger.Purchases[key], c.opts.Columns),
		skipped:   ledger.Skipped,
	}, nil
}

func (c *Converter) selectSource() (string, error) {
	if c.opts.File != "" {
		path := c.opts.File
		if !filepath.IsAbs(path) && !utils.FileExists(path) {
			path = filepath.Join(c.opts.SourceDir, path)
		}
		if !utils.FileExists(path) {
			return "", inputErrorf("source file %s does not exist", c.opts.File)
		}
		if !utils.HasExtension(path, sheet.SupportedExtensions) {
			return "", inputErrorf("source file %s: supported formats are %s",
				c.opts.File, strings.Join(sheet.SupportedExtensions, ", "))
		}
		return path, nil
	}

	files, err := utils.DiscoverSourceFiles(c.opts.SourceDir, sheet.SupportedExtensions)
	if err != nil {
		return "", &InputError{Err: err}
	}
	if len(files) == 0 {
		c.prompt.Report(fmt.Sprintf("The directory %s contains no supported workbooks.", c.opts.SourceDir))
		return "", fmt.Errorf("%w: no workbooks in %s", ErrNothingToSelect, c.opts.SourceDir)
	}

	name, err := c.choose("Select the source file", files)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.opts.SourceDir, name), nil
}

func (c *Converter) selectSheet(wb *sheet.Workbook) (string, error) {
	sheets := wb.Sheets()

	if c.opts.Sheet != "" {
		for _, s := range sheets {
			if s == c.opts.Sheet {
				return s, nil
			}
		}
		return "", inputErrorf("sheet %q not found in %s", c.opts.Sheet, wb.Path())
	}

	if len(sheets) == 0 {
		c.prompt.Report(fmt.Sprintf("The file %s contains no usable sheets.", wb.Path()))
		return "", fmt.Errorf("%w: no sheets in %s", ErrNothingToSelect, wb.Path())
	}
	return c.choose("Select a sheet", sheets)
}

func (c *Converter) selectPeriod(ledger *types.Ledger) (jpkvat.Period, error) {
	if c.opts.Period != "" {
		p, err := jpkvat.ParsePeriod(c.opts.Period)
		if err != nil {
			return jpkvat.Period{}, &InputError{Err: err}
		}
		if ledger.Count(p.String()) == 0 {
			return jpkvat.Period{}, inputErrorf("period %s has no records", p)
		}
		return p, nil
	}

	periods := ledger.Periods()
	if len(periods) == 0 {
		c.prompt.Report("No reporting periods with records were found in the selected sheet.")
		return jpkvat.Period{}, fmt.Errorf("%w: no periods with records", ErrNothingToSelect)
	}

	key, err := c.choose("Select a reporting period", periods)
	if err != nil {
		return jpkvat.Period{}, err
	}
	return jpkvat.ParsePeriod(key)
}

// choose skips the question when there is a single option.
func (c *Converter) choose(title string, options []string) (string, error) {
	if len(options) == 1 {
		return options[0], nil
	}
	return c.prompt.Choose(title, options)
}

func toRecords(kind jpkvat.Kind, rows []types.Row, cols types.Columns) []jpkvat.InvoiceRecord {
	records := make([]jpkvat.InvoiceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, jpkvat.FromRow(kind, row, cols))
	}
	return records
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (c *Converter) checkCompany() error {
	switch {
	case !jpkvat.RequiredText(c.opts.Company.NIP):
		return inputErrorf("company NIP is required (--nip)")
	case !jpkvat.ValidTaxID(c.opts.Company.NIP):
		return inputErrorf("company NIP %q is not valid", c.opts.Company.NIP)
	case !jpkvat.RequiredText(c.opts.Company.Name):
		return inputErrorf("company name is required (--name)")
	case c.opts.Version < 0:
		return inputErrorf("document version must not be negative")
	}
	return nil
}

// writeDocument writes the document, removing a partial file on failure.
func (c *Converter) writeDocument(path string, d jpkvat.Declaration) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	builder := jpkvat.NewBuilder()
	if c.opts.SystemName != "" {
		builder.SystemName = c.opts.SystemName
	}
	if c.opts.Clock != nil {
		builder.Clock = c.opts.Clock
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	writeErr := builder.Write(file, d)
	closeErr := file.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
