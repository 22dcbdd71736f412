// =============================================================================
// sheet2jpk - Terminal Prompter
// =============================================================================
//
// The terminal prompter answers the converter's questions on the command's
// input and output streams:
//   - Choices are shown as a numbered list. An empty answer cancels.
//   - Confirmations default to "no". "y", "yes", "t" and "tak" confirm.
//   - Reports are printed as they are.
//
// =============================================================================

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sheet2jpk/internal/converter"
)

// terminalPrompter implements converter.Prompter over a line-oriented stream.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out}
}

// Choose prints the numbered options and reads the selection.
// The answer may be the option number or the option text itself.
func (p *terminalPrompter) Choose(title string, options []string) (string, error) {
	fmt.Fprintf(p.out, "%s:\n", title)
	for i, option := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, option)
	}

	for {
		fmt.Fprintf(p.out, "Choice [1-%d, empty to cancel]: ", len(options))
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			return "", converter.ErrCancelled
		}

		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, option := range options {
			if strings.EqualFold(option, answer) {
				return option, nil
			}
		}
		fmt.Fprintf(p.out, "Enter a number from 1 to %d.\n", len(options))
	}
}

// Confirm asks a yes/no question. End of input counts as "no".
func (p *terminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine()
	if errors.Is(err, converter.ErrCancelled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes", "t", "tak":
		return true, nil
	default:
		return false, nil
	}
}

// Report prints text followed by a newline.
func (p *terminalPrompter) Report(text string) {
	fmt.Fprintln(p.out, strings.TrimRight(text, "\n"))
}

// readLine returns the next trimmed line. End of input cancels.
func (p *terminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			fmt.Fprintln(p.out)
			return "", converter.ErrCancelled
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}
	}
	return strings.TrimSpace(line), nil
}
