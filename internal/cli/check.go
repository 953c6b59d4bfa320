package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cbind/internal/harness"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	HeaderOptions
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Header   string `json:"header"`
	UpToDate bool   `json:"up_to_date"`
	Line     int    `json:"line,omitempty"` // first differing line, 1-based
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <library-dir> <header>",
		Short: "Verify a header matches its library description",
		Long: `Regenerate the header for a library description and compare it
byte-for-byte with an existing file. Exits with status 1 if they differ.

Pass the same config flags that were used to generate the header.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0], args[1])
		},
	}

	opts.HeaderOptions.bindFlags(cmd)

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, dir, headerPath string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	existing, err := os.ReadFile(headerPath)
	if os.IsNotExist(err) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("header not found: %s", headerPath), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("reading header: %v", err), nil)
	}

	h, err := renderHeader(cmd, formatter, &opts.HeaderOptions, dir)
	if err != nil {
		return err
	}

	if bytes.Equal(existing, h.text) {
		if formatter.Format == "json" {
			return formatter.Success(CheckResult{Header: headerPath, UpToDate: true})
		}
		fmt.Fprintf(formatter.Writer, "✓ %s is up to date\n", headerPath)
		return nil
	}

	line, want, got := harness.FirstDifference(string(h.text), string(existing))
	formatter.VerboseLog("line %d: expected %q, found %q", line, want, got)
	return formatter.fail(ExitFailure, ErrCodeStale,
		fmt.Sprintf("%s is out of date (first difference at line %d)", headerPath, line),
		CheckResult{Header: headerPath, Line: line})
}
