package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cbind/internal/cgen"
)

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types <library-dir>",
		Short: "List types in declaration order",
		Long: `List the types of a library description in the order the generated
header declares them: every type after the types its definition uses.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runTypes(cmd *cobra.Command, opts *RootOptions, dir string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadLibrary(dir)
	if len(loadErrors) > 0 {
		return outputLoadErrors(formatter, loadErrors)
	}

	sorted, err := cgen.SortTypes(loadResult.Library.Types())
	if err != nil {
		return formatter.fail(ExitFailure, generationErrorCode(err), err.Error(), nil)
	}
	entries := typeEntries(sorted)

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No types declared")
		return nil
	}
	for i, e := range entries {
		fmt.Fprintf(formatter.Writer, "%3d. %s (%s)\n", i+1, e.Name, e.Kind)
	}
	return nil
}
