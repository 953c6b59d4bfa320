package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cbind/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DBPath string
	Limit  int
	RunID  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generation runs",
		Long: `List the generation runs recorded with generate --db, oldest first.

With --run, show one run including the order in which its types were declared.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "history database path (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "show only the most recent runs (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(opts.DBPath); os.IsNotExist(err) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("history database not found: %s", opts.DBPath), nil)
	}

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}
	defer s.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.RunID != "" {
		g, err := s.ReadGeneration(ctx, opts.RunID)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeHistory, fmt.Sprintf("run %s: %v", opts.RunID, err), nil)
		}
		return outputRun(formatter, g)
	}

	gens, err := s.ReadGenerations(ctx, opts.Limit)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(gens)
	}

	if len(gens) == 0 {
		fmt.Fprintln(formatter.Writer, "No generations recorded")
		return nil
	}
	for _, g := range gens {
		output := g.OutputPath
		if output == "" {
			output = "(stdout)"
		}
		fmt.Fprintf(formatter.Writer, "#%d %s %s library=%s output=%s\n",
			g.Seq, g.ID, output, short(g.LibraryHash), short(g.OutputHash))
	}
	return nil
}

func outputRun(formatter *OutputFormatter, g store.Generation) error {
	if formatter.Format == "json" {
		return formatter.Success(g)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (#%d)\n", g.ID, g.Seq)
	fmt.Fprintf(w, "  generator: %s (IR %s)\n", g.GeneratorVersion, g.IRVersion)
	fmt.Fprintf(w, "  library:   %s\n", g.LibraryHash)
	fmt.Fprintf(w, "  config:    %s\n", g.ConfigHash)
	fmt.Fprintf(w, "  output:    %s\n", g.OutputHash)
	if g.OutputPath != "" {
		fmt.Fprintf(w, "  path:      %s\n", g.OutputPath)
	}
	fmt.Fprintf(w, "  %d function(s), %d constant(s), %d type(s)\n", g.FunctionCount, g.ConstantCount, len(g.Types))
	for i, e := range g.Types {
		fmt.Fprintf(w, "  %3d. %s (%s)\n", i+1, e.Name, e.Kind)
	}
	return nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
