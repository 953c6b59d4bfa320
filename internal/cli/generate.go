package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/cbind/internal/cgen"
	"github.com/roach88/cbind/internal/ir"
	"github.com/roach88/cbind/internal/store"
)

// HeaderOptions holds the flags shared by commands that render a header.
type HeaderOptions struct {
	ConfigPath   string // YAML config file
	IfNDef       string // include guard override
	Attribute    string // function attribute override
	NoDirectives bool
	NoImports    bool
	NoDocs       bool
}

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	HeaderOptions
	Output string // header file path, stdout if empty
	DBPath string // history database, disabled if empty
}

// GenerateResult is the JSON payload of a successful generation.
type GenerateResult struct {
	Output      string            `json:"output,omitempty"`
	Header      string            `json:"header,omitempty"`
	Types       []store.TypeEntry `json:"types"`
	Functions   int               `json:"functions"`
	Constants   int               `json:"constants"`
	LibraryHash string            `json:"library_hash"`
	ConfigHash  string            `json:"config_hash"`
	OutputHash  string            `json:"output_hash"`
	RunID       string            `json:"run_id,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <library-dir>",
		Short: "Generate a C99 header from a library description",
		Long: `Generate a C99 header from the CUE library description in a directory.

Types are emitted in dependency order, followed by constants and function
prototypes. The header is written to stdout unless --output is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "header file path (default stdout)")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "record the run in this history database")
	opts.HeaderOptions.bindFlags(cmd)

	return cmd
}

func (o *HeaderOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.ConfigPath, "config", "", "YAML generator config file")
	cmd.Flags().StringVar(&o.IfNDef, "ifndef", "", "include guard macro")
	cmd.Flags().StringVar(&o.Attribute, "attr", "", "attribute prefixed to every function prototype")
	cmd.Flags().BoolVar(&o.NoDirectives, "no-directives", false, "omit include guard and extern \"C\" block")
	cmd.Flags().BoolVar(&o.NoImports, "no-imports", false, "omit standard includes")
	cmd.Flags().BoolVar(&o.NoDocs, "no-docs", false, "omit /// documentation lines")
}

// resolveConfig loads the config file (or defaults) and applies flag overrides.
func (o *HeaderOptions) resolveConfig(cmd *cobra.Command) (cgen.Config, error) {
	cfg := cgen.DefaultConfig()
	if o.ConfigPath != "" {
		loaded, err := cgen.LoadConfig(o.ConfigPath)
		if err != nil {
			return cgen.Config{}, err
		}
		cfg = loaded
	}

	if o.IfNDef != "" {
		cfg.IfNDef = o.IfNDef
	}
	if cmd.Flags().Changed("attr") {
		cfg.FunctionAttribute = o.Attribute
	}
	if o.NoDirectives {
		cfg.Directives = false
	}
	if o.NoImports {
		cfg.Imports = false
	}
	if o.NoDocs {
		cfg.Documentation = false
	}

	if err := cfg.Validate(); err != nil {
		return cgen.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// header is rendered output together with the inputs it came from.
type header struct {
	lib   *ir.Library
	cfg   cgen.Config
	text  []byte
	types []store.TypeEntry
}

// renderHeader loads, compiles and renders the library in dir. Failures
// are reported through formatter and returned as an ExitError.
func renderHeader(cmd *cobra.Command, formatter *OutputFormatter, opts *HeaderOptions, dir string) (*header, error) {
	cfg, err := opts.resolveConfig(cmd)
	if err != nil {
		return nil, formatter.fail(ExitCommandError, ErrCodeInvalidConfig, err.Error(), nil)
	}

	loadResult, loadErrors := LoadLibrary(dir)
	if len(loadErrors) > 0 {
		return nil, outputLoadErrors(formatter, loadErrors)
	}
	lib := loadResult.Library
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	var buf bytes.Buffer
	if err := cgen.Generate(&buf, lib, cfg, cgen.WithLogger(formatter.Logger())); err != nil {
		return nil, formatter.fail(ExitFailure, generationErrorCode(err), err.Error(), nil)
	}

	sorted, err := cgen.SortTypes(lib.Types())
	if err != nil {
		return nil, formatter.fail(ExitFailure, generationErrorCode(err), err.Error(), nil)
	}

	return &header{lib: lib, cfg: cfg, text: buf.Bytes(), types: typeEntries(sorted)}, nil
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions, dir string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	h, err := renderHeader(cmd, formatter, &opts.HeaderOptions, dir)
	if err != nil {
		return err
	}

	result, err := describeGeneration(h)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := writeHeaderFile(opts.Output, h.text); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing header: %v", err), nil)
		}
		result.Output = opts.Output
	}

	if opts.DBPath != "" {
		runID, err := recordGeneration(cmd.Context(), formatter, opts.DBPath, h, result)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeHistory, err.Error(), nil)
		}
		result.RunID = runID
	}

	if formatter.Format == "json" {
		if opts.Output == "" {
			result.Header = string(h.text)
		}
		return formatter.Success(result)
	}

	if opts.Output == "" {
		_, err := formatter.Writer.Write(h.text)
		return err
	}

	fmt.Fprintf(formatter.Writer, "✓ Generated %s: %d type(s), %d function(s), %d constant(s)\n",
		opts.Output, len(result.Types), result.Functions, result.Constants)
	if result.RunID != "" {
		fmt.Fprintf(formatter.Writer, "Recorded run %s\n", result.RunID)
	}
	return nil
}

// describeGeneration fingerprints the inputs and output of a header.
func describeGeneration(h *header) (*GenerateResult, error) {
	libraryHash, err := ir.Fingerprint(h.lib)
	if err != nil {
		return nil, err
	}
	configHash, err := h.cfg.Fingerprint()
	if err != nil {
		return nil, err
	}
	return &GenerateResult{
		Types:       h.types,
		Functions:   len(h.lib.Functions()),
		Constants:   len(h.lib.Constants()),
		LibraryHash: libraryHash,
		ConfigHash:  configHash,
		OutputHash:  ir.HashOutput(h.text),
	}, nil
}

// recordGeneration appends the run to the history database and returns
// its run id.
func recordGeneration(ctx context.Context, formatter *OutputFormatter, dbPath string, h *header, result *GenerateResult) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer s.Close()

	prev, found, err := s.LatestForInputs(ctx, result.LibraryHash, result.ConfigHash)
	if err != nil {
		return "", err
	}
	if found {
		formatter.VerboseLog("Inputs unchanged since run %s (output identical: %t)",
			prev.ID, prev.OutputHash == result.OutputHash)
	}

	g := store.Generation{
		ID:               store.NewRunID(),
		LibraryHash:      result.LibraryHash,
		ConfigHash:       result.ConfigHash,
		OutputHash:       result.OutputHash,
		OutputPath:       result.Output,
		GeneratorVersion: ir.GeneratorVersion,
		IRVersion:        ir.IRVersion,
		FunctionCount:    result.Functions,
		ConstantCount:    result.Constants,
		Types:            h.types,
	}
	if err := s.WriteGeneration(ctx, g); err != nil {
		return "", err
	}
	return g.ID, nil
}

func writeHeaderFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func typeEntries(sorted []ir.Type) []store.TypeEntry {
	entries := make([]store.TypeEntry, 0, len(sorted))
	for _, t := range sorted {
		entries = append(entries, store.TypeEntry{Name: ir.Name(t), Kind: ir.Kind(t)})
	}
	return entries
}

// outputLoadErrors reports every load or validation error.
func outputLoadErrors(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		cliErrors[i] = toCLIError(err)
	}

	if len(errs) == 1 {
		_ = formatter.Error(cliErrors[0].Code, cliErrors[0].Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", cliErrors[0].Code, cliErrors[0].Message))
	}

	if formatter.Format == "json" {
		_ = formatter.Error(cliErrors[0].Code, cliErrors[0].Message, cliErrors)
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Library is invalid")
		fmt.Fprintln(formatter.Writer)
		for _, e := range cliErrors {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", e.Code, e.Message)
		}
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("library has %d error(s)", len(errs)))
}

func toCLIError(err error) CLIError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), msg)
		}
		return CLIError{Code: loadErr.Code, Message: msg}
	}
	return CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}
