package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/cbind/internal/cgen"
	"github.com/roach88/cbind/internal/compiler"
	"github.com/roach88/cbind/internal/ir"
)

// Harness runs scenarios.
type Harness struct {
	logger *slog.Logger
	update bool
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithUpdate makes Run rewrite golden files instead of comparing them.
func WithUpdate(update bool) Option {
	return func(h *Harness) {
		h.update = update
	}
}

// New creates a harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a discarding logger.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Compile the inline CUE source and its library value
// 2. Validate the library
// 3. Generate the header with the scenario config
// 4. Evaluate assertions against the header or the failure
//
// A library rejected by compilation, validation or generation is not an
// error: it is recorded in the result for error assertions to check. The
// returned error is reserved for scenarios that cannot run at all.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenario.GeneratorConfig()
	if err != nil {
		return nil, fmt.Errorf("scenario config: %w", err)
	}

	value := cuecontext.New().CompileString(scenario.Library, cue.Filename(scenario.Name+".cue"))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compiling library source: %w", err)
	}

	result := NewResult()
	h.generate(value, cfg, result)
	h.logger.Debug("scenario generated",
		"scenario", scenario.Name,
		"types", len(result.Types),
		"error_code", result.ErrorCode,
	)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	if scenario.Golden != "" && !result.Failed() {
		if h.update {
			if err := os.WriteFile(scenario.GoldenPath(), []byte(result.Header), 0644); err != nil {
				return nil, fmt.Errorf("updating golden file: %w", err)
			}
			h.logger.Info("golden file updated", "path", scenario.GoldenPath())
		} else if err := compareGoldenFile(scenario.GoldenPath(), result.Header); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

func (h *Harness) generate(value cue.Value, cfg cgen.Config, result *Result) {
	lib, err := compiler.CompileLibrary(value.LookupPath(cue.ParsePath("library")))
	if err != nil {
		result.ErrorCode, result.Failure = compileFailure(err)
		return
	}

	if verrs := compiler.Validate(lib); len(verrs) > 0 {
		result.ErrorCode = verrs[0].Code
		result.Failure = verrs[0].Error()
		return
	}

	header, err := cgen.GenerateString(lib, cfg, cgen.WithLogger(h.logger))
	if err != nil {
		result.ErrorCode, result.Failure = generateFailure(err)
		return
	}
	result.Header = header

	sorted, err := cgen.SortTypes(lib.Types())
	if err != nil {
		result.ErrorCode, result.Failure = generateFailure(err)
		return
	}
	for _, t := range sorted {
		result.Types = append(result.Types, ir.Name(t))
	}
}

func compileFailure(err error) (string, string) {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) && compileErr.Code() != "" {
		return compileErr.Code(), compileErr.Error()
	}
	return "compile", err.Error()
}

func generateFailure(err error) (string, string) {
	var genErr *cgen.GenerateError
	if errors.As(err, &genErr) {
		return genErr.Code, genErr.Error()
	}
	return "generate", err.Error()
}

// compareGoldenFile checks header against the golden file at path.
func compareGoldenFile(path, header string) error {
	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading golden file: %w", err)
	}
	if !bytes.Equal(want, []byte(header)) {
		line, _, _ := FirstDifference(string(want), header)
		return fmt.Errorf("header differs from %s at line %d", path, line)
	}
	return nil
}

// FirstDifference returns the 1-based number of the first line where
// want and got differ, with both lines. It returns 0 when they are equal.
func FirstDifference(want, got string) (int, string, string) {
	wantLines := strings.Split(want, "\n")
	gotLines := strings.Split(got, "\n")

	for i := 0; i < len(wantLines) || i < len(gotLines); i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g || i >= len(wantLines) || i >= len(gotLines) {
			return i + 1, w, g
		}
	}
	return 0, "", ""
}
