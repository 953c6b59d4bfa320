package cgen

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/roach88/cbind/internal/indent"
	"github.com/roach88/cbind/internal/ir"
)

// Option customises a Generate call.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger routes debug diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// stage writes one part of the document.
type stage func(r *renderer) error

// Generate writes the C header for lib to out.
//
// Emission order: file header comment, include guard open, extern "C" open,
// system includes, custom defines, constants, type definitions, function
// prototypes, extern "C" close, include guard close. Non-empty blocks are
// separated by exactly one blank line.
//
// On failure the returned error is a *GenerateError and out holds a partial
// document.
func Generate(out io.Writer, lib *ir.Library, cfg Config, opts ...Option) error {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return &GenerateError{Code: ErrInvalidConfig, Message: err.Error()}
	}

	sorted, err := SortTypes(lib.Types())
	if err != nil {
		return err
	}
	if o.logger.Enabled(context.Background(), slog.LevelDebug) {
		names := make([]string, len(sorted))
		for i, t := range sorted {
			names[i] = ir.Name(t)
		}
		o.logger.Debug("sorted types", "order", names)
	}

	r := newRenderer(indent.New(out, cfg.Indent), cfg, o.logger)

	body := sequence(
		when(cfg.Imports, writeImports),
		writeCustomDefines,
		func(r *renderer) error { return r.writeConstants(lib.Constants()) },
		func(r *renderer) error { return r.writeTypeDefinitions(sorted) },
		func(r *renderer) error { return r.writeFunctions(lib.Functions()) },
	)

	document := sequence(
		writeFileHeaderComment,
		includeGuard(cfg, externC(cfg, body)),
	)

	if err := document(r); err != nil {
		return writeFailure(err)
	}
	o.logger.Debug("header generated",
		"lines", r.w.Lines(),
		"types", len(sorted),
		"functions", len(lib.Functions()),
		"constants", len(lib.Constants()))
	return nil
}

// GenerateString renders the header into a string.
func GenerateString(lib *ir.Library, cfg Config, opts ...Option) (string, error) {
	var buf bytes.Buffer
	if err := Generate(&buf, lib, cfg, opts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sequence runs stages in order, separating their output by one blank line.
func sequence(stages ...stage) stage {
	return func(r *renderer) error {
		for _, s := range stages {
			if err := s(r); err != nil {
				return err
			}
			r.w.Break()
		}
		return nil
	}
}

// when runs s only if enabled.
func when(enabled bool, s stage) stage {
	if !enabled {
		return func(*renderer) error { return nil }
	}
	return s
}

func writeFileHeaderComment(r *renderer) error {
	return r.w.Text(r.cfg.FileHeaderComment)
}

func writeCustomDefines(r *renderer) error {
	return r.w.Text(r.cfg.CustomDefines)
}

func writeImports(r *renderer) error {
	if err := r.w.Line("#include <stdint.h>"); err != nil {
		return err
	}
	return r.w.Line("#include <stdbool.h>")
}

// includeGuard wraps inner in #ifndef/#define ... #endif when directives
// are enabled.
func includeGuard(cfg Config, inner stage) stage {
	if !cfg.Directives {
		return inner
	}
	return func(r *renderer) error {
		if err := r.w.Line("#ifndef %s", cfg.IfNDef); err != nil {
			return err
		}
		if err := r.w.Line("#define %s", cfg.IfNDef); err != nil {
			return err
		}
		r.w.Break()

		if err := inner(r); err != nil {
			return err
		}

		r.w.Break()
		return r.w.Line("#endif /* %s */", cfg.IfNDef)
	}
}

// externC wraps inner in a C++ linkage block when directives are enabled.
func externC(cfg Config, inner stage) stage {
	if !cfg.Directives || !cfg.ExternC {
		return inner
	}
	return func(r *renderer) error {
		for _, line := range []string{"#ifdef __cplusplus", `extern "C" {`, "#endif"} {
			if err := r.w.Line("%s", line); err != nil {
				return err
			}
		}
		r.w.Break()

		if err := inner(r); err != nil {
			return err
		}

		r.w.Break()
		for _, line := range []string{"#ifdef __cplusplus", "}", "#endif"} {
			if err := r.w.Line("%s", line); err != nil {
				return err
			}
		}
		return nil
	}
}
