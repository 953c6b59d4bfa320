package cgen

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cbind/internal/ir"
	"github.com/roach88/cbind/internal/testutil"
)

func TestGenerateIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CustomDefines = "#define CBIND_API"
	cfg.FunctionAttribute = "CBIND_API "

	lib := testutil.SampleLibrary()
	first, err := GenerateString(lib, cfg)
	require.NoError(t, err)
	second, err := GenerateString(lib, cfg)
	require.NoError(t, err)
	rebuilt, err := GenerateString(testutil.SampleLibrary(), cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same library and config must produce identical output")
	assert.Equal(t, first, rebuilt, "equal libraries must produce identical output")
}

func TestGenerateDirectivesDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directives = false

	out, err := GenerateString(testutil.SampleLibrary(), cfg)
	require.NoError(t, err)

	for _, token := range []string{"#ifndef", "#define", "#endif", `extern "C"`, "__cplusplus"} {
		assert.NotContains(t, out, token)
	}
	assert.True(t, strings.HasPrefix(out, "// Automatically generated by cbind. Do not edit.\n\n#include <stdint.h>\n"))
}

func TestGenerateDirectivesEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IfNDef = "FOO_H"

	out, err := GenerateString(testutil.SampleLibrary(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "#ifndef FOO_H\n"))
	assert.Equal(t, 1, strings.Count(out, "#define FOO_H\n"))
	assert.Equal(t, 1, strings.Count(out, "#endif /* FOO_H */\n"))
	assert.Equal(t, 1, strings.Count(out, `extern "C" {`))
	assert.True(t, strings.HasSuffix(out, "#endif /* FOO_H */\n"))

	guard := strings.Index(out, "#ifndef FOO_H")
	linkage := strings.Index(out, `extern "C" {`)
	include := strings.Index(out, "#include <stdint.h>")
	assert.Less(t, guard, linkage)
	assert.Less(t, linkage, include)
}

func TestGenerateExternCToggle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExternC = false

	out, err := GenerateString(testutil.SampleLibrary(), cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, `extern "C"`)
	assert.Contains(t, out, "#ifndef CBIND_GENERATED_H")
}

func TestGenerateBlockOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CustomDefines = "#define SAMPLE_VERSION 3"

	out, err := GenerateString(testutil.SampleLibrary(), cfg)
	require.NoError(t, err)

	markers := []string{
		"// Automatically generated",
		"#ifndef CBIND_GENERATED_H",
		`extern "C" {`,
		"#include <stdint.h>",
		"#define SAMPLE_VERSION 3",
		"const uint32_t MAX_PARTICLES",
		"typedef struct Context Context;",
		"Particle particle_new(",
		"#ifdef __cplusplus\n}",
		"#endif /* CBIND_GENERATED_H */",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(out, m)
		require.GreaterOrEqual(t, idx, 0, "missing %q", m)
		assert.Greater(t, idx, last, "%q out of order", m)
		last = idx
	}
}

func TestGenerateNoStrayBlankLines(t *testing.T) {
	lib := ir.NewLibrary([]ir.Function{{Name: "f"}}, nil)

	out, err := GenerateString(lib, Config{})
	require.NoError(t, err)
	assert.Equal(t, "void f(void);\n", out)

	cfg := Config{FileHeaderComment: "// hdr\n", CustomDefines: "#define X 1"}
	out, err = GenerateString(lib, cfg)
	require.NoError(t, err)
	assert.Equal(t, "// hdr\n\n#define X 1\n\nvoid f(void);\n", out)

	assert.NotContains(t, out, "\n\n\n")
}

func TestGenerateEmptyLibraryWithDirectives(t *testing.T) {
	cfg := Config{Directives: true, ExternC: true, IfNDef: "EMPTY_H"}
	out, err := GenerateString(ir.NewLibrary(nil, nil), cfg)
	require.NoError(t, err)

	expected := "#ifndef EMPTY_H\n" +
		"#define EMPTY_H\n" +
		"\n" +
		"#ifdef __cplusplus\n" +
		"extern \"C\" {\n" +
		"#endif\n" +
		"\n" +
		"#ifdef __cplusplus\n" +
		"}\n" +
		"#endif\n" +
		"\n" +
		"#endif /* EMPTY_H */\n"
	assert.Equal(t, expected, out)
}

func TestGenerateFunctionAttribute(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FunctionAttribute = "CBIND_API "

	lib := testutil.SampleLibrary()
	out, err := GenerateString(lib, cfg)
	require.NoError(t, err)

	assert.Equal(t, len(lib.Functions()), strings.Count(out, "\nCBIND_API "))
	assert.Contains(t, out, "CBIND_API void mark(Marker* m);")
	assert.NotContains(t, out, "CBIND_API typedef")
}

func TestGenerateConstantRejectionStopsOutput(t *testing.T) {
	s := testutil.NewSampleTypes()
	lib := ir.NewLibrary(
		[]ir.Function{{Name: "use_origin", Signature: ir.Signature{Rval: s.Vec3}}},
		[]ir.Constant{{Name: "ORIGIN", Type: s.Vec3, Value: ir.IntValue(0)}},
	)

	var buf bytes.Buffer
	err := Generate(&buf, lib, DefaultConfig())
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrUnsupportedConstantType))
	assert.NotContains(t, buf.String(), "typedef")
	assert.NotContains(t, buf.String(), "use_origin")
}

func TestGenerateDependencyCycleWritesNothing(t *testing.T) {
	a := &ir.CompositeType{Name: "A"}
	b := &ir.CompositeType{Name: "B"}
	a.Fields = []ir.Field{{Name: "b", Type: b}}
	b.Fields = []ir.Field{{Name: "a", Type: a}}

	var buf bytes.Buffer
	err := Generate(&buf, ir.NewLibrary(nil, nil, a), DefaultConfig())
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrDependencyCycle))
	assert.Empty(t, buf.String())
}

type failAfter struct {
	remaining int
	err       error
}

func (f *failAfter) Write(p []byte) (int, error) {
	if f.remaining == 0 {
		return 0, f.err
	}
	f.remaining--
	return len(p), nil
}

func TestGenerateWriteFailure(t *testing.T) {
	sinkErr := errors.New("sink closed")

	for _, remaining := range []int{0, 5, 30} {
		w := &failAfter{remaining: remaining, err: sinkErr}
		err := Generate(w, testutil.SampleLibrary(), DefaultConfig())
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrWriteFailure), "got %v", err)
		assert.ErrorIs(t, err, sinkErr)
	}
}

func TestGenerateLogsAtDebug(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := GenerateString(testutil.SampleLibrary(), DefaultConfig(), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "sorted types")
	assert.Contains(t, logs.String(), "header generated")
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	lib := ir.NewLibrary([]ir.Function{{Name: "f"}}, nil)

	for _, ifndef := range []string{"", "1BAD", "HAS SPACE"} {
		var buf bytes.Buffer
		err := Generate(&buf, lib, Config{Directives: true, IfNDef: ifndef})
		require.Error(t, err, "ifndef %q", ifndef)
		assert.True(t, IsCode(err, ErrInvalidConfig), "got %v", err)
		assert.Empty(t, buf.String(), "nothing is written for a rejected config")
	}

	// The guard name is irrelevant without directives.
	out, err := GenerateString(lib, Config{IfNDef: ""})
	require.NoError(t, err)
	assert.Equal(t, "void f(void);\n", out)
}

func TestGenerateErrorFormatting(t *testing.T) {
	err := &GenerateError{Code: ErrWriteFailure, Message: "writing header", Err: errors.New("boom")}
	assert.Equal(t, "[E202] writing header: boom", err.Error())

	err = &GenerateError{Code: ErrUnsupportedConstantType, Subject: "X", Message: "bad"}
	assert.Equal(t, "[E201] X: bad", err.Error())
	assert.False(t, IsCode(errors.New("plain"), ErrUnsupportedConstantType))
}
