package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cbind/internal/cgen"
	"github.com/roach88/cbind/internal/compiler"
	"github.com/roach88/cbind/internal/ir"
)

// LoadResult contains a library compiled from a directory of CUE files.
type LoadResult struct {
	Library   *ir.Library
	FileCount int // Number of CUE files found
}

// LoadError represents an error that occurred during library loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadLibrary loads the CUE files in dir, compiles the top-level library
// value and validates the result. Validation problems are all collected;
// any other failure stops loading and is returned alone.
func LoadLibrary(dir string) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("library directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing library directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	lib, err := compiler.CompileLibrary(value.LookupPath(cue.ParsePath("library")))
	if err != nil {
		return nil, []error{convertCompileError(err, "library")}
	}

	var errs []error
	for _, verr := range compiler.Validate(lib) {
		errs = append(errs, &LoadError{Code: verr.Code, Message: fmt.Sprintf("%s: %s", verr.Field, verr.Message)})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return &LoadResult{Library: lib, FileCount: len(cueFiles)}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
// Library validation uses the compiler's E1xx codes and generation uses
// the generator's E2xx codes unchanged.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeInvalidConfig = "E008" // Config file unreadable or invalid
	ErrCodeStale         = "E009" // Header differs from regenerated output
	ErrCodeHistory       = "E010" // History database error
	ErrCodeTestFailed    = "E011" // One or more scenarios failed

	// Library compilation errors
	ErrCodeMissingLibrary = compiler.ErrMissingLibrary
	ErrCodeInvalidKind    = compiler.ErrInvalidKind
	ErrCodeUnknownType    = compiler.ErrUnknownType
	ErrCodeInvalidValue   = compiler.ErrInvalidValue
	ErrCodeInvalidSuccess = compiler.ErrInvalidSuccess
	ErrCodeMissingField   = compiler.ErrMissingField
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	if code := compiler.FieldCode(field); code != "" {
		return code
	}
	return ErrCodeGeneric
}

// generationErrorCode returns the generator's error code, or E001.
func generationErrorCode(err error) string {
	var genErr *cgen.GenerateError
	if errors.As(err, &genErr) {
		return genErr.Code
	}
	return ErrCodeGeneric
}
