package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Compilation error codes, keyed by the field a CompileError names.
const (
	ErrMissingLibrary = "E110" // no library value
	ErrInvalidKind    = "E111" // unknown type kind
	ErrUnknownType    = "E112" // unresolvable type expression
	ErrInvalidValue   = "E113" // constant value missing or not a literal
	ErrInvalidSuccess = "E114" // success variant not declared
	ErrMissingField   = "E115" // required name field missing
)

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Code returns the error code for the field at fault, or "" when the
// field has none.
func (e *CompileError) Code() string {
	return FieldCode(e.Field)
}

// FieldCode maps a compile error field to its error code.
func FieldCode(field string) string {
	switch field {
	case "library":
		return ErrMissingLibrary
	case "kind":
		return ErrInvalidKind
	case "type":
		return ErrUnknownType
	case "value":
		return ErrInvalidValue
	case "success":
		return ErrInvalidSuccess
	case "name":
		return ErrMissingField
	default:
		return ""
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
