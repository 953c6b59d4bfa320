package cgen

import (
	"errors"
	"fmt"
)

// Generation error codes (E200-E299)
const (
	ErrUnsupportedConstantType = "E201" // constant type is not a primitive
	ErrWriteFailure            = "E202" // output sink rejected a write
	ErrDependencyCycle         = "E203" // types cannot be declared before their use
	ErrInvalidConstantValue    = "E204" // constant value has no literal of its type
	ErrInvalidConfig           = "E205" // config would produce a broken header
)

// GenerateError reports why a header could not be generated. Output written
// before the failure is incomplete and should be discarded by the caller.
type GenerateError struct {
	Code    string `json:"code"`
	Subject string `json:"subject,omitempty"` // constant or type name involved
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *GenerateError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Subject != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Code, e.Subject, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a GenerateError with the given code.
func IsCode(err error, code string) bool {
	var genErr *GenerateError
	return errors.As(err, &genErr) && genErr.Code == code
}

func writeFailure(err error) error {
	if err == nil {
		return nil
	}
	var genErr *GenerateError
	if errors.As(err, &genErr) {
		return err
	}
	return &GenerateError{
		Code:    ErrWriteFailure,
		Message: "writing header",
		Err:     err,
	}
}
