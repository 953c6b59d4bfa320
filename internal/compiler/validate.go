package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/cbind/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrInvalidIdentifier = "E101" // name is not a usable C identifier
	ErrDuplicateFunction = "E102" // two functions share a name
	ErrDuplicateConstant = "E103" // two constants share a name
	ErrDuplicateMember   = "E104" // repeated field, variant or parameter name
	ErrNameCollision     = "E105" // a function, constant or type share a name
	ErrEmptyEnum         = "E106" // enum without variants
	ErrVoidValue         = "E107" // void used as a field or parameter type
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true, "_Bool": true,
}

// Validate checks a compiled library for problems that would produce a
// header C compilers reject. Returns all errors found (does not fail-fast).
func Validate(lib *ir.Library) []ValidationError {
	var errs []ValidationError
	global := map[string]string{}

	claim := func(name, what string) {
		if prev, ok := global[name]; ok && prev != what {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("%s name collides with %s", what, prev),
				Code:    ErrNameCollision,
			})
			return
		}
		global[name] = what
	}

	for _, t := range lib.Types() {
		name := ir.Name(t)
		if name == "" {
			continue
		}
		errs = append(errs, checkIdentifier(name, name)...)
		claim(name, "type")
		errs = append(errs, validateType(t)...)
	}

	seenFunctions := map[string]bool{}
	for _, fn := range lib.Functions() {
		errs = append(errs, checkIdentifier(fn.Name, fn.Name)...)
		if seenFunctions[fn.Name] {
			errs = append(errs, ValidationError{
				Field:   fn.Name,
				Message: "function declared more than once",
				Code:    ErrDuplicateFunction,
			})
		}
		seenFunctions[fn.Name] = true
		claim(fn.Name, "function")
		errs = append(errs, validateSignature(fn.Name, fn.Signature)...)
	}

	seenConstants := map[string]bool{}
	for _, c := range lib.Constants() {
		errs = append(errs, checkIdentifier(c.Name, c.Name)...)
		if seenConstants[c.Name] {
			errs = append(errs, ValidationError{
				Field:   c.Name,
				Message: "constant declared more than once",
				Code:    ErrDuplicateConstant,
			})
		}
		seenConstants[c.Name] = true
		claim(c.Name, "constant")
	}

	return errs
}

func validateType(t ir.Type) []ValidationError {
	switch t := t.(type) {
	case *ir.EnumType:
		return validateEnum(t)
	case ir.SuccessEnum:
		return validateEnum(t.Enum)
	case *ir.CompositeType:
		return validateComposite(t)
	case ir.Slice:
		return validateComposite(t.Composite)
	case ir.Option:
		return validateComposite(t.Composite)
	case *ir.FnPointerType:
		return validateSignature(t.TypeName(), t.Signature)
	default:
		return nil
	}
}

func validateEnum(e *ir.EnumType) []ValidationError {
	var errs []ValidationError
	if len(e.Variants) == 0 {
		errs = append(errs, ValidationError{
			Field:   e.Name,
			Message: "enum has no variants",
			Code:    ErrEmptyEnum,
		})
	}
	seen := map[string]bool{}
	for _, v := range e.Variants {
		field := e.Name + "." + v.Name
		errs = append(errs, checkIdentifier(field, v.Name)...)
		if seen[v.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "variant declared more than once",
				Code:    ErrDuplicateMember,
			})
		}
		seen[v.Name] = true
	}
	return errs
}

func validateComposite(c *ir.CompositeType) []ValidationError {
	var errs []ValidationError
	seen := map[string]bool{}
	for _, f := range c.Fields {
		field := c.Name + "." + f.Name
		errs = append(errs, checkIdentifier(field, f.Name)...)
		if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "field declared more than once",
				Code:    ErrDuplicateMember,
			})
		}
		seen[f.Name] = true
		if f.Type == ir.Void {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "field cannot have type void",
				Code:    ErrVoidValue,
			})
		}
	}
	return errs
}

func validateSignature(owner string, sig ir.Signature) []ValidationError {
	var errs []ValidationError
	seen := map[string]bool{}
	for i, p := range sig.Params {
		field := fmt.Sprintf("%s.params[%d]", owner, i)
		if p.Name != "" {
			errs = append(errs, checkIdentifier(field, p.Name)...)
			if seen[p.Name] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("parameter %q declared more than once", p.Name),
					Code:    ErrDuplicateMember,
				})
			}
			seen[p.Name] = true
		}
		if p.Type == ir.Void {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "parameter cannot have type void",
				Code:    ErrVoidValue,
			})
		}
	}
	return errs
}

func checkIdentifier(field, name string) []ValidationError {
	switch {
	case !identifierPattern.MatchString(name):
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("%q is not a valid C identifier", name),
			Code:    ErrInvalidIdentifier,
		}}
	case cKeywords[name]:
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("%q is a C keyword", name),
			Code:    ErrInvalidIdentifier,
		}}
	}
	return nil
}
