package cgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/cbind/internal/ir"
)

func (r *renderer) writeConstants(constants []ir.Constant) error {
	for _, c := range constants {
		if err := r.writeConstant(c); err != nil {
			return err
		}
		r.w.Break()
	}
	return nil
}

// writeConstant emits `const <type> <name> = <value>;`. Only primitive
// constants have a C literal form.
func (r *renderer) writeConstant(c ir.Constant) error {
	p, ok := c.Type.(ir.Primitive)
	if !ok || p == ir.Void || !p.Valid() {
		return &GenerateError{
			Code:    ErrUnsupportedConstantType,
			Subject: c.Name,
			Message: fmt.Sprintf("constant type %s is not a primitive", describeKind(c.Type)),
		}
	}

	value, err := constantLiteral(p, c.Value)
	if err != nil {
		return &GenerateError{
			Code:    ErrInvalidConstantValue,
			Subject: c.Name,
			Message: err.Error(),
		}
	}

	typename, _ := PrimitiveTypename(p)
	return r.w.Line("const %s %s = %s;", typename, c.Name, value)
}

func describeKind(t ir.Type) string {
	if t == nil {
		return "<nil>"
	}
	if name := ir.Name(t); name != "" {
		return fmt.Sprintf("%s (%s)", name, ir.Kind(t))
	}
	if p, ok := t.(ir.Primitive); ok {
		return p.String()
	}
	return ir.Kind(t)
}

// constantLiteral spells v as a C literal of primitive type p.
func constantLiteral(p ir.Primitive, v ir.Value) (string, error) {
	switch p {
	case ir.Bool:
		b, ok := v.(ir.BoolValue)
		if !ok {
			return "", fmt.Errorf("bool constant needs a boolean value, got %s", valueString(v))
		}
		return strconv.FormatBool(bool(b)), nil

	case ir.I8, ir.I16, ir.I32, ir.I64:
		n, err := signedValue(v)
		if err != nil {
			return "", err
		}
		bits := integerBits(p)
		if bits < 64 && (n < -(1<<(bits-1)) || n > 1<<(bits-1)-1) {
			return "", fmt.Errorf("value %d overflows %s", n, p)
		}
		if n == math.MinInt64 {
			// -9223372036854775808 is unary minus applied to an out of range literal.
			return "(-9223372036854775807 - 1)", nil
		}
		return strconv.FormatInt(n, 10), nil

	case ir.U8, ir.U16, ir.U32, ir.U64:
		n, err := unsignedValue(v)
		if err != nil {
			return "", err
		}
		bits := integerBits(p)
		if bits < 64 && n > 1<<bits-1 {
			return "", fmt.Errorf("value %d overflows %s", n, p)
		}
		lit := strconv.FormatUint(n, 10)
		if n > math.MaxInt64 {
			lit += "ULL"
		}
		return lit, nil

	case ir.F32, ir.F64:
		f, err := floatValue(v)
		if err != nil {
			return "", err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("value %v has no C99 literal", f)
		}
		bits := 64
		if p == ir.F32 {
			bits = 32
		}
		lit := strconv.FormatFloat(f, 'g', -1, bits)
		if !strings.ContainsAny(lit, ".e") {
			lit += ".0"
		}
		if p == ir.F32 {
			lit += "f"
		}
		return lit, nil
	}
	return "", fmt.Errorf("unsupported primitive %s", p)
}

func integerBits(p ir.Primitive) int {
	switch p {
	case ir.I8, ir.U8:
		return 8
	case ir.I16, ir.U16:
		return 16
	case ir.I32, ir.U32:
		return 32
	default:
		return 64
	}
}

func signedValue(v ir.Value) (int64, error) {
	switch v := v.(type) {
	case ir.IntValue:
		return int64(v), nil
	case ir.UintValue:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows i64", uint64(v))
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("integer constant needs an integer value, got %s", valueString(v))
}

func unsignedValue(v ir.Value) (uint64, error) {
	switch v := v.(type) {
	case ir.UintValue:
		return uint64(v), nil
	case ir.IntValue:
		if v < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned constant", int64(v))
		}
		return uint64(v), nil
	}
	return 0, fmt.Errorf("integer constant needs an integer value, got %s", valueString(v))
}

func floatValue(v ir.Value) (float64, error) {
	switch v := v.(type) {
	case ir.FloatValue:
		return float64(v), nil
	case ir.IntValue:
		return float64(v), nil
	case ir.UintValue:
		return float64(v), nil
	}
	return 0, fmt.Errorf("float constant needs a numeric value, got %s", valueString(v))
}

func valueString(v ir.Value) string {
	switch v := v.(type) {
	case nil:
		return "no value"
	case ir.BoolValue:
		return fmt.Sprintf("bool %t", bool(v))
	case ir.IntValue:
		return fmt.Sprintf("int %d", int64(v))
	case ir.UintValue:
		return fmt.Sprintf("uint %d", uint64(v))
	case ir.FloatValue:
		return fmt.Sprintf("float %v", float64(v))
	default:
		return fmt.Sprintf("%T", v)
	}
}

// writeFunctions emits prototypes in library order.
func (r *renderer) writeFunctions(functions []ir.Function) error {
	for _, fn := range functions {
		if err := r.writeFunction(fn); err != nil {
			return err
		}
		if r.cfg.Documentation && len(fn.Doc) > 0 {
			r.w.Break()
		}
	}
	return nil
}

func (r *renderer) writeFunction(fn ir.Function) error {
	if err := r.writeDocumentation(fn.Doc); err != nil {
		return err
	}
	return r.w.Line("%s", FunctionDeclaration(fn, r.cfg.FunctionAttribute))
}

// FunctionDeclaration renders the prototype of fn, prefixed verbatim with
// attr. Unnamed parameters are called x0, x1, ... by position.
func FunctionDeclaration(fn ir.Function, attr string) string {
	params := make([]string, len(fn.Signature.Params))
	for i, p := range fn.Signature.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("x%d", i)
		}
		params[i] = fmt.Sprintf("%s %s", TypeSpecifier(p.Type), name)
	}
	rval := TypeSpecifier(fn.Signature.RvalOrVoid())
	return fmt.Sprintf("%s%s %s(%s);", attr, rval, fn.Name, joinParams(params))
}
