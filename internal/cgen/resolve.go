package cgen

import (
	"fmt"

	"github.com/roach88/cbind/internal/ir"
)

var primitiveTypenames = map[ir.Primitive]string{
	ir.Void: "void",
	ir.Bool: "bool",
	ir.U8:   "uint8_t",
	ir.U16:  "uint16_t",
	ir.U32:  "uint32_t",
	ir.U64:  "uint64_t",
	ir.I8:   "int8_t",
	ir.I16:  "int16_t",
	ir.I32:  "int32_t",
	ir.I64:  "int64_t",
	ir.F32:  "float",
	ir.F64:  "double",
}

// PrimitiveTypename returns the C spelling of a primitive.
func PrimitiveTypename(p ir.Primitive) (string, bool) {
	name, ok := primitiveTypenames[p]
	return name, ok
}

// TypeSpecifier returns the C type specifier for t, usable at a
// declaration site in front of a declarator name.
func TypeSpecifier(t ir.Type) string {
	return specifier(t, nil)
}

// specifier resolves t. When forward reports a struct name as not yet
// declared, pointers to it are spelled through the struct tag so they stay
// valid before the typedef exists.
func specifier(t ir.Type, forward func(name string) bool) string {
	switch t := t.(type) {
	case ir.Primitive:
		name, ok := PrimitiveTypename(t)
		if !ok {
			panic(fmt.Sprintf("cgen: invalid primitive %d", int(t)))
		}
		return name
	case *ir.EnumType:
		return t.Name
	case *ir.OpaqueType:
		return t.Name
	case *ir.CompositeType:
		return t.Name
	case *ir.FnPointerType:
		return t.TypeName()
	case ir.ReadPointer:
		inner := pointee(t.Target, forward)
		if isPointer(t.Target) {
			// const binds to the inner pointer itself: T* const*
			return inner + " const*"
		}
		return "const " + inner + "*"
	case ir.ReadWritePointer:
		return pointee(t.Target, forward) + "*"
	case ir.AsciiPointer:
		return "const char*"
	case ir.SuccessEnum:
		return t.Enum.Name
	case ir.Slice:
		return t.Composite.Name
	case ir.Option:
		return t.Composite.Name
	default:
		panic(fmt.Sprintf("cgen: unknown type variant %T", t))
	}
}

func pointee(t ir.Type, forward func(name string) bool) string {
	if forward != nil && isStruct(t) && forward(ir.Name(t)) {
		return "struct " + ir.Name(t)
	}
	return specifier(t, forward)
}

func isPointer(t ir.Type) bool {
	switch t.(type) {
	case ir.ReadPointer, ir.ReadWritePointer, ir.AsciiPointer:
		return true
	default:
		return false
	}
}

// isStruct reports whether t is declared as a C struct.
func isStruct(t ir.Type) bool {
	switch t.(type) {
	case *ir.OpaqueType, *ir.CompositeType, ir.Slice, ir.Option:
		return true
	default:
		return false
	}
}
