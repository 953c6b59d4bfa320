package ir

import "fmt"

// TypeExpr spells a type reference the way library descriptions write it:
//
//	i32, f64, bool            primitives
//	Vec3, Callback            named types (pattern wrappers use the wrapped name)
//	*T                        read-write pointer to T
//	const *T                  read pointer to T
//	cstr                      ASCII string pointer
func TypeExpr(t Type) string {
	switch t := t.(type) {
	case Primitive:
		return t.String()
	case ReadPointer:
		return "const *" + TypeExpr(t.Target)
	case ReadWritePointer:
		return "*" + TypeExpr(t.Target)
	case AsciiPointer:
		return "cstr"
	case *EnumType, *OpaqueType, *CompositeType, *FnPointerType, SuccessEnum, Slice, Option:
		return Name(t)
	default:
		panic(fmt.Sprintf("ir: unknown type variant %T", t))
	}
}

// Kind names the variant of t ("primitive", "enum", "slice", ...).
func Kind(t Type) string {
	switch t.(type) {
	case Primitive:
		return "primitive"
	case *EnumType:
		return "enum"
	case *OpaqueType:
		return "opaque"
	case *CompositeType:
		return "composite"
	case *FnPointerType:
		return "fn_pointer"
	case ReadPointer:
		return "read_pointer"
	case ReadWritePointer:
		return "read_write_pointer"
	case AsciiPointer:
		return "ascii_pointer"
	case SuccessEnum:
		return "success_enum"
	case Slice:
		return "slice"
	case Option:
		return "option"
	default:
		panic(fmt.Sprintf("ir: unknown type variant %T", t))
	}
}
