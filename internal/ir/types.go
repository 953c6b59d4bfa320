package ir

import (
	"fmt"
	"strings"
)

// Type is a node in the type graph. The set of implementations is closed:
//
//	Primitive, *EnumType, *OpaqueType, *CompositeType, *FnPointerType,
//	ReadPointer, ReadWritePointer, AsciiPointer, SuccessEnum, Slice, Option
//
// AsciiPointer, SuccessEnum, Slice and Option are pattern types: higher-level
// shapes that the generator lowers to C.
type Type interface {
	isType()
}

// Documentation holds documentation lines attached to an IR node.
type Documentation []string

// Lines returns the documentation lines, or nil.
func (d Documentation) Lines() []string {
	return []string(d)
}

// EnumType is a C-style enumeration with explicit values.
// Variant order is significant and values may repeat.
type EnumType struct {
	Name     string        `json:"name"`
	Variants []Variant     `json:"variants"`
	Doc      Documentation `json:"doc,omitempty"`
}

// Variant is a single enumeration constant.
type Variant struct {
	Name  string        `json:"name"`
	Value int64         `json:"value"`
	Doc   Documentation `json:"doc,omitempty"`
}

// OpaqueType is a type whose layout is hidden from consumers.
type OpaqueType struct {
	Name string        `json:"name"`
	Doc  Documentation `json:"doc,omitempty"`
}

// CompositeType is a struct with ordered fields. It may be empty.
type CompositeType struct {
	Name   string        `json:"name"`
	Fields []Field       `json:"fields"`
	Doc    Documentation `json:"doc,omitempty"`
}

// IsEmpty reports whether the composite has no fields.
func (c *CompositeType) IsEmpty() bool {
	return len(c.Fields) == 0
}

// Field is a named member of a CompositeType.
type Field struct {
	Name string        `json:"name"`
	Type Type          `json:"-"`
	Doc  Documentation `json:"doc,omitempty"`
}

// FnPointerType is a named function pointer signature.
type FnPointerType struct {
	Name      string    `json:"name"`
	Signature Signature `json:"signature"`
}

// TypeName returns the explicit name, or a name derived from the signature
// when none was given.
func (f *FnPointerType) TypeName() string {
	if f.Name != "" {
		return f.Name
	}
	parts := make([]string, 0, len(f.Signature.Params))
	for _, p := range f.Signature.Params {
		parts = append(parts, nameFragment(p.Type))
	}
	return fmt.Sprintf("fptr_fn_%s_rval_%s", strings.Join(parts, "_"), nameFragment(f.Signature.RvalOrVoid()))
}

// Signature is a parameter list plus return type.
type Signature struct {
	Params []Parameter `json:"params"`
	Rval   Type        `json:"-"`
}

// RvalOrVoid returns the return type, treating nil as void.
func (s Signature) RvalOrVoid() Type {
	if s.Rval == nil {
		return Void
	}
	return s.Rval
}

// Parameter is a positional function parameter. Name may be empty on
// function pointer signatures.
type Parameter struct {
	Name string `json:"name"`
	Type Type   `json:"-"`
}

// ReadPointer is a pointer through which the target is only read.
type ReadPointer struct {
	Target Type
}

// ReadWritePointer is a pointer through which the target may be mutated.
type ReadWritePointer struct {
	Target Type
}

// AsciiPointer is a pointer to a NUL terminated ASCII string.
type AsciiPointer struct{}

// SuccessEnum is an enum used as a status return, with one variant
// designated as success.
type SuccessEnum struct {
	Enum    *EnumType
	Success string
}

// Slice is a composite holding a data pointer and a length.
type Slice struct {
	Composite *CompositeType
}

// Option is a composite holding a value and a presence flag.
type Option struct {
	Composite *CompositeType
}

func (Primitive) isType()        {}
func (*EnumType) isType()        {}
func (*OpaqueType) isType()      {}
func (*CompositeType) isType()   {}
func (*FnPointerType) isType()   {}
func (ReadPointer) isType()      {}
func (ReadWritePointer) isType() {}
func (AsciiPointer) isType()     {}
func (SuccessEnum) isType()      {}
func (Slice) isType()            {}
func (Option) isType()           {}

// NewSliceOf builds the Slice pattern for elements of type elem:
// a composite {data: const elem*, len: u64}.
func NewSliceOf(name string, elem Type) Slice {
	return Slice{Composite: &CompositeType{
		Name: name,
		Fields: []Field{
			{Name: "data", Type: ReadPointer{Target: elem}},
			{Name: "len", Type: U64},
		},
	}}
}

// NewOptionOf builds the Option pattern for a value of type t:
// a composite {t: t, is_some: u8}.
func NewOptionOf(name string, t Type) Option {
	return Option{Composite: &CompositeType{
		Name: name,
		Fields: []Field{
			{Name: "t", Type: t},
			{Name: "is_some", Type: U8},
		},
	}}
}

// Name returns the canonical name of a named type, or "" for primitives,
// pointers and AsciiPointer. Pattern wrappers report the wrapped type's name.
func Name(t Type) string {
	switch t := t.(type) {
	case *EnumType:
		return t.Name
	case *OpaqueType:
		return t.Name
	case *CompositeType:
		return t.Name
	case *FnPointerType:
		return t.TypeName()
	case SuccessEnum:
		return t.Enum.Name
	case Slice:
		return t.Composite.Name
	case Option:
		return t.Composite.Name
	default:
		return ""
	}
}

// Key returns the identity key of a type node. Named nodes are keyed by
// name, so a pattern wrapper and its wrapped type share one key.
func Key(t Type) string {
	switch t := t.(type) {
	case Primitive:
		return "prim:" + t.String()
	case *EnumType:
		return "named:" + t.Name
	case *OpaqueType:
		return "named:" + t.Name
	case *CompositeType:
		return "named:" + t.Name
	case *FnPointerType:
		return "named:" + t.TypeName()
	case SuccessEnum:
		return "named:" + t.Enum.Name
	case Slice:
		return "named:" + t.Composite.Name
	case Option:
		return "named:" + t.Composite.Name
	case ReadPointer:
		return "const*:" + Key(t.Target)
	case ReadWritePointer:
		return "*:" + Key(t.Target)
	case AsciiPointer:
		return "pattern:ascii"
	default:
		panic(fmt.Sprintf("ir: unknown type variant %T", t))
	}
}

// Children returns the types directly referenced by t, in declaration order.
// Pattern wrappers report the children of the wrapped type.
func Children(t Type) []Type {
	switch t := t.(type) {
	case Primitive, *EnumType, *OpaqueType, AsciiPointer, SuccessEnum:
		return nil
	case *CompositeType:
		out := make([]Type, 0, len(t.Fields))
		for _, f := range t.Fields {
			out = append(out, f.Type)
		}
		return out
	case Slice:
		return Children(t.Composite)
	case Option:
		return Children(t.Composite)
	case *FnPointerType:
		out := make([]Type, 0, len(t.Signature.Params)+1)
		for _, p := range t.Signature.Params {
			out = append(out, p.Type)
		}
		return append(out, t.Signature.RvalOrVoid())
	case ReadPointer:
		return []Type{t.Target}
	case ReadWritePointer:
		return []Type{t.Target}
	default:
		panic(fmt.Sprintf("ir: unknown type variant %T", t))
	}
}

// nameFragment renders a type as an identifier fragment for derived names.
func nameFragment(t Type) string {
	switch t := t.(type) {
	case Primitive:
		return t.String()
	case ReadPointer:
		return "ConstPtr" + nameFragment(t.Target)
	case ReadWritePointer:
		return "MutPtr" + nameFragment(t.Target)
	case AsciiPointer:
		return "ConstPtri8"
	default:
		return Name(t)
	}
}
