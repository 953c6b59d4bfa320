package ir

import "fmt"

// Primitive is a fixed-size scalar type.
type Primitive int

const (
	Void Primitive = iota
	Bool
	U8
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
)

var primitiveNames = [...]string{
	Void: "void",
	Bool: "bool",
	U8:   "u8",
	U16:  "u16",
	U32:  "u32",
	U64:  "u64",
	I8:   "i8",
	I16:  "i16",
	I32:  "i32",
	I64:  "i64",
	F32:  "f32",
	F64:  "f64",
}

// String returns the IR spelling of the primitive ("i32", "f64", ...).
func (p Primitive) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
	return primitiveNames[p]
}

// Valid reports whether p is one of the declared primitives.
func (p Primitive) Valid() bool {
	return p >= 0 && int(p) < len(primitiveNames)
}

// ParsePrimitive returns the primitive spelled name.
func ParsePrimitive(name string) (Primitive, bool) {
	for i, n := range primitiveNames {
		if n == name {
			return Primitive(i), true
		}
	}
	return 0, false
}

// Value is a literal constant value. The set of implementations is closed:
// BoolValue, IntValue, UintValue, FloatValue.
type Value interface {
	isValue()
}

// BoolValue is a boolean literal.
type BoolValue bool

// IntValue is a signed integer literal.
type IntValue int64

// UintValue is an unsigned integer literal.
type UintValue uint64

// FloatValue is a floating point literal.
type FloatValue float64

func (BoolValue) isValue()  {}
func (IntValue) isValue()   {}
func (UintValue) isValue()  {}
func (FloatValue) isValue() {}
