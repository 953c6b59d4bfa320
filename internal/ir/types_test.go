package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimitiveNames(t *testing.T) {
	for p := Void; p <= F64; p++ {
		parsed, ok := ParsePrimitive(p.String())
		assert.True(t, ok, p.String())
		assert.Equal(t, p, parsed)
		assert.True(t, p.Valid())
	}

	_, ok := ParsePrimitive("usize")
	assert.False(t, ok)
	assert.False(t, Primitive(42).Valid())
	assert.Equal(t, "Primitive(42)", Primitive(42).String())
}

func TestKeySharesNamesAcrossWrappers(t *testing.T) {
	enum := &EnumType{Name: "Status"}
	composite := &CompositeType{Name: "Bytes"}

	assert.Equal(t, Key(enum), Key(SuccessEnum{Enum: enum}))
	assert.Equal(t, Key(composite), Key(Slice{Composite: composite}))
	assert.Equal(t, Key(composite), Key(Option{Composite: composite}))
	assert.NotEqual(t, Key(ReadPointer{Target: I32}), Key(ReadWritePointer{Target: I32}))
	assert.Equal(t, "const*:prim:i32", Key(ReadPointer{Target: I32}))
}

func TestNameOfUnnamedTypes(t *testing.T) {
	assert.Empty(t, Name(I32))
	assert.Empty(t, Name(ReadPointer{Target: &CompositeType{Name: "X"}}))
	assert.Empty(t, Name(AsciiPointer{}))
}

func TestChildren(t *testing.T) {
	vec := &CompositeType{Name: "Vec2", Fields: []Field{{Name: "x", Type: F32}, {Name: "y", Type: F64}}}
	fp := &FnPointerType{Name: "Cb", Signature: Signature{Params: []Parameter{{Type: vec}}}}

	assert.Equal(t, []Type{F32, F64}, Children(vec))
	assert.Equal(t, []Type{vec, Void}, Children(fp), "missing return type is void")
	assert.Equal(t, []Type{vec}, Children(ReadPointer{Target: vec}))
	assert.Nil(t, Children(SuccessEnum{Enum: &EnumType{Name: "E"}}))
	assert.Len(t, Children(NewSliceOf("SliceI32", I32)), 2)
}

func TestPatternConstructors(t *testing.T) {
	s := NewSliceOf("SliceU8", U8)
	assert.Equal(t, "SliceU8", s.Composite.Name)
	assert.Equal(t, "data", s.Composite.Fields[0].Name)
	assert.Equal(t, ReadPointer{Target: U8}, s.Composite.Fields[0].Type)
	assert.Equal(t, U64, s.Composite.Fields[1].Type)

	o := NewOptionOf("OptionI32", I32)
	assert.Equal(t, []Field{{Name: "t", Type: I32}, {Name: "is_some", Type: U8}}, o.Composite.Fields)
}

func TestTypeExprAndKind(t *testing.T) {
	vec := &CompositeType{Name: "Vec2"}
	tests := []struct {
		input Type
		expr  string
		kind  string
	}{
		{I32, "i32", "primitive"},
		{vec, "Vec2", "composite"},
		{ReadPointer{Target: vec}, "const *Vec2", "read_pointer"},
		{ReadWritePointer{Target: ReadPointer{Target: U8}}, "*const *u8", "read_write_pointer"},
		{AsciiPointer{}, "cstr", "ascii_pointer"},
		{SuccessEnum{Enum: &EnumType{Name: "Err"}}, "Err", "success_enum"},
		{Option{Composite: vec}, "Vec2", "option"},
		{&OpaqueType{Name: "Ctx"}, "Ctx", "opaque"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.expr, TypeExpr(tt.input))
			assert.Equal(t, tt.kind, Kind(tt.input))
		})
	}
}
