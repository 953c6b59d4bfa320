package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cbind/internal/ir"
)

func codes(errs []ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestValidateCleanLibrary(t *testing.T) {
	lib, err := compileSource(t, handleLibrary)
	require.NoError(t, err)
	assert.Empty(t, Validate(lib))
}

func TestValidateDuplicates(t *testing.T) {
	fn := ir.Function{Name: "go", Signature: ir.Signature{Rval: ir.I32}}
	lib := ir.NewLibrary(
		[]ir.Function{fn, fn},
		[]ir.Constant{
			{Name: "N", Type: ir.I32, Value: ir.IntValue(1)},
			{Name: "N", Type: ir.I32, Value: ir.IntValue(2)},
		},
	)

	errs := Validate(lib)
	assert.Contains(t, codes(errs), ErrDuplicateFunction)
	assert.Contains(t, codes(errs), ErrDuplicateConstant)
}

func TestValidateNameCollision(t *testing.T) {
	point := &ir.CompositeType{Name: "point", Fields: []ir.Field{{Name: "x", Type: ir.I32}}}
	lib := ir.NewLibrary(
		[]ir.Function{{Name: "point", Signature: ir.Signature{Params: []ir.Parameter{{Name: "p", Type: point}}}}},
		nil,
	)

	errs := Validate(lib)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNameCollision, errs[0].Code)
	assert.Equal(t, "point", errs[0].Field)
}

func TestValidateMembers(t *testing.T) {
	bad := &ir.CompositeType{Name: "Bad", Fields: []ir.Field{
		{Name: "int", Type: ir.I32},
		{Name: "a", Type: ir.I32},
		{Name: "a", Type: ir.I32},
		{Name: "nothing", Type: ir.Void},
	}}
	empty := &ir.EnumType{Name: "Empty"}
	dup := &ir.EnumType{Name: "Dup", Variants: []ir.Variant{{Name: "A"}, {Name: "A", Value: 1}}}
	cb := &ir.FnPointerType{Name: "Cb", Signature: ir.Signature{Params: []ir.Parameter{
		{Name: "x", Type: ir.I32},
		{Name: "x", Type: ir.I32},
		{Name: "1st", Type: ir.I32},
	}}}

	errs := Validate(ir.NewLibrary(nil, nil, bad, empty, dup, cb))

	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Code
	}
	assert.Equal(t, ErrInvalidIdentifier, byField["Bad.int"])
	assert.Equal(t, ErrDuplicateMember, byField["Bad.a"])
	assert.Equal(t, ErrVoidValue, byField["Bad.nothing"])
	assert.Equal(t, ErrEmptyEnum, byField["Empty"])
	assert.Equal(t, ErrDuplicateMember, byField["Dup.A"])
	assert.Equal(t, ErrDuplicateMember, byField["Cb.params[1]"])
	assert.Equal(t, ErrInvalidIdentifier, byField["Cb.params[2]"])
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "Vec3.x", Message: "field declared more than once", Code: ErrDuplicateMember}
	assert.Equal(t, "[E104] Vec3.x: field declared more than once", err.Error())
}
