package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/cbind/internal/ir"
)

// CompileLibrary parses a CUE value into an ir.Library.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the library struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`library: { types: { ... }, functions: [ ... ] }`)
//	lib, err := CompileLibrary(v.LookupPath(cue.ParsePath("library")))
//
// Every declared type is part of the library, reachable or not, in
// declaration order after the types reached from functions and constants.
func CompileLibrary(v cue.Value) (*ir.Library, error) {
	if !v.Exists() {
		return nil, &CompileError{Field: "library", Message: "library is required"}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decls, types, err := declareTypes(v.LookupPath(cue.ParsePath("types")))
	if err != nil {
		return nil, err
	}
	for _, d := range decls {
		if err := defineType(d, types); err != nil {
			return nil, err
		}
	}

	functions, err := parseFunctions(v.LookupPath(cue.ParsePath("functions")), types)
	if err != nil {
		return nil, err
	}
	constants, err := parseConstants(v.LookupPath(cue.ParsePath("constants")), types)
	if err != nil {
		return nil, err
	}

	extra := make([]ir.Type, 0, len(decls))
	for _, d := range decls {
		extra = append(extra, d.node)
	}
	return ir.NewLibrary(functions, constants, extra...), nil
}

// typeDecl is a named type whose node exists but whose body is filled in
// a second pass, so declarations may reference each other in any order.
type typeDecl struct {
	name  string
	kind  string
	value cue.Value
	node  ir.Type
}

// declareTypes creates an empty node for every entry under library.types.
func declareTypes(v cue.Value) ([]typeDecl, typeTable, error) {
	types := typeTable{}
	if !v.Exists() {
		return nil, types, nil
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, nil, formatCUEError(err)
	}

	var decls []typeDecl
	for iter.Next() {
		name := iter.Label()
		val := iter.Value()

		kind, err := requireString(val, "kind")
		if err != nil {
			return nil, nil, err
		}

		d := typeDecl{name: name, kind: kind, value: val}
		switch kind {
		case "composite":
			d.node = &ir.CompositeType{Name: name}
		case "enum":
			d.node = &ir.EnumType{Name: name}
		case "success_enum":
			success, err := requireString(val, "success")
			if err != nil {
				return nil, nil, err
			}
			d.node = ir.SuccessEnum{Enum: &ir.EnumType{Name: name}, Success: success}
		case "opaque":
			d.node = &ir.OpaqueType{Name: name}
		case "fn_pointer":
			d.node = &ir.FnPointerType{Name: name}
		case "slice":
			d.node = ir.Slice{Composite: &ir.CompositeType{Name: name}}
		case "option":
			d.node = ir.Option{Composite: &ir.CompositeType{Name: name}}
		default:
			return nil, nil, &CompileError{
				Field:   "kind",
				Message: fmt.Sprintf("type %s: unknown kind %q", name, kind),
				Pos:     val.LookupPath(cue.ParsePath("kind")).Pos(),
			}
		}

		types[name] = d.node
		decls = append(decls, d)
	}

	return decls, types, nil
}

// defineType fills in the body of a declared type.
func defineType(d typeDecl, types typeTable) error {
	doc, err := parseDoc(d.value)
	if err != nil {
		return err
	}

	switch node := d.node.(type) {
	case *ir.CompositeType:
		node.Doc = doc
		node.Fields, err = parseFields(d.value, types)
		return err
	case *ir.EnumType:
		node.Doc = doc
		node.Variants, err = parseVariants(d.value)
		return err
	case ir.SuccessEnum:
		node.Enum.Doc = doc
		node.Enum.Variants, err = parseVariants(d.value)
		if err != nil {
			return err
		}
		for _, variant := range node.Enum.Variants {
			if variant.Name == node.Success {
				return nil
			}
		}
		return &CompileError{
			Field:   "success",
			Message: fmt.Sprintf("type %s: success variant %q is not declared", d.name, node.Success),
			Pos:     d.value.LookupPath(cue.ParsePath("success")).Pos(),
		}
	case *ir.OpaqueType:
		node.Doc = doc
		return nil
	case *ir.FnPointerType:
		node.Signature, err = parseSignature(d.value, types)
		return err
	case ir.Slice:
		elem, err := resolveTypeField(d.value, "element", types)
		if err != nil {
			return err
		}
		node.Composite.Fields = ir.NewSliceOf(d.name, elem).Composite.Fields
		node.Composite.Doc = doc
		return nil
	case ir.Option:
		inner, err := resolveTypeField(d.value, "type", types)
		if err != nil {
			return err
		}
		node.Composite.Fields = ir.NewOptionOf(d.name, inner).Composite.Fields
		node.Composite.Doc = doc
		return nil
	default:
		panic(fmt.Sprintf("compiler: unhandled declaration %T", node))
	}
}

// parseFields extracts the ordered field list of a composite.
func parseFields(v cue.Value, types typeTable) ([]ir.Field, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, nil
	}

	iter, err := fieldsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []ir.Field
	for iter.Next() {
		fv := iter.Value()
		name, err := requireString(fv, "name")
		if err != nil {
			return nil, err
		}
		t, err := resolveTypeField(fv, "type", types)
		if err != nil {
			return nil, err
		}
		doc, err := parseDoc(fv)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ir.Field{Name: name, Type: t, Doc: doc})
	}
	return fields, nil
}

// parseVariants extracts enum variants. A variant without an explicit
// value takes the previous value plus one, starting at zero.
func parseVariants(v cue.Value) ([]ir.Variant, error) {
	variantsVal := v.LookupPath(cue.ParsePath("variants"))
	if !variantsVal.Exists() {
		return nil, nil
	}

	iter, err := variantsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var variants []ir.Variant
	var next int64
	for iter.Next() {
		vv := iter.Value()
		name, err := requireString(vv, "name")
		if err != nil {
			return nil, err
		}

		value := next
		if valueVal := vv.LookupPath(cue.ParsePath("value")); valueVal.Exists() {
			value, err = valueVal.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
		}

		doc, err := parseDoc(vv)
		if err != nil {
			return nil, err
		}
		variants = append(variants, ir.Variant{Name: name, Value: value, Doc: doc})
		next = value + 1
	}
	return variants, nil
}

// parseSignature reads params and an optional returns type.
func parseSignature(v cue.Value, types typeTable) (ir.Signature, error) {
	var sig ir.Signature

	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if paramsVal.Exists() {
		iter, err := paramsVal.List()
		if err != nil {
			return sig, formatCUEError(err)
		}
		for iter.Next() {
			pv := iter.Value()
			name, _, err := lookupString(pv, "name")
			if err != nil {
				return sig, err
			}
			t, err := resolveTypeField(pv, "type", types)
			if err != nil {
				return sig, err
			}
			sig.Params = append(sig.Params, ir.Parameter{Name: name, Type: t})
		}
	}

	if v.LookupPath(cue.ParsePath("returns")).Exists() {
		rval, err := resolveTypeField(v, "returns", types)
		if err != nil {
			return sig, err
		}
		if rval != ir.Void {
			sig.Rval = rval
		}
	}

	return sig, nil
}

// parseFunctions extracts library.functions in declaration order.
func parseFunctions(v cue.Value, types typeTable) ([]ir.Function, error) {
	if !v.Exists() {
		return nil, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var functions []ir.Function
	for iter.Next() {
		fv := iter.Value()
		name, err := requireString(fv, "name")
		if err != nil {
			return nil, err
		}
		sig, err := parseSignature(fv, types)
		if err != nil {
			return nil, err
		}
		doc, err := parseDoc(fv)
		if err != nil {
			return nil, err
		}
		functions = append(functions, ir.Function{Name: name, Signature: sig, Doc: doc})
	}
	return functions, nil
}

// parseConstants extracts library.constants in declaration order.
func parseConstants(v cue.Value, types typeTable) ([]ir.Constant, error) {
	if !v.Exists() {
		return nil, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var constants []ir.Constant
	for iter.Next() {
		cv := iter.Value()
		name, err := requireString(cv, "name")
		if err != nil {
			return nil, err
		}
		t, err := resolveTypeField(cv, "type", types)
		if err != nil {
			return nil, err
		}

		valueVal := cv.LookupPath(cue.ParsePath("value"))
		if !valueVal.Exists() {
			return nil, &CompileError{
				Field:   "value",
				Message: fmt.Sprintf("constant %s: value is required", name),
				Pos:     cv.Pos(),
			}
		}
		value, err := parseValue(valueVal)
		if err != nil {
			return nil, err
		}

		constants = append(constants, ir.Constant{Name: name, Type: t, Value: value})
	}
	return constants, nil
}

// parseValue converts a concrete CUE scalar into a constant value.
// Integers that do not fit int64 are kept as unsigned.
func parseValue(v cue.Value) (ir.Value, error) {
	switch v.Kind() {
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.BoolValue(b), nil
	case cue.IntKind:
		if i, err := v.Int64(); err == nil {
			return ir.IntValue(i), nil
		}
		u, err := v.Uint64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.UintValue(u), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.FloatValue(f), nil
	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("must be a bool, int or float literal, got %s", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// parseDoc reads an optional doc field: a string (split on newlines)
// or a list of strings.
func parseDoc(v cue.Value) (ir.Documentation, error) {
	docVal := v.LookupPath(cue.ParsePath("doc"))
	if !docVal.Exists() {
		return nil, nil
	}

	if s, err := docVal.String(); err == nil {
		return ir.Documentation(strings.Split(strings.TrimRight(s, "\n"), "\n")), nil
	}

	iter, err := docVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "doc",
			Message: "must be a string or a list of strings",
			Pos:     docVal.Pos(),
		}
	}

	var doc ir.Documentation
	for iter.Next() {
		line, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		doc = append(doc, line)
	}
	return doc, nil
}

// resolveTypeField reads a type expression stored under field and
// resolves it against the declared types.
func resolveTypeField(v cue.Value, field string, types typeTable) (ir.Type, error) {
	expr, err := requireString(v, field)
	if err != nil {
		return nil, err
	}
	t, err := parseTypeExpr(expr, types)
	if err != nil {
		return nil, &CompileError{
			Field:   "type",
			Message: err.Error(),
			Pos:     v.LookupPath(cue.ParsePath(field)).Pos(),
		}
	}
	return t, nil
}

// requireString reads a mandatory string field.
func requireString(v cue.Value, field string) (string, error) {
	s, ok, err := lookupString(v, field)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	return s, nil
}

// lookupString reads an optional string field.
func lookupString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}
