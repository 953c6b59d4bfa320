package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/cbind/internal/ir"
)

// typeTable maps declared type names to their IR nodes.
type typeTable map[string]ir.Type

// parseTypeExpr resolves a type reference written in a library description.
//
//	i32, f64, void    primitives
//	Vec3              a type declared under library.types
//	*T                read-write pointer
//	const *T          read pointer
//	cstr              ASCII string pointer
func parseTypeExpr(expr string, types typeTable) (ir.Type, error) {
	s := strings.TrimSpace(expr)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type expression")
	case strings.HasPrefix(s, "const "):
		rest := strings.TrimSpace(strings.TrimPrefix(s, "const "))
		if !strings.HasPrefix(rest, "*") {
			return nil, fmt.Errorf("%q: const must qualify a pointer", expr)
		}
		target, err := parseTypeExpr(rest[1:], types)
		if err != nil {
			return nil, err
		}
		return ir.ReadPointer{Target: target}, nil
	case strings.HasPrefix(s, "*"):
		target, err := parseTypeExpr(s[1:], types)
		if err != nil {
			return nil, err
		}
		return ir.ReadWritePointer{Target: target}, nil
	case s == "cstr":
		return ir.AsciiPointer{}, nil
	}

	if p, ok := ir.ParsePrimitive(s); ok {
		return p, nil
	}
	if t, ok := types[s]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", s)
}
