package ir

// Function is an exported native function.
type Function struct {
	Name      string        `json:"name"`
	Signature Signature     `json:"signature"`
	Doc       Documentation `json:"doc,omitempty"`
}

// Constant is a named compile-time constant.
type Constant struct {
	Name  string `json:"name"`
	Type  Type   `json:"-"`
	Value Value  `json:"-"`
}

// Library owns the functions and constants of one native library together
// with the closure of types reachable from them.
type Library struct {
	functions []Function
	constants []Constant
	types     []Type
}

// NewLibrary builds a Library and computes its type closure.
//
// Types are collected depth-first in first-encounter order: function
// parameters, then return types, then constant types, then extra. A node
// is recorded before the nodes it references, and each identity key (see
// Key) is recorded once.
func NewLibrary(functions []Function, constants []Constant, extra ...Type) *Library {
	lib := &Library{
		functions: functions,
		constants: constants,
	}

	seen := make(map[string]bool)
	var visit func(Type)
	visit = func(t Type) {
		if t == nil {
			return
		}
		key := Key(t)
		if seen[key] {
			return
		}
		seen[key] = true
		lib.types = append(lib.types, t)
		for _, child := range Children(t) {
			visit(child)
		}
	}

	for _, fn := range functions {
		for _, p := range fn.Signature.Params {
			visit(p.Type)
		}
		visit(fn.Signature.RvalOrVoid())
	}
	for _, c := range constants {
		visit(c.Type)
	}
	for _, t := range extra {
		visit(t)
	}

	return lib
}

// Functions returns the library functions in declaration order.
func (l *Library) Functions() []Function {
	return l.functions
}

// Constants returns the library constants in declaration order.
func (l *Library) Constants() []Constant {
	return l.constants
}

// Types returns every reachable type node, unordered with respect to
// dependencies.
func (l *Library) Types() []Type {
	return l.types
}
