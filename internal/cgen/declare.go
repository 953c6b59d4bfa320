package cgen

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/cbind/internal/indent"
	"github.com/roach88/cbind/internal/ir"
)

// renderer writes declarations to the sink. It is created per Generate call
// and tracks which typedef names and struct tags have been emitted.
type renderer struct {
	w        *indent.Writer
	cfg      Config
	log      *slog.Logger
	declared map[string]bool
	tagged   map[string]bool
	forward  []string
}

func newRenderer(w *indent.Writer, cfg Config, log *slog.Logger) *renderer {
	return &renderer{
		w:        w,
		cfg:      cfg,
		log:      log,
		declared: make(map[string]bool),
		tagged:   make(map[string]bool),
	}
}

// writeTypeDefinitions emits one declaration per type, in the given order.
func (r *renderer) writeTypeDefinitions(types []ir.Type) error {
	for _, t := range types {
		if err := r.writeTypeDefinition(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) writeTypeDefinition(t ir.Type) error {
	name := ir.Name(t)
	if name != "" && r.declared[name] {
		return nil
	}

	var err error
	switch t := t.(type) {
	case ir.Primitive, ir.ReadPointer, ir.ReadWritePointer, ir.AsciiPointer:
		return nil
	case *ir.EnumType:
		err = r.writeEnum(t)
	case *ir.OpaqueType:
		err = r.writeOpaque(t)
	case *ir.CompositeType:
		err = r.writeComposite(t)
	case *ir.FnPointerType:
		err = r.writeFnPointer(t)
	case ir.SuccessEnum:
		err = r.writeEnum(t.Enum)
	case ir.Slice:
		err = r.writeComposite(t.Composite)
	case ir.Option:
		err = r.writeComposite(t.Composite)
	default:
		panic(fmt.Sprintf("cgen: unknown type variant %T", t))
	}
	if err != nil {
		return err
	}

	r.declared[name] = true
	r.log.Debug("declared type", "name", name, "kind", ir.Kind(t))
	r.w.Break()
	return nil
}

func (r *renderer) writeEnum(e *ir.EnumType) error {
	if err := r.writeDocumentation(e.Doc); err != nil {
		return err
	}
	if err := r.w.Line("typedef enum %s", e.Name); err != nil {
		return err
	}
	if err := r.w.Line("{"); err != nil {
		return err
	}

	r.w.Indent()
	for _, v := range e.Variants {
		if err := r.writeDocumentation(v.Doc); err != nil {
			return err
		}
		if err := r.w.Line("%s = %d,", v.Name, v.Value); err != nil {
			return err
		}
	}
	r.w.Unindent()

	return r.w.Line("} %s;", e.Name)
}

func (r *renderer) writeOpaque(o *ir.OpaqueType) error {
	if err := r.writeDocumentation(o.Doc); err != nil {
		return err
	}
	return r.writeForwardTypedef(o.Name)
}

func (r *renderer) writeComposite(c *ir.CompositeType) error {
	if err := r.writeDocumentation(c.Doc); err != nil {
		return err
	}

	// C has no empty structs; consumers see an incomplete type instead.
	if c.IsEmpty() {
		return r.writeForwardTypedef(c.Name)
	}

	fields := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = r.specifier(f.Type, c.Name)
	}
	if err := r.flushForwardTags(); err != nil {
		return err
	}

	if err := r.w.Line("typedef struct %s", c.Name); err != nil {
		return err
	}
	if err := r.w.Line("{"); err != nil {
		return err
	}

	r.w.Indent()
	for i, f := range c.Fields {
		if err := r.writeDocumentation(f.Doc); err != nil {
			return err
		}
		if err := r.w.Line("%s %s;", fields[i], f.Name); err != nil {
			return err
		}
	}
	r.w.Unindent()

	return r.w.Line("} %s;", c.Name)
}

func (r *renderer) writeForwardTypedef(name string) error {
	return r.w.Line("typedef struct %s %s;", name, name)
}

// writeFnPointer emits the typedef for a function pointer. Parameter names
// are positional (x0, x1, ...) since signatures may not carry names.
func (r *renderer) writeFnPointer(f *ir.FnPointerType) error {
	name := f.TypeName()
	rval := r.specifier(f.Signature.RvalOrVoid(), name)

	params := make([]string, len(f.Signature.Params))
	for i, p := range f.Signature.Params {
		params[i] = fmt.Sprintf("%s x%d", r.specifier(p.Type, name), i)
	}
	if err := r.flushForwardTags(); err != nil {
		return err
	}

	return r.w.Line("typedef %s (*%s)(%s);", rval, name, joinParams(params))
}

// specifier resolves t inside the declaration of self, recording struct tags
// that must be forward declared first.
func (r *renderer) specifier(t ir.Type, self string) string {
	return specifier(t, func(name string) bool {
		if r.declared[name] {
			return false
		}
		if name != self && !r.tagged[name] && !containsString(r.forward, name) {
			r.forward = append(r.forward, name)
		}
		return true
	})
}

func (r *renderer) flushForwardTags() error {
	for _, name := range r.forward {
		if err := r.w.Line("struct %s;", name); err != nil {
			return err
		}
		r.tagged[name] = true
	}
	r.forward = r.forward[:0]
	return nil
}

func (r *renderer) writeDocumentation(doc ir.Documentation) error {
	if !r.cfg.Documentation {
		return nil
	}
	for _, line := range doc.Lines() {
		if err := r.w.Line("/// %s", line); err != nil {
			return err
		}
	}
	return nil
}

func joinParams(params []string) string {
	if len(params) == 0 {
		return "void"
	}
	return strings.Join(params, ",")
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
