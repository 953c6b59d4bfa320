// Package indent provides an append-only line sink with an explicit
// indentation depth.
package indent

import (
	"fmt"
	"io"
	"strings"
)

// DefaultUnit is the indentation unit used when none is configured.
const DefaultUnit = "    "

// Writer appends lines to an io.Writer, prefixing each with the current
// indentation. The depth counter belongs to the Writer; there is no
// package-level state.
//
// The first write error is sticky: every later call returns it without
// touching the underlying writer.
type Writer struct {
	w       io.Writer
	unit    string
	depth   int
	lines   int
	pending bool
	err     error
}

// New creates a Writer. An empty unit selects DefaultUnit.
func New(w io.Writer, unit string) *Writer {
	if unit == "" {
		unit = DefaultUnit
	}
	return &Writer{w: w, unit: unit}
}

// Indent increases the depth by one.
func (w *Writer) Indent() {
	w.depth++
}

// Unindent decreases the depth by one. It never goes below zero.
func (w *Writer) Unindent() {
	if w.depth > 0 {
		w.depth--
	}
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int {
	return w.lines
}

// Line writes one formatted line at the current depth.
func (w *Writer) Line(format string, args ...any) error {
	if err := w.flushBreak(); err != nil {
		return err
	}
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	return w.write(strings.Repeat(w.unit, w.depth) + text + "\n")
}

// Text writes a multi-line block, one Line per line of s. A single trailing
// newline in s is ignored. Empty s writes nothing.
func (w *Writer) Text(s string) error {
	if s == "" {
		return w.err
	}
	s = strings.TrimSuffix(s, "\n")
	for _, line := range strings.Split(s, "\n") {
		if err := w.Line("%s", line); err != nil {
			return err
		}
	}
	return nil
}

// Break requests a blank line before the next written line. Consecutive
// breaks collapse into one, a break before any output is dropped, and a
// break that is never followed by output writes nothing.
func (w *Writer) Break() {
	if w.lines > 0 {
		w.pending = true
	}
}

func (w *Writer) flushBreak() error {
	if !w.pending {
		return w.err
	}
	w.pending = false
	return w.write("\n")
}

func (w *Writer) write(s string) error {
	if w.err != nil {
		return w.err
	}
	if _, err := io.WriteString(w.w, s); err != nil {
		w.err = err
		return err
	}
	w.lines++
	return nil
}
