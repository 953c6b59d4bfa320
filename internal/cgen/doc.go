// Package cgen renders an ir.Library into a C99 header.
//
// Generation is a single synchronous pass over a read-only Library:
//
//  1. SortTypes orders the type closure so every type used by value is
//     declared before its first user
//  2. the declaration renderer emits one typedef per named type
//  3. constants and function prototypes are rendered through TypeSpecifier
//  4. the document assembler wraps everything in the configured
//     preprocessor scaffolding
//
// Identical Library and Config values always produce byte-identical output.
package cgen
