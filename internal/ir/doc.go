// Package ir provides the language-neutral description of a native library's
// ABI surface: functions, constants and the types they reach.
//
// This package contains type definitions only, plus the closure and hashing
// helpers every backend needs. All other internal packages import ir; ir
// imports nothing internal. Backends treat a Library as read-only input.
//
// Key design constraints:
//   - Type is a closed union; backends switch exhaustively over its variants
//   - Named types (enum, opaque, composite, function pointer) are unique by name
//   - Two nodes with the same name are assumed to describe the same type
//   - Ordering of fields, variants, parameters and functions is significant
package ir
