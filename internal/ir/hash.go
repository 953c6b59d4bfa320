package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainLibrary = "cbind/library/v1"
	DomainConfig  = "cbind/config/v1"
	DomainOutput  = "cbind/output/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashCanonical hashes the canonical JSON encoding of v under domain.
func HashCanonical(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("HashCanonical: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// HashOutput hashes generated output bytes.
func HashOutput(data []byte) string {
	return hashWithDomain(DomainOutput, data)
}

// Fingerprint computes the content-addressed identity of a library.
// Libraries with identical functions, constants and type definitions
// produce identical fingerprints.
func Fingerprint(lib *Library) (string, error) {
	doc, err := Describe(lib)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: %w", err)
	}
	return HashCanonical(DomainLibrary, doc)
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(lib *Library) string {
	fp, err := Fingerprint(lib)
	if err != nil {
		panic(err)
	}
	return fp
}

// Describe converts a library into a canonical-JSON-ready document.
func Describe(lib *Library) (map[string]any, error) {
	functions := make([]any, 0, len(lib.Functions()))
	for _, fn := range lib.Functions() {
		functions = append(functions, map[string]any{
			"name":      fn.Name,
			"signature": describeSignature(fn.Signature),
			"doc":       docOrEmpty(fn.Doc),
		})
	}

	constants := make([]any, 0, len(lib.Constants()))
	for _, c := range lib.Constants() {
		value, err := describeValue(c.Value)
		if err != nil {
			return nil, fmt.Errorf("constant %q: %w", c.Name, err)
		}
		constants = append(constants, map[string]any{
			"name":  c.Name,
			"type":  TypeExpr(c.Type),
			"value": value,
		})
	}

	types := make([]any, 0, len(lib.Types()))
	for _, t := range lib.Types() {
		if Name(t) == "" {
			continue
		}
		types = append(types, describeType(t))
	}

	return map[string]any{
		"ir_version": IRVersion,
		"functions":  functions,
		"constants":  constants,
		"types":      types,
	}, nil
}

func describeType(t Type) map[string]any {
	doc := map[string]any{
		"kind": Kind(t),
		"name": Name(t),
	}
	switch t := t.(type) {
	case *EnumType:
		describeEnum(doc, t)
	case SuccessEnum:
		describeEnum(doc, t.Enum)
		doc["success"] = t.Success
	case *OpaqueType:
		doc["doc"] = docOrEmpty(t.Doc)
	case *CompositeType:
		describeComposite(doc, t)
	case Slice:
		describeComposite(doc, t.Composite)
	case Option:
		describeComposite(doc, t.Composite)
	case *FnPointerType:
		doc["signature"] = describeSignature(t.Signature)
	}
	return doc
}

func describeEnum(doc map[string]any, e *EnumType) {
	variants := make([]any, 0, len(e.Variants))
	for _, v := range e.Variants {
		variants = append(variants, map[string]any{
			"name":  v.Name,
			"value": v.Value,
			"doc":   docOrEmpty(v.Doc),
		})
	}
	doc["variants"] = variants
	doc["doc"] = docOrEmpty(e.Doc)
}

func describeComposite(doc map[string]any, c *CompositeType) {
	fields := make([]any, 0, len(c.Fields))
	for _, f := range c.Fields {
		fields = append(fields, map[string]any{
			"name": f.Name,
			"type": TypeExpr(f.Type),
			"doc":  docOrEmpty(f.Doc),
		})
	}
	doc["fields"] = fields
	doc["doc"] = docOrEmpty(c.Doc)
}

func describeSignature(sig Signature) map[string]any {
	params := make([]any, 0, len(sig.Params))
	for _, p := range sig.Params {
		params = append(params, map[string]any{
			"name": p.Name,
			"type": TypeExpr(p.Type),
		})
	}
	return map[string]any{
		"params":  params,
		"returns": TypeExpr(sig.RvalOrVoid()),
	}
}

func describeValue(v Value) (any, error) {
	switch v := v.(type) {
	case BoolValue:
		return bool(v), nil
	case IntValue:
		return int64(v), nil
	case UintValue:
		return uint64(v), nil
	case FloatValue:
		// Floats are forbidden in canonical JSON; the shortest round-trip
		// spelling is stable.
		return "f:" + strconv.FormatFloat(float64(v), 'g', -1, 64), nil
	case nil:
		return nil, fmt.Errorf("missing value")
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

func docOrEmpty(d Documentation) []string {
	if d == nil {
		return []string{}
	}
	return d.Lines()
}
