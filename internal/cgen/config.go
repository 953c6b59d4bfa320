package cgen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cbind/internal/ir"
)

// Config controls the textual shape of the generated header.
type Config struct {
	// IfNDef is the include guard macro.
	IfNDef string `yaml:"ifndef"`

	// CustomDefines is inserted verbatim after the includes.
	CustomDefines string `yaml:"custom_defines"`

	// FileHeaderComment is inserted verbatim before the include guard.
	FileHeaderComment string `yaml:"file_header_comment"`

	// Imports emits the standard includes (stdint.h, stdbool.h).
	Imports bool `yaml:"imports"`

	// Directives emits the include guard and the extern "C" wrapper.
	Directives bool `yaml:"directives"`

	// ExternC emits the extern "C" wrapper when Directives is set.
	ExternC bool `yaml:"extern_c"`

	// FunctionAttribute prefixes every function prototype verbatim,
	// e.g. "__declspec(dllexport) ".
	FunctionAttribute string `yaml:"function_attribute"`

	// Documentation emits /// lines for documented functions and types.
	Documentation bool `yaml:"documentation"`

	// Indent is the indentation unit inside struct and enum bodies.
	Indent string `yaml:"indent"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		IfNDef:            "CBIND_GENERATED_H",
		FileHeaderComment: "// Automatically generated by cbind. Do not edit.",
		Imports:           true,
		Directives:        true,
		ExternC:           true,
		Documentation:     true,
		Indent:            "    ",
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks options that would otherwise produce a broken header.
func (c Config) Validate() error {
	if c.Directives && !identifierPattern.MatchString(c.IfNDef) {
		return fmt.Errorf("ifndef %q is not a C identifier", c.IfNDef)
	}
	return nil
}

// LoadConfig reads a YAML config file on top of DefaultConfig. Keys absent
// from the file keep their default values; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Fingerprint hashes every option that affects the output.
func (c Config) Fingerprint() (string, error) {
	return ir.HashCanonical(ir.DomainConfig, map[string]any{
		"ifndef":              c.IfNDef,
		"custom_defines":      c.CustomDefines,
		"file_header_comment": c.FileHeaderComment,
		"imports":             c.Imports,
		"directives":          c.Directives,
		"extern_c":            c.ExternC,
		"function_attribute":  c.FunctionAttribute,
		"documentation":       c.Documentation,
		"indent":              c.Indent,
	})
}
