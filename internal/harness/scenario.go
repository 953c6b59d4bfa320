package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cbind/internal/cgen"
)

// Scenario defines a header conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Library is CUE source with a top-level library value.
	Library string `yaml:"library"`

	// Config overrides generator defaults. Keys follow the config file
	// format; absent keys keep their defaults.
	Config yaml.Node `yaml:"config,omitempty"`

	// Golden names a file, relative to the scenario, holding the exact
	// expected header.
	Golden string `yaml:"golden,omitempty"`

	// Assertions validate the generated header or the failure.
	Assertions []Assertion `yaml:"assertions"`

	// dir is the directory the scenario was loaded from.
	dir string
}

// Assertion validates one property of a scenario result.
type Assertion struct {
	// Type specifies the assertion type:
	// - "contains": Text appears in the header
	// - "not_contains": Text does not appear in the header
	// - "line_order": Lines appear in the header in this order
	// - "type_order": Types are emitted in exactly this order
	// - "error": Generation fails with Code
	Type string `yaml:"type"`

	// Text is the snippet searched for (contains, not_contains).
	Text string `yaml:"text,omitempty"`

	// Lines are whole header lines, compared after trimming (line_order).
	Lines []string `yaml:"lines,omitempty"`

	// Types are type names in emission order (type_order).
	Types []string `yaml:"types,omitempty"`

	// Code is the expected error code (error).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertLineOrder   = "line_order"
	AssertTypeOrder   = "type_order"
	AssertError       = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.dir = filepath.Dir(path)
	return scenario, nil
}

// ParseScenario parses scenario YAML. Golden paths of a parsed scenario
// resolve against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// GoldenPath returns the resolved golden file path, or "" if unset.
func (s *Scenario) GoldenPath() string {
	if s.Golden == "" || filepath.IsAbs(s.Golden) {
		return s.Golden
	}
	return filepath.Join(s.dir, s.Golden)
}

// GeneratorConfig returns the default config with the scenario's
// overrides applied.
func (s *Scenario) GeneratorConfig() (cgen.Config, error) {
	if s.Config.Kind == 0 {
		return cgen.DefaultConfig(), nil
	}
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		return cgen.Config{}, fmt.Errorf("encoding config: %w", err)
	}
	return cgen.ParseConfig(data)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Library == "" {
		return fmt.Errorf("library is required")
	}
	if s.Config.Kind != 0 && s.Config.Kind != yaml.MappingNode {
		return fmt.Errorf("config must be a mapping")
	}
	if len(s.Assertions) == 0 && s.Golden == "" {
		return fmt.Errorf("assertions list or golden file is required")
	}

	errorAssertions := 0
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
		if assertion.Type == AssertError {
			errorAssertions++
		}
	}
	if errorAssertions > 1 {
		return fmt.Errorf("at most one error assertion is allowed")
	}
	if errorAssertions == 1 && s.Golden != "" {
		return fmt.Errorf("golden file cannot be combined with an error assertion")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertContains, AssertNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertLineOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("assertions[%d]: lines list is required for line_order", index)
		}
	case AssertTypeOrder:
		if len(a.Types) == 0 {
			return fmt.Errorf("assertions[%d]: types list is required for type_order", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
