package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: vec2_order
description: Inner struct precedes the struct holding it
library: |
  library: types: {
      Line: {kind: "composite", fields: [{name: "a", type: "Vec2"}, {name: "b", type: "Vec2"}]}
      Vec2: {kind: "composite", fields: [{name: "x", type: "f32"}, {name: "y", type: "f32"}]}
  }
assertions:
  - type: type_order
    types: [Vec2, Line]
  - type: contains
    text: "Vec2 a;"
`

const cycleScenario = `
name: value_cycle
description: Value cycles are rejected
library: |
  library: types: {
      A: {kind: "composite", fields: [{name: "b", type: "B"}]}
      B: {kind: "composite", fields: [{name: "a", type: "A"}]}
  }
assertions:
  - type: error
    code: E203
`

const failingScenario = `
name: wrong_guard
description: Asserts on a guard the header does not use
library: |
  library: types: P: {kind: "opaque"}
assertions:
  - type: contains
    text: "#ifndef OTHER_H"
`

func writeScenarios(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range scenarios {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestTestCommand_MissingArgs(t *testing.T) {
	_, _, err := runCLI(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommand_NonExistentDir(t *testing.T) {
	stdout, _, err := runCLI(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "scenarios directory not found")
}

func TestTestCommand_EmptyDir(t *testing.T) {
	stdout, _, err := runCLI(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found")
}

func TestTestCommand_AllPass(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"order.yaml": passingScenario,
		"cycle.yml":  cycleScenario,
		"notes.txt":  "ignored",
	})

	stdout, _, err := runCLI(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ vec2_order")
	assert.Contains(t, stdout, "✓ value_cycle")
	assert.Contains(t, stdout, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"order.yaml": passingScenario,
		"guard.yaml": failingScenario,
	})

	stdout, _, err := runCLI(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ wrong_guard")
	assert.Contains(t, stdout, `header contains "#ifndef OTHER_H"`)
	assert.Contains(t, stdout, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"broken.yaml": "name: broken\n",
	})

	stdout, _, err := runCLI(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "Load error")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"order.yaml": passingScenario,
		"guard.yaml": failingScenario,
	})

	stdout, _, err := runCLI(t, "test", dir, "--filter", "ord*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
	assert.NotContains(t, stdout, "wrong_guard")

	_, _, err = runCLI(t, "test", dir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_JSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"order.yaml": passingScenario,
		"guard.yaml": failingScenario,
	})

	stdout, _, err := runCLI(t, "test", dir, "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string     `json:"code"`
			Details TestResult `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 2, resp.Error.Details.Total)
	assert.Equal(t, 1, resp.Error.Details.Failed)
}

func TestTestCommand_UpdateGolden(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"tick.yaml": `
name: tick
description: Golden header for one function
library: |
  library: functions: [{name: "tick"}]
config:
  directives: false
  imports: false
  file_header_comment: ""
golden: tick.h
`,
	})

	_, _, err := runCLI(t, "test", dir)
	require.Error(t, err, "golden file missing")

	_, _, err = runCLI(t, "test", dir, "--update")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "tick.h"))
	require.NoError(t, err)
	assert.Equal(t, "void tick(void);\n", string(data))

	stdout, _, err := runCLI(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ tick")
}
