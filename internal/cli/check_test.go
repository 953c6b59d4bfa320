package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateHeader writes the header for dir to a temp file and returns its path.
func generateHeader(t *testing.T, dir string, flags ...string) string {
	t.Helper()
	output := filepath.Join(t.TempDir(), "lib.h")
	args := append([]string{"generate", dir, "-o", output}, flags...)
	_, _, err := runCLI(t, args...)
	require.NoError(t, err)
	return output
}

func TestCheck_UpToDate(t *testing.T) {
	dir := writeLibrary(t, vectorLibrary)
	header := generateHeader(t, dir)

	stdout, _, err := runCLI(t, "check", dir, header)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+header+" is up to date")
}

func TestCheck_UpToDateWithFlags(t *testing.T) {
	dir := writeLibrary(t, vectorLibrary)
	header := generateHeader(t, dir, "--ifndef", "VEC_H", "--no-imports")

	_, _, err := runCLI(t, "check", dir, header, "--ifndef", "VEC_H", "--no-imports")
	require.NoError(t, err)

	_, _, err = runCLI(t, "check", dir, header)
	require.Error(t, err, "different config produces a different header")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCheck_Stale(t *testing.T) {
	dir := writeLibrary(t, vectorLibrary)
	header := generateHeader(t, dir)

	data, err := os.ReadFile(header)
	require.NoError(t, err)
	edited := strings.Replace(string(data), "float y;", "double y;", 1)
	require.NoError(t, os.WriteFile(header, []byte(edited), 0644))

	stdout, stderr, err := runCLI(t, "-v", "check", dir, header)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E009]")
	assert.Contains(t, stdout, "is out of date")
	assert.Contains(t, stderr, `expected "    float y;", found "    double y;"`)
}

func TestCheck_StaleJSON(t *testing.T) {
	dir := writeLibrary(t, vectorLibrary)
	header := generateHeader(t, dir)
	require.NoError(t, os.WriteFile(header, []byte("// stale\n"), 0644))

	stdout, _, err := runCLI(t, "--format", "json", "check", dir, header)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStale, resp.Error.Code)
	details := resp.Error.Details.(map[string]any)
	assert.Equal(t, float64(1), details["line"])
	assert.Equal(t, false, details["up_to_date"])
}

func TestCheck_MissingHeader(t *testing.T) {
	dir := writeLibrary(t, vectorLibrary)

	stdout, _, err := runCLI(t, "check", dir, filepath.Join(t.TempDir(), "missing.h"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E005]")
}
