package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const vectorLibrary = `
package lib

library: {
	types: {
		Vec2: {
			kind: "composite"
			fields: [{name: "x", type: "f32"}, {name: "y", type: "f32"}]
		}
		Status: {
			kind:    "success_enum"
			success: "Ok"
			variants: [{name: "Ok"}, {name: "Failed"}]
		}
	}
	constants: [{name: "MAX_ITEMS", type: "u32", value: 8}]
	functions: [
		{name: "vec2_length", params: [{name: "v", type: "const *Vec2"}], returns: "f32"},
		{name: "vec2_reset", params: [{name: "v", type: "*Vec2"}], returns: "Status"},
	]
}
`

// writeLibrary writes src as lib.cue into a fresh directory.
func writeLibrary(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.cue"), []byte(src), 0644))
	return dir
}

// runCLI executes the root command with args and captures both streams.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
