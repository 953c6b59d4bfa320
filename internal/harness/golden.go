package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its header against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario could not run or the library was
// rejected. A header mismatch fails the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return result, &AssertionError{
			Type:     "golden",
			Expected: "header generated",
			Actual:   "failed with " + result.ErrorCode,
			Failure:  result.Failure,
		}
	}

	AssertGolden(t, scenario.Name, result.Header)
	return result, nil
}

// AssertGolden compares a generated header against
// testdata/golden/{name}.golden in the calling package's directory.
func AssertGolden(t *testing.T, name string, header string) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(header))
}
