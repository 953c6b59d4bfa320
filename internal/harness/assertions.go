package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Failure  string // Generation failure message, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Failure != "" {
		fmt.Fprintf(&buf, "  Failure: %s\n", e.Failure)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns
// the failure messages. A result whose generation failed passes only an
// error assertion naming its code; without one the failure itself is
// reported.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	expectsError := slices.ContainsFunc(assertions, func(a Assertion) bool {
		return a.Type == AssertError
	})
	if result.Failed() && !expectsError {
		errs = append(errs, (&AssertionError{
			Type:     "generation",
			Expected: "header generated",
			Actual:   fmt.Sprintf("failed with %s", result.ErrorCode),
			Failure:  result.Failure,
		}).Error())
		return errs
	}

	for i, a := range assertions {
		if result.Failed() && a.Type != AssertError {
			continue
		}
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertContains:
		return assertContains(result.Header, a)
	case AssertNotContains:
		return assertNotContains(result.Header, a)
	case AssertLineOrder:
		return assertLineOrder(result.Header, a)
	case AssertTypeOrder:
		return assertTypeOrder(result.Types, a)
	case AssertError:
		return assertError(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertContains(header string, a Assertion) error {
	if strings.Contains(header, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("header contains %q", a.Text),
		Actual:   "not found",
	}
}

func assertNotContains(header string, a Assertion) error {
	if !strings.Contains(header, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotContains,
		Expected: fmt.Sprintf("header without %q", a.Text),
		Actual:   "found",
	}
}

// assertLineOrder checks that the lines appear in order. Other lines may
// appear between them.
func assertLineOrder(header string, a Assertion) error {
	lines := strings.Split(header, "\n")
	next := 0
	for _, want := range a.Lines {
		want = strings.TrimSpace(want)
		found := false
		for next < len(lines) {
			line := strings.TrimSpace(lines[next])
			next++
			if line == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertLineOrder,
				Expected: fmt.Sprintf("lines in order: %q", a.Lines),
				Actual:   fmt.Sprintf("%q missing or out of order", want),
			}
		}
	}
	return nil
}

func assertTypeOrder(types []string, a Assertion) error {
	if slices.Equal(types, a.Types) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTypeOrder,
		Expected: fmt.Sprintf("types %v", a.Types),
		Actual:   fmt.Sprintf("types %v", types),
	}
}

func assertError(result *Result, a Assertion) error {
	if result.ErrorCode == a.Code {
		return nil
	}
	actual := "header generated"
	if result.Failed() {
		actual = fmt.Sprintf("failed with %s", result.ErrorCode)
	}
	return &AssertionError{
		Type:     AssertError,
		Expected: fmt.Sprintf("failure with %s", a.Code),
		Actual:   actual,
		Failure:  result.Failure,
	}
}
