package harness

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Header is the generated text. Empty when generation failed.
	Header string `json:"header,omitempty"`

	// Types lists the declarable types in emission order.
	Types []string `json:"types,omitempty"`

	// ErrorCode is the code of the first compile, validation or
	// generation failure, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Failure is the message that accompanies ErrorCode.
	Failure string `json:"failure,omitempty"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Failed reports whether the library was rejected before a header existed.
func (r *Result) Failed() bool {
	return r.ErrorCode != ""
}
