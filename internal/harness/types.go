package harness

import (
	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
)

// Step kinds.
const (
	KindQuery        = "query"
	KindAssociate    = "associate"
	KindDisassociate = "disassociate"
)

// StepOutcome is what one step produced.
type StepOutcome struct {
	Name string
	Kind string

	// Query steps only.
	EntityName       string
	Records          []*ir.Record
	MoreRecords      bool
	TotalRecordCount int
	PagingCookie     string

	// ErrorCode is empty when the step succeeded.
	ErrorCode fault.Code
	Error     string
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step ran and every expect clause matched.
	Pass bool

	Steps []StepOutcome

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Steps: []StepOutcome{}, Errors: []string{}}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
