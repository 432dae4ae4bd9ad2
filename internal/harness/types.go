package harness

import (
	"github.com/roach88/sqlfinder/internal/ir"
	"github.com/roach88/sqlfinder/internal/testutil"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// SQL is the composed statement. Empty when composition failed.
	SQL string `json:"sql,omitempty"`

	// Rows are the materialized result rows.
	Rows []*ir.Row `json:"rows"`

	// Phases are the finder's measurements, stamped by a logical clock.
	Phases []testutil.PhaseEvent `json:"phases,omitempty"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Rows:   []*ir.Row{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
