package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlfinder/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Rows     []*ir.Row // Full result for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nRows:\n")
	for i, row := range e.Rows {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, formatRow(row))
	}
	return buf.String()
}

func formatRow(row *ir.Row) string {
	parts := make([]string, 0, row.Len())
	for _, col := range row.Columns() {
		v, _ := row.Get(col)
		parts = append(parts, fmt.Sprintf("%s=%s", col, ir.FormatValue(v)))
	}
	return strings.Join(parts, " ")
}

func assertRowCount(result *Result, assertion Assertion) error {
	if len(result.Rows) == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRowCount,
		Expected: fmt.Sprintf("%d rows", assertion.Count),
		Actual:   fmt.Sprintf("%d rows", len(result.Rows)),
		Rows:     result.Rows,
	}
}

// assertColumnValues compares one column across all rows, in row order.
func assertColumnValues(result *Result, assertion Assertion) error {
	actual := make([]any, len(result.Rows))
	for i, row := range result.Rows {
		actual[i], _ = row.Get(assertion.Column)
	}

	fail := func() error {
		return &AssertionError{
			Type:     AssertColumnValues,
			Expected: fmt.Sprintf("%s = %v", assertion.Column, assertion.Values),
			Actual:   fmt.Sprintf("%s = %v", assertion.Column, actual),
			Rows:     result.Rows,
		}
	}
	if len(actual) != len(assertion.Values) {
		return fail()
	}
	for i := range actual {
		if !valuesEqual(actual[i], assertion.Values[i]) {
			return fail()
		}
	}
	return nil
}

// assertRowContains finds the first row matching every where column and
// checks the expected columns on it (subset match).
func assertRowContains(result *Result, assertion Assertion) error {
	var match *ir.Row
	for _, row := range result.Rows {
		if matchRow(row, assertion.Where) {
			match = row
			break
		}
	}
	if match == nil {
		return &AssertionError{
			Type:     AssertRowContains,
			Expected: fmt.Sprintf("a row where %v", assertion.Where),
			Actual:   "no matching row",
			Rows:     result.Rows,
		}
	}
	if !matchRow(match, assertion.Expect) {
		return &AssertionError{
			Type:     AssertRowContains,
			Expected: fmt.Sprintf("row where %v to have %v", assertion.Where, assertion.Expect),
			Actual:   formatRow(match),
			Rows:     result.Rows,
		}
	}
	return nil
}

func assertColumns(result *Result, assertion Assertion) error {
	var actual []string
	if len(result.Rows) > 0 {
		actual = result.Rows[0].Columns()
	}
	expected := make([]string, len(assertion.Values))
	for i, v := range assertion.Values {
		expected[i] = ir.FormatValue(v)
	}
	if strings.Join(actual, "\x00") == strings.Join(expected, "\x00") {
		return nil
	}
	return &AssertionError{
		Type:     AssertColumns,
		Expected: fmt.Sprintf("columns %v", expected),
		Actual:   fmt.Sprintf("columns %v", actual),
		Rows:     result.Rows,
	}
}

func assertSQLContains(result *Result, assertion Assertion) error {
	if strings.Contains(result.SQL, assertion.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertSQLContains,
		Expected: fmt.Sprintf("statement containing %q", assertion.Text),
		Actual:   result.SQL,
	}
}

// matchRow checks that each expected column exists and matches.
// Columns not in expected are ignored.
func matchRow(row *ir.Row, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := row.Get(key)
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares a row value with a YAML-parsed value.
// YAML integers decode as int and rows carry int64, so both sides are
// normalized first; numbers also match their text form since aggregated
// columns come back as TEXT.
func valuesEqual(actual, expected any) bool {
	actual, expected = ir.FromSQL(actual), ir.FromSQL(expected)
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if actual == expected {
		return true
	}
	return ir.FormatValue(actual) == ir.FormatValue(expected)
}

// EvaluateAssertions runs all assertions against the result.
// Returns a slice of error messages (empty if all pass).
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertRowCount:
			err = assertRowCount(result, assertion)
		case AssertColumnValues:
			err = assertColumnValues(result, assertion)
		case AssertRowContains:
			err = assertRowContains(result, assertion)
		case AssertColumns:
			err = assertColumns(result, assertion)
		case AssertSQLContains:
			err = assertSQLContains(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d (%s): %v", i, assertion.Type, err))
		}
	}
	return errors
}
