package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlfinder/internal/ir"
)

func sampleResult() *Result {
	r := NewResult()
	r.SQL = `SELECT "root"."id" FROM pages AS "root" ORDER BY 1`
	r.Rows = []*ir.Row{
		ir.NewRow([]string{"id", "title", "images"}, []any{int64(5), "Gamma", "b.jpg,a.jpg"}),
		ir.NewRow([]string{"id", "title", "images"}, []any{int64(1), "Alpha", nil}),
	}
	return r
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertRowCount, Count: 2},
		{Type: AssertColumnValues, Column: "id", Values: []any{5, 1}},
		{Type: AssertColumnValues, Column: "images", Values: []any{"b.jpg,a.jpg", nil}},
		{Type: AssertRowContains, Where: map[string]any{"id": 1}, Expect: map[string]any{"title": "Alpha", "images": nil}},
		{Type: AssertColumns, Values: []any{"id", "title", "images"}},
		{Type: AssertSQLContains, Text: `AS "root"`},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"row count", Assertion{Type: AssertRowCount, Count: 3}, "Expected: 3 rows"},
		{"column order", Assertion{Type: AssertColumnValues, Column: "id", Values: []any{1, 5}}, "id = [1 5]"},
		{"column length", Assertion{Type: AssertColumnValues, Column: "id", Values: []any{5}}, "Actual: id = [5 1]"},
		{"missing row", Assertion{Type: AssertRowContains, Where: map[string]any{"id": 9}, Expect: map[string]any{"title": "x"}}, "no matching row"},
		{"wrong value", Assertion{Type: AssertRowContains, Where: map[string]any{"id": 5}, Expect: map[string]any{"title": "Alpha"}}, "id=5 title=Gamma"},
		{"missing column", Assertion{Type: AssertRowContains, Where: map[string]any{"id": 5}, Expect: map[string]any{"body": nil}}, "row where"},
		{"columns", Assertion{Type: AssertColumns, Values: []any{"id", "title"}}, "columns [id title images]"},
		{"sql", Assertion{Type: AssertSQLContains, Text: "LIMIT"}, `statement containing "LIMIT"`},
		{"unknown", Assertion{Type: "row_sum"}, "unknown assertion type: row_sum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(int64(5), 5))
	assert.True(t, valuesEqual("10", 10), "aggregated ids come back as text")
	assert.True(t, valuesEqual(nil, nil))
	assert.True(t, valuesEqual(1.5, 1.5))
	assert.False(t, valuesEqual(nil, ""))
	assert.False(t, valuesEqual("", nil))
	assert.False(t, valuesEqual(int64(5), "five"))
}

func TestAssertionError_IncludesRows(t *testing.T) {
	err := assertRowCount(sampleResult(), Assertion{Count: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[1] id=5 title=Gamma images=b.jpg,a.jpg")
	assert.Contains(t, err.Error(), "[2] id=1 title=Alpha images=")
}
