package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlfinder/internal/ir"
)

func TestValidate_ValidSelect(t *testing.T) {
	query := Select{
		Filter: And{Predicates: []Predicate{
			Compare{Column: "template", Op: OpEq, Values: []ir.IRValue{ir.IRString("person")}},
			&FieldCompare{Field: "title", Op: OpContains, Values: []ir.IRValue{ir.IRString("smith")}},
		}},
		Order: []OrderKey{{Field: "title", Descending: true}, {Field: "sort"}},
		Limit: 10,
	}

	result := Validate(query)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Problems)
}

func TestValidate_EmptySelect(t *testing.T) {
	result := Validate(&Select{})
	assert.True(t, result.Valid)
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "nil query",
			query: nil,
			want:  "nil query",
		},
		{
			name:  "unknown column",
			query: Select{Filter: Compare{Column: "title", Op: OpEq, Values: []ir.IRValue{ir.IRString("x")}}},
			want:  `unknown entity column "title"`,
		},
		{
			name:  "invalid field",
			query: Select{Filter: FieldCompare{Field: "ti-tle", Op: OpEq, Values: []ir.IRValue{ir.IRString("x")}}},
			want:  `invalid field name "ti-tle"`,
		},
		{
			name:  "unknown operator",
			query: Select{Filter: FieldCompare{Field: "title", Op: "~=", Values: []ir.IRValue{ir.IRString("x")}}},
			want:  `unknown operator "~="`,
		},
		{
			name:  "no value",
			query: Select{Filter: Compare{Column: "id", Op: OpEq}},
			want:  "comparison without value",
		},
		{
			name:  "contains on int",
			query: Select{Filter: FieldCompare{Field: "age", Op: OpContains, Values: []ir.IRValue{ir.IRInt(4)}}},
			want:  "needs a text value",
		},
		{
			name:  "bad sort key",
			query: Select{Order: []OrderKey{{Field: "1x"}}},
			want:  `invalid sort key "1x"`,
		},
		{
			name:  "negative limit",
			query: Select{Limit: -1},
			want:  "negative limit -1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Problems)
			assert.Contains(t, result.Problems[0], tt.want)
		})
	}
}

func TestOp_Valid(t *testing.T) {
	for _, op := range Ops {
		assert.True(t, op.Valid(), string(op))
	}
	assert.False(t, Op("==").Valid())
}

func TestIsEntityColumn(t *testing.T) {
	assert.True(t, IsEntityColumn("parent_id"))
	assert.False(t, IsEntityColumn("parent"))
}
