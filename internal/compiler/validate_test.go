package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlfinder/internal/finder"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	spec := &FinderSpec{
		Name: "posts",
		Definition: finder.Definition{
			Selector: "template=post, sort=-name",
			Fields: []finder.FieldDefinition{
				{Name: "title"},
				{Name: "images", Alias: "pictures", Columns: []string{"description"}, SiblingSeparator: "__"},
				{Name: "blocks", Type: "repeater"},
			},
			Raw:   []finder.RawDefinition{{Alias: "upper_name", Expr: "upper(name)"}},
			Limit: "limit=3",
		},
		Joins: []JoinRef{{Finder: "authors", Params: map[string]string{"prefix": "author", "key": "author=id"}}},
	}
	assert.Empty(t, Validate(spec))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec FinderSpec
		code string
		path string
	}{
		{
			name: "selector without operator",
			spec: FinderSpec{Definition: finder.Definition{Selector: "template"}},
			code: ErrInvalidSelector, path: "selector",
		},
		{
			name: "bad limit",
			spec: FinderSpec{Definition: finder.Definition{Limit: "limit=many"}},
			code: ErrInvalidLimit, path: "limit",
		},
		{
			name: "field name",
			spec: FinderSpec{Definition: finder.Definition{Fields: []finder.FieldDefinition{{Name: "title-2"}}}},
			code: ErrInvalidName, path: "fields[0].name",
		},
		{
			name: "column name",
			spec: FinderSpec{Definition: finder.Definition{Fields: []finder.FieldDefinition{{Name: "images", Columns: []string{"1x"}}}}},
			code: ErrInvalidName, path: "fields[0].columns[0]",
		},
		{
			name: "duplicate output",
			spec: FinderSpec{Definition: finder.Definition{Fields: []finder.FieldDefinition{{Name: "title"}, {Name: "name", Alias: "title"}}}},
			code: ErrDuplicateOutput, path: "fields[1]",
		},
		{
			name: "raw alias clashes with field",
			spec: FinderSpec{Definition: finder.Definition{
				Fields: []finder.FieldDefinition{{Name: "title"}},
				Raw:    []finder.RawDefinition{{Alias: "title", Expr: "1"}},
			}},
			code: ErrDuplicateOutput, path: "raw[0]",
		},
		{
			name: "unknown type",
			spec: FinderSpec{Definition: finder.Definition{Fields: []finder.FieldDefinition{{Name: "t", Type: "blob"}}}},
			code: ErrInvalidFieldType, path: "fields[0].type",
		},
		{
			name: "closure type",
			spec: FinderSpec{Definition: finder.Definition{Fields: []finder.FieldDefinition{{Name: "t", Type: "closure"}}}},
			code: ErrInvalidFieldType, path: "fields[0].type",
		},
		{
			name: "unknown join param",
			spec: FinderSpec{Joins: []JoinRef{{Finder: "a", Params: map[string]string{"prefx": "a"}}}},
			code: ErrInvalidJoinParams, path: "joins[0]",
		},
		{
			name: "join prefix clashes with field",
			spec: FinderSpec{
				Definition: finder.Definition{Fields: []finder.FieldDefinition{{Name: "author"}}},
				Joins:      []JoinRef{{Finder: "a", Params: map[string]string{"prefix": "author"}}},
			},
			code: ErrDuplicateOutput, path: "joins[0]",
		},
		{
			name: "sibling separator",
			spec: FinderSpec{Definition: finder.Definition{Fields: []finder.FieldDefinition{{Name: "images", SiblingSeparator: "."}}}},
			code: ErrInvalidSeparator, path: "fields[0].sibling_separator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.spec)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.path, errs[0].Field)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	spec := &FinderSpec{
		Definition: finder.Definition{
			Selector: "template",
			Fields: []finder.FieldDefinition{
				{Name: "bad name"},
				{Name: "t", Type: "closure"},
			},
		},
		Joins: []JoinRef{{Finder: "a", Params: map[string]string{"key": "a=b=c"}}},
	}
	errs := Validate(spec)
	assert.Equal(t, []string{ErrInvalidSelector, ErrInvalidName, ErrInvalidFieldType, ErrInvalidJoinParams}, codes(errs))
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "selector", Message: "missing operator", Code: ErrInvalidSelector}
	assert.Equal(t, "[E101] selector: missing operator", e.Error())

	e.Line = 4
	assert.Equal(t, "[E101] line 4: selector: missing operator", e.Error())
}
