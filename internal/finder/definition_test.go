package finder

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const postsYAML = `
selector: template=post
sort: false
fields:
  - name: title
  - name: images
    columns: [description]
    separator: "|"
  - name: author
raw:
  - alias: children
    expr: "SELECT count(*) FROM pages AS p WHERE p.parent_id = #pages#.id"
joins:
  - finder:
      selector: template=person
      fields:
        - name: age
          type: text
    params:
      prefix: author
`

func TestBuild_FromYAML(t *testing.T) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader([]byte(postsYAML)))
	dec.KnownFields(true)
	require.NoError(t, dec.Decode(&def))

	deps, _ := testDeps(t, map[string][]int64{
		"template=post":   {10},
		"template=person": {1},
	})
	f, err := Build(def, deps, WithLogger(discardLogger()))
	require.NoError(t, err)

	assert.Equal(t, "|", f.Field("images").Separator())
	assert.Nil(t, f.Field("age"), "joined fields belong to the child")
	assert.Equal(t, []string{"id", "title", "images", "images:description", "children", "author.id", "author.age"}, f.OutputColumns())

	query, err := f.SQL(t.Context())
	require.NoError(t, err)
	assert.NotContains(t, query, `ORDER BY CASE "root"."id"`)
	assert.Contains(t, query, `group_concat("description", '|' ORDER BY "sort")`)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		code ConfigErrorCode
	}{
		{
			name: "unknown join param",
			def: Definition{
				Selector: "template=post",
				Fields:   []FieldDefinition{{Name: "author"}},
				Joins: []JoinDefinition{{
					Finder: Definition{Selector: "template=person"},
					Params: map[string]string{"prefix": "author", "using": "id"},
				}},
			},
			code: ErrCodeUnknownJoinParam,
		},
		{
			name: "bad join key",
			def: Definition{
				Selector: "template=post",
				Joins: []JoinDefinition{{
					Finder: Definition{Selector: "template=person"},
					Params: map[string]string{"prefix": "author", "key": "writer"},
				}},
			},
			code: ErrCodeMalformedJoinKey,
		},
		{
			name: "closure type",
			def: Definition{
				Selector: "template=post",
				Fields:   []FieldDefinition{{Name: "age", Type: "closure"}},
			},
			code: ErrCodeInvalidOption,
		},
		{
			name: "invalid sibling separator",
			def: Definition{
				Selector: "template=post",
				Fields:   []FieldDefinition{{Name: "images", SiblingSeparator: "."}},
			},
			code: ErrCodeInvalidOption,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _ := testDeps(t, nil)
			_, err := Build(tt.def, deps, WithLogger(discardLogger()))
			require.Error(t, err)
			assert.True(t, HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestBuild_LimitStaysOnParent(t *testing.T) {
	tests := []struct {
		name       string
		childLimit string
		want       []string
	}{
		{
			name: "child without limit",
			want: []string{"template=post, limit=1", "template=person"},
		},
		{
			name:       "child with own limit",
			childLimit: "limit=2",
			want:       []string{"template=post, limit=1", "template=person, limit=2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, r := testDeps(t, map[string][]int64{
				"template=post, limit=1":   {10},
				"template=person":          {1},
				"template=person, limit=2": {1},
			})
			f, err := Build(Definition{
				Selector: "template=post",
				Fields:   []FieldDefinition{{Name: "author"}},
				Joins: []JoinDefinition{{
					Finder: Definition{
						Selector: "template=person",
						Limit:    tt.childLimit,
						Fields:   []FieldDefinition{{Name: "age"}},
					},
					Params: map[string]string{"prefix": "author"},
				}},
			}, deps, WithLogger(discardLogger()), WithLimit("limit=1"))
			require.NoError(t, err)
			assert.Equal(t, "limit=1", f.Limit())

			_, err = f.SQL(t.Context())
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, r.calls)
		})
	}
}

func TestBuild_AllColumns(t *testing.T) {
	deps, _ := testDeps(t, nil)
	f, err := Build(Definition{
		Selector: "template=post",
		Fields:   []FieldDefinition{{Name: "blocks", AllColumns: true}},
	}, deps, WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.Equal(t, []string{"blocks", "blocks:headline", "blocks:body"}, f.Field("blocks").OutputColumns())
}
