package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/roach88/sqlfinder/internal/dialect"
)

var (
	english = Language{ID: 1, Name: "default", Tag: language.English}
	german  = Language{ID: 1012, Name: "german", Tag: language.German}
)

func sqliteContext(p AliasPath, current Language) RenderContext {
	return RenderContext{
		Dialect:   dialect.SQLite{},
		Path:      p,
		Languages: Languages{Current: current, Default: english},
		Lookup: func(name string) Classification {
			switch name {
			case "name":
				return Classification{Kind: PagesTable}
			case "title":
				return Classification{Kind: Text, MultiLanguage: true}
			default:
				return Classification{Kind: Text}
			}
		},
	}
}

func mustSpec(t *testing.T, name string, opts ...Option) *Spec {
	t.Helper()
	s, err := New(name, opts...)
	require.NoError(t, err)
	return s
}

func TestRender_Text(t *testing.T) {
	s := mustSpec(t, "title", WithType(Text, true))
	rc := sqliteContext(Root(), english)

	assert.Equal(t, []string{`"root#title"."data" AS "title"`}, s.RenderSelect(rc))
	assert.Equal(t,
		`LEFT JOIN (SELECT "pages_id" AS "pageid", "data" AS "data" FROM "field_title") AS "root#title" ON "root#title"."pageid" = "root#"."id"`,
		s.RenderJoin(rc))
}

func TestRender_TextLanguages(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{
			name: "fallback to default language",
			opts: []Option{WithType(Text, true)},
			want: `COALESCE(NULLIF("data1012", ''), "data") AS "data"`,
		},
		{
			name: "strict",
			opts: []Option{WithType(Text, true), WithStrictLanguage()},
			want: `"data1012" AS "data"`,
		},
		{
			name: "multi-language disabled",
			opts: []Option{WithType(Text, true), WithoutMultiLanguage()},
			want: `"data" AS "data"`,
		},
		{
			name: "field without language values",
			opts: []Option{WithType(Text, false)},
			want: `"data" AS "data"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSpec(t, "title", tt.opts...)
			join := s.RenderJoin(sqliteContext(Root(), german))
			assert.Contains(t, join, `SELECT "pages_id" AS "pageid", `+tt.want+` FROM "field_title"`)
		})
	}
}

func TestRender_TextExtraColumns(t *testing.T) {
	s := mustSpec(t, "price", WithType(Text, false), WithColumns("currency"))
	rc := sqliteContext(Root(), english)

	assert.Equal(t, []string{
		`"root#price"."data" AS "price"`,
		`"root#price"."currency" AS "price:currency"`,
	}, s.RenderSelect(rc))
	assert.Contains(t, s.RenderJoin(rc), `SELECT "pages_id" AS "pageid", "data" AS "data", "currency" AS "currency" FROM "field_price"`)
}

func TestRender_File(t *testing.T) {
	s := mustSpec(t, "images", WithType(File, false), WithColumns("description"))
	rc := sqliteContext(Root().Child("author"), english)

	assert.Equal(t, []string{
		`"root.author#images"."data" AS "images"`,
		`"root.author#images"."description" AS "images:description"`,
	}, s.RenderSelect(rc))
	assert.Equal(t,
		`LEFT JOIN (SELECT "pages_id" AS "pageid", group_concat("data", ',' ORDER BY "sort") AS "data", group_concat("description", ',' ORDER BY "sort") AS "description" FROM "field_images" GROUP BY "pages_id") AS "root.author#images" ON "root.author#images"."pageid" = "root.author#"."id"`,
		s.RenderJoin(rc))
}

func TestRender_FileSeparator(t *testing.T) {
	s := mustSpec(t, "images", WithType(File, false), WithSeparator("|"))
	assert.Contains(t, s.RenderJoin(sqliteContext(Root(), english)), `group_concat("data", '|' ORDER BY "sort")`)
}

func TestRender_PageWithoutColumns(t *testing.T) {
	s := mustSpec(t, "tags", WithType(Page, false))
	rc := sqliteContext(Root(), english)

	assert.Equal(t,
		`LEFT JOIN (SELECT "pages_id" AS "pageid", group_concat("data", ',' ORDER BY "sort") AS "data" FROM "field_tags" GROUP BY "pages_id") AS "root#tags" ON "root#tags"."pageid" = "root#"."id"`,
		s.RenderJoin(rc))
}

func TestRender_PageWithColumns(t *testing.T) {
	s := mustSpec(t, "author", WithType(Page, false), WithColumns("title", "name"))
	rc := sqliteContext(Root(), english)

	assert.Equal(t, []string{
		`"root#author"."data" AS "author"`,
		`"root#author"."title" AS "author:title"`,
		`"root#author"."name" AS "author:name"`,
	}, s.RenderSelect(rc))
	assert.Equal(t,
		`LEFT JOIN (SELECT "root#author"."pages_id" AS "pageid", `+
			`"root#author"."data" AS "data", `+
			`group_concat("root#author:title"."data", ',' ORDER BY "root#author"."sort") AS "title", `+
			`group_concat("root#author:name"."name", ',' ORDER BY "root#author"."sort") AS "name" `+
			`FROM "field_author" AS "root#author" `+
			`LEFT JOIN "field_title" AS "root#author:title" ON "root#author:title"."pages_id" = "root#author"."data" `+
			`LEFT JOIN "pages" AS "root#author:name" ON "root#author:name"."id" = "root#author"."data" `+
			`GROUP BY "root#author"."pages_id", "root#author"."data") AS "root#author" ON "root#author"."pageid" = "root#"."id"`,
		s.RenderJoin(rc))
}

func TestRender_PageSubColumnLanguage(t *testing.T) {
	s := mustSpec(t, "author", WithType(Page, false), WithColumns("title"))
	join := s.RenderJoin(sqliteContext(Root(), german))
	assert.Contains(t, join, `COALESCE(NULLIF("root#author:title"."data1012", ''), "root#author:title"."data")`)
}

func TestRender_Repeater(t *testing.T) {
	s := mustSpec(t, "items", WithType(Repeater, false), WithColumns("title", "body"))
	rc := sqliteContext(Root(), english)

	member := `instr(',' || "root#items"."data" || ',', ',' || "root#items:title"."pages_id" || ',')`
	assert.Equal(t,
		`LEFT JOIN (SELECT "root#items"."pages_id" AS "pageid", "root#items"."data" AS "data", `+
			`group_concat("root#items:title"."data", ',' ORDER BY `+member+`) AS "title", `+
			`group_concat("root#items:body"."data", ',' ORDER BY instr(',' || "root#items"."data" || ',', ',' || "root#items:body"."pages_id" || ',')) AS "body" `+
			`FROM "field_items" AS "root#items" `+
			`LEFT JOIN "field_title" AS "root#items:title" ON `+member+` > 0 `+
			`LEFT JOIN "field_body" AS "root#items:body" ON "root#items:body"."pages_id" = "root#items:title"."pages_id" `+
			`GROUP BY "root#items"."pages_id", "root#items"."data") AS "root#items" ON "root#items"."pageid" = "root#"."id"`,
		s.RenderJoin(rc))
}

func TestRender_RepeaterWithoutColumns(t *testing.T) {
	s := mustSpec(t, "items", WithType(Repeater, false))
	assert.Contains(t, s.RenderJoin(sqliteContext(Root(), english)),
		`(SELECT "pages_id" AS "pageid", "data" AS "data" FROM "field_items")`)
}

func TestRender_PagesTable(t *testing.T) {
	s := mustSpec(t, "name", WithType(PagesTable, false), WithAlias("slug"), WithColumns("template"))
	rc := sqliteContext(Root().Child("author"), english)

	assert.Equal(t, []string{
		`"root.author#"."name" AS "slug"`,
		`"root.author#"."template" AS "slug:template"`,
	}, s.RenderSelect(rc))
	assert.Empty(t, s.RenderJoin(rc))
	assert.Empty(t, s.Identifiers(rc.Path))
}

func TestRender_Closure(t *testing.T) {
	s, err := NewClosure("age")
	require.NoError(t, err)
	rc := sqliteContext(Root(), english)

	assert.Equal(t, []string{`'' AS "age"`}, s.RenderSelect(rc))
	assert.Empty(t, s.RenderJoin(rc))
}

func TestRender_MySQL(t *testing.T) {
	s := mustSpec(t, "images", WithType(File, false))
	rc := RenderContext{Dialect: dialect.MySQL{}, Path: Root(), Languages: Languages{Current: english, Default: english}}

	assert.Equal(t,
		"LEFT JOIN (SELECT `pages_id` AS `pageid`, GROUP_CONCAT(`data` ORDER BY `sort` SEPARATOR ',') AS `data` FROM `field_images` GROUP BY `pages_id`) AS `root#images` ON `root#images`.`pageid` = `root#`.`id`",
		s.RenderJoin(rc))
}

func TestRender_NilLookupTreatsSubColumnsAsText(t *testing.T) {
	s := mustSpec(t, "author", WithType(Page, false), WithColumns("name"))
	rc := RenderContext{Dialect: dialect.SQLite{}, Path: Root(), Languages: Languages{Current: german, Default: english}}

	join := s.RenderJoin(rc)
	assert.Contains(t, join, `LEFT JOIN "field_name" AS "root#author:name"`)
	assert.NotContains(t, join, "data1012")
}

func TestIdentifiers(t *testing.T) {
	s := mustSpec(t, "author", WithType(Page, false), WithColumns("title"))
	assert.Equal(t, []string{"root.x#author", "root.x#author:title"}, s.Identifiers(Root().Child("x")))

	f := mustSpec(t, "images", WithType(File, false), WithColumns("description"))
	assert.Equal(t, []string{"root#images"}, f.Identifiers(Root()))
}
