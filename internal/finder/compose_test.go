package finder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/roach88/sqlfinder/internal/dialect"
	"github.com/roach88/sqlfinder/internal/field"
)

const titleOwn = `SELECT "root#"."id" AS "id", "root#title"."data" AS "title" FROM "pages" AS "root#" ` +
	`LEFT JOIN (SELECT "pages_id" AS "pageid", "data" AS "data" FROM "field_title") AS "root#title" ON "root#title"."pageid" = "root#"."id"`

func TestFinder_SQLOrdersByResolvedIDs(t *testing.T) {
	deps, _ := testDeps(t, map[string][]int64{"template=post": {3, 1, 2}})
	f := newTestFinder(t, "template=post", deps)
	require.NoError(t, f.AddFields("title"))

	query, err := f.SQL(t.Context())
	require.NoError(t, err)

	want := `SELECT "root"."id" AS "id", "root"."title" AS "title" FROM (` + titleOwn + `) AS "root" ` +
		`WHERE "root"."id" IN (3,1,2) ORDER BY CASE "root"."id" WHEN 3 THEN 0 WHEN 1 THEN 1 WHEN 2 THEN 2 END`
	assert.Equal(t, want, query)
}

func TestFinder_SQLEmptyIDSet(t *testing.T) {
	deps, _ := testDeps(t, map[string][]int64{"template=none": {}})
	f := newTestFinder(t, "template=none", deps)
	require.NoError(t, f.AddFields("title"))

	query, err := f.SQL(t.Context())
	require.NoError(t, err)
	assert.Contains(t, query, `WHERE "root"."id" IN (NULL)`)
	assert.NotContains(t, query, "ORDER BY CASE")
}

func TestFinder_SQLWithoutSort(t *testing.T) {
	deps, _ := testDeps(t, map[string][]int64{"template=post": {3, 1}})
	f := newTestFinder(t, "template=post", deps, WithSort(false))

	query, err := f.SQL(t.Context())
	require.NoError(t, err)
	assert.Equal(t, `SELECT "root"."id" AS "id" FROM (SELECT "root#"."id" AS "id" FROM "pages" AS "root#") AS "root" WHERE "root"."id" IN (3,1)`, query)
}

func TestFinder_SQLIsMemoized(t *testing.T) {
	deps, resolver := testDeps(t, map[string][]int64{"template=post": {1, 2}})
	f := newTestFinder(t, "template=post", deps)
	require.NoError(t, f.AddFields("title", "images"))

	first, err := f.SQL(t.Context())
	require.NoError(t, err)

	// The resolver now answers differently; the memoized text must not change.
	resolver.ids["template=post"] = []int64{9}
	second, err := f.SQL(t.Context())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, resolver.calls, 1)
}

func TestFinder_SQLAppendsLimit(t *testing.T) {
	deps, resolver := testDeps(t, map[string][]int64{"template=post, limit=1": {4}})
	f := newTestFinder(t, "template=post", deps, WithLimit("limit=1"))

	_, err := f.SQL(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"template=post, limit=1"}, resolver.calls)
}

func TestFinder_SQLResolverError(t *testing.T) {
	deps, _ := testDeps(t, map[string][]int64{})
	f := newTestFinder(t, "template=post", deps)

	_, err := f.SQL(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `resolve selector "template=post"`)
	assert.False(t, IsConfigError(err))
}

func TestFinder_SQLRawSelectPlaceholders(t *testing.T) {
	deps, _ := testDeps(t, map[string][]int64{"template=post": {1}})
	deps.Languages = fakeLanguages{
		current: field.Language{ID: 1012, Name: "german", Tag: language.German},
		def:     field.Language{ID: 1, Name: "default", Tag: language.English},
	}
	f := newTestFinder(t, "template=post", deps)
	require.NoError(t, f.AddRawSelect("children", `SELECT count(*) FROM "pages" AS p WHERE p."parent_id" = #pages#."id"`))
	require.NoError(t, f.AddRawSelect("summary", `SELECT #data# FROM "field_summary" WHERE "pages_id" = #pages#."id"`))

	query, err := f.SQL(t.Context())
	require.NoError(t, err)
	assert.Contains(t, query, `(SELECT count(*) FROM "pages" AS p WHERE p."parent_id" = "root#"."id") AS "children"`)
	assert.Contains(t, query, `(SELECT data1012 FROM "field_summary" WHERE "pages_id" = "root#"."id") AS "summary"`)
}

func TestFinder_SQLLanguageFallback(t *testing.T) {
	deps, _ := testDeps(t, map[string][]int64{"template=post": {1}})
	deps.Languages = fakeLanguages{
		current: field.Language{ID: 1012, Name: "german", Tag: language.German},
		def:     field.Language{ID: 1, Name: "default", Tag: language.English},
	}
	f := newTestFinder(t, "template=post", deps)
	require.NoError(t, f.AddFields("title", "age"))

	query, err := f.SQL(t.Context())
	require.NoError(t, err)
	assert.Contains(t, query, `COALESCE(NULLIF("data1012", ''), "data") AS "data" FROM "field_title"`)
	assert.Contains(t, query, `SELECT "pages_id" AS "pageid", "data" AS "data" FROM "field_age"`)
}

func TestFinder_SQLMySQLDialect(t *testing.T) {
	deps, _ := testDeps(t, map[string][]int64{"template=post": {3, 1}})
	f := newTestFinder(t, "template=post", deps, WithDialect(dialect.MySQL{}))

	query, err := f.SQL(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "SELECT `root`.`id` AS `id` FROM (SELECT `root#`.`id` AS `id` FROM `pages` AS `root#`) AS `root` "+
		"WHERE `root`.`id` IN (3,1) ORDER BY FIELD(`root`.`id`, 3,1)", query)
}

func TestFinder_SQLRecordsTimings(t *testing.T) {
	deps, _ := testDeps(t, map[string][]int64{"template=post": {1}})
	rec := &TimingRecorder{}
	f := newTestFinder(t, "template=post", deps, WithTimer(rec))

	_, err := f.SQL(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"resolve", "compose"}, rec.Names())
}

func TestFinder_SQLLanguageError(t *testing.T) {
	deps, _ := testDeps(t, map[string][]int64{"template=post": {1}})
	deps.Languages = failingLanguages{}
	f := newTestFinder(t, "template=post", deps)

	_, err := f.SQL(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current language")
}

type failingLanguages struct{}

func (failingLanguages) CurrentLanguage(context.Context) (field.Language, error) {
	return field.Language{}, errors.New("no session")
}

func (failingLanguages) DefaultLanguage(context.Context) (field.Language, error) {
	return field.Language{}, errors.New("no session")
}
